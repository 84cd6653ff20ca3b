package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/yanqian/packwise/internal/domain/packing"
	apperrors "github.com/yanqian/packwise/pkg/errors"
)

const defaultModel = "gemini-2.0-flash"

// Client generates packing text with Gemini models.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient initializes a Gemini client for the given model.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key cannot be empty")
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// Generate implements packing.TextGenerator.
func (c *Client) Generate(ctx context.Context, prompt string, params packing.GenerationParams) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(params.Temperature)
	if params.TopP > 0 {
		model.SetTopP(params.TopP)
	}
	if params.MaxNewTokens > 0 {
		model.SetMaxOutputTokens(int32(params.MaxNewTokens))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeTransport, "gemini generation failed", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", apperrors.Wrap(apperrors.CodeEmptyResult, "gemini returned no candidates", nil)
	}
	return candidateText(resp.Candidates[0].Content.Parts), nil
}

func candidateText(parts []genai.Part) string {
	var b strings.Builder
	for _, part := range parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String()
}
