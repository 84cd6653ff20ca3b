package hfinference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yanqian/packwise/internal/domain/packing"
	apperrors "github.com/yanqian/packwise/pkg/errors"
)

const defaultBaseURL = "https://api-inference.huggingface.co/models"

// GenerateRequest is the payload sent to the inference API.
type GenerateRequest struct {
	Inputs     string     `json:"inputs"`
	Parameters Parameters `json:"parameters"`
	Options    Options    `json:"options"`
}

// Parameters are the sampling parameters understood by text-generation models.
type Parameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float32 `json:"temperature"`
	TopP           float32 `json:"top_p"`
	DoSample       bool    `json:"do_sample"`
	ReturnFullText bool    `json:"return_full_text"`
}

// Options control caching and cold starts on the hosted endpoint.
type Options struct {
	UseCache     bool `json:"use_cache"`
	WaitForModel bool `json:"wait_for_model"`
}

type generation struct {
	GeneratedText *string `json:"generated_text"`
}

// Client performs HTTP requests to a hosted text-generation model.
type Client struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewClient constructs an inference client for one model.
func NewClient(apiKey, baseURL, model string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("inference api key cannot be empty")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("inference model cannot be empty")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:   apiKey,
		endpoint: strings.TrimRight(baseURL, "/") + "/" + strings.Trim(model, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Generate implements packing.TextGenerator.
func (c *Client) Generate(ctx context.Context, prompt string, params packing.GenerationParams) (string, error) {
	body, err := c.doRequest(ctx, GenerateRequest{
		Inputs: prompt,
		Parameters: Parameters{
			MaxNewTokens:   params.MaxNewTokens,
			Temperature:    params.Temperature,
			TopP:           params.TopP,
			DoSample:       params.Temperature > 0,
			ReturnFullText: false,
		},
		Options: Options{UseCache: false, WaitForModel: true},
	})
	if err != nil {
		return "", err
	}

	var out []generation
	if err := json.Unmarshal(body, &out); err != nil {
		return "", apperrors.Wrap(apperrors.CodeDecode, "decode generation response", err)
	}
	if len(out) == 0 {
		return "", apperrors.Wrap(apperrors.CodeEmptyResult, "generation response is empty", nil)
	}
	if out[0].GeneratedText == nil {
		return "", apperrors.Wrap(apperrors.CodeDecode, "generation response has no generated_text", nil)
	}
	return *out[0].GeneratedText, nil
}

func (c *Client) doRequest(ctx context.Context, req GenerateRequest) ([]byte, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDecode, "encode generation request", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeTransport, "build generation request", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeTransport, "request generation", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, apperrors.Wrap(statusCode(resp.StatusCode), fmt.Sprintf("generation request failed: status=%d body=%s", resp.StatusCode, string(payload)), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeTransport, "read generation response", err)
	}
	return body, nil
}

// statusCode classifies a non-200 response for diagnostics.
func statusCode(status int) string {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperrors.CodeLLMAuth
	case status == http.StatusNotFound:
		return apperrors.CodeLLMNotFound
	case status == http.StatusTooManyRequests:
		return apperrors.CodeLLMRateLimited
	case status >= 500:
		return apperrors.CodeLLMServerError
	default:
		return apperrors.CodeLLMUnexpectedStatus
	}
}
