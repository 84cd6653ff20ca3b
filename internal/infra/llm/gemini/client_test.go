package gemini

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/require"
)

func TestCandidateTextJoinsTextParts(t *testing.T) {
	parts := []genai.Part{genai.Text("Essentials:\n"), genai.Blob{MIMEType: "image/png"}, genai.Text("- Passport")}
	require.Equal(t, "Essentials:\n- Passport", candidateText(parts))
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), " ", "")
	require.Error(t, err)
}
