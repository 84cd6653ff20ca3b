package tokencount

import (
	"log/slog"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

const defaultEncoding = "cl100k_base"

// Counter counts BPE tokens for usage reporting. When the encoding cannot
// be loaded it estimates from the character count instead.
type Counter struct {
	enc *tiktoken.Tiktoken
}

// New loads the named encoding, defaulting to cl100k_base.
func New(encoding string, logger *slog.Logger) *Counter {
	if strings.TrimSpace(encoding) == "" {
		encoding = defaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		logger.With("component", "llm.tokencount").Warn("token encoding unavailable, estimating usage", "encoding", encoding, "error", err)
		return &Counter{}
	}
	return &Counter{enc: enc}
}

// Count implements packing.TokenCounter.
func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	if c.enc == nil {
		return estimate(text)
	}
	return len(c.enc.Encode(text, nil, nil))
}

// estimate assumes roughly four characters per token.
func estimate(text string) int {
	n := (len([]rune(text)) + 3) / 4
	if n < 1 {
		return 1
	}
	return n
}
