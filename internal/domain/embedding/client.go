package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	apperrors "github.com/yanqian/packwise/pkg/errors"
)

// Config controls the embedding client.
type Config struct {
	MaxLength  int
	Dimensions int
}

// Client produces fixed-length text embeddings from a lazily loaded encoder.
// Every failure yields an all-zero vector.
type Client struct {
	cfg       Config
	tokenizer *Tokenizer
	loader    ModelLoader
	logger    *slog.Logger

	once    sync.Once
	model   Model
	binding InputBinding
	output  string
	loadErr error
}

// NewClient wires the embedding client. loader may be nil, which leaves the
// client permanently in no-model mode.
func NewClient(cfg Config, tokenizer *Tokenizer, loader ModelLoader, logger *slog.Logger) *Client {
	if cfg.MaxLength <= 0 {
		cfg.MaxLength = 128
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = 768
	}
	if tokenizer == nil {
		tokenizer = NewTokenizer(nil)
	}
	return &Client{
		cfg:       cfg,
		tokenizer: tokenizer,
		loader:    loader,
		logger:    logger.With("component", "embedding.client"),
	}
}

// Dimensions is the length of every vector returned by Embed.
func (c *Client) Dimensions() int {
	return c.cfg.Dimensions
}

// Embed returns the CLS hidden state for text, or zeros on any failure.
func (c *Client) Embed(ctx context.Context, text string) []float32 {
	vector, err := c.embed(ctx, text)
	if err != nil {
		// no-model mode is reported once by ensureModel
		if apperrors.IsCode(err, apperrors.CodeModelUnavailable) {
			c.logger.Debug("embedding skipped, no encoder", "error", err)
		} else {
			c.logger.Warn("embedding unavailable, returning zero vector", "code", apperrors.CodeOf(err), "error", err)
		}
		return make([]float32, c.cfg.Dimensions)
	}
	return vector
}

// Close releases the encoder if it was loaded.
func (c *Client) Close() error {
	if c.model == nil {
		return nil
	}
	return c.model.Close()
}

func (c *Client) embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeTransport, "embedding cancelled", err)
	}
	model, err := c.ensureModel()
	if err != nil {
		return nil, err
	}

	ids, mask := c.tokenizer.Encode(text, c.cfg.MaxLength)
	seqLen := int64(len(ids))
	shape := []int64{1, seqLen}
	inputs := []Tensor{{Name: c.binding.IDs, Shape: shape, Data: widen(ids)}}
	if c.binding.Mask != "" {
		inputs = append(inputs, Tensor{Name: c.binding.Mask, Shape: shape, Data: widen(mask)})
	}
	if c.binding.TypeIDs != "" {
		inputs = append(inputs, Tensor{Name: c.binding.TypeIDs, Shape: shape, Data: make([]int64, seqLen)})
	}

	out, err := model.Run(inputs, c.output)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDecode, "encoder run failed", err)
	}
	return c.clsVector(out)
}

func (c *Client) ensureModel() (Model, error) {
	c.once.Do(func() {
		defer func() {
			if c.loadErr != nil && c.loader != nil {
				c.logger.Warn("encoder unavailable, embeddings are zero vectors", "error", c.loadErr)
			}
		}()
		if c.loader == nil {
			c.loadErr = apperrors.Wrap(apperrors.CodeModelUnavailable, "no encoder configured", nil)
			c.logger.Info("no encoder configured, embeddings are zero vectors")
			return
		}
		model, err := c.loader.Load()
		if err != nil {
			c.loadErr = apperrors.Wrap(apperrors.CodeModelUnavailable, "load encoder", err)
			return
		}
		binding, ok := negotiateInputs(model.InputNames())
		if !ok {
			_ = model.Close()
			c.loadErr = apperrors.Wrap(apperrors.CodeModelUnavailable, fmt.Sprintf("unsupported encoder inputs %v", model.InputNames()), nil)
			return
		}
		output, ok := negotiateOutput(model.OutputNames())
		if !ok {
			_ = model.Close()
			c.loadErr = apperrors.Wrap(apperrors.CodeModelUnavailable, fmt.Sprintf("no known hidden state among outputs %v", model.OutputNames()), nil)
			return
		}
		c.model, c.binding, c.output = model, binding, output
		c.logger.Info("encoder loaded", "ids", binding.IDs, "mask", binding.Mask, "typeIds", binding.TypeIDs, "output", output)
	})
	if c.loadErr != nil {
		return nil, c.loadErr
	}
	return c.model, nil
}

// clsVector takes the hidden state at sequence position 0 from a [1,N,H] or
// [1,H] tensor.
func (c *Client) clsVector(out Output) ([]float32, error) {
	var hidden int64
	switch len(out.Shape) {
	case 3:
		hidden = out.Shape[2]
	case 2:
		hidden = out.Shape[1]
	default:
		return nil, apperrors.Wrap(apperrors.CodeDecode, fmt.Sprintf("unexpected output rank %d", len(out.Shape)), nil)
	}
	if hidden != int64(c.cfg.Dimensions) || int64(len(out.Data)) < hidden {
		return nil, apperrors.Wrap(apperrors.CodeDecode, fmt.Sprintf("output shape %v does not match %d dimensions", out.Shape, c.cfg.Dimensions), nil)
	}
	vector := make([]float32, hidden)
	copy(vector, out.Data[:hidden])
	return vector, nil
}

func widen(values []int32) []int64 {
	out := make([]int64, len(values))
	for i, v := range values {
		out[i] = int64(v)
	}
	return out
}
