package packing

import (
	"context"
	"errors"

	apperrors "github.com/yanqian/packwise/pkg/errors"
	"github.com/yanqian/packwise/pkg/metrics"
)

// FailureKind classifies why a generation tier could not produce a result.
type FailureKind string

const (
	FailureNone             FailureKind = ""
	FailureTransport        FailureKind = "transport"
	FailureDecode           FailureKind = "decode"
	FailureModelUnavailable FailureKind = "model_unavailable"
	FailureEmptyResult      FailureKind = "empty_result"
	FailureCancelled        FailureKind = "cancelled"
)

// Outcome is the typed result of a single generation tier.
type Outcome struct {
	Categories []Category
	Failure    FailureKind
	Err        error
	Usage      *metrics.TokenUsage
}

// OK reports whether the tier produced a usable list.
func (o Outcome) OK() bool {
	return o.Failure == FailureNone && len(o.Categories) > 0
}

func succeeded(categories []Category) Outcome {
	if len(categories) == 0 {
		return failed(apperrors.Wrap(apperrors.CodeEmptyResult, "no categories produced", nil))
	}
	return Outcome{Categories: categories}
}

func failed(err error) Outcome {
	return Outcome{Failure: kindOf(err), Err: err}
}

// kindOf maps error codes raised by adapters onto the failure taxonomy.
func kindOf(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, context.Canceled):
		return FailureCancelled
	}
	switch apperrors.CodeOf(err) {
	case apperrors.CodeDecode:
		return FailureDecode
	case apperrors.CodeModelUnavailable:
		return FailureModelUnavailable
	case apperrors.CodeEmptyResult:
		return FailureEmptyResult
	default:
		return FailureTransport
	}
}
