package sherpa

import (
	"github.com/tphakala/sherpa-go/internal/errors"
	"github.com/tphakala/sherpa-go/internal/native"
)

const componentName = "sherpa"

// Error kinds surfaced by this package. Match them with errors.Is.
var (
	ErrConstructionFailure = errors.NewStd("sherpa: engine returned a null handle")
	ErrNullResult          = errors.NewStd("sherpa: engine returned a null result")
	ErrNegativeCount       = errors.NewStd("sherpa: result has a negative element count")
	ErrNullBuffer          = errors.NewStd("sherpa: result has a null buffer for a positive count")
	ErrNullStream          = errors.NewStd("sherpa: engine returned a null stream")
	ErrEmptySamples        = errors.NewStd("sherpa: no input samples")
	ErrInvalidSampleRate   = errors.NewStd("sherpa: sample rate must be positive")
	ErrEmptyText           = errors.NewStd("sherpa: text is empty")
	ErrNoModel             = errors.NewStd("sherpa: no model backend selected")
	ErrInvalidTopK         = errors.NewStd("sherpa: top_k exceeds the maximum event count")
	ErrClosed              = native.ErrClosed
)

// errorKind returns a short label for metrics.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrConstructionFailure):
		return "construction_failure"
	case errors.Is(err, ErrNullResult):
		return "null_result"
	case errors.Is(err, ErrNegativeCount):
		return "negative_count"
	case errors.Is(err, ErrNullBuffer):
		return "null_buffer"
	case errors.Is(err, ErrNullStream):
		return "null_stream"
	case errors.Is(err, ErrClosed):
		return "closed"
	case errors.Is(err, ErrEmptySamples), errors.Is(err, ErrInvalidSampleRate),
		errors.Is(err, ErrEmptyText), errors.Is(err, ErrNoModel),
		errors.Is(err, ErrInvalidTopK):
		return "validation"
	default:
		return "other"
	}
}

func categoryFor(err error) errors.ErrorCategory {
	switch errorKind(err) {
	case "construction_failure":
		return errors.CategoryModelInit
	case "validation":
		return errors.CategoryValidation
	case "closed":
		return errors.CategoryState
	default:
		return errors.CategoryNativeResult
	}
}

// wrap attaches component, category and operation context to a sentinel.
func wrap(err error, operation, backend string) error {
	b := errors.New(err).
		Component(componentName).
		Category(categoryFor(err)).
		Context("operation", operation)
	if backend != "" {
		b = b.Context("backend", backend)
	}
	return b.Build()
}
