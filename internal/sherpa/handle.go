package sherpa

import (
	"time"
	"unsafe"

	"github.com/tphakala/sherpa-go/internal/errors"
	"github.com/tphakala/sherpa-go/internal/logger"
	"github.com/tphakala/sherpa-go/internal/native"
)

// openHandle builds a config with a fresh string set, runs create, releases
// the strings once create has returned and wraps the result. A nil result is
// ErrConstructionFailure and nothing is retained. modelPath only feeds the
// anonymized error context.
func openHandle(alloc native.Allocator, kind, backend, modelPath string,
	create func(cs *native.CStrings) unsafe.Pointer, destroy func(unsafe.Pointer),
) (*native.Handle, error) {
	start := time.Now()
	operation := "create_" + kind

	ptr := createWithStrings(alloc, create)

	h, err := native.NewHandle(kind, ptr, func(p unsafe.Pointer) {
		destroy(p)
		observe("destroy_"+kind, time.Time{}, nil)
		GetLogger().Debug("native handle destroyed", logger.String("kind", kind))
	})
	if err != nil {
		err = errors.New(ErrConstructionFailure).
			Component(componentName).
			Category(errors.CategoryModelInit).
			ModelContext(backend, modelPath).
			Timing(operation, time.Since(start)).
			Build()
		observe(operation, start, err)
		GetLogger().Warn("native handle construction failed",
			logger.String("kind", kind),
			logger.String("backend", backend),
			logger.Error(err))
		return nil, err
	}

	observe(operation, start, nil)
	GetLogger().Info("native handle created",
		logger.String("kind", kind),
		logger.String("backend", backend),
		logger.Duration("elapsed", time.Since(start)))
	return h, nil
}

// createWithStrings runs create with a string set that is released only after
// create has returned.
func createWithStrings(alloc native.Allocator, create func(cs *native.CStrings) unsafe.Pointer) unsafe.Pointer {
	cs := native.NewCStrings(alloc)
	defer cs.Release()
	return create(cs)
}

// compute runs fn under the handle's shared lock and records the outcome.
func compute(h *native.Handle, operation, backend string, fn func(p unsafe.Pointer) error) error {
	start := time.Now()
	err := h.Use(fn)
	if err != nil {
		err = wrap(err, operation, backend)
		GetLogger().Debug("compute failed",
			logger.String("operation", operation),
			logger.String("backend", backend),
			logger.Error(err))
	} else {
		GetLogger().Debug("compute finished",
			logger.String("operation", operation),
			logger.Duration("elapsed", time.Since(start)))
	}
	observe(operation, start, err)
	return err
}

var zeroTime time.Time

func validateSamples(sampleRate int, samples []float32) error {
	if len(samples) == 0 {
		return ErrEmptySamples
	}
	if sampleRate <= 0 {
		return ErrInvalidSampleRate
	}
	return nil
}
