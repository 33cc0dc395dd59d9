package native

import (
	"runtime"
	"sync"
	"unsafe"

	"github.com/tphakala/sherpa-go/internal/errors"
)

var (
	// ErrNullHandle is returned by NewHandle when the create call produced nil.
	ErrNullHandle = errors.NewStd("native: create returned a null handle")
	// ErrClosed is returned by Use after the handle was closed.
	ErrClosed = errors.NewStd("native: handle is closed")
)

// Handle owns one opaque engine resource and destroys it exactly once.
//
// Compute calls go through Use, which holds a shared lock, so any number of
// them may run at the same time. Whether that is safe for a given resource is
// the engine's promise; Handle only guarantees that Close waits for every
// in-flight Use and that the destroy function runs once.
type Handle struct {
	kind    string
	destroy func(unsafe.Pointer)

	mu  sync.RWMutex
	ptr unsafe.Pointer

	once sync.Once
}

// NewHandle wraps ptr. A nil ptr is a construction failure and yields
// ErrNullHandle; destroy is not called in that case. A finalizer closes the
// handle if the owner never does.
func NewHandle(kind string, ptr unsafe.Pointer, destroy func(unsafe.Pointer)) (*Handle, error) {
	if ptr == nil {
		return nil, ErrNullHandle
	}
	h := &Handle{kind: kind, ptr: ptr, destroy: destroy}
	runtime.SetFinalizer(h, (*Handle).Close)
	return h, nil
}

// Kind names the resource type, e.g. "offline_tts".
func (h *Handle) Kind() string {
	return h.kind
}

// Use runs fn with the raw pointer while holding the shared lock. fn must not
// keep the pointer after it returns.
func (h *Handle) Use(fn func(p unsafe.Pointer) error) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.ptr == nil {
		return ErrClosed
	}
	return fn(h.ptr)
}

// Closed reports whether Close has run.
func (h *Handle) Closed() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ptr == nil
}

// Close destroys the resource once, after waiting for in-flight Use calls.
// It is safe to call from several goroutines and always returns nil.
func (h *Handle) Close() error {
	h.once.Do(func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		ptr := h.ptr
		h.ptr = nil
		runtime.SetFinalizer(h, nil)
		h.destroy(ptr)
	})
	return nil
}
