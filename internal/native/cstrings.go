package native

import (
	"slices"
	"unsafe"
)

// Allocator copies Go strings into NUL-terminated buffers owned by the native
// side and frees them again.
type Allocator interface {
	CString(s string) unsafe.Pointer
	Free(p unsafe.Pointer)
}

// CStrings is a set of marshaled strings scoped to one native call sequence.
// Every pointer handed out stays valid until Release. A CStrings is not safe
// for concurrent use; each call builds its own.
type CStrings struct {
	alloc    Allocator
	ptrs     []unsafe.Pointer
	released bool
}

// NewCStrings returns an empty set backed by alloc.
func NewCStrings(alloc Allocator) *CStrings {
	return &CStrings{alloc: alloc}
}

// String marshals s and returns a pointer valid until Release. An empty string
// still yields a valid pointer to a lone NUL byte.
func (c *CStrings) String(s string) unsafe.Pointer {
	if c.released {
		panic("native: CStrings used after Release")
	}
	p := c.alloc.CString(s)
	c.ptrs = append(c.ptrs, p)
	return p
}

// Optional is like String but returns nil for the empty string, which the
// engine reads as "unset".
func (c *CStrings) Optional(s string) unsafe.Pointer {
	if s == "" {
		return nil
	}
	return c.String(s)
}

// Len reports how many strings are currently held.
func (c *CStrings) Len() int {
	return len(c.ptrs)
}

// Release frees every held string in reverse allocation order. Calling it more
// than once is a no-op.
func (c *CStrings) Release() {
	if c.released {
		return
	}
	c.released = true
	for _, p := range slices.Backward(c.ptrs) {
		c.alloc.Free(p)
	}
	c.ptrs = nil
}

// WithCStrings runs fn with a fresh set and releases it after fn returns,
// including when fn panics.
func WithCStrings(alloc Allocator, fn func(cs *CStrings) error) error {
	cs := NewCStrings(alloc)
	defer cs.Release()
	return fn(cs)
}
