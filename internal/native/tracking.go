package native

import (
	"sync"
	"unsafe"
)

// TrackingAllocator is an Allocator backed by Go memory that records every
// allocation. Tests use it to prove that marshaled strings are freed exactly
// once and never leak.
type TrackingAllocator struct {
	mu          sync.Mutex
	live        map[unsafe.Pointer][]byte
	allocated   int
	freed       int
	doubleFrees int
}

// NewTrackingAllocator returns an empty tracker.
func NewTrackingAllocator() *TrackingAllocator {
	return &TrackingAllocator{live: make(map[unsafe.Pointer][]byte)}
}

// CString copies s plus a NUL terminator and keeps the buffer reachable until Free.
func (a *TrackingAllocator) CString(s string) unsafe.Pointer {
	buf := make([]byte, len(s)+1)
	copy(buf, s)
	p := unsafe.Pointer(&buf[0])

	a.mu.Lock()
	defer a.mu.Unlock()
	a.live[p] = buf
	a.allocated++
	return p
}

// Free releases p. Freeing an unknown or already freed pointer is counted as a
// double free.
func (a *TrackingAllocator) Free(p unsafe.Pointer) {
	a.mu.Lock()
	defer a.mu.Unlock()

	buf, ok := a.live[p]
	if !ok {
		a.doubleFrees++
		return
	}
	// poison all but the terminator so a read after free shows up in tests
	for i := range len(buf) - 1 {
		buf[i] = 0xFF
	}
	delete(a.live, p)
	a.freed++
}

// IsLive reports whether p was allocated and not yet freed.
func (a *TrackingAllocator) IsLive(p unsafe.Pointer) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.live[p]
	return ok
}

// Live returns the number of outstanding allocations.
func (a *TrackingAllocator) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.live)
}

// Allocated returns the total number of CString calls.
func (a *TrackingAllocator) Allocated() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.allocated
}

// Freed returns the number of successful frees.
func (a *TrackingAllocator) Freed() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.freed
}

// DoubleFrees returns the number of frees of unknown pointers.
func (a *TrackingAllocator) DoubleFrees() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.doubleFrees
}
