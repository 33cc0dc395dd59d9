// Package native holds the memory and ownership primitives shared by the
// bindings: scoped C string sets, copies out of native buffers and handles
// that are destroyed exactly once.
//
// Nothing in this package uses cgo. Native memory is reached through the
// Allocator interface and raw unsafe.Pointer values so the ownership rules can
// be tested without the engine library.
package native
