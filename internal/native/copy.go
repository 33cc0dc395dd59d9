package native

import (
	"slices"
	"unsafe"
)

// GoString copies the NUL-terminated string at p into Go memory. A nil p
// yields "".
func GoString(p unsafe.Pointer) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(p, n)) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(p), n))
}

// CopyFloat32s copies n float32 values starting at p. The caller has already
// checked that n is not negative and p is not nil when n > 0.
func CopyFloat32s(p unsafe.Pointer, n int) []float32 {
	if n == 0 {
		return []float32{}
	}
	return slices.Clone(unsafe.Slice((*float32)(p), n))
}

// PointerAt reads the i-th element of a native array of pointers.
func PointerAt(base unsafe.Pointer, i int) unsafe.Pointer {
	return *(*unsafe.Pointer)(unsafe.Add(base, uintptr(i)*unsafe.Sizeof(base)))
}
