package elfload

import "unsafe"

// unsafeSliceAddr returns the address of a byte slice's backing array. data
// is always non-empty at every call site (guarded by filesz == 0 checks
// upstream).
func unsafeSliceAddr(data []byte) uintptr {
	return uintptr(unsafe.Pointer(&data[0]))
}
