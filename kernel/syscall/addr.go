package syscall

import "reflect"

// funcAddr returns the entry address of a bodiless Go function implemented
// in assembly. Go has no "&funcName" operator for this, so reflection is
// the idiomatic way to recover a raw code pointer to hand to LSTAR.
func funcAddr(fn func()) uintptr {
	return reflect.ValueOf(fn).Pointer()
}
