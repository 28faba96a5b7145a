package idt

import "unsafe"

// dispatch is called by the common trampoline in isr_amd64.s once it has
// saved every general-purpose register and built the Regs/Frame layout on
// the interrupt stack. It is declared with a plain stack-argument signature
// so the hand-written CALL in assembly doesn't need to reason about the
// register-based internal ABI.
func dispatch(vector, errCode uint64, regsPtr, framePtr uintptr) {
	regs := (*Regs)(unsafe.Pointer(regsPtr))
	frame := (*Frame)(unsafe.Pointer(framePtr))

	handlers[uint8(vector)](uint8(vector), errCode, frame, regs)
}
