// Package idt builds the kernel's Interrupt Descriptor Table and dispatches
// the handful of vectors the kernel cares about: the fault vectors needed to
// diagnose a broken mapping or a bad ring-3 transition, and the two PIC IRQ
// vectors (timer, keyboard) the legacy 8259 pair is remapped to.
package idt

// Regs is a snapshot of the general-purpose registers at the moment a
// vector fired, in the order the common trampoline (isr_amd64.s) pushes
// them onto the stack. The struct handed to a handler is those pushed
// values themselves, and the trampoline pops the registers back from them,
// so a handler that returns normally (timer, keyboard) and modifies a field
// changes the register value the interrupted code resumes with.
type Regs struct {
	RAX uint64
	RBX uint64
	RCX uint64
	RDX uint64
	RSI uint64
	RDI uint64
	RBP uint64
	R8  uint64
	R9  uint64
	R10 uint64
	R11 uint64
	R12 uint64
	R13 uint64
	R14 uint64
	R15 uint64
}

// Frame is the exception frame the CPU pushes automatically before
// transferring control to a gate.
type Frame struct {
	RIP    uint64
	CS     uint64
	RFlags uint64
	RSP    uint64
	SS     uint64
}
