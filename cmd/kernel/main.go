package main

import (
	"nyxkernel/kernel"
	"nyxkernel/kernel/boot"
)

// bootInfoPtr is set by the rt0 assembly (owned by the bootloader, out of
// scope for this tree) before jumping to main, pointing at the BootInfo
// value it constructed. It is a package-level variable rather than an
// argument threaded in from elsewhere for the same reason the teacher's own
// rt0 trampoline uses one: it stops the compiler from inlining the call to
// Kmain and optimizing the real kernel code away entirely.
var bootInfoPtr *boot.BootInfo

// main is the trampoline the rt0 code jumps to after setting up the GDT and
// a minimal g0 struct that lets Go code run on the small stack the
// bootloader allocated. It never returns; if it does, the rt0 code halts
// the CPU.
func main() {
	kernel.Kmain(bootInfoPtr)
}
