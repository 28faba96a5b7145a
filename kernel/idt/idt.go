package idt

import (
	"reflect"
	"unsafe"

	"nyxkernel/kernel/cpu"
	"nyxkernel/kernel/diag"
	"nyxkernel/kernel/gdt"
	"nyxkernel/kernel/kfmt"
)

// Vector numbers this kernel installs a gate for. Everything else in the
// 0-255 space is left as a present gate pointing at the default handler, so
// a stray interrupt halts with a diagnostic instead of triple-faulting.
const (
	VectorStackSegmentFault       = 12
	VectorGeneralProtectionFault  = 13
	VectorBreakpoint              = 3
	VectorDoubleFault             = 8
	VectorPageFault               = 14

	// IRQOffset is where the remapped master/slave 8259 pair starts
	// delivering hardware interrupts, matching kernel/pic's remap targets.
	IRQOffset      = 32
	VectorTimer    = IRQOffset + 0
	VectorKeyboard = IRQOffset + 1
)

const vectorCount = 256

// gate is a 64-bit-mode IDT gate descriptor (16 bytes): offset split across
// three fields, a fixed selector, an IST index, type/DPL/present flags, and
// a reserved trailing dword.
type gate [2]uint64

func packGate(handler uintptr, ist uint8) gate {
	const (
		typeInterruptGate = 0xE
		present           = 1 << 7
	)

	attrs := uint64(present) | uint64(typeInterruptGate)<<0

	lo := uint64(handler&0xFFFF) |
		uint64(gdt.KernelCodeSelector)<<16 |
		uint64(ist&0x7)<<32 |
		attrs<<40 |
		(uint64(handler>>16)&0xFFFF)<<48

	hi := uint64(handler) >> 32

	return gate{lo, hi}
}

var table [vectorCount]gate

// Handler is invoked once dispatch has located the Go-level handler for a
// vector. errCode is 0 for vectors the CPU does not push one for.
type Handler func(vector uint8, errCode uint64, frame *Frame, regs *Regs)

var handlers [vectorCount]Handler

// SetHandler installs fn as the handler for vector. kernel/pic calls this
// during its own Init to wire VectorTimer/VectorKeyboard; the fault vectors
// are wired by this package's init.
func SetHandler(vector uint8, fn Handler) {
	handlers[vector] = fn
}

func init() {
	for i := range handlers {
		handlers[i] = defaultHandler
	}
	handlers[VectorBreakpoint] = breakpointHandler
	handlers[VectorDoubleFault] = doubleFaultHandler
	handlers[VectorGeneralProtectionFault] = generalProtectionFaultHandler
	handlers[VectorStackSegmentFault] = stackSegmentFaultHandler
	handlers[VectorPageFault] = pageFaultHandler
}

// The entry points of the small trampolines in isr_amd64.s that push a
// vector number (and, where the CPU doesn't supply one, a placeholder error
// code) before jumping to the shared dispatcher. Each is a bodiless Go
// function purely so reflect can recover its code address below — none of
// them follow Go calling convention, and none of them are ever called
// directly from Go.
func stubBreakpoint()
func stubDoubleFault()
func stubGeneralProtectionFault()
func stubStackSegmentFault()
func stubPageFault()
func stubTimer()
func stubKeyboard()
func stubDefault()

func stubAddr(stub func()) uintptr {
	return reflect.ValueOf(stub).Pointer()
}

// Init builds the 256-entry gate table and loads it with LIDT. Must run
// after gdt.Init, since every gate's selector and (for double fault) IST
// index reference the GDT/TSS that Init built.
func Init() {
	defaultStubAddr := stubAddr(stubDefault)
	for i := range table {
		table[i] = packGate(defaultStubAddr, 0)
	}

	table[VectorBreakpoint] = packGate(stubAddr(stubBreakpoint), 0)
	table[VectorDoubleFault] = packGate(stubAddr(stubDoubleFault), 1)
	table[VectorGeneralProtectionFault] = packGate(stubAddr(stubGeneralProtectionFault), 0)
	table[VectorStackSegmentFault] = packGate(stubAddr(stubStackSegmentFault), 0)
	table[VectorPageFault] = packGate(stubAddr(stubPageFault), 0)
	table[VectorTimer] = packGate(stubAddr(stubTimer), 0)
	table[VectorKeyboard] = packGate(stubAddr(stubKeyboard), 0)

	idtr := cpu.PackDescriptorTablePointer(
		uint16(len(table)*16-1),
		uint64(uintptr(unsafe.Pointer(&table))),
	)
	cpu.LIDT(uintptr(unsafe.Pointer(&idtr)))
}

// defaultHandler backstops every vector this kernel never expects: all 249
// unhandled gates share a single trampoline (stubDefault), so the vector
// number it receives is always the sentinel 0xFF rather than the gate that
// actually fired, so it does not print one — identifying the real vector would require a distinct
// stub per gate, which nothing outside the 7 vectors above ever needs.
func defaultHandler(vector uint8, errCode uint64, frame *Frame, regs *Regs) {
	kfmt.Printf("unhandled interrupt: errCode=%x rip=%x\n", errCode, frame.RIP)
	cpu.Halt()
}

func breakpointHandler(vector uint8, errCode uint64, frame *Frame, regs *Regs) {
	kfmt.Printf("breakpoint at rip=%x\n", frame.RIP)
}

func doubleFaultHandler(vector uint8, errCode uint64, frame *Frame, regs *Regs) {
	kfmt.Printf("double fault: errCode=%x rip=%x\n", errCode, frame.RIP)
	diag.DumpAt(frame.RIP)
	for {
		cpu.Halt()
	}
}

func generalProtectionFaultHandler(vector uint8, errCode uint64, frame *Frame, regs *Regs) {
	kfmt.Printf("general protection fault: errCode=%x rip=%x\n", errCode, frame.RIP)
	diag.DumpAt(frame.RIP)
	cpu.Halt()
}

func stackSegmentFaultHandler(vector uint8, errCode uint64, frame *Frame, regs *Regs) {
	kfmt.Printf("stack segment fault: errCode=%x rip=%x\n", errCode, frame.RIP)
	diag.DumpAt(frame.RIP)
	cpu.Halt()
}

func pageFaultHandler(vector uint8, errCode uint64, frame *Frame, regs *Regs) {
	kfmt.Printf("page fault: errCode=%x faultAddr=%x rip=%x\n", errCode, cpu.ReadCR2(), frame.RIP)
	diag.DumpAt(frame.RIP)
	cpu.Halt()
}
