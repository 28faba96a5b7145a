// Package cpu exposes the handful of privileged x86_64 instructions the rest
// of the kernel needs. Every exported function below except IsIntel is
// declared without a body; its implementation lives in cpu_amd64.s. This mirrors the way the
// teacher kernel keeps Go free of inline assembly: a bodiless Go declaration
// gives the rest of the tree a normal, type-checked call site while the
// actual instruction sequence is hand-written Plan 9 assembly.
package cpu

var (
	cpuidFn = ID
)

// EnableInterrupts enables interrupt handling.
func EnableInterrupts()

// DisableInterrupts disables interrupt handling.
func DisableInterrupts()

// Halt stops instruction execution.
func Halt()

// FlushTLBEntry flushes a TLB entry for a particular virtual address.
func FlushTLBEntry(virtAddr uintptr)

// SwitchPDT sets the root page table directory to point to the specified
// physical address and flushes the TLB.
func SwitchPDT(pdtPhysAddr uintptr)

// ActivePDT returns the physical address of the currently active page table.
func ActivePDT() uintptr

// ReadCR2 returns the value stored in the CR2 register.
func ReadCR2() uint64

// ID returns information about the CPU and its features. It
// is implemented as a CPUID instruction with EAX=leaf and
// returns the values in EAX, EBX, ECX and EDX.
func ID(leaf uint32) (uint32, uint32, uint32, uint32)

// IsIntel returns true if the code is running on an Intel processor.
func IsIntel() bool {
	_, ebx, ecx, edx := cpuidFn(0)
	return ebx == 0x756e6547 && // "Genu"
		edx == 0x49656e69 && // "ineI"
		ecx == 0x6c65746e // "ntel"
}

// OutB writes a byte to the given I/O port.
func OutB(port uint16, value uint8)

// InB reads a byte from the given I/O port.
func InB(port uint16) uint8

// OutW writes a word to the given I/O port.
func OutW(port uint16, value uint16)

// InW reads a word from the given I/O port.
func InW(port uint16) uint16

// RDMSR reads the model-specific register numbered id and returns its value
// as edx:eax packed into a single uint64.
func RDMSR(id uint32) uint64

// WRMSR writes value to the model-specific register numbered id.
func WRMSR(id uint32, value uint64)

// LGDT loads the GDT descriptor pointed to by gdtrAddr (the address of a
// packed limit:base pseudo-descriptor) and reloads every segment register.
func LGDT(gdtrAddr uintptr)

// LIDT loads the IDT descriptor pointed to by idtrAddr.
func LIDT(idtrAddr uintptr)

// LTR loads the Task Register with the given GDT selector.
func LTR(selector uint16)

// IOWait performs a small delay by writing to an unused diagnostic port,
// giving slow legacy devices (PIC, PIT, keyboard controller) time to settle
// between successive out instructions.
func IOWait()
