// Package syscall implements the SYSCALL/SYSRET substrate: MSR
// programming, the assembly entry trampoline, and the dispatcher for the
// Linux x86_64 syscall subset a musl static-PIE "hello world" class program
// needs.
package syscall

import (
	"unsafe"

	"nyxkernel/kernel/cpu"
	"nyxkernel/kernel/gdt"
)

// Model-specific registers SYSCALL/SYSRET and arch_prctl depend on.
const (
	msrEFER   = 0xC000_0080
	msrSTAR   = 0xC000_0081
	msrLSTAR  = 0xC000_0082
	msrSFMASK = 0xC000_0084
	msrFSBase = 0xC000_0100
	msrGSBase = 0xC000_0101

	eferSCE = 1 << 0

	// sfmaskClear clears IF and TF on syscall entry, matching the spec:
	// interrupts stay off for the duration of the trampoline and the
	// dispatcher never single-steps.
	sfmaskClear = 1<<9 | 1<<8
)

// stackSize backs the single fixed kernel stack the trampoline switches to
// on entry; there is only ever one in-flight syscall since the core has no
// concurrency.
const stackSize = 4096 * 4

var (
	kstack    [stackSize]byte
	stackTop  uintptr
	randSeed  uint64

	savedUserRSP    uintptr
	savedUserRIP    uintptr
	savedUserRFlags uintptr

	fsBase uint64
	gsBase uint64
)

// sysEntry is the SYSCALL entry point; its implementation is in
// entry_amd64.s. LSTAR points at it directly — the CPU jumps here with no
// stack switch of its own, which is why the first thing it does is save
// the user RSP before touching the stack at all.
func sysEntry()

// Init programs the SYSCALL/SYSRET MSRs and seeds the getrandom LCG. Must
// run after gdt.Init (STAR's selector arithmetic depends on the GDT layout)
// and before any ring-3 code can execute a syscall instruction.
func Init() {
	stackTop = uintptr(unsafe.Pointer(&kstack[0])) + stackSize
	randSeed = 0x2545_F491_4F6C_DD1D

	efer := cpu.RDMSR(msrEFER)
	cpu.WRMSR(msrEFER, efer|eferSCE)

	// STAR[47:32] is the CS syscall loads (SS = CS+8); STAR[63:48] is the
	// base sysret derives its selectors from (CS = base+16, SS = base+8).
	userBase := uint64(gdt.UserDataSelector - 8)
	star := uint64(gdt.KernelCodeSelector)<<32 | userBase<<48
	cpu.WRMSR(msrSTAR, star)

	cpu.WRMSR(msrLSTAR, uint64(entryAddr()))
	cpu.WRMSR(msrSFMASK, sfmaskClear)
}

func entryAddr() uintptr {
	return funcAddr(sysEntry)
}
