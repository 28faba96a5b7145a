package elfload

import (
	"unsafe"

	"nyxkernel/kernel"
	"nyxkernel/kernel/mem"
	"nyxkernel/kernel/mem/vmm"
)

// Auxiliary vector keys this loader populates, matching the Linux x86_64
// auxv contract musl's static-PIE self-relocator expects.
const (
	atNull   = 0
	atPHDR   = 3
	atPHENT  = 4
	atPHNUM  = 5
	atPAGESZ = 6
	atBASE   = 7
	atEntry  = 9
	atRandom = 25
)

// stackReserve is the fixed-size region at the very top of the user stack
// that holds argc/argv/envp/auxv/random bytes, per the spec's "stack_top -
// 256, rounded to 16 bytes" construction.
const stackReserve = 256

type auxEntry struct {
	key uint64
	val uint64
}

// BuildUserStack maps the user stack and writes the initial System V
// AMD64 process stack layout (argc, argv, envp, auxv) at its top. It
// returns the RSP a newly started user program should begin execution
// with — pointing at the argc slot.
func BuildUserStack(as vmm.AddressSpace, img Image) (uintptr, *kernel.Error) {
	stackBottom := uintptr(UserStackTop) - uintptr(UserStackSize)
	if err := as.MapRegion(stackBottom, UserStackSize, vmm.FlagPresent|vmm.FlagWritable|vmm.FlagUser|vmm.FlagNoExecute); err != nil {
		return 0, err
	}

	hhdm := vmm.HHDMOffset()
	start := (uintptr(UserStackTop) - stackReserve) &^ 15

	randomAddr := start + 24 + 8*16 // past argc/argv0/envp0 and 8 auxv pairs

	entries := [8]auxEntry{
		{atPHDR, uint64(img.PhdrAddr)},
		{atPHENT, uint64(img.PhEntrySize)},
		{atPHNUM, uint64(img.PhNum)},
		{atPAGESZ, uint64(mem.PageSize)},
		{atBASE, 0},
		{atEntry, uint64(img.EntryPoint)},
		{atRandom, uint64(randomAddr)},
		{atNull, 0},
	}

	if err := writeU64(as, hhdm, start, 0); err != nil { // argc = 0
		return 0, err
	}
	if err := writeU64(as, hhdm, start+8, 0); err != nil { // argv[0] = NULL
		return 0, err
	}
	if err := writeU64(as, hhdm, start+16, 0); err != nil { // envp[0] = NULL
		return 0, err
	}

	auxvAddr := start + 24
	for i, e := range entries {
		off := auxvAddr + uintptr(i)*16
		if err := writeU64(as, hhdm, off, e.key); err != nil {
			return 0, err
		}
		if err := writeU64(as, hhdm, off+8, e.val); err != nil {
			return 0, err
		}
	}

	for i := uintptr(0); i < 16; i += 8 {
		if err := writeU64(as, hhdm, randomAddr+i, 0); err != nil {
			return 0, err
		}
	}

	return start, nil
}

// writeU64 writes v at the user virtual address addr, which must already
// be mapped in as. Used instead of a direct pointer write because the
// address space may not be active yet: the backing frame is only reachable
// through the HHDM until then.
func writeU64(as vmm.AddressSpace, hhdm uintptr, addr uintptr, v uint64) *kernel.Error {
	pageAddr := addr &^ uintptr(mem.PageSize-1)
	frame, err := as.Translate(pageAddr)
	if err != nil {
		return err
	}

	offset := addr - pageAddr
	*(*uint64)(unsafe.Pointer(hhdm + frame.Address() + offset)) = v
	return nil
}
