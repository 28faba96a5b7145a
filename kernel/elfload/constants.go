package elfload

import "nyxkernel/kernel/mem"

// Layout constants for the single user address space this core ever builds.
// All four ranges are carried over from the original kernel this spec was
// distilled from, which documents them as fixed addresses rather than ones
// computed from the binary being loaded.
const (
	// PIEBase is the relocation base used when the loaded image is ET_DYN.
	PIEBase = 0x40_0000

	// MMapPoolBase/MMapPoolEnd bound the region sys_mmap bump-allocates
	// from. It is mapped in full at load time.
	MMapPoolBase = 0x480000
	MMapPoolEnd  = 0x500000

	// BrkBase is the canonical break address: brk(0) returns this until
	// the user program moves it. BrkMax is the coarse upper bound sys_brk
	// enforces; nothing is mapped all the way out to it at load time, only
	// BrkInitialSize worth of pages, with sys_brk extending the mapping as
	// the break actually moves.
	BrkBase        = 0x8000000
	BrkMax         = 0x1_0000_0000
	BrkInitialSize = 16 * mem.Kb

	// UserStackTop/UserStackSize bound the single user stack.
	UserStackTop  = 0x7FFF_FFFF_0000
	UserStackSize = 64 * mem.Kb
)
