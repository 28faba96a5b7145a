package vmm

import (
	"nyxkernel/kernel"
	"nyxkernel/kernel/cpu"
	"nyxkernel/kernel/mem"
	"nyxkernel/kernel/mem/pmm"
)

// FrameAllocatorFn allocates a single physical frame, used to materialize
// missing intermediate page tables.
type FrameAllocatorFn func() (pmm.Frame, *kernel.Error)

var (
	// frameAllocatorFn is set once by SetFrameAllocator, after the PFA has
	// been initialized. Every Map call that needs a fresh intermediate
	// table frame goes through this indirection so tests can mock it.
	frameAllocatorFn FrameAllocatorFn

	// flushTLBEntryFn allows tests to intercept TLB invalidation, which
	// would otherwise fault outside ring 0.
	flushTLBEntryFn = cpu.FlushTLBEntry
)

// SetFrameAllocator installs the allocator Map uses for intermediate page
// tables. Called once during C5 init, after C4 (the PFA) is up.
func SetFrameAllocator(fn FrameAllocatorFn) {
	frameAllocatorFn = fn
}

// Map establishes a mapping from page to frame in the currently active
// address space. See AddressSpace.Map for the full semantics.
func Map(page Page, frame pmm.Frame, flags PageTableEntryFlag) *kernel.Error {
	return CurrentAddressSpace().Map(page, frame, flags)
}

// Unmap removes the mapping for page in the currently active address space.
func Unmap(page Page) (pmm.Frame, *kernel.Error) {
	return CurrentAddressSpace().Unmap(page)
}

// Map establishes a mapping from page to frame in this address space with
// the given leaf flags, allocating and zeroing any missing intermediate
// table along the way. Re-mapping an already-present page returns
// ErrAlreadyMapped; the caller (the ELF loader, for segments that share a
// page) is expected to check for this and skip.
func (as AddressSpace) Map(page Page, frame pmm.Frame, flags PageTableEntryFlag) *kernel.Error {
	var err *kernel.Error

	walkRoot(as.pml4Frame.Address(), page.Address(), func(level int, pte *pageTableEntry) bool {
		if level == pageLevels-1 {
			if pte.HasFlags(FlagPresent) {
				err = ErrAlreadyMapped
				return false
			}

			*pte = 0
			pte.SetFrame(frame)
			pte.SetFlags(FlagPresent | flags)
			if as.isActive() {
				flushTLBEntryFn(page.Address())
			}
			return true
		}

		if pte.HasFlags(FlagPresent) {
			// Widen intermediate permissions if a user-accessible leaf is
			// being added under a table that was created kernel-only.
			if flags.HasFlags(FlagUser) {
				pte.SetFlags(FlagUser)
			}
			if flags.HasFlags(FlagWritable) {
				pte.SetFlags(FlagWritable)
			}
			return true
		}

		newTableFrame, allocErr := frameAllocatorFn()
		if allocErr != nil {
			err = allocErr
			return false
		}

		*pte = 0
		pte.SetFrame(newTableFrame)
		pte.SetFlags(FlagPresent | FlagWritable)
		if flags.HasFlags(FlagUser) {
			pte.SetFlags(FlagUser)
		}

		kernel.Memset(hhdmOffset+newTableFrame.Address(), 0, uintptr(mem.PageSize))
		return true
	})

	return err
}

// Unmap clears the leaf present bit for page, returning the frame that was
// mapped there, or ErrInvalidMapping if the page was not mapped.
func (as AddressSpace) Unmap(page Page) (pmm.Frame, *kernel.Error) {
	var (
		err   *kernel.Error
		frame pmm.Frame
	)

	walkRoot(as.pml4Frame.Address(), page.Address(), func(level int, pte *pageTableEntry) bool {
		if level == pageLevels-1 {
			if !pte.HasFlags(FlagPresent) {
				err = ErrInvalidMapping
				return false
			}
			frame = pte.Frame()
			pte.ClearFlags(FlagPresent)
			if as.isActive() {
				flushTLBEntryFn(page.Address())
			}
			return true
		}

		if !pte.HasFlags(FlagPresent) {
			err = ErrInvalidMapping
			return false
		}

		return true
	})

	return frame, err
}

func (as AddressSpace) isActive() bool {
	return as.pml4Frame.Address() == activePDTFn()
}
