package vmm

import (
	"nyxkernel/kernel"
	"nyxkernel/kernel/mem/pmm"
)

// Translate returns the physical frame backing virtAddr in the currently
// active address space, or ErrInvalidMapping if any level of the walk lacks
// a present entry.
func Translate(virtAddr uintptr) (pmm.Frame, *kernel.Error) {
	return CurrentAddressSpace().Translate(virtAddr)
}

// IsMapped is a convenience wrapper around Translate that callers use to
// decide whether to skip an already-mapped shared page (e.g. ELF segments
// whose ranges overlap within a single page).
func IsMapped(virtAddr uintptr) bool {
	_, err := Translate(virtAddr)
	return err == nil
}

// Translate returns the physical frame backing virtAddr in this address
// space.
func (as AddressSpace) Translate(virtAddr uintptr) (pmm.Frame, *kernel.Error) {
	var (
		err   *kernel.Error
		frame pmm.Frame
	)

	walkRoot(as.pml4Frame.Address(), virtAddr, func(level int, pte *pageTableEntry) bool {
		if !pte.HasFlags(FlagPresent) {
			err = ErrInvalidMapping
			return false
		}

		if level == pageLevels-1 {
			frame = pte.Frame()
		}

		return true
	})

	return frame, err
}

// IsMapped reports whether virtAddr has a present mapping in this address
// space.
func (as AddressSpace) IsMapped(virtAddr uintptr) bool {
	_, err := as.Translate(virtAddr)
	return err == nil
}
