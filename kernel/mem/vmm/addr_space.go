package vmm

import (
	"nyxkernel/kernel"
	"nyxkernel/kernel/cpu"
	"nyxkernel/kernel/mem"
	"nyxkernel/kernel/mem/pmm"
)

// AddressSpace is a handle to a top-level page table (PML4). The mapper
// otherwise always operates on "the currently active" table via CR3; this
// type exists so the ELF loader can build a new user address space, wire it
// up, and only then make it active with a single CR3 load.
type AddressSpace struct {
	pml4Frame pmm.Frame
}

// activePDTFn/switchPDTFn are mocked by tests, which run as an ordinary
// hosted process and have no CR3 to read or load.
var (
	activePDTFn = cpu.ActivePDT
	switchPDTFn = cpu.SwitchPDT
)

// NewAddressSpace allocates and zeroes a fresh PML4 frame.
func NewAddressSpace() (AddressSpace, *kernel.Error) {
	frame, err := frameAllocatorFn()
	if err != nil {
		return AddressSpace{}, err
	}

	kernel.Memset(hhdmOffset+frame.Address(), 0, uintptr(mem.PageSize))
	return AddressSpace{pml4Frame: frame}, nil
}

// CurrentAddressSpace wraps whatever table CR3 currently points to.
func CurrentAddressSpace() AddressSpace {
	return AddressSpace{pml4Frame: pmm.FrameFromAddress(activePDTFn())}
}

// CloneKernelHalf copies the upper-half (kernel) PML4 entries from the
// currently active table into this address space, so a freshly built user
// address space still has the kernel mapped once it becomes active.
func (as AddressSpace) CloneKernelHalf() {
	src := tableView(activePDTFn())
	dst := tableView(as.pml4Frame.Address())
	for i := 256; i < 512; i++ {
		dst[i] = src[i]
	}
}

// Activate loads this address space's PML4 into CR3.
func (as AddressSpace) Activate() {
	switchPDTFn(as.pml4Frame.Address())
}

// PML4PhysAddr returns the physical address of the top-level table, mostly
// useful for diagnostics.
func (as AddressSpace) PML4PhysAddr() uintptr {
	return as.pml4Frame.Address()
}
