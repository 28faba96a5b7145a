package vmm

import (
	"nyxkernel/kernel"
	"nyxkernel/kernel/mem"
	"nyxkernel/kernel/mem/pmm"
)

// Init wires the mapper to the HHDM offset published in BootInfo and the
// frame allocator built by C4. It must run after pmm.Init and before
// anything calls Map/Translate/Unmap.
func Init(hhdmOffset uintptr, allocFn FrameAllocatorFn) {
	SetHHDMOffset(hhdmOffset)
	SetFrameAllocator(allocFn)
}

// MapRegion maps size bytes (rounded up to a page multiple) starting at
// virtAddr, drawing one fresh zeroed frame per page from the frame
// allocator, with the given leaf flags. Used by the kernel heap to eagerly
// back a fixed virtual range, and by the ELF
// loader for the mmap/brk pools (which have no fault-driven paging).
func (as AddressSpace) MapRegion(virtAddr uintptr, size mem.Size, flags PageTableEntryFlag) *kernel.Error {
	pageCount := (size + mem.PageSize - 1) / mem.PageSize

	for i := mem.Size(0); i < pageCount; i++ {
		frame, err := frameAllocatorFn()
		if err != nil {
			return err
		}

		page := PageFromAddress(virtAddr + uintptr(i)*uintptr(mem.PageSize))
		if err := as.Map(page, frame, flags); err != nil {
			return err
		}

		kernel.Memset(hhdmOffset+frame.Address(), 0, uintptr(mem.PageSize))
	}

	return nil
}

// MapRegion maps size bytes in the currently active address space. See
// AddressSpace.MapRegion.
func MapRegion(virtAddr uintptr, size mem.Size, flags PageTableEntryFlag) *kernel.Error {
	return CurrentAddressSpace().MapRegion(virtAddr, size, flags)
}

// MapPhysicalRegion maps size bytes (rounded up) of physical memory starting
// at physAddr to virtAddr with the given flags, without drawing frames from
// the allocator — used for MMIO-style regions the bootloader already owns,
// like the pixel framebuffer.
func (as AddressSpace) MapPhysicalRegion(virtAddr, physAddr uintptr, size mem.Size, flags PageTableEntryFlag) *kernel.Error {
	pageCount := (size + mem.PageSize - 1) / mem.PageSize

	for i := mem.Size(0); i < pageCount; i++ {
		page := PageFromAddress(virtAddr + uintptr(i)*uintptr(mem.PageSize))
		frame := pmm.FrameFromAddress(physAddr + uintptr(i)*uintptr(mem.PageSize))
		if err := as.Map(page, frame, flags); err != nil {
			return err
		}
	}

	return nil
}

// MapPhysicalRegion maps a physical region in the currently active address
// space. See AddressSpace.MapPhysicalRegion.
func MapPhysicalRegion(virtAddr, physAddr uintptr, size mem.Size, flags PageTableEntryFlag) *kernel.Error {
	return CurrentAddressSpace().MapPhysicalRegion(virtAddr, physAddr, size, flags)
}
