// Package elfload parses an in-memory ELF64 image and builds the ring-3
// address space for it: PT_LOAD segments, the mmap and brk pools, the user
// stack and auxiliary vector, and the final jump to ring 3.
package elfload

import (
	"nyxkernel/kernel"
	"nyxkernel/kernel/mem"
	"nyxkernel/kernel/mem/pmm"
	"nyxkernel/kernel/mem/vmm"
)

// Image describes a successfully loaded program: everything the syscall
// layer and the ring-3 transition need afterward.
type Image struct {
	EntryPoint  uintptr
	IsPIE       bool
	Base        uintptr
	PhdrAddr    uintptr
	PhEntrySize uint16
	PhNum       uint16
}

// Load validates data as an ELF64 image, maps its PT_LOAD segments, copies
// in their file contents, and eagerly reserves the mmap and brk pools in
// as. It does not build the user stack or transition to ring 3; see
// BuildUserStack and EnterUserMode.
func Load(data []byte, as vmm.AddressSpace) (Image, *kernel.Error) {
	h, err := parseEhdr(data)
	if err != nil {
		return Image{}, err
	}

	img := Image{
		IsPIE:       h.etype == etDyn,
		PhEntrySize: h.phentsize,
		PhNum:       h.phnum,
	}
	if img.IsPIE {
		img.Base = PIEBase
	}
	img.EntryPoint = img.Base + uintptr(h.entry)
	img.PhdrAddr = img.Base + uintptr(h.phoff)

	if err := forEachLoadSegment(data, h, func(p phdr64) *kernel.Error {
		return loadSegment(data, img.Base, p, as)
	}); err != nil {
		return Image{}, err
	}

	if err := as.MapRegion(MMapPoolBase, mem.Size(MMapPoolEnd-MMapPoolBase), vmm.FlagPresent|vmm.FlagWritable|vmm.FlagUser|vmm.FlagNoExecute); err != nil {
		return Image{}, err
	}
	if err := as.MapRegion(BrkBase, BrkInitialSize, vmm.FlagPresent|vmm.FlagWritable|vmm.FlagUser|vmm.FlagNoExecute); err != nil {
		return Image{}, err
	}

	return img, nil
}

// segmentFlags translates a PT_LOAD header's PF_* bits into this mapper's
// leaf flag model.
func segmentFlags(p phdr64) vmm.PageTableEntryFlag {
	flags := vmm.FlagPresent | vmm.FlagUser
	if p.flags&pfW != 0 {
		flags |= vmm.FlagWritable
	}
	if p.flags&pfX == 0 {
		flags |= vmm.FlagNoExecute
	}
	return flags
}

// loadSegment maps every page covered by p (skipping pages another segment
// already mapped), zeroes each freshly mapped page, then copies filesz
// bytes of file content in. memsz beyond filesz is BSS and is satisfied by
// the zero-fill every freshly allocated frame already gets.
func loadSegment(data []byte, base uintptr, p phdr64, as vmm.AddressSpace) *kernel.Error {
	segStart := base + uintptr(p.vaddr)
	segEnd := segStart + uintptr(p.memsz)

	pageStart := segStart &^ uintptr(mem.PageSize-1)
	pageEnd := (segEnd + uintptr(mem.PageSize) - 1) &^ uintptr(mem.PageSize-1)

	flags := segmentFlags(p)
	hhdm := vmm.HHDMOffset()

	for addr := pageStart; addr < pageEnd; addr += uintptr(mem.PageSize) {
		page := vmm.PageFromAddress(addr)
		if as.IsMapped(addr) {
			continue
		}

		frame, allocErr := pmm.AllocFrame()
		if allocErr != nil {
			return allocErr
		}
		if err := as.Map(page, frame, flags); err != nil {
			return err
		}
		kernel.Memset(hhdm+frame.Address(), 0, uintptr(mem.PageSize))
	}

	if p.filesz == 0 {
		return nil
	}

	return copySegmentContents(data, base, p, as, hhdm)
}

// copySegmentContents copies filesz bytes from the file into the segment's
// mapped frames a page at a time, since the destination frames are only
// reachable through the HHDM until this address space is activated.
func copySegmentContents(data []byte, base uintptr, p phdr64, as vmm.AddressSpace, hhdm uintptr) *kernel.Error {
	remaining := p.filesz
	fileOff := p.offset
	segAddr := base + uintptr(p.vaddr)

	for remaining > 0 {
		pageAddr := segAddr &^ uintptr(mem.PageSize-1)
		inPageOff := segAddr - pageAddr
		chunk := uint64(mem.PageSize) - uint64(inPageOff)
		if chunk > remaining {
			chunk = remaining
		}

		frame, err := as.Translate(pageAddr)
		if err != nil {
			return err
		}

		dst := hhdm + frame.Address() + inPageOff
		kernel.Memcopy(
			uintptr(unsafeSliceAddr(data))+uintptr(fileOff),
			dst,
			uintptr(chunk),
		)

		remaining -= chunk
		fileOff += chunk
		segAddr += uintptr(chunk)
	}

	return nil
}
