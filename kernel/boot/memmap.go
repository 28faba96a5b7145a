package boot

import "unsafe"

// VisitMemoryMap walks the firmware memory map described by info, invoking
// visit once per entry. visit should return false to stop the walk early.
// Entries are read through the HHDM since the identity map the bootloader
// handed in is not relied upon once the kernel's own page tables are active.
func VisitMemoryMap(info *BootInfo, visit func(*FirmwareMemoryEntry) bool) {
	base := info.HHDMOffset + info.MemoryMapAddr
	stride := uintptr(info.MemoryMapEntryStride)
	for i := uint64(0); i < info.MemoryMapEntries; i++ {
		entry := (*FirmwareMemoryEntry)(unsafe.Pointer(base + uintptr(i)*stride))
		if !visit(entry) {
			return
		}
	}
}
