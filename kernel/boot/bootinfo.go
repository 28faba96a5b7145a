// Package boot describes the ABI contract between the bootloader and the
// kernel entry point. The bootloader (out of scope for this tree) loads and
// maps the kernel image, constructs the higher-half direct map, maps an
// initial kernel stack and jumps to Kmain with a pointer to a BootInfo value
// in the first integer argument register.
package boot

// PixelFormat describes the byte layout of a single framebuffer pixel.
type PixelFormat uint32

// The pixel formats a framebuffer descriptor may advertise.
const (
	PixelFormatRGB PixelFormat = iota
	PixelFormatBGR
	PixelFormatU8
)

// FramebufferInfo describes the pixel framebuffer handed off by the
// bootloader. Text is rendered by converting a logical 0xRRGGBB color into
// the pixel's native byte order and writing it at base[y*stride+x].
type FramebufferInfo struct {
	Base   uintptr
	Width  uint32
	Height uint32
	Stride uint32
	Format PixelFormat
}

// BootInfo is the fixed-layout structure the bootloader constructs before
// jumping to the kernel. Every field is read exactly once, during Kmain.
type BootInfo struct {
	// MemoryMapAddr is the physical address of the firmware memory map,
	// an array of FirmwareMemoryEntry values.
	MemoryMapAddr uintptr

	// MemoryMapEntries is the number of entries in the memory map.
	MemoryMapEntries uint64

	// MemoryMapEntryStride is the byte size of a single entry; it may
	// exceed sizeof(FirmwareMemoryEntry) and must be used instead of it
	// when iterating the array.
	MemoryMapEntryStride uint64

	// HHDMOffset is the virtual-to-physical offset of the higher-half
	// direct map: for any valid physical address P, HHDMOffset+P is a
	// virtual address that reads/writes the same byte.
	HHDMOffset uintptr

	// MaxPhysicalAddress is the highest physical address reported by
	// firmware, rounded up to a 2 MiB boundary.
	MaxPhysicalAddress uintptr

	// Framebuffer describes the pixel console, if one was set up.
	Framebuffer FramebufferInfo
}

// FirmwareMemoryType classifies a FirmwareMemoryEntry.
type FirmwareMemoryType uint32

// ConventionalMemory is the only FirmwareMemoryType the frame allocator ever
// treats as free RAM; every other region (reserved, ACPI, MMIO, loader code,
// the kernel image itself) is assumed used at init.
const ConventionalMemory FirmwareMemoryType = 7

// FirmwareMemoryEntry mirrors the firmware-supplied memory map entry layout.
// It is 40 bytes wide and must never be read through a Go struct literal
// cast that assumes a different size; callers index the map using
// BootInfo.MemoryMapEntryStride, not unsafe.Sizeof(FirmwareMemoryEntry{}).
type FirmwareMemoryEntry struct {
	Type      FirmwareMemoryType
	_         uint32
	PhysStart uintptr
	VirtStart uintptr
	PageCount uint64
	Attribute uint64
}

// HHDM converts a physical address to its direct-mapped virtual address
// under the given offset.
func HHDM(hhdmOffset uintptr, phys uintptr) uintptr {
	return hhdmOffset + phys
}
