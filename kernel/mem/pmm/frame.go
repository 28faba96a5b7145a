// Package pmm implements the physical frame allocator: a bitmap over every
// 4 KiB frame of physical memory, bootstrapped from the firmware memory map
// handed off in boot.BootInfo.
package pmm

import (
	"math"

	"nyxkernel/kernel/mem"
)

// Frame describes a physical memory page index. Frame i corresponds to the
// physical address i*mem.PageSize.
type Frame uintptr

// InvalidFrame is returned by allocators that fail to reserve a frame.
const InvalidFrame = Frame(math.MaxUint64)

// Valid returns true if this is not the sentinel invalid frame.
func (f Frame) Valid() bool {
	return f != InvalidFrame
}

// Address returns the physical memory address for this frame.
func (f Frame) Address() uintptr {
	return uintptr(f) << mem.PageShift
}

// FrameFromAddress returns the frame that contains the given physical
// address.
func FrameFromAddress(physAddr uintptr) Frame {
	return Frame(physAddr >> mem.PageShift)
}
