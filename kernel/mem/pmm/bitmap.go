package pmm

import (
	"math/bits"
	"reflect"
	"unsafe"

	"nyxkernel/kernel"
	"nyxkernel/kernel/boot"
	"nyxkernel/kernel/cpu"
	"nyxkernel/kernel/mem"
	ksync "nyxkernel/kernel/sync"
)

var (
	// ErrOutOfMemory is returned by AllocFrame when every tracked frame is
	// reserved.
	ErrOutOfMemory = &kernel.Error{Module: "pmm", Message: "no free physical frames"}

	// errNoBitmapRegion is a fail-stop error: the firmware map contained no
	// ConventionalMemory region large enough to hold the frame bitmap.
	errNoBitmapRegion = &kernel.Error{Module: "pmm", Message: "no conventional memory region large enough for the frame bitmap"}

	lock ksync.Spinlock

	// disableInterruptsFn/enableInterruptsFn are mocked by tests, which run
	// as an ordinary hosted process and cannot execute cli/sti.
	disableInterruptsFn = cpu.DisableInterrupts
	enableInterruptsFn  = cpu.EnableInterrupts

	totalFrames uint64
	bitmap      []uint64
	hhdmOffset  uintptr
)

// Init builds the frame bitmap described in spec §4.1: mark every frame
// used, free every ConventionalMemory frame, then re-mark the bitmap's own
// frames and frame 0 as used. info must outlive the kernel; it is read
// exactly once per field, with the memory map itself walked twice.
func Init(info *boot.BootInfo) *kernel.Error {
	hhdmOffset = info.HHDMOffset

	totalFrames = (uint64(info.MaxPhysicalAddress) + uint64(mem.PageSize) - 1) / uint64(mem.PageSize)
	bitmapWords := (totalFrames + 63) / 64
	bitmapBytes := mem.Size(bitmapWords * 8)

	bitmapPhysAddr, err := findBitmapRegion(info, bitmapBytes)
	if err != nil {
		return err
	}

	bitmap = *(*[]uint64)(unsafe.Pointer(&reflect.SliceHeader{
		Data: hhdmOffset + bitmapPhysAddr,
		Len:  int(bitmapWords),
		Cap:  int(bitmapWords),
	}))

	for i := range bitmap {
		bitmap[i] = ^uint64(0)
	}

	boot.VisitMemoryMap(info, func(entry *boot.FirmwareMemoryEntry) bool {
		if entry.Type != boot.ConventionalMemory {
			return true
		}

		startFrame := uint64(entry.PhysStart) / uint64(mem.PageSize)
		for f := startFrame; f < startFrame+entry.PageCount && f < totalFrames; f++ {
			clearBit(f)
		}

		return true
	})

	bitmapStartFrame := bitmapPhysAddr / uintptr(mem.PageSize)
	bitmapFrameCount := (uint64(bitmapBytes) + uint64(mem.PageSize) - 1) / uint64(mem.PageSize)
	for f := uint64(bitmapStartFrame); f < uint64(bitmapStartFrame)+bitmapFrameCount; f++ {
		setBit(f)
	}

	// Frame 0 is always reserved as a null-pointer trap.
	setBit(0)

	return nil
}

// findBitmapRegion scans the firmware memory map left to right and returns
// the physical start of the first ConventionalMemory region with a nonzero
// start and at least bitmapBytes of space.
func findBitmapRegion(info *boot.BootInfo, bitmapBytes mem.Size) (uintptr, *kernel.Error) {
	var (
		found   uintptr
		hasSpot bool
	)

	boot.VisitMemoryMap(info, func(entry *boot.FirmwareMemoryEntry) bool {
		if entry.Type != boot.ConventionalMemory || entry.PhysStart == 0 {
			return true
		}

		regionBytes := mem.Size(entry.PageCount) * mem.PageSize
		if regionBytes < bitmapBytes {
			return true
		}

		found = entry.PhysStart
		hasSpot = true
		return false
	})

	if !hasSpot {
		return 0, errNoBitmapRegion
	}

	return found, nil
}

func setBit(frame uint64) {
	bitmap[frame/64] |= 1 << (frame % 64)
}

func clearBit(frame uint64) {
	bitmap[frame/64] &^= 1 << (frame % 64)
}

func testBit(frame uint64) bool {
	return bitmap[frame/64]&(1<<(frame%64)) != 0
}

// AllocFrame reserves and returns the lowest-numbered free frame. The scan
// is a left-to-right word walk; within the first non-full word the
// least-significant zero bit is located with a trailing-zero count on the
// inverted word, matching spec §4.1's allocation algorithm exactly.
func AllocFrame() (Frame, *kernel.Error) {
	disableInterruptsFn()
	lock.Acquire()
	defer func() {
		lock.Release()
		enableInterruptsFn()
	}()

	for word := 0; word < len(bitmap); word++ {
		if bitmap[word] == ^uint64(0) {
			continue
		}

		bit := bits.TrailingZeros64(^bitmap[word])
		frameIdx := uint64(word)*64 + uint64(bit)
		if frameIdx >= totalFrames {
			return InvalidFrame, ErrOutOfMemory
		}

		bitmap[word] |= 1 << uint(bit)
		return Frame(frameIdx), nil
	}

	return InvalidFrame, ErrOutOfMemory
}

// FreeFrame clears the bit for frame, returning it to the pool. Freeing a
// frame that is already free is a caller logic error; this implementation
// is a no-op for it rather than faulting, since the allocator has no
// debug-build distinction at this layer.
func FreeFrame(frame Frame) {
	disableInterruptsFn()
	lock.Acquire()
	clearBit(uint64(frame))
	lock.Release()
	enableInterruptsFn()
}

// Stats reports the total and currently-free frame counts, for diagnostics.
func Stats() (total, free uint64) {
	disableInterruptsFn()
	lock.Acquire()
	total = totalFrames
	for f := uint64(0); f < totalFrames; f++ {
		if !testBit(f) {
			free++
		}
	}
	lock.Release()
	enableInterruptsFn()
	return total, free
}
