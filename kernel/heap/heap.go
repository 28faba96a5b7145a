// Package heap implements the kernel's own dynamic memory: a first-fit,
// address-sorted free list over a virtual region starting at Base, eagerly
// backed by real frames at Init time and grown one GrowSize chunk at a time
// whenever Alloc can't find a block large enough — there is no fault-driven
// growth, only this explicit on-exhaustion mapping.
package heap

import (
	"unsafe"

	"nyxkernel/kernel"
	"nyxkernel/kernel/mem"
	"nyxkernel/kernel/mem/vmm"
	ksync "nyxkernel/kernel/sync"
)

// Base fixes the kernel heap's virtual range; Size is the size of the
// region Init eagerly maps, and GrowSize is how much more gets mapped each
// time Alloc exhausts the free list — both 100 KiB, matching the original
// kernel's heap allocator sizing.
const (
	Base     = 0xFFFF_9000_0000_0000
	Size     = 100 * mem.Kb
	GrowSize = 100 * mem.Kb
)

// minSplitSize is the smallest remainder worth carving a new free block out
// of; a split leaving less than this is handed out whole instead, trading a
// little internal fragmentation for not polluting the free list with
// blocks too small to ever satisfy a real request.
const minSplitSize = 32

var (
	ErrOutOfMemory = &kernel.Error{Module: "heap", Message: "no free block large enough to satisfy the allocation"}
	errNotInited   = &kernel.Error{Module: "heap", Message: "heap used before Init"}

	lock ksync.Spinlock
	head *freeBlock

	// growEnd tracks the first unmapped address past the heap's current
	// high-water mark, so grow() knows where to extend it next.
	growEnd uintptr

	// mapRegionFn is the usual mockable indirection around vmm.MapRegion.
	mapRegionFn = vmm.MapRegion
)

// freeBlock is written in-place at the start of every free region; size
// covers the whole block, header included.
type freeBlock struct {
	size uintptr
	next *freeBlock
}

// allocHeader sits immediately before every pointer Alloc returns; size is
// the usable payload size, not counting the header itself.
type allocHeader struct {
	size uintptr
}

const allocHeaderSize = unsafe.Sizeof(allocHeader{})

// Init maps the heap's virtual region and seeds the free list with one
// block spanning it. Must run after vmm.Init.
func Init() *kernel.Error {
	if err := mapRegionFn(Base, Size, vmm.FlagPresent|vmm.FlagWritable); err != nil {
		return err
	}

	head = (*freeBlock)(unsafe.Pointer(uintptr(Base)))
	head.size = uintptr(Size)
	head.next = nil
	growEnd = uintptr(Base) + uintptr(Size)
	return nil
}

func align8(n uintptr) uintptr {
	return (n + 7) &^ 7
}

// Alloc reserves a block of at least size usable bytes and returns a
// pointer to it. The returned address is always 8-byte aligned. If no free
// block is large enough, the heap is grown by one GrowSize chunk and the
// search is retried once before giving up.
func Alloc(size mem.Size) (uintptr, *kernel.Error) {
	if head == nil {
		return 0, errNotInited
	}

	needed := align8(allocHeaderSize + uintptr(size))

	lock.Acquire()
	defer lock.Release()

	if ptr, ok := findAndTake(needed); ok {
		return ptr, nil
	}

	if err := grow(); err != nil {
		return 0, err
	}

	if ptr, ok := findAndTake(needed); ok {
		return ptr, nil
	}

	return 0, ErrOutOfMemory
}

// findAndTake searches the free list for a block of at least needed bytes,
// removes (or splits) it, and returns the usable pointer. Called with lock
// already held.
func findAndTake(needed uintptr) (uintptr, bool) {
	var prev *freeBlock
	for blk := head; blk != nil; blk = blk.next {
		if blk.size < needed {
			prev = blk
			continue
		}

		remainder := blk.size - needed
		blkAddr := uintptr(unsafe.Pointer(blk))

		if remainder >= minSplitSize {
			newBlock := (*freeBlock)(unsafe.Pointer(blkAddr + needed))
			newBlock.size = remainder
			newBlock.next = blk.next
			unlink(prev, blk, newBlock)
		} else {
			needed = blk.size
			unlink(prev, blk, blk.next)
		}

		hdr := (*allocHeader)(unsafe.Pointer(blkAddr))
		hdr.size = needed - allocHeaderSize
		return blkAddr + allocHeaderSize, true
	}

	return 0, false
}

// grow maps one more GrowSize chunk immediately past the heap's current
// high-water mark and folds it into the free list, coalescing with the
// final free block when it happens to end exactly at growEnd. Called with
// lock already held.
func grow() *kernel.Error {
	if err := mapRegionFn(growEnd, GrowSize, vmm.FlagPresent|vmm.FlagWritable); err != nil {
		return err
	}

	newAddr := growEnd
	growEnd += uintptr(GrowSize)
	insertSorted(newAddr, uintptr(GrowSize))
	return nil
}

func unlink(prev, old, replacement *freeBlock) {
	if prev == nil {
		head = replacement
		return
	}
	prev.next = replacement
}

// Free returns the block backing ptr (as previously returned by Alloc) to
// the free list, coalescing with the physically adjacent free block on
// either side when one exists.
func Free(ptr uintptr) {
	hdr := (*allocHeader)(unsafe.Pointer(ptr - allocHeaderSize))
	blockAddr := ptr - allocHeaderSize
	blockSize := allocHeaderSize + hdr.size

	lock.Acquire()
	defer lock.Release()

	insertSorted(blockAddr, blockSize)
}

// insertSorted walks the address-ordered free list to find blockAddr's
// place, links it in, and merges it with either neighbor that turns out to
// be physically contiguous.
func insertSorted(blockAddr, blockSize uintptr) {
	newBlock := (*freeBlock)(unsafe.Pointer(blockAddr))
	newBlock.size = blockSize

	var prev *freeBlock
	cur := head
	for cur != nil && uintptr(unsafe.Pointer(cur)) < blockAddr {
		prev = cur
		cur = cur.next
	}

	newBlock.next = cur
	if prev == nil {
		head = newBlock
	} else {
		prev.next = newBlock
	}

	if cur != nil && blockAddr+blockSize == uintptr(unsafe.Pointer(cur)) {
		newBlock.size += cur.size
		newBlock.next = cur.next
	}

	if prev != nil && uintptr(unsafe.Pointer(prev))+prev.size == blockAddr {
		prev.size += newBlock.size
		prev.next = newBlock.next
	}
}
