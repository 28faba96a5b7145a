// Package gdt builds the kernel's Global Descriptor Table and Task State
// Segment. The selector layout is fixed by the SYSCALL/SYSRET MSR contract
// (kernel/syscall programs STAR from these exact offsets), so the five
// segment descriptors and the TSS descriptor must stay in this order.
package gdt

import (
	"unsafe"

	"nyxkernel/kernel/cpu"
)

// Segment selectors. SYSCALL/SYSRET derive CS/SS from STAR using fixed
// offsets from a base selector, which is why user data sits before user
// code: syscall loads CS=KernelCodeSelector, SS=KernelCodeSelector+8;
// sysret loads CS=userBase+16, SS=userBase+8, where userBase is
// UserDataSelector-8.
const (
	NullSelector       = 0x00
	KernelCodeSelector = 0x08
	KernelDataSelector = 0x10
	UserDataSelector   = 0x18
	UserCodeSelector   = 0x20
	TSSSelector        = 0x28

	userRPL = 3
)

// UserCodeSelectorRPL3 and UserDataSelectorRPL3 are the selectors actually
// loaded into CS/SS for ring-3 code: the table index with the requested
// privilege level ORed into the low two bits.
const (
	UserCodeSelectorRPL3 = UserCodeSelector | userRPL
	UserDataSelectorRPL3 = UserDataSelector | userRPL
)

// descriptor flag bits, assembled into the access byte and flags nibble of
// an 8-byte GDT entry.
const (
	accessPresent     = 1 << 7
	accessDPL3        = 3 << 5
	accessDescType    = 1 << 4 // 1 = code/data, 0 = system (TSS)
	accessExecutable  = 1 << 3
	accessRW          = 1 << 1 // readable (code) / writable (data)
	flagsLongMode     = 1 << 1
	flagsGranularity4K = 1 << 3
)

const entryCount = 7 // null, kcode, kdata, udata, ucode, tss-lo, tss-hi

var (
	table [entryCount]uint64
	tss   TaskStateSegment
)

// ist0Stack backs interrupt-stack-table index 0, used for the double-fault
// handler so a fault that occurs on a corrupted kernel stack still has a
// known-good stack to run on. 20 KiB matches the original kernel's
// DOUBLE_FAULT_IST_INDEX stack allocation.
const ist0Size = 4096 * 5

var ist0Stack [ist0Size]byte

func packDescriptor(access, flags uint8) uint64 {
	// A flat 64-bit code/data descriptor: base and limit are ignored by the
	// CPU in long mode (except for the L/D bits and DPL), so only the
	// access byte and flags nibble carry meaning.
	return uint64(access)<<40 | uint64(flags)<<52
}

func packTSSDescriptor(base uintptr, limit uint32) (lo, hi uint64) {
	const tssAccess = accessPresent | 0x9 // present, type=0x9 (64-bit TSS, available)

	lo = uint64(limit&0xFFFF) |
		(uint64(base)&0xFFFFFF)<<16 |
		uint64(tssAccess)<<40 |
		(uint64(limit>>16)&0xF)<<48 |
		(uint64(base)>>24&0xFF)<<56

	hi = uint64(base) >> 32

	return lo, hi
}

// Init builds the GDT and TSS, loads them with LGDT/LTR, and reloads every
// segment register to the new selectors.
func Init() {
	tss.setIST(0, uintptr(unsafe.Pointer(&ist0Stack))+ist0Size)

	table[0] = 0
	table[1] = packDescriptor(accessPresent|accessDescType|accessExecutable|accessRW, flagsLongMode)
	table[2] = packDescriptor(accessPresent|accessDescType|accessRW, flagsGranularity4K)
	table[3] = packDescriptor(accessPresent|accessDescType|accessRW|accessDPL3, flagsGranularity4K)
	table[4] = packDescriptor(accessPresent|accessDescType|accessExecutable|accessRW|accessDPL3, flagsLongMode)

	tssBase := uintptr(unsafe.Pointer(&tss))
	tssLimit := uint32(sizeofTSS - 1)
	table[5], table[6] = packTSSDescriptor(tssBase, tssLimit)

	gdtr := cpu.PackDescriptorTablePointer(uint16(len(table)*8-1), uint64(uintptr(unsafe.Pointer(&table))))

	cpu.LGDT(uintptr(unsafe.Pointer(&gdtr)))
	cpu.LTR(TSSSelector)
}

// SetKernelStack updates TSS.RSP0, the stack the CPU switches to on a ring
// 3 -> ring 0 privilege transition (interrupt, exception, or syscall).
func SetKernelStack(rsp0 uintptr) {
	tss.setRSP(0, rsp0)
}
