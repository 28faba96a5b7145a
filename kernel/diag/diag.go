// Package diag decodes the bytes around a faulting RIP and prints the
// instruction that crashed, the same "where did we actually die" diagnostic
// a native kernel gets for free from objdump/addr2line on a core dump.
package diag

import (
	"unsafe"

	"nyxkernel/kernel/kfmt"

	"golang.org/x/arch/x86/x86asm"
)

// windowBefore/windowAfter bound how much of the instruction stream around
// rip gets decoded: enough to catch the faulting instruction itself plus a
// couple that follow, without risking the window running off a mapped page.
const (
	windowBefore = 16
	windowAfter  = 32
)

type line struct {
	pc      uint64
	text    string
	isFault bool
}

// decodeLines walks window (the bytes starting at the virtual address
// start) as a stream of amd64 instructions up to rip+windowAfter, stopping
// early if the decoder desyncs. Kept free of any I/O so it can run under a
// hosted test.
func decodeLines(window []byte, start, rip uint64) []line {
	var lines []line

	offset := 0
	pc := start
	for offset < len(window) {
		inst, err := x86asm.Decode(window[offset:], 64)
		if err != nil || inst.Len == 0 {
			lines = append(lines, line{pc: pc, text: "<undecodable>"})
			return lines
		}

		lines = append(lines, line{pc: pc, text: x86asm.GNUSyntax(inst, pc, nil), isFault: pc == rip})

		offset += inst.Len
		pc += uint64(inst.Len)
		if pc > rip+windowAfter {
			return lines
		}
	}

	return lines
}

// DumpAt decodes and prints the instructions starting windowBefore bytes
// before rip. The bytes are read directly at rip through the page tables
// active when the fault fired, with no HHDM translation: for a fault in
// kernel code rip is a kernel-half address, and for a fault raised by ring 3
// code it is the user-space address of the faulting instruction.
func DumpAt(rip uint64) {
	if rip == 0 {
		return
	}

	start := rip
	if start > windowBefore {
		start -= windowBefore
	}

	window := readWindow(uintptr(start), windowBefore+windowAfter)
	if window == nil {
		kfmt.Printf("diag: rip=%x not readable\n", rip)
		return
	}

	kfmt.Printf("diag: decoding near rip=%x\n", rip)
	for _, l := range decodeLines(window, start, rip) {
		marker := ""
		if l.isFault {
			marker = " <-- fault"
		}
		kfmt.Printf("  %x: %s%s\n", l.pc, l.text, marker)
	}
}

func readWindow(addr uintptr, count int) []byte {
	if addr == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), count)
}
