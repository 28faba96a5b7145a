package gdt

import "testing"

func TestPackDescriptorSetsAccessAndFlagsBytes(t *testing.T) {
	entry := packDescriptor(accessPresent|accessDescType|accessExecutable|accessRW, flagsLongMode)

	access := uint8(entry >> 40)
	flags := uint8(entry >> 52)

	if access != accessPresent|accessDescType|accessExecutable|accessRW {
		t.Fatalf("expected access byte %#x; got %#x", accessPresent|accessDescType|accessExecutable|accessRW, access)
	}
	if flags&flagsLongMode == 0 {
		t.Fatal("expected long-mode flag bit to be set")
	}
}

func TestPackTSSDescriptorRoundTripsBaseAndLimit(t *testing.T) {
	const base = uintptr(0x1234_5678_9ABC)
	const limit = uint32(0x67)

	lo, hi := packTSSDescriptor(base, limit)

	gotLimit := uint32(lo&0xFFFF) | (uint32(lo>>48)&0xF)<<16
	if gotLimit != limit {
		t.Fatalf("expected limit %#x; got %#x", limit, gotLimit)
	}

	gotBaseLow24 := uintptr(lo>>16) & 0xFFFFFF
	gotBaseHigh8 := uintptr(lo>>56) & 0xFF
	gotBaseTop32 := uintptr(hi) << 32
	gotBase := gotBaseTop32 | (gotBaseHigh8 << 24) | gotBaseLow24

	if gotBase != base {
		t.Fatalf("expected base %#x; got %#x", base, gotBase)
	}
}

func TestSelectorLayoutMatchesSyscallStarContract(t *testing.T) {
	// syscall loads CS=KernelCodeSelector, SS=KernelCodeSelector+8.
	if KernelDataSelector != KernelCodeSelector+8 {
		t.Fatalf("expected kernel data selector to be kernel code + 8")
	}

	// sysret loads CS=userBase+16, SS=userBase+8, where userBase is
	// UserDataSelector-8.
	userBase := UserDataSelector - 8
	if UserCodeSelector != userBase+16 {
		t.Fatalf("expected user code selector to be userBase+16")
	}
	if UserDataSelector != userBase+8 {
		t.Fatalf("expected user data selector to be userBase+8")
	}
}
