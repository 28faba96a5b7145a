package elfload

import (
	"testing"

	"nyxkernel/kernel/mem/vmm"
)

func TestSegmentFlagsReadExecute(t *testing.T) {
	flags := segmentFlags(phdr64{flags: pfR | pfX})
	if !flags.HasFlags(vmm.FlagPresent | vmm.FlagUser) {
		t.Fatal("expected present+user on every segment")
	}
	if flags.HasFlags(vmm.FlagWritable) {
		t.Fatal("read-execute segment must not be writable")
	}
	if flags.HasFlags(vmm.FlagNoExecute) {
		t.Fatal("executable segment must not carry NX")
	}
}

func TestSegmentFlagsReadWriteData(t *testing.T) {
	flags := segmentFlags(phdr64{flags: pfR | pfW})
	if !flags.HasFlags(vmm.FlagWritable) {
		t.Fatal("expected writable flag for a W segment")
	}
	if !flags.HasFlags(vmm.FlagNoExecute) {
		t.Fatal("expected NX on a non-executable segment")
	}
}
