package diag

import "testing"

// nop; nop; ud2 — three single-byte-ish instructions with a well-known
// encoding, cheap to hand-assemble without a real toolchain.
var sampleCode = []byte{0x90, 0x90, 0x0F, 0x0B}

func TestDecodeLinesWalksInstructionStream(t *testing.T) {
	lines := decodeLines(sampleCode, 0x1000, 0x1000)

	if len(lines) != 3 {
		t.Fatalf("expected 3 decoded instructions; got %d: %+v", len(lines), lines)
	}
	if lines[0].pc != 0x1000 || lines[1].pc != 0x1001 || lines[2].pc != 0x1002 {
		t.Fatalf("unexpected pc sequence: %+v", lines)
	}
}

func TestDecodeLinesMarksFaultingInstruction(t *testing.T) {
	lines := decodeLines(sampleCode, 0x1000, 0x1001)

	if !lines[1].isFault {
		t.Fatal("expected the instruction at rip to be marked as the fault site")
	}
	if lines[0].isFault || lines[2].isFault {
		t.Fatal("expected only the rip instruction to be marked")
	}
}

func TestDecodeLinesStopsOnUndecodableBytes(t *testing.T) {
	garbage := []byte{0x0F, 0xFF, 0xFF, 0xFF}
	lines := decodeLines(garbage, 0x2000, 0x2000)

	if len(lines) != 1 || lines[0].text != "<undecodable>" {
		t.Fatalf("expected a single undecodable marker; got %+v", lines)
	}
}

func TestDumpAtHandlesZeroRIP(t *testing.T) {
	DumpAt(0)
}
