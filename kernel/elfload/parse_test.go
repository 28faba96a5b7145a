package elfload

import (
	"encoding/binary"
	"testing"

	"nyxkernel/kernel"
)

// buildEhdr assembles a minimal, syntactically valid ELF64 header plus a
// single PT_LOAD program header immediately following it, returning the raw
// bytes along with the header offsets used.
func buildEhdr(t *testing.T, etype uint16, machine uint16) []byte {
	t.Helper()

	buf := make([]byte, ehdr64Size+phdr64Size)
	buf[0], buf[1], buf[2], buf[3] = elfMagic0, elfMagic1, elfMagic2, elfMagic3
	buf[4] = elfClass64
	buf[5] = elfData2LSB
	buf[6] = 1 // EI_VERSION

	le := binary.LittleEndian
	le.PutUint16(buf[16:18], etype)
	le.PutUint16(buf[18:20], machine)
	le.PutUint32(buf[20:24], 1)
	le.PutUint64(buf[24:32], 0x1000)       // e_entry
	le.PutUint64(buf[32:40], ehdr64Size)   // e_phoff
	le.PutUint16(buf[54:56], phdr64Size)   // e_phentsize
	le.PutUint16(buf[56:58], 1)            // e_phnum

	p := buf[ehdr64Size:]
	le.PutUint32(p[0:4], ptLoad)
	le.PutUint32(p[4:8], pfR|pfX)
	le.PutUint64(p[16:24], 0x1000) // vaddr
	le.PutUint64(p[32:40], 0x10)   // filesz
	le.PutUint64(p[40:48], 0x20)   // memsz

	return buf
}

func TestParseEhdrAcceptsValidExecutable(t *testing.T) {
	buf := buildEhdr(t, etExec, emX86_64)

	h, err := parseEhdr(buf)
	if err != nil {
		t.Fatalf("parseEhdr: %v", err)
	}
	if h.etype != etExec {
		t.Fatalf("expected etExec; got %d", h.etype)
	}
	if h.entry != 0x1000 {
		t.Fatalf("expected entry 0x1000; got %#x", h.entry)
	}
}

func TestParseEhdrRejectsBadMagic(t *testing.T) {
	buf := buildEhdr(t, etExec, emX86_64)
	buf[0] = 0x00

	if _, err := parseEhdr(buf); err != ErrBadMagic {
		t.Fatalf("expected ErrBadMagic; got %v", err)
	}
}

func TestParseEhdrRejectsWrongMachine(t *testing.T) {
	buf := buildEhdr(t, etExec, 0x03) // EM_386

	if _, err := parseEhdr(buf); err != ErrWrongMachine {
		t.Fatalf("expected ErrWrongMachine; got %v", err)
	}
}

func TestParseEhdrRejectsWrongType(t *testing.T) {
	buf := buildEhdr(t, 1 /* ET_REL */, emX86_64)

	if _, err := parseEhdr(buf); err != ErrWrongType {
		t.Fatalf("expected ErrWrongType; got %v", err)
	}
}

func TestParseEhdrRejectsTruncated(t *testing.T) {
	if _, err := parseEhdr(make([]byte, 10)); err != ErrTruncated {
		t.Fatalf("expected ErrTruncated; got %v", err)
	}
}

func TestParseEhdrAcceptsDynamic(t *testing.T) {
	buf := buildEhdr(t, etDyn, emX86_64)

	h, err := parseEhdr(buf)
	if err != nil {
		t.Fatalf("parseEhdr: %v", err)
	}
	if h.etype != etDyn {
		t.Fatalf("expected etDyn; got %d", h.etype)
	}
}

func TestForEachLoadSegmentVisitsOnlyPTLoad(t *testing.T) {
	buf := buildEhdr(t, etExec, emX86_64)
	h, err := parseEhdr(buf)
	if err != nil {
		t.Fatalf("parseEhdr: %v", err)
	}

	var visited []phdr64
	if err := forEachLoadSegment(buf, h, func(p phdr64) *kernel.Error {
		visited = append(visited, p)
		return nil
	}); err != nil {
		t.Fatalf("forEachLoadSegment: %v", err)
	}

	if len(visited) != 1 {
		t.Fatalf("expected 1 PT_LOAD segment; got %d", len(visited))
	}
	if visited[0].vaddr != 0x1000 || visited[0].filesz != 0x10 || visited[0].memsz != 0x20 {
		t.Fatalf("unexpected segment fields: %+v", visited[0])
	}
}
