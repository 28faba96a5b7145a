package main

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildELF assembles a minimal, syntactically valid little-endian ELF64
// file with a single PT_LOAD segment, mirroring the kernel-side loader's
// own synthetic test fixtures.
func buildELF(t *testing.T, etype, machine uint16) []byte {
	t.Helper()

	const ehdrSize = 64
	const phdrSize = 56

	buf := make([]byte, ehdrSize+phdrSize)
	buf[0], buf[1], buf[2], buf[3] = 0x7F, 'E', 'L', 'F'
	buf[4] = 2 // ELFCLASS64
	buf[5] = 1 // ELFDATA2LSB
	buf[6] = 1 // EI_VERSION

	le := binary.LittleEndian
	le.PutUint16(buf[16:18], etype)
	le.PutUint16(buf[18:20], machine)
	le.PutUint32(buf[20:24], 1)
	le.PutUint64(buf[24:32], 0x401000) // e_entry
	le.PutUint64(buf[32:40], ehdrSize) // e_phoff
	le.PutUint16(buf[54:56], phdrSize) // e_phentsize
	le.PutUint16(buf[56:58], 1)        // e_phnum

	p := buf[ehdrSize:]
	const ptLoad = 1
	const pfR, pfX = 0x4, 0x1
	le.PutUint32(p[0:4], ptLoad)
	le.PutUint32(p[4:8], pfR|pfX)
	le.PutUint64(p[16:24], 0x401000) // vaddr
	le.PutUint64(p[32:40], 0x10)     // filesz
	le.PutUint64(p[40:48], 0x10)     // memsz

	return buf
}

func TestValidateELFAcceptsExecutable(t *testing.T) {
	const etExec, emX8664 = 2, 62
	data := buildELF(t, etExec, emX8664)

	info, err := validateELF(data)
	require.NoError(t, err)
	assert.Equal(t, 1, info.loadSegments)
	assert.Equal(t, uint64(0x401000), info.entry)
}

func TestValidateELFAcceptsPIE(t *testing.T) {
	const etDyn, emX8664 = 3, 62
	data := buildELF(t, etDyn, emX8664)

	_, err := validateELF(data)
	require.NoError(t, err)
}

func TestValidateELFRejectsBadMagic(t *testing.T) {
	const etExec, emX8664 = 2, 62
	data := buildELF(t, etExec, emX8664)
	data[0] = 0x00

	_, err := validateELF(data)
	assert.Error(t, err)
}

func TestValidateELFRejectsWrongMachine(t *testing.T) {
	const etExec, emARM = 2, 40
	data := buildELF(t, etExec, emARM)

	_, err := validateELF(data)
	assert.ErrorContains(t, err, "x86_64")
}

func TestValidateELFRejectsWrongType(t *testing.T) {
	const etRel, emX8664 = 1, 62
	data := buildELF(t, etRel, emX8664)

	_, err := validateELF(data)
	assert.Error(t, err)
}

func TestValidateELFRejectsTruncated(t *testing.T) {
	_, err := validateELF([]byte{0x7F, 'E', 'L', 'F'})
	assert.Error(t, err)
}
