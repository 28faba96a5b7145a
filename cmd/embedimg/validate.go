package main

import (
	"bytes"
	"debug/elf"
	"fmt"
)

// elfInfo summarizes the checks the kernel's own loader cares about: the
// type it will branch on (ET_EXEC vs ET_DYN), the entry point, and how many
// PT_LOAD segments it will have to map.
type elfInfo struct {
	typeName     string
	entry        uint64
	loadSegments int
}

// validateELF rejects anything the freestanding kernel/elfload loader could
// not load: not an ELF, not little-endian, not EM_X86_64, or neither
// ET_EXEC nor ET_DYN (musl static-PIE binaries are ET_DYN). This lifts
// chentry.go's chkELF checks into a pre-embed gate instead of a post-hoc
// header patch.
func validateELF(data []byte) (elfInfo, error) {
	f, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return elfInfo{}, fmt.Errorf("not a valid ELF file: %w", err)
	}
	defer f.Close()

	if f.Ident[elf.EI_DATA] != elf.ELFDATA2LSB {
		return elfInfo{}, fmt.Errorf("not little-endian")
	}
	if f.Machine != elf.EM_X86_64 {
		return elfInfo{}, fmt.Errorf("not an x86_64 binary: %s", f.Machine)
	}
	if f.Type != elf.ET_EXEC && f.Type != elf.ET_DYN {
		return elfInfo{}, fmt.Errorf("not an executable or position-independent binary: %s", f.Type)
	}

	loadSegments := 0
	for _, p := range f.Progs {
		if p.Type == elf.PT_LOAD {
			loadSegments++
		}
	}
	if loadSegments == 0 {
		return elfInfo{}, fmt.Errorf("no PT_LOAD segments to map")
	}

	return elfInfo{
		typeName:     f.Type.String(),
		entry:        f.Entry,
		loadSegments: loadSegments,
	}, nil
}
