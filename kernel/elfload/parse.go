package elfload

import (
	"encoding/binary"

	"nyxkernel/kernel"
)

var (
	ErrBadMagic    = &kernel.Error{Module: "elfload", Message: "not an ELF64 little-endian image"}
	ErrWrongMachine = &kernel.Error{Module: "elfload", Message: "image is not built for x86_64"}
	ErrWrongType   = &kernel.Error{Module: "elfload", Message: "image type must be ET_EXEC or ET_DYN"}
	ErrTruncated   = &kernel.Error{Module: "elfload", Message: "image is shorter than its own headers claim"}
)

func parseEhdr(data []byte) (ehdr64, *kernel.Error) {
	var h ehdr64
	if len(data) < ehdr64Size {
		return h, ErrTruncated
	}

	h.identMagic = [4]byte{data[0], data[1], data[2], data[3]}
	h.identClass = data[4]
	h.identData = data[5]
	h.identVersion = data[6]
	h.identOSABI = data[7]

	if h.identMagic != [4]byte{elfMagic0, elfMagic1, elfMagic2, elfMagic3} {
		return h, ErrBadMagic
	}
	if h.identClass != elfClass64 || h.identData != elfData2LSB {
		return h, ErrBadMagic
	}

	le := binary.LittleEndian
	h.etype = le.Uint16(data[16:18])
	h.machine = le.Uint16(data[18:20])
	h.version = le.Uint32(data[20:24])
	h.entry = le.Uint64(data[24:32])
	h.phoff = le.Uint64(data[32:40])
	h.shoff = le.Uint64(data[40:48])
	h.flags = le.Uint32(data[48:52])
	h.ehsize = le.Uint16(data[52:54])
	h.phentsize = le.Uint16(data[54:56])
	h.phnum = le.Uint16(data[56:58])
	h.shentsize = le.Uint16(data[58:60])
	h.shnum = le.Uint16(data[60:62])
	h.shstrndx = le.Uint16(data[62:64])

	if h.machine != emX86_64 {
		return h, ErrWrongMachine
	}
	if h.etype != etExec && h.etype != etDyn {
		return h, ErrWrongType
	}

	return h, nil
}

func parsePhdr(data []byte, off uint64) (phdr64, *kernel.Error) {
	var p phdr64
	if off+phdr64Size > uint64(len(data)) {
		return p, ErrTruncated
	}

	b := data[off : off+phdr64Size]
	le := binary.LittleEndian
	p.ptype = le.Uint32(b[0:4])
	p.flags = le.Uint32(b[4:8])
	p.offset = le.Uint64(b[8:16])
	p.vaddr = le.Uint64(b[16:24])
	p.paddr = le.Uint64(b[24:32])
	p.filesz = le.Uint64(b[32:40])
	p.memsz = le.Uint64(b[40:48])
	p.align = le.Uint64(b[48:56])

	return p, nil
}

// forEachLoadSegment decodes and visits every PT_LOAD program header in
// file order. visit returning a non-nil error stops the walk.
func forEachLoadSegment(data []byte, h ehdr64, visit func(phdr64) *kernel.Error) *kernel.Error {
	for i := uint16(0); i < h.phnum; i++ {
		off := h.phoff + uint64(i)*uint64(h.phentsize)
		p, err := parsePhdr(data, off)
		if err != nil {
			return err
		}
		if p.ptype != ptLoad {
			continue
		}
		if err := visit(p); err != nil {
			return err
		}
	}
	return nil
}
