// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

// Package elftest synthesizes small ELF files for tests.
package elftest

import (
	"bytes"
	"debug/elf"
	"encoding/binary"

	"bloattool/srcs/binarytool/elfcore"
)

// Symbol is a symbol to emit in the .symtab section. Symbols are defined in
// .text unless Undefined is set.
type Symbol struct {
	Name      string
	Value     uint64
	Size      uint64
	Type      elf.SymType
	Undefined bool
}

// Builder describes the file to produce.
type Builder struct {
	Class    elf.Class
	Order    binary.ByteOrder
	TextAddr uint64
	TextSize uint64
	Symbols  []Symbol
	NoSymtab bool
	TextName string
	// SymtabLink overrides the sh_link of .symtab when non-zero.
	SymtabLink uint32
}

const (
	textIndex = 1
	symIndex  = 2
	strIndex  = 3
	shstrIdx  = 4
)

type stringTable struct {
	buf bytes.Buffer
}

func newStringTable() *stringTable {
	t := &stringTable{}
	t.buf.WriteByte(0)
	return t
}

func (t *stringTable) add(s string) uint32 {
	off := uint32(t.buf.Len())
	t.buf.WriteString(s)
	t.buf.WriteByte(0)
	return off
}

// Build returns the bytes of the described ELF file.
func (b Builder) Build() []byte {
	if b.Order == nil {
		b.Order = binary.LittleEndian
	}
	if b.Class == elf.ELFCLASSNONE {
		b.Class = elf.ELFCLASS64
	}
	if len(b.TextName) == 0 {
		b.TextName = ".text"
	}
	is64 := b.Class == elf.ELFCLASS64

	shstr := newStringTable()
	textName := shstr.add(b.TextName)
	symName := shstr.add(".symtab")
	strName := shstr.add(".strtab")
	shstrName := shstr.add(".shstrtab")

	strtab := newStringTable()
	var symtab bytes.Buffer
	writeSym := func(s elfcore.ELF64Symbols) {
		if is64 {
			_ = binary.Write(&symtab, b.Order, s)
			return
		}
		_ = binary.Write(&symtab, b.Order, elfcore.ELF32Symbols{
			Name: s.Name, Value: uint32(s.Value), Size: uint32(s.Size),
			Info: s.Info, Other: s.Other, Shndx: s.Shndx,
		})
	}
	writeSym(elfcore.ELF64Symbols{})
	for _, s := range b.Symbols {
		shndx := uint16(textIndex)
		if s.Undefined {
			shndx = uint16(elf.SHN_UNDEF)
		}
		typ := s.Type
		if typ == elf.STT_NOTYPE {
			typ = elf.STT_FUNC
		}
		writeSym(elfcore.ELF64Symbols{
			Name:  strtab.add(s.Name),
			Info:  elf.ST_INFO(elf.STB_GLOBAL, typ),
			Shndx: shndx,
			Value: s.Value,
			Size:  s.Size,
		})
	}

	headerSize := uint64(binary.Size(elfcore.ELF32Header{}))
	shentsize := uint64(binary.Size(elfcore.ELF32SectionHeader{}))
	symentsize := uint64(binary.Size(elfcore.ELF32Symbols{}))
	if is64 {
		headerSize = uint64(binary.Size(elfcore.ELF64Header{}))
		shentsize = uint64(binary.Size(elfcore.ELF64SectionHeader{}))
		symentsize = uint64(binary.Size(elfcore.ELF64Symbols{}))
	}

	textOff := headerSize
	symOff := textOff + b.TextSize
	strOff := symOff + uint64(symtab.Len())
	shstrOff := strOff + uint64(strtab.buf.Len())
	shOff := shstrOff + uint64(shstr.buf.Len())

	sections := []elfcore.ELF64SectionHeader{
		{},
		{Name: textName, Type: uint32(elf.SHT_PROGBITS),
			Flags:          uint64(elf.SHF_ALLOC | elf.SHF_EXECINSTR),
			VirtualAddress: b.TextAddr, FileOffset: textOff, Size: b.TextSize, Align: 16},
		{Name: symName, Type: uint32(elf.SHT_SYMTAB), FileOffset: symOff,
			Size: uint64(symtab.Len()), LinkedIndex: strIndex, Info: 1, Align: 8,
			EntrySize: symentsize},
		{Name: strName, Type: uint32(elf.SHT_STRTAB), FileOffset: strOff,
			Size: uint64(strtab.buf.Len()), Align: 1},
		{Name: shstrName, Type: uint32(elf.SHT_STRTAB), FileOffset: shstrOff,
			Size: uint64(shstr.buf.Len()), Align: 1},
	}
	if b.SymtabLink != 0 {
		sections[symIndex].LinkedIndex = b.SymtabLink
	}
	if b.NoSymtab {
		sections[symIndex].Type = uint32(elf.SHT_PROGBITS)
	}

	var ident [16]byte
	copy(ident[:], elf.ELFMAG)
	ident[elf.EI_CLASS] = byte(b.Class)
	if b.Order == binary.BigEndian {
		ident[elf.EI_DATA] = byte(elf.ELFDATA2MSB)
	} else {
		ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	}
	ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)

	var out bytes.Buffer
	if is64 {
		_ = binary.Write(&out, b.Order, elfcore.ELF64Header{
			Ident: ident, Type: uint16(elf.ET_EXEC), Machine: uint16(elf.EM_X86_64),
			Version: uint32(elf.EV_CURRENT), SectionHeaderOffset: shOff,
			HeaderSize: uint16(headerSize), SectionHeaderEntrySize: uint16(shentsize),
			SectionHeaderEntries: uint16(len(sections)), SectionNamesTable: shstrIdx,
		})
	} else {
		_ = binary.Write(&out, b.Order, elfcore.ELF32Header{
			Ident: ident, Type: uint16(elf.ET_EXEC), Machine: uint16(elf.EM_386),
			Version: uint32(elf.EV_CURRENT), SectionHeaderOffset: uint32(shOff),
			HeaderSize: uint16(headerSize), SectionHeaderEntrySize: uint16(shentsize),
			SectionHeaderEntries: uint16(len(sections)), SectionNamesTable: shstrIdx,
		})
	}
	out.Write(make([]byte, b.TextSize))
	out.Write(symtab.Bytes())
	out.Write(strtab.buf.Bytes())
	out.Write(shstr.buf.Bytes())
	for _, s := range sections {
		if is64 {
			_ = binary.Write(&out, b.Order, s)
			continue
		}
		_ = binary.Write(&out, b.Order, elfcore.ELF32SectionHeader{
			Name: s.Name, Type: s.Type, Flags: uint32(s.Flags),
			VirtualAddress: uint32(s.VirtualAddress), FileOffset: uint32(s.FileOffset),
			Size: uint32(s.Size), LinkedIndex: s.LinkedIndex, Info: s.Info,
			Align: uint32(s.Align), EntrySize: uint32(s.EntrySize),
		})
	}

	return out.Bytes()
}
