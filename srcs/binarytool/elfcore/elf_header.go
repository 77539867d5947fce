// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package elfcore

import (
	"bytes"
	"debug/elf"
	"encoding/binary"

	"bloattool/srcs/binarytool/symbols"
)

const identSize = 16

// ELF64Header is the on-disk header of a 64-bit file.
type ELF64Header struct {
	Ident                  [identSize]byte
	Type                   uint16
	Machine                uint16
	Version                uint32
	EntryPoint             uint64
	ProgramHeaderOffset    uint64
	SectionHeaderOffset    uint64
	Flags                  uint32
	HeaderSize             uint16
	ProgramHeaderEntrySize uint16
	ProgramHeaderEntries   uint16
	SectionHeaderEntrySize uint16
	SectionHeaderEntries   uint16
	SectionNamesTable      uint16
}

// ELF32Header is the on-disk header of a 32-bit file.
type ELF32Header struct {
	Ident                  [identSize]byte
	Type                   uint16
	Machine                uint16
	Version                uint32
	EntryPoint             uint32
	ProgramHeaderOffset    uint32
	SectionHeaderOffset    uint32
	Flags                  uint32
	HeaderSize             uint16
	ProgramHeaderEntrySize uint16
	ProgramHeaderEntries   uint16
	SectionHeaderEntrySize uint16
	SectionHeaderEntries   uint16
	SectionNamesTable      uint16
}

// ELFHeader holds the fields of the header needed to walk the file,
// independently of its class.
type ELFHeader struct {
	Type                   elf.Type
	Machine                elf.Machine
	SectionHeaderOffset    uint64
	SectionHeaderEntrySize uint16
	SectionHeaderEntries   uint16
	SectionNamesTable      uint16
}

// ParseElfHeader decodes the identification bytes and the header.
//
// It returns an error if any, otherwise it returns nil.
func (elfFile *ELFFile) ParseElfHeader() error {

	if len(elfFile.Raw) < identSize {
		return symbols.Truncated(elfFile.Name, "elf identification")
	}
	if !IsELF(elfFile.Raw) {
		return symbols.NewError(symbols.ErrUnsupportedFormat, elfFile.Name, nil)
	}

	elfFile.Class = elf.Class(elfFile.Raw[elf.EI_CLASS])
	switch elf.Data(elfFile.Raw[elf.EI_DATA]) {
	case elf.ELFDATA2LSB:
		elfFile.Endianness = binary.LittleEndian
	case elf.ELFDATA2MSB:
		elfFile.Endianness = binary.BigEndian
	default:
		return symbols.Invalid(elfFile.Name, "invalid elf data encoding: %d",
			elfFile.Raw[elf.EI_DATA])
	}

	data := bytes.NewReader(elfFile.Raw)
	switch elfFile.Class {
	case elf.ELFCLASS64:
		var h ELF64Header
		if err := binary.Read(data, elfFile.Endianness, &h); err != nil {
			return symbols.Truncated(elfFile.Name, "elf64 header")
		}
		elfFile.Header = &ELFHeader{
			Type:                   elf.Type(h.Type),
			Machine:                elf.Machine(h.Machine),
			SectionHeaderOffset:    h.SectionHeaderOffset,
			SectionHeaderEntrySize: h.SectionHeaderEntrySize,
			SectionHeaderEntries:   h.SectionHeaderEntries,
			SectionNamesTable:      h.SectionNamesTable,
		}
	case elf.ELFCLASS32:
		var h ELF32Header
		if err := binary.Read(data, elfFile.Endianness, &h); err != nil {
			return symbols.Truncated(elfFile.Name, "elf32 header")
		}
		elfFile.Header = &ELFHeader{
			Type:                   elf.Type(h.Type),
			Machine:                elf.Machine(h.Machine),
			SectionHeaderOffset:    uint64(h.SectionHeaderOffset),
			SectionHeaderEntrySize: h.SectionHeaderEntrySize,
			SectionHeaderEntries:   h.SectionHeaderEntries,
			SectionNamesTable:      h.SectionNamesTable,
		}
	default:
		return symbols.Invalid(elfFile.Name, "invalid elf class: %d",
			elfFile.Raw[elf.EI_CLASS])
	}

	return nil
}
