// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package elfcore

import (
	"debug/elf"
	"encoding/binary"

	"bloattool/srcs/binarytool/symbols"
)

// ELFFile is a 32 or 64-bit ELF file of either endianness, parsed from its raw
// bytes.
type ELFFile struct {
	Header        *ELFHeader
	SectionsTable SectionsTable
	SymbolsTables []SymbolsTables
	Raw           []byte
	IndexSections map[string]int
	Name          string
	Class         elf.Class
	Endianness    binary.ByteOrder
}

// IsELF reports whether raw starts with the ELF magic.
func IsELF(raw []byte) bool {
	return len(raw) >= 4 && raw[0] == '\x7f' && raw[1] == 'E' &&
		raw[2] == 'L' && raw[3] == 'F'
}

// NewELFFile parses the headers, the section table and the symbol tables of
// raw. The name is only used to report errors.
//
// It returns the parsed file and an error if any, otherwise it returns nil.
func NewELFFile(name string, raw []byte) (*ELFFile, error) {

	elfFile := &ELFFile{Name: name, Raw: raw}

	if err := elfFile.ParseElfHeader(); err != nil {
		return nil, err
	}

	if err := elfFile.ParseSectionHeaders(); err != nil {
		return nil, err
	}

	if err := elfFile.ParseSections(); err != nil {
		return nil, err
	}

	return elfFile, nil
}

// bytesAt returns size bytes of the raw content starting at offset.
func (elfFile *ELFFile) bytesAt(offset, size uint64, what string) ([]byte, error) {
	end := offset + size
	if end < offset || end > uint64(len(elfFile.Raw)) {
		return nil, symbols.Truncated(elfFile.Name, what)
	}
	return elfFile.Raw[offset:end], nil
}

func (elfFile *ELFFile) is64() bool {
	return elfFile.Class == elf.ELFCLASS64
}
