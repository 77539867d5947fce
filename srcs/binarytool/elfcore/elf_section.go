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
	"fmt"
	"io"
	"text/tabwriter"

	"bloattool/srcs/binarytool/symbols"
)

type SectionsTable struct {
	NbEntries int
	DataSect  []*DataSections
}

type DataSections struct {
	Name    string
	Section SectionHeader
}

// ELF64SectionHeader is the on-disk section header of a 64-bit file.
type ELF64SectionHeader struct {
	Name           uint32
	Type           uint32
	Flags          uint64
	VirtualAddress uint64
	FileOffset     uint64
	Size           uint64
	LinkedIndex    uint32
	Info           uint32
	Align          uint64
	EntrySize      uint64
}

// ELF32SectionHeader is the on-disk section header of a 32-bit file.
type ELF32SectionHeader struct {
	Name           uint32
	Type           uint32
	Flags          uint32
	VirtualAddress uint32
	FileOffset     uint32
	Size           uint32
	LinkedIndex    uint32
	Info           uint32
	Align          uint32
	EntrySize      uint32
}

// SectionHeader is a section header widened to 64 bits.
type SectionHeader = ELF64SectionHeader

func (h ELF32SectionHeader) widen() SectionHeader {
	return SectionHeader{
		Name:           h.Name,
		Type:           h.Type,
		Flags:          uint64(h.Flags),
		VirtualAddress: uint64(h.VirtualAddress),
		FileOffset:     uint64(h.FileOffset),
		Size:           uint64(h.Size),
		LinkedIndex:    h.LinkedIndex,
		Info:           h.Info,
		Align:          uint64(h.Align),
		EntrySize:      uint64(h.EntrySize),
	}
}

func (elfFile *ELFFile) addSection(sections []SectionHeader) error {

	elfFile.SectionsTable = SectionsTable{}
	elfFile.SectionsTable.NbEntries = len(sections)
	elfFile.SectionsTable.DataSect = make([]*DataSections,
		elfFile.SectionsTable.NbEntries)

	for i := range sections {
		elfFile.SectionsTable.DataSect[i] = &DataSections{
			Section: sections[i],
		}
	}

	// Names need the whole table since the string table may come last.
	for i := range sections {
		nameString, err := elfFile.GetSectionName(sections[i].Name,
			elfFile.Header.SectionNamesTable)
		if err != nil {
			return err
		}
		elfFile.SectionsTable.DataSect[i].Name = nameString
	}

	return nil
}

// ParseSectionHeaders decodes the section header table.
//
// It returns an error if any, otherwise it returns nil.
func (elfFile *ELFFile) ParseSectionHeaders() error {

	offset := elfFile.Header.SectionHeaderOffset
	if offset == 0 {
		// No section table (e.g., a stripped core file).
		return elfFile.addSection(nil)
	}

	entrySize := uint64(binary.Size(ELF32SectionHeader{}))
	if elfFile.is64() {
		entrySize = uint64(binary.Size(ELF64SectionHeader{}))
	}
	if uint64(elfFile.Header.SectionHeaderEntrySize) != entrySize {
		return symbols.Invalid(elfFile.Name, "invalid section header size: %d",
			elfFile.Header.SectionHeaderEntrySize)
	}

	count := uint64(elfFile.Header.SectionHeaderEntries)
	raw, err := elfFile.bytesAt(offset, count*entrySize, "section header table")
	if err != nil {
		return err
	}

	sections := make([]SectionHeader, count)
	data := bytes.NewReader(raw)
	if elfFile.is64() {
		if err := binary.Read(data, elfFile.Endianness, sections); err != nil {
			return symbols.Truncated(elfFile.Name, "section header table")
		}
	} else {
		sections32 := make([]ELF32SectionHeader, count)
		if err := binary.Read(data, elfFile.Endianness, sections32); err != nil {
			return symbols.Truncated(elfFile.Name, "section header table")
		}
		for i, s := range sections32 {
			sections[i] = s.widen()
		}
	}

	if count > 0 && int(elfFile.Header.SectionNamesTable) >= len(sections) {
		return symbols.Invalid(elfFile.Name, "invalid section names index: %d",
			elfFile.Header.SectionNamesTable)
	}

	return elfFile.addSection(sections)
}

// GetSectionContent returns the raw bytes of a section.
//
// It returns the content and an error if any, otherwise it returns nil.
func (elfFile *ELFFile) GetSectionContent(sectionIndex uint16) ([]byte, error) {

	sectionTable := elfFile.SectionsTable.DataSect
	if int(sectionIndex) >= len(sectionTable) {
		return nil, symbols.Invalid(elfFile.Name, "invalid section index: %d",
			sectionIndex)
	}

	header := sectionTable[sectionIndex].Section
	if header.Type == uint32(elf.SHT_NOBITS) {
		return nil, nil
	}

	return elfFile.bytesAt(header.FileOffset, header.Size,
		fmt.Sprintf("content of section %d", sectionIndex))
}

// GetSectionName reads a NUL-terminated string at indexString in the string
// table located at section indexStringTable.
//
// It returns the string and an error if any, otherwise it returns nil.
func (elfFile *ELFFile) GetSectionName(indexString uint32, indexStringTable uint16) (string, error) {

	rawDataStringTable, err := elfFile.GetSectionContent(indexStringTable)
	if err != nil {
		return "", err
	}

	return cString(rawDataStringTable, indexString, elfFile.Name)
}

func cString(table []byte, index uint32, name string) (string, error) {
	if uint64(index) >= uint64(len(table)) {
		if index == 0 {
			return "", nil
		}
		return "", symbols.Invalid(name, "string index out of range: %d", index)
	}

	rawDataStart := table[index:]
	end := bytes.IndexByte(rawDataStart, 0)
	if end < 0 {
		return "", symbols.Truncated(name, "unterminated string")
	}

	return string(rawDataStart[:end]), nil
}

// ParseSections indexes sections by name and decodes the symbol tables.
//
// It returns an error if any, otherwise it returns nil.
func (elfFile *ELFFile) ParseSections() error {

	elfFile.IndexSections = make(map[string]int)
	elfFile.SymbolsTables = make([]SymbolsTables, 0)

	for i, s := range elfFile.SectionsTable.DataSect {
		if _, ok := elfFile.IndexSections[s.Name]; !ok {
			elfFile.IndexSections[s.Name] = i
		}

		switch s.Section.Type {
		case uint32(elf.SHT_SYMTAB), uint32(elf.SHT_DYNSYM):
			if err := elfFile.parseSymbolsTable(i); err != nil {
				return err
			}
		default:
		}
	}

	return nil
}

// DisplaySections writes the section table to w.
func (table *SectionsTable) DisplaySections(out io.Writer) {

	w := new(tabwriter.Writer)
	w.Init(out, 0, 8, 0, '\t', 0)
	_, _ = fmt.Fprintln(w, "Nr\tName\tType\tAddress\tOffset\tSize")
	for i, s := range table.DataSect {
		_, _ = fmt.Fprintf(w, "[%d]\t%s\t%s\t%.6x\t%.6x\t%.6x\n", i,
			s.Name, elf.SectionType(s.Section.Type),
			s.Section.VirtualAddress, s.Section.FileOffset,
			s.Section.Size)
	}
	_ = w.Flush()
}
