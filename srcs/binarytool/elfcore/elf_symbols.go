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

type SymbolsTables struct {
	NbEntries   int
	Name        string
	DataSymbols []*DataSymbols
}

type DataSymbols struct {
	Symbol     ELF64Symbols
	Name       string
	TypeSymbol elf.SymType
}

// ELF64Symbols is the on-disk symbol entry of a 64-bit file.
type ELF64Symbols struct {
	Name  uint32
	Info  byte
	Other byte
	Shndx uint16
	Value uint64
	Size  uint64
}

// ELF32Symbols is the on-disk symbol entry of a 32-bit file. The field order
// differs from the 64-bit layout.
type ELF32Symbols struct {
	Name  uint32
	Value uint32
	Size  uint32
	Info  byte
	Other byte
	Shndx uint16
}

func (s ELF32Symbols) widen() ELF64Symbols {
	return ELF64Symbols{
		Name:  s.Name,
		Info:  s.Info,
		Other: s.Other,
		Shndx: s.Shndx,
		Value: uint64(s.Value),
		Size:  uint64(s.Size),
	}
}

func (elfFile *ELFFile) addSymbols(index int, syms []ELF64Symbols) error {

	header := elfFile.SectionsTable.DataSect[index].Section

	var symbolsTables SymbolsTables
	symbolsTables.NbEntries = len(syms)
	symbolsTables.Name = elfFile.SectionsTable.DataSect[index].Name
	symbolsTables.DataSymbols = make([]*DataSymbols, symbolsTables.NbEntries)

	if int(header.LinkedIndex) >= len(elfFile.SectionsTable.DataSect) {
		return symbols.Invalid(elfFile.Name, "%s links to section %d out of %d",
			symbolsTables.Name, header.LinkedIndex, len(elfFile.SectionsTable.DataSect))
	}
	strtab, err := elfFile.GetSectionContent(uint16(header.LinkedIndex))
	if err != nil {
		return err
	}

	for j, s := range syms {
		typeSymbol := elf.ST_TYPE(s.Info)

		var nameString string
		if typeSymbol == elf.STT_SECTION {
			// This is a section, save its name
			if int(s.Shndx) < len(elfFile.SectionsTable.DataSect) {
				nameString = elfFile.SectionsTable.DataSect[s.Shndx].Name
			}
		} else {
			nameString, err = cString(strtab, s.Name, elfFile.Name)
			if err != nil {
				return err
			}
		}

		symbolsTables.DataSymbols[j] = &DataSymbols{
			Symbol:     s,
			Name:       nameString,
			TypeSymbol: typeSymbol,
		}
	}

	elfFile.SymbolsTables = append(elfFile.SymbolsTables, symbolsTables)

	return nil
}

func (elfFile *ELFFile) parseSymbolsTable(index int) error {

	content, err := elfFile.GetSectionContent(uint16(index))
	if err != nil {
		return err
	}

	entrySize := binary.Size(ELF32Symbols{})
	if elfFile.is64() {
		entrySize = binary.Size(ELF64Symbols{})
	}
	if len(content)%entrySize != 0 {
		return symbols.Invalid(elfFile.Name, "symbol table %d has a partial entry", index)
	}

	syms := make([]ELF64Symbols, len(content)/entrySize)
	if elfFile.is64() {
		if err := binary.Read(bytes.NewReader(content), elfFile.Endianness, syms); err != nil {
			return symbols.Truncated(elfFile.Name, "symbol table")
		}
	} else {
		syms32 := make([]ELF32Symbols, len(syms))
		if err := binary.Read(bytes.NewReader(content), elfFile.Endianness, syms32); err != nil {
			return symbols.Truncated(elfFile.Name, "symbol table")
		}
		for i, s := range syms32 {
			syms[i] = s.widen()
		}
	}

	return elfFile.addSymbols(index, syms)
}

func (table *SymbolsTables) displaySymbols(w io.Writer) {
	_, _ = fmt.Fprintf(w, "\nSymbol table %s contains %d entries:\n\n",
		table.Name, table.NbEntries)

	_, _ = fmt.Fprintf(w, "Num:\tValue\tSize\tName\tType\n")

	for i, s := range table.DataSymbols {
		_, _ = fmt.Fprintf(w, "%d:\t%.6x\t%d\t%s\t%s\n", i,
			s.Symbol.Value, s.Symbol.Size, s.Name, s.TypeSymbol)
	}
}

// DisplaySymbolsTables writes every symbol table to out.
func (elfFile *ELFFile) DisplaySymbolsTables(out io.Writer) {

	w := new(tabwriter.Writer)
	w.Init(out, 0, 8, 0, '\t', 0)

	for _, table := range elfFile.SymbolsTables {
		table.displaySymbols(w)
	}
	_ = w.Flush()
}
