// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package elfcore

import (
	"debug/elf"
	"sort"

	"bloattool/srcs/binarytool/symbols"
)

// ELFFunction is a symbol located in a code section.
type ELFFunction struct {
	Name string
	Addr uint64
	Size uint64
}

// symbolTable returns the static symbol table, or the dynamic one when the
// binary has been stripped.
func (elfFile *ELFFile) symbolTable() *SymbolsTables {
	var dynamic *SymbolsTables
	for i, table := range elfFile.SymbolsTables {
		index := elfFile.IndexSections[table.Name]
		switch elfFile.SectionsTable.DataSect[index].Section.Type {
		case uint32(elf.SHT_SYMTAB):
			return &elfFile.SymbolsTables[i]
		case uint32(elf.SHT_DYNSYM):
			if dynamic == nil {
				dynamic = &elfFile.SymbolsTables[i]
			}
		}
	}
	return dynamic
}

// detectSizeSymbol computes the size of a symbol without size information
// from the next symbol at a higher address, or from the end of the section
// for the last one. Symbols at or past the section end keep a zero size.
func detectSizeSymbol(functions []ELFFunction, index int, sectionEnd uint64) uint64 {
	addr := functions[index].Addr
	for _, next := range functions[index+1:] {
		if next.Addr > addr {
			return next.Addr - addr
		}
	}
	if sectionEnd > addr {
		return sectionEnd - addr
	}
	return 0
}

// SectionFunctions returns the symbols defined in the section named
// sectionName, sorted by address, along with the size of that section.
// Every record is kept, zero-sized ones included, so that aliases can be
// resolved by their order in the table.
//
// It returns the functions, the section size and an error if any, otherwise
// it returns nil.
func (elfFile *ELFFile) SectionFunctions(sectionName string) ([]ELFFunction, uint64, error) {

	index, ok := elfFile.IndexSections[sectionName]
	if !ok {
		return nil, 0, symbols.Invalid(elfFile.Name, "section %s not found", sectionName)
	}
	section := elfFile.SectionsTable.DataSect[index].Section

	table := elfFile.symbolTable()
	if table == nil {
		return []ELFFunction{}, section.Size, nil
	}

	functions := make([]ELFFunction, 0, table.NbEntries)
	for _, s := range table.DataSymbols {
		if int(s.Symbol.Shndx) != index || len(s.Name) == 0 {
			continue
		}
		switch s.TypeSymbol {
		case elf.STT_SECTION, elf.STT_FILE:
			continue
		}
		functions = append(functions, ELFFunction{Name: s.Name,
			Addr: s.Symbol.Value, Size: s.Symbol.Size})
	}

	sort.SliceStable(functions, func(i, j int) bool {
		return functions[i].Addr < functions[j].Addr
	})

	sectionEnd := section.VirtualAddress + section.Size
	for i := range functions {
		if functions[i].Size == 0 {
			functions[i].Size = detectSizeSymbol(functions, i, sectionEnd)
		}
	}

	return functions, section.Size, nil
}
