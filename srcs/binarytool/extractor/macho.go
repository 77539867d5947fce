// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package extractor

import (
	"debug/macho"
	"strings"

	"bloattool/srcs/binarytool/symbols"
)

const (
	machoStab     = 0xe0
	machoTypeMask = 0x0e
	machoSect     = 0x0e
)

// machoSectionName maps ELF style names on their Mach-O counterpart.
func machoSectionName(name string) string {
	if strings.HasPrefix(name, ".") {
		return "__" + name[1:]
	}
	return name
}

func parseMachO(path string, raw []byte, sectionName string) ([]rawEntry, uint64, error) {

	f, err := macho.NewFile(reader(raw))
	if err != nil {
		return nil, 0, parseError(path, err)
	}
	defer f.Close()

	name := machoSectionName(sectionName)
	index := -1
	for i, s := range f.Sections {
		if s.Name == name {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, 0, symbols.Invalid(path, "section %s not found", name)
	}
	section := f.Sections[index]

	if f.Symtab == nil {
		return []rawEntry{}, section.Size, nil
	}

	raws := make([]rawEntry, 0, len(f.Symtab.Syms))
	for _, s := range f.Symtab.Syms {
		// Section numbers are 1-based.
		if int(s.Sect) != index+1 || s.Type&machoStab != 0 ||
			s.Type&machoTypeMask != machoSect {
			continue
		}
		raws = append(raws, rawEntry{
			name:    strings.TrimPrefix(s.Name, "_"),
			address: s.Value,
		})
	}

	synthesizeSizes(raws, section.Addr+section.Size)

	return raws, section.Size, nil
}
