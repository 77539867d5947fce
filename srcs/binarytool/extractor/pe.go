// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package extractor

import (
	"debug/pe"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-kit/log/level"
	"github.com/samber/lo"

	"bloattool/srcs/binarytool/pdbcore"
	"bloattool/srcs/binarytool/symbols"
	u "bloattool/srcs/common"
)

// PDBPath returns the location of the debug database of the PE binary at
// path: same directory and stem, dashes replaced by underscores, ".pdb"
// extension.
func PDBPath(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ReplaceAll(base, "-", "_")
	return filepath.Join(filepath.Dir(path), base+".pdb")
}

func (e *Extractor) parsePE(path string, raw []byte, sectionName string) ([]rawEntry, uint64, error) {

	f, err := pe.NewFile(reader(raw))
	if err != nil {
		return nil, 0, parseError(path, err)
	}
	defer f.Close()

	index := -1
	for i, s := range f.Sections {
		if s.Name == sectionName {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, 0, symbols.Invalid(path, "section %s not found", sectionName)
	}
	section := f.Sections[index]
	textSize := uint64(section.VirtualSize)
	if textSize == 0 {
		textSize = uint64(section.Size)
	}

	raws := make([]rawEntry, 0, len(f.Symbols))
	for _, s := range f.Symbols {
		// Section numbers are 1-based.
		if int(s.SectionNumber) != index+1 || len(s.Name) == 0 {
			continue
		}
		raws = append(raws, rawEntry{
			name:    s.Name,
			address: uint64(section.VirtualAddress) + uint64(s.Value),
		})
	}

	if len(raws) > 0 {
		synthesizeSizes(raws, uint64(section.VirtualAddress)+textSize)
		return raws, textSize, nil
	}

	// Toolchains targeting MSVC keep the symbols in a separate database.
	pdbPath := PDBPath(path)
	level.Warn(e.Logger).Log("msg", "no symbol in PE file, reading debug database",
		"path", path, "pdb", pdbPath)

	raws, err = parsePDB(pdbPath)
	if err != nil {
		return nil, 0, err
	}

	return raws, textSize, nil
}

func parsePDB(path string) ([]rawEntry, error) {

	mapped, err := u.MapFile(path)
	if err != nil {
		return nil, symbols.NewError(symbols.ErrOpenFailed, path, err)
	}
	defer mapped.Close()

	pdb, err := pdbcore.Parse(path, mapped.Data)
	if err != nil {
		return nil, symbols.NewError(symbols.ErrDebugDatabase, path, err)
	}

	return pdbSymbols(pdb), nil
}

// pdbSymbols rebuilds symbols from procedure records. The mangled name of a
// procedure is the code public symbol located within its code range;
// procedures without one keep their own undecorated name.
func pdbSymbols(pdb *pdbcore.PDB) []rawEntry {

	publics := lo.Filter(pdb.Publics, func(p pdbcore.PublicSymbol, _ int) bool {
		return p.Code || p.Function
	})
	sort.SliceStable(publics, func(i, j int) bool {
		if publics[i].Segment != publics[j].Segment {
			return publics[i].Segment < publics[j].Segment
		}
		return publics[i].Offset < publics[j].Offset
	})

	raws := make([]rawEntry, 0, len(pdb.Procedures))
	for _, proc := range pdb.Procedures {
		address, ok := pdb.RVA(proc.Segment, proc.Offset)
		if !ok {
			continue
		}

		entry := rawEntry{address: address, size: uint64(proc.Length)}
		if public, found := findPublic(publics, proc); found {
			entry.name = public.Name
		} else {
			entry.sym = &symbols.RawSymbol{
				MangledName:   proc.Name,
				DemangledName: proc.Name,
				TrimmedName:   proc.Name,
				Address:       address,
				Size:          symbols.ByteSize(proc.Length),
				Scheme:        symbols.Legacy,
			}
		}
		raws = append(raws, entry)
	}

	return raws
}

// findPublic binary searches publics (sorted by segment then offset) for an
// entry in the same segment whose offset lies in
// [proc.Offset, proc.Offset+proc.Length).
func findPublic(publics []pdbcore.PublicSymbol, proc pdbcore.Procedure) (pdbcore.PublicSymbol, bool) {
	i := sort.Search(len(publics), func(i int) bool {
		p := publics[i]
		if p.Segment != proc.Segment {
			return p.Segment > proc.Segment
		}
		return p.Offset >= proc.Offset
	})
	if i == len(publics) {
		return pdbcore.PublicSymbol{}, false
	}

	p := publics[i]
	end := uint64(proc.Offset) + uint64(proc.Length)
	if p.Segment != proc.Segment || uint64(p.Offset) >= end {
		return pdbcore.PublicSymbol{}, false
	}
	return p, true
}
