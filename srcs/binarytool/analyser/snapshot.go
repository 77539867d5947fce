// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package analyser

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"bloattool/srcs/binarytool/attribution"
	"bloattool/srcs/binarytool/symbols"
	"bloattool/srcs/irtool/llvmir"
)

// EnrichedSymbol is a raw symbol with the unit it is attributed to.
type EnrichedSymbol struct {
	symbols.RawSymbol
	Unit  symbols.UnitName `json:"unit"`
	Exact bool             `json:"exact"`
}

// Snapshot is the result of the analysis of one binary. It is not modified
// once Analyze returns.
type Snapshot struct {
	Binary        string           `json:"binary"`
	Format        string           `json:"format"`
	FileSize      symbols.ByteSize `json:"file_size"`
	TextSize      symbols.ByteSize `json:"text_size"`
	Symbols       []EnrichedSymbol `json:"symbols"`
	IR            *llvmir.Analysis `json:"ir_data,omitempty"`
	BuildDuration time.Duration    `json:"build_duration,omitempty"`
}

// NewSnapshot wraps extracted symbols into a snapshot whose symbols are
// attributed to the unknown unit until Enrich is called.
func NewSnapshot(binary, format string, fileSize, textSize symbols.ByteSize,
	raw []symbols.RawSymbol) *Snapshot {

	s := &Snapshot{
		Binary:   binary,
		Format:   format,
		FileSize: fileSize,
		TextSize: textSize,
		Symbols:  make([]EnrichedSymbol, len(raw)),
	}
	for i, sym := range raw {
		s.Symbols[i] = EnrichedSymbol{RawSymbol: sym, Unit: symbols.UnknownUnit}
	}
	return s
}

// Enrich attributes every symbol with r. When mergeStd is set, standard
// library units are folded into symbols.StdUnit.
func (s *Snapshot) Enrich(r *attribution.Resolver, mergeStd bool) {
	for i := range s.Symbols {
		var res attribution.Result
		if mergeStd {
			res = r.ResolveMerged(s.Symbols[i].RawSymbol)
		} else {
			res = r.Resolve(s.Symbols[i].RawSymbol)
		}
		s.Symbols[i].Unit = res.Unit
		s.Symbols[i].Exact = res.Exact
	}
}

// SymbolsSize returns the sum of the sizes of the symbols.
func (s *Snapshot) SymbolsSize() symbols.ByteSize {
	var total symbols.ByteSize
	for _, sym := range s.Symbols {
		total = total.Add(sym.Size)
	}
	return total
}

// UnitSize is the contribution of a unit to the code section.
type UnitSize struct {
	Unit  symbols.UnitName
	Size  symbols.ByteSize
	Count int
	// Exact is false as soon as one symbol of the unit was guessed.
	Exact bool
}

// UnitSizes sums the symbol sizes per unit.
func (s *Snapshot) UnitSizes() map[symbols.UnitName]*UnitSize {
	units := make(map[symbols.UnitName]*UnitSize)
	for _, sym := range s.Symbols {
		us, ok := units[sym.Unit]
		if !ok {
			us = &UnitSize{Unit: sym.Unit, Exact: true}
			units[sym.Unit] = us
		}
		us.Size = us.Size.Add(sym.Size)
		us.Count++
		us.Exact = us.Exact && sym.Exact
	}
	return units
}

// TopUnits returns the n biggest units, sorted by decreasing size then by
// name. A non positive n returns all of them.
func (s *Snapshot) TopUnits(n int) []UnitSize {

	units := s.UnitSizes()
	list := make([]UnitSize, 0, len(units))
	for _, us := range units {
		list = append(list, *us)
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].Size != list[j].Size {
			return list[i].Size > list[j].Size
		}
		return list[i].Unit < list[j].Unit
	})

	return limit(list, n)
}

// TopSymbols returns the n biggest symbols, sorted by decreasing size then by
// name. A non positive n returns all of them.
func (s *Snapshot) TopSymbols(n int) []EnrichedSymbol {
	return limit(SortBySize(s.Symbols), n)
}

// SortBySize returns a copy of syms sorted by decreasing size then by name.
func SortBySize(syms []EnrichedSymbol) []EnrichedSymbol {
	list := make([]EnrichedSymbol, len(syms))
	copy(list, syms)
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Size != list[j].Size {
			return list[i].Size > list[j].Size
		}
		return list[i].TrimmedName < list[j].TrimmedName
	})
	return list
}

// FilterByUnit returns the symbols attributed to unit.
func (s *Snapshot) FilterByUnit(unit symbols.UnitName) []EnrichedSymbol {
	var out []EnrichedSymbol
	for _, sym := range s.Symbols {
		if sym.Unit == unit {
			out = append(out, sym)
		}
	}
	return out
}

// FilterByName returns the symbols whose trimmed name contains pattern, or
// matches it when regex is set.
//
// It returns the symbols and an error if the pattern does not compile,
// otherwise it returns nil.
func (s *Snapshot) FilterByName(pattern string, regex bool) ([]EnrichedSymbol, error) {

	match := func(name string) bool { return strings.Contains(name, pattern) }
	if regex {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, err
		}
		match = re.MatchString
	}

	var out []EnrichedSymbol
	for _, sym := range s.Symbols {
		if match(sym.TrimmedName) {
			out = append(out, sym)
		}
	}
	return out, nil
}

func limit[T any](list []T, n int) []T {
	if n > 0 && n < len(list) {
		return list[:n]
	}
	return list
}
