// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

// Package comparison diffs two analysis snapshots per symbol and per unit.
package comparison

import (
	"math"
	"sort"

	"github.com/samber/lo"

	"bloattool/srcs/binarytool/analyser"
	"bloattool/srcs/binarytool/symbols"
)

// Result is the comparison of two snapshots. Changes copy the values they
// need and do not refer to the snapshots.
type Result struct {
	FileSize      ScalarDelta    `json:"file_size"`
	TextSize      ScalarDelta    `json:"text_size"`
	BuildDuration DurationDelta  `json:"build_duration"`
	Symbols       []SymbolChange `json:"symbol_changes"`
	Units         []UnitChange   `json:"unit_changes"`
}

type symbolEntry struct {
	demangled string
	unit      symbols.UnitName
	size      symbols.ByteSize
}

// groupSymbols sums the sizes of the symbols sharing a trimmed name. The
// first symbol of a group gives its demangled name and unit.
func groupSymbols(s *analyser.Snapshot) map[string]*symbolEntry {
	groups := make(map[string]*symbolEntry)
	for _, sym := range s.Symbols {
		entry, ok := groups[sym.TrimmedName]
		if !ok {
			entry = &symbolEntry{demangled: sym.DemangledName, unit: sym.Unit}
			groups[sym.TrimmedName] = entry
		}
		entry.size = entry.size.Add(sym.Size)
	}
	return groups
}

func unitSizes(s *analyser.Snapshot) map[symbols.UnitName]symbols.ByteSize {
	return lo.MapValues(s.UnitSizes(), func(us *analyser.UnitSize, _ symbols.UnitName) symbols.ByteSize {
		return us.Size
	})
}

// Compare diffs before and after. Every symbol and unit present on either
// side yields one change, sorted by name.
func Compare(before, after *analyser.Snapshot) *Result {

	res := &Result{
		FileSize:      ScalarDelta{Before: before.FileSize, After: after.FileSize},
		TextSize:      ScalarDelta{Before: before.TextSize, After: after.TextSize},
		BuildDuration: DurationDelta{Before: before.BuildDuration, After: after.BuildDuration},
	}

	beforeSyms, afterSyms := groupSymbols(before), groupSymbols(after)
	names := lo.Union(lo.Keys(beforeSyms), lo.Keys(afterSyms))
	sort.Strings(names)

	for _, name := range names {
		change := SymbolChange{Name: name}
		if b, ok := beforeSyms[name]; ok {
			change.Demangled, change.Unit = b.demangled, b.unit
			change.Before = size(b.size)
		}
		if a, ok := afterSyms[name]; ok {
			if change.Before == nil {
				change.Demangled, change.Unit = a.demangled, a.unit
			}
			change.After = size(a.size)
		}
		res.Symbols = append(res.Symbols, change)
	}

	beforeUnits, afterUnits := unitSizes(before), unitSizes(after)
	units := lo.Union(lo.Keys(beforeUnits), lo.Keys(afterUnits))
	sort.Slice(units, func(i, j int) bool { return units[i] < units[j] })

	for _, unit := range units {
		change := UnitChange{Name: unit}
		if b, ok := beforeUnits[unit]; ok {
			change.Before = size(b)
		}
		if a, ok := afterUnits[unit]; ok {
			change.After = size(a)
		}
		res.Units = append(res.Units, change)
	}

	return res
}

// SignificantChanges returns a result keeping only the changes of at least
// threshold bytes, in either direction.
func (r *Result) SignificantChanges(threshold int64) *Result {
	keep := func(d Delta) bool { return abs(d.AbsoluteChange()) >= threshold }

	out := *r
	out.Symbols = lo.Filter(r.Symbols, func(c SymbolChange, _ int) bool { return keep(c.Delta) })
	out.Units = lo.Filter(r.Units, func(c UnitChange, _ int) bool { return keep(c.Delta) })
	return &out
}

// ChangedSymbols returns the symbols whose size differs between both sides.
func (r *Result) ChangedSymbols() []SymbolChange {
	return lo.Filter(r.Symbols, func(c SymbolChange, _ int) bool {
		return c.AbsoluteChange() != 0 || c.IsNew() || c.IsRemoved()
	})
}

// NewSymbols returns the symbols only present after.
func (r *Result) NewSymbols() []SymbolChange {
	return lo.Filter(r.Symbols, func(c SymbolChange, _ int) bool { return c.IsNew() })
}

// RemovedSymbols returns the symbols only present before.
func (r *Result) RemovedSymbols() []SymbolChange {
	return lo.Filter(r.Symbols, func(c SymbolChange, _ int) bool { return c.IsRemoved() })
}

// NewUnits returns the units only present after.
func (r *Result) NewUnits() []UnitChange {
	return lo.Filter(r.Units, func(c UnitChange, _ int) bool { return c.IsNew() })
}

// RemovedUnits returns the units only present before.
func (r *Result) RemovedUnits() []UnitChange {
	return lo.Filter(r.Units, func(c UnitChange, _ int) bool { return c.IsRemoved() })
}

// TotalUnitChange sums the changes of every unit.
func (r *Result) TotalUnitChange() int64 {
	return lo.SumBy(r.Units, func(c UnitChange) int64 { return c.AbsoluteChange() })
}

// SortByPercent orders changes by decreasing absolute percentage. Changes
// without a percentage (added, removed or from zero) come last, by
// decreasing absolute change. Ties are broken by name.
func SortByPercent[T interface{ key() (string, Delta) }](changes []T) {
	sort.SliceStable(changes, func(i, j int) bool {
		ni, di := changes[i].key()
		nj, dj := changes[j].key()
		pi, oki := di.PercentChange()
		pj, okj := dj.PercentChange()
		switch {
		case oki && okj && math.Abs(pi) != math.Abs(pj):
			return math.Abs(pi) > math.Abs(pj)
		case oki != okj:
			return oki
		}
		ai, aj := abs(di.AbsoluteChange()), abs(dj.AbsoluteChange())
		if ai != aj {
			return ai > aj
		}
		return ni < nj
	})
}

func (c SymbolChange) key() (string, Delta) { return c.Name, c.Delta }
func (c UnitChange) key() (string, Delta)   { return string(c.Name), c.Delta }

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
