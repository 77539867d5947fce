// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

// Package archive reads static library archives and builds the index of the
// symbols they define.
package archive

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"bloattool/srcs/binarytool/symbols"
	u "bloattool/srcs/common"
)

// Archive is a library archive produced for a unit.
type Archive struct {
	Unit symbols.UnitName `yaml:"unit" json:"unit"`
	Path string           `yaml:"path" json:"path"`
}

// DependencySymbolIndex maps a symbol name to the units defining it. It is
// read-only once built.
type DependencySymbolIndex struct {
	units map[string][]symbols.UnitName
}

// NewIndex builds an index from already collected (symbol, unit) pairs, given
// as a map from unit to symbols. Units are recorded in the order of units.
func NewIndex(units []symbols.UnitName, defined map[symbols.UnitName][]string) *DependencySymbolIndex {
	idx := &DependencySymbolIndex{units: make(map[string][]symbols.UnitName)}
	for _, unit := range units {
		for _, sym := range defined[unit] {
			idx.units[sym] = append(idx.units[sym], unit)
		}
	}
	idx.dedup()
	return idx
}

func (idx *DependencySymbolIndex) dedup() {
	for sym, units := range idx.units {
		idx.units[sym] = lo.Uniq(units)
	}
}

// BuildIndex reads the symbol table of every archive. A single failure aborts
// the whole build.
//
// It returns the index and an error if any, otherwise it returns nil.
func BuildIndex(archives []Archive) (*DependencySymbolIndex, error) {

	idx := &DependencySymbolIndex{units: make(map[string][]symbols.UnitName)}

	for _, a := range archives {
		names, err := readArchive(a.Path)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot index unit %s", a.Unit)
		}
		for _, name := range names {
			idx.units[name] = append(idx.units[name], a.Unit)
		}
	}
	idx.dedup()

	return idx, nil
}

func readArchive(path string) ([]string, error) {
	mapped, err := u.MapFile(path)
	if err != nil {
		return nil, symbols.NewError(symbols.ErrOpenFailed, path, err)
	}
	defer mapped.Close()

	return ParseSymbols(path, mapped.Data)
}

// Lookup returns every unit defining sym, in the order they were recorded.
func (idx *DependencySymbolIndex) Lookup(sym string) []symbols.UnitName {
	if idx == nil {
		return nil
	}
	return idx.units[sym]
}

// First returns the first unit recorded for sym.
func (idx *DependencySymbolIndex) First(sym string) (symbols.UnitName, bool) {
	units := idx.Lookup(sym)
	if len(units) == 0 {
		return "", false
	}
	return units[0], true
}

// Len returns the number of distinct symbols.
func (idx *DependencySymbolIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.units)
}
