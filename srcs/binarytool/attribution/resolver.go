// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

// Package attribution maps symbols to the compilation unit that defined
// them.
package attribution

import (
	"strings"

	"github.com/samber/lo"

	"bloattool/srcs/binarytool/archive"
	"bloattool/srcs/binarytool/symbols"
)

// Result is the unit a symbol is attributed to. Exact is false when the unit
// was guessed rather than corroborated.
type Result struct {
	Unit  symbols.UnitName
	Exact bool
}

// Resolver attributes symbols using the dependency index and the known unit
// names. It holds no mutable state and can be shared between goroutines.
type Resolver struct {
	index    *archive.DependencySymbolIndex
	stdUnits map[symbols.UnitName]struct{}
	depUnits map[symbols.UnitName]struct{}
}

func toSet(units []symbols.UnitName) map[symbols.UnitName]struct{} {
	return lo.SliceToMap(units, func(u symbols.UnitName) (symbols.UnitName, struct{}) {
		return u, struct{}{}
	})
}

// NewResolver creates a resolver. A nil index behaves as an empty one.
func NewResolver(index *archive.DependencySymbolIndex, stdUnits,
	depUnits []symbols.UnitName) *Resolver {
	return &Resolver{
		index:    index,
		stdUnits: toSet(stdUnits),
		depUnits: toSet(depUnits),
	}
}

// IsStd reports whether unit is a standard library unit.
func (r *Resolver) IsStd(unit symbols.UnitName) bool {
	_, ok := r.stdUnits[unit]
	return ok
}

func (r *Resolver) isKnown(unit symbols.UnitName) bool {
	_, dep := r.depUnits[unit]
	return dep || r.IsStd(unit)
}

// Resolve attributes sym to a unit. It never fails: the worst case is the
// unknown unit.
func (r *Resolver) Resolve(sym symbols.RawSymbol) Result {

	if unit, ok := r.index.First(sym.MangledName); ok {
		return Result{Unit: unit, Exact: true}
	}

	switch sym.Scheme {
	case symbols.Versioned:
		if len(sym.EmbeddedUnit) > 0 {
			return Result{Unit: sym.EmbeddedUnit, Exact: true}
		}
		name := symbols.UnitName(unitFromPath(sym.TrimmedName))
		if len(name) > 0 && r.isKnown(name) {
			return Result{Unit: name, Exact: false}
		}
		return Result{Unit: symbols.UnknownUnit, Exact: true}
	case symbols.Legacy:
		name, exact := r.resolveLegacy(sym.DemangledName)
		// A name with no path has no candidate to guess.
		if len(name) == 0 {
			return Result{Unit: symbols.UnknownUnit, Exact: exact}
		}
		return Result{Unit: symbols.UnitName(name), Exact: exact}
	default:
		return Result{Unit: symbols.UnknownUnit, Exact: true}
	}
}

// ResolveMerged is Resolve followed by MergeStd.
func (r *Resolver) ResolveMerged(sym symbols.RawSymbol) Result {
	res := r.Resolve(sym)
	res.Unit = r.MergeStd(res.Unit)
	return res
}

// MergeStd folds the standard library units into StdUnit.
func (r *Resolver) MergeStd(unit symbols.UnitName) symbols.UnitName {
	if r.IsStd(unit) {
		return symbols.StdUnit
	}
	return unit
}

// resolveLegacy handles "<Type as Trait>::method" names, which may belong to
// the unit of the type or to the unit of the trait. Unresolved ties pick the
// type's unit and are reported as inexact.
func (r *Resolver) resolveLegacy(complete string) (string, bool) {

	parts := strings.Split(complete, " as ")
	if len(parts) < 2 {
		return unitFromPath(complete), true
	}

	first := unitFromPath(parts[0])
	second := unitFromPath(parts[1])

	// The type is a bare type parameter, e.g. <T as core::fmt::Display>::fmt.
	if len(first) == 0 {
		return second, true
	}
	if first == second {
		return first, true
	}

	units := r.index.Lookup(complete)
	switch {
	case lo.Contains(units, symbols.UnitName(first)):
		return first, true
	case lo.Contains(units, symbols.UnitName(second)):
		return second, true
	default:
		return first, false
	}
}

// unitFromPath returns the first path segment of a demangled name, without
// the leading "<" and "&" decorations of qualified paths. Names without any
// path separator yield "".
func unitFromPath(name string) string {
	if !strings.Contains(name, "::") {
		return ""
	}

	unit := strings.SplitN(name, "::", 2)[0]
	if strings.HasPrefix(unit, "<") {
		unit = strings.TrimLeft(unit, "<")
		unit = strings.TrimLeft(unit, "&")
		fields := strings.Fields(unit)
		if len(fields) == 0 {
			return ""
		}
		unit = fields[len(fields)-1]
	}

	return unit
}
