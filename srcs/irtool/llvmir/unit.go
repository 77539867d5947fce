// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package llvmir

import (
	"path/filepath"
	"strings"
	"unicode"

	"bloattool/srcs/binarytool/symbols"
)

const (
	// UnknownUnit is returned when no unit can be read from a function name.
	UnknownUnit symbols.UnitName = "unknown"

	// UndemangledUnit groups functions whose unit could not be recovered
	// from the function name or from the IR file name.
	UndemangledUnit symbols.UnitName = "<undemangled>"
)

// StdUnits lists the units of the Rust standard library distribution.
var StdUnits = []string{"core", "alloc", "std", "proc_macro", "test"}

// FunctionUnit guesses the unit defining a demangled IR function name.
func FunctionUnit(name string) symbols.UnitName {

	parts := strings.Split(cleanName(name), "::")

	first := parts[0]
	for _, std := range StdUnits {
		if first == std {
			return symbols.UnitName(first)
		}
	}

	for _, part := range parts {
		if isPlausibleUnit(part) {
			return symbols.UnitName(part)
		}
	}

	return UnknownUnit
}

// FileUnit attributes a function name found in the IR file at path. Names
// without a recognisable unit fall back to the crate part of the file name
// ("serde-1a2b3c.ll" gives "serde").
func FileUnit(name, path string) symbols.UnitName {

	if unit := FunctionUnit(name); unit != UnknownUnit {
		return unit
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if i := strings.LastIndexByte(stem, '-'); i >= 0 {
		return symbols.UnitName(stem[:i])
	}

	return UndemangledUnit
}

// cleanName strips the qualified-self decoration of trait implementations:
// "<T as alloc::vec::Vec>::m" gives "alloc::vec::Vec".
func cleanName(name string) string {

	if !strings.HasPrefix(name, "<") {
		return name
	}

	if i := strings.Index(name, " as "); i >= 0 {
		after := name[i+len(" as "):]
		if end := strings.Index(after, ">::"); end >= 0 {
			return after[:end]
		}
		if end := strings.IndexByte(after, '>'); end >= 0 {
			return after[:end]
		}
		return after
	}

	if i := strings.IndexByte(name, ' '); i >= 0 {
		return name[i+1:]
	}

	return name
}

// isPlausibleUnit reports whether s looks like a crate name: an identifier
// made of letters, digits and underscores starting with a lower-case letter.
func isPlausibleUnit(s string) bool {

	if len(s) == 0 {
		return false
	}

	for i, r := range s {
		if i == 0 && !unicode.IsLower(r) {
			return false
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}

	return true
}
