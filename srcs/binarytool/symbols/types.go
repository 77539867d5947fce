// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package symbols

// ByteSize is a size expressed in bytes.
type ByteSize uint64

// Add returns the sum of two byte sizes.
func (s ByteSize) Add(o ByteSize) ByteSize { return s + o }

// Diff returns the signed difference other - s.
func (s ByteSize) Diff(other ByteSize) int64 { return int64(other) - int64(s) }

// LineCount is a number of IR lines.
type LineCount uint64

// Add returns the sum of two line counts.
func (l LineCount) Add(o LineCount) LineCount { return l + o }

// CopyCount is a number of instantiations of a function.
type CopyCount uint64

// Add returns the sum of two copy counts.
func (c CopyCount) Add(o CopyCount) CopyCount { return c + o }

// UnitName identifies a compilation unit (a library or a binary target).
type UnitName string

const (
	// UnknownUnit is reported when no unit can be inferred from a symbol.
	UnknownUnit UnitName = "[Unknown]"
	// StdUnit is the umbrella name of the standard library units when they
	// are merged.
	StdUnit UnitName = "std"
)

// ManglingScheme is the encoding used for a linker visible name.
type ManglingScheme int

const (
	// Unknown is used for C, C++ and names that do not demangle.
	Unknown ManglingScheme = iota
	// Legacy is the textual _ZN...E scheme.
	Legacy
	// Versioned is the self describing _R scheme.
	Versioned
)

func (s ManglingScheme) String() string {
	switch s {
	case Legacy:
		return "legacy"
	case Versioned:
		return "v0"
	default:
		return "unknown"
	}
}

// RawSymbol is a symbol of the code section as found in a binary.
type RawSymbol struct {
	MangledName   string         `json:"mangled"`
	DemangledName string         `json:"demangled"`
	TrimmedName   string         `json:"trimmed"`
	Address       uint64         `json:"address"`
	Size          ByteSize       `json:"size"`
	Scheme        ManglingScheme `json:"scheme"`
	// EmbeddedUnit is the defining unit carried by versioned names, if any.
	EmbeddedUnit UnitName `json:"embedded_unit,omitempty"`
}

// NewRawSymbol demangles name and builds the corresponding symbol.
func NewRawSymbol(name string, address uint64, size ByteSize) RawSymbol {
	d := Demangle(name)
	return RawSymbol{
		MangledName:   name,
		DemangledName: d.Complete,
		TrimmedName:   d.Trimmed,
		Address:       address,
		Size:          size,
		Scheme:        d.Scheme,
		EmbeddedUnit:  d.Unit,
	}
}
