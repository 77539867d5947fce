// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package analyser

import (
	"time"

	"bloattool/srcs/binarytool/archive"
	"bloattool/srcs/binarytool/symbols"
)

// ArtifactKind is the logical kind of a build artifact.
type ArtifactKind int

const (
	Binary ArtifactKind = iota
	Library
	DynLib
)

func (k ArtifactKind) String() string {
	switch k {
	case Binary:
		return "bin"
	case Library:
		return "lib"
	case DynLib:
		return "dylib"
	default:
		return "unknown"
	}
}

// Context describes the build that produced the binary to analyse.
type Context struct {
	BinaryPath string
	Kind       ArtifactKind
	// Archives lists the library archives of every unit of the build.
	Archives []archive.Archive
	StdUnits []symbols.UnitName
	DepUnits []symbols.UnitName
	// IRRoot overrides the IR search root of the configuration.
	IRRoot        string
	BuildDuration time.Duration
}

// NewContext creates the context of a standalone binary using the units and
// archives listed in cfg.
func NewContext(path string, cfg *Config) Context {
	return Context{
		BinaryPath: path,
		Kind:       Binary,
		Archives:   cfg.Archives,
		StdUnits:   UnitNames(cfg.StdUnits),
		DepUnits:   UnitNames(cfg.DepUnits),
		IRRoot:     cfg.IRRoot,
	}
}

// UnitNames converts plain strings to unit names.
func UnitNames(names []string) []symbols.UnitName {
	units := make([]symbols.UnitName, len(names))
	for i, name := range names {
		units[i] = symbols.UnitName(name)
	}
	return units
}
