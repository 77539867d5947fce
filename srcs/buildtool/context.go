// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package buildtool

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"bloattool/srcs/binarytool/analyser"
	"bloattool/srcs/binarytool/archive"
	"bloattool/srcs/binarytool/symbols"
)

// ErrNoArtifacts is returned when a build did not produce anything to
// analyse.
var ErrNoArtifacts = errors.New("build did not produce a binary")

// Executables returns the binary and dynamic library artifacts of the build.
func (b *Build) Executables() []Artifact {
	return lo.Filter(b.Artifacts, func(a Artifact, _ int) bool {
		return a.Kind == analyser.Binary || a.Kind == analyser.DynLib
	})
}

// Libraries returns the archives of the library artifacts of the build.
func (b *Build) Libraries() []archive.Archive {
	var archives []archive.Archive
	for _, a := range b.Artifacts {
		if a.Kind == analyser.Library {
			archives = append(archives, archive.Archive{Unit: symbols.UnitName(a.Name), Path: a.Path})
		}
	}
	return archives
}

// selectArtifact returns the executable named name, or the last executable
// of the build when name is empty.
func (b *Build) selectArtifact(name string) (Artifact, error) {

	executables := b.Executables()
	if len(executables) == 0 {
		return Artifact{}, ErrNoArtifacts
	}
	if len(name) == 0 {
		return executables[len(executables)-1], nil
	}

	a, ok := lo.Find(executables, func(a Artifact) bool { return a.Name == name })
	if !ok {
		return Artifact{}, errors.Wrapf(ErrNoArtifacts, "no binary named %q", name)
	}
	return a, nil
}

// NewContext describes the analysis of the executable named name (or the
// last one built) from a build and the archives of the standard library.
//
// Dependency units are the artifacts of the build. Standard units are the
// std archives that are not also dependencies.
//
// It returns the context and an error if any, otherwise it returns nil.
func NewContext(build *Build, std []archive.Archive, name string) (analyser.Context, error) {

	target, err := build.selectArtifact(name)
	if err != nil {
		return analyser.Context{}, err
	}

	deps := lo.Uniq(lo.Map(build.Artifacts, func(a Artifact, _ int) symbols.UnitName {
		return symbols.UnitName(a.Name)
	}))
	sort.Slice(deps, func(i, j int) bool { return deps[i] < deps[j] })

	stdUnits := lo.Uniq(lo.FilterMap(std, func(a archive.Archive, _ int) (symbols.UnitName, bool) {
		return a.Unit, !lo.Contains(deps, a.Unit)
	}))

	return analyser.Context{
		BinaryPath:    target.Path,
		Kind:          target.Kind,
		Archives:      append(build.Libraries(), std...),
		StdUnits:      stdUnits,
		DepUnits:      deps,
		BuildDuration: build.Duration,
	}, nil
}
