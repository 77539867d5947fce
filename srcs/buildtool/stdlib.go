// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package buildtool

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"bloattool/srcs/binarytool/archive"
	"bloattool/srcs/binarytool/symbols"
)

const rlibExtension = ".rlib"

// ParseRlibName extracts the unit of a "lib<name>-<hash>.rlib" file name.
//
// It returns the unit and true if the name follows the convention,
// otherwise it returns false.
func ParseRlibName(filename string) (symbols.UnitName, bool) {

	if filepath.Ext(filename) != rlibExtension {
		return "", false
	}

	stem := strings.TrimSuffix(filename, rlibExtension)
	if i := strings.IndexByte(stem, '-'); i >= 0 {
		stem = stem[:i]
	}

	name := strings.TrimPrefix(stem, "lib")
	if name == stem || len(name) == 0 {
		return "", false
	}

	return symbols.UnitName(name), true
}

// FindStdUnits lists the rlib archives of the standard library stored in
// dir, sorted by unit.
//
// It returns the archives and an error if any, otherwise it returns nil.
func FindStdUnits(fs afero.Fs, dir string) ([]archive.Archive, error) {

	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot list standard library %s", dir)
	}

	var archives []archive.Archive
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if unit, ok := ParseRlibName(entry.Name()); ok {
			archives = append(archives, archive.Archive{
				Unit: unit,
				Path: filepath.Join(dir, entry.Name()),
			})
		}
	}

	sort.SliceStable(archives, func(i, j int) bool { return archives[i].Unit < archives[j].Unit })
	return archives, nil
}
