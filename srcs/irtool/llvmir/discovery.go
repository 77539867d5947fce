// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package llvmir

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"bloattool/srcs/binarytool/symbols"
)

const irExtension = ".ll"

// Prefixes of the IR files emitted for cargo build scripts.
var buildScriptPrefixes = []string{"build_script_", "build-script-"}

// SearchRoot returns the directory holding the IR files of a cargo profile
// ("debug" when empty) under targetDir.
func SearchRoot(targetDir, profile string) string {
	if len(profile) == 0 {
		profile = "debug"
	}
	return filepath.Join(targetDir, profile)
}

// FindFiles walks root and collects the IR files it contains, build scripts
// excluded. The result is sorted.
//
// It returns the list of files and an error of kind symbols.ErrNoIRFiles if
// none is found, otherwise it returns nil.
func FindFiles(fs afero.Fs, root string) ([]string, error) {

	var files []string
	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if info.IsDir() || filepath.Ext(path) != irExtension {
			return nil
		}
		if isBuildScript(info.Name()) {
			return nil
		}
		files = append(files, path)
		return nil
	})

	if err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			return nil, symbols.NewError(symbols.ErrNoIRFiles, root,
				errors.New("directory does not exist"))
		}
		return nil, symbols.NewError(symbols.ErrOpenFailed, root, err)
	}

	if len(files) == 0 {
		return nil, symbols.NewError(symbols.ErrNoIRFiles, root,
			errors.New("build with RUSTFLAGS='--emit=llvm-ir'"))
	}

	sort.Strings(files)
	return files, nil
}

func isBuildScript(name string) bool {
	for _, prefix := range buildScriptPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}
