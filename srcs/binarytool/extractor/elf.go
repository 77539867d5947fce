// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package extractor

import (
	"bloattool/srcs/binarytool/elfcore"
)

func parseELF(path string, raw []byte, sectionName string) ([]rawEntry, uint64, error) {

	elfFile, err := elfcore.NewELFFile(path, raw)
	if err != nil {
		return nil, 0, err
	}

	functions, size, err := elfFile.SectionFunctions(sectionName)
	if err != nil {
		return nil, 0, err
	}

	raws := make([]rawEntry, 0, len(functions))
	for _, f := range functions {
		raws = append(raws, rawEntry{name: f.Name, address: f.Addr, size: f.Size})
	}

	return raws, size, nil
}
