// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package common

import (
	"os"

	"github.com/edsrzf/mmap-go"
)

// MappedFile is a read-only memory mapping of a whole file.
type MappedFile struct {
	Data mmap.MMap
	Size int64
}

// MapFile maps the file located at path in memory, read-only. Empty files are
// not mapped and yield an empty Data slice.
//
// It returns the mapping and an error if any, otherwise it returns nil.
func MapFile(path string) (*MappedFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stats, err := file.Stat()
	if err != nil {
		return nil, err
	}

	mapped := &MappedFile{Size: stats.Size()}
	if stats.Size() == 0 {
		return mapped, nil
	}

	mapped.Data, err = mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return nil, err
	}

	return mapped, nil
}

// Close releases the mapping.
func (m *MappedFile) Close() error {
	if m == nil || m.Data == nil {
		return nil
	}
	return m.Data.Unmap()
}
