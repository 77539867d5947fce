// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package report

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"bloattool/srcs/binarytool/analyser"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const snapshotExtension = ".json"

// IsSnapshotFile reports whether path names a saved snapshot rather than a
// binary.
func IsSnapshotFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), snapshotExtension)
}

// WriteJSON encodes the snapshot as indented JSON.
func WriteJSON(w io.Writer, s *analyser.Snapshot) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, "cannot encode snapshot")
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return errors.Wrap(err, "cannot write snapshot")
	}
	return nil
}

// SaveSnapshot writes the snapshot as JSON at path.
//
// It returns an error if any, otherwise it returns nil.
func SaveSnapshot(path string, s *analyser.Snapshot) error {

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "cannot create %s", path)
	}
	defer file.Close()

	return WriteJSON(file, s)
}

// LoadSnapshot reads a snapshot saved by SaveSnapshot.
//
// It returns the snapshot and an error if any, otherwise it returns nil.
func LoadSnapshot(path string) (*analyser.Snapshot, error) {

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read %s", path)
	}

	s := new(analyser.Snapshot)
	if err := json.Unmarshal(data, s); err != nil {
		return nil, errors.Wrapf(err, "cannot decode snapshot %s", path)
	}

	if s.IR != nil {
		s.IR.Reindex()
	}

	return s, nil
}
