// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package analyser

import (
	"path/filepath"

	"github.com/dustin/go-humanize"

	"bloattool/srcs/binarytool/symbols"
	u "bloattool/srcs/common"
)

// Node colours of the unit graph.
const (
	binaryColor  = "lightblue"
	stdColor     = "lightgrey"
	guessedColor = "orange"
)

// UnitGraph links the binary to its n biggest units, each edge being
// labelled with the size of the unit.
//
// It returns the edges and the colours of the nodes.
func (s *Snapshot) UnitGraph(n int) (map[string][]u.Edge, map[string]string) {

	binary := filepath.Base(s.Binary)
	data := map[string][]u.Edge{binary: nil}
	colors := map[string]string{binary: binaryColor}

	for _, us := range s.TopUnits(n) {
		name := string(us.Unit)
		data[binary] = append(data[binary], u.Edge{
			To:    name,
			Label: humanize.IBytes(uint64(us.Size)),
		})
		switch {
		case us.Unit == symbols.StdUnit:
			colors[name] = stdColor
		case !us.Exact:
			colors[name] = guessedColor
		}
	}

	return data, colors
}

// GenerateGraph saves the unit graph of the snapshot as path.dot.
//
// It returns an error if any, otherwise it returns nil.
func (s *Snapshot) GenerateGraph(path string, n int) error {
	data, colors := s.UnitGraph(n)
	return u.GenerateGraph(filepath.Base(s.Binary), path, data, colors)
}
