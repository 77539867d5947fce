// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package buildtool

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"bloattool/srcs/binarytool/analyser"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Reasons of the cargo messages that are read.
const (
	reasonArtifact = "compiler-artifact"
	reasonTiming   = "timing-info"
)

// ErrInvalidCargoOutput is returned when a cargo message cannot be decoded.
var ErrInvalidCargoOutput = errors.New("failed to parse 'cargo' output")

// message is a line of "cargo build --message-format=json".
type message struct {
	Reason    string   `json:"reason"`
	Target    *target  `json:"target"`
	Filenames []string `json:"filenames"`
	Duration  *float64 `json:"duration"`
	RmetaTime *float64 `json:"rmeta_time"`
}

type target struct {
	Name       string   `json:"name"`
	Kind       []string `json:"kind"`
	CrateTypes []string `json:"crate_types"`
}

// Artifact is a file produced by the build.
type Artifact struct {
	Kind analyser.ArtifactKind
	// Name is the crate name, with dashes replaced by underscores.
	Name string
	Path string
}

// Timing is the compilation time of a unit, reported by "-Z timings".
type Timing struct {
	Unit      string
	Duration  time.Duration
	RmetaTime time.Duration
}

// Build is the outcome of a cargo build.
type Build struct {
	Artifacts []Artifact
	Timings   []Timing
	Duration  time.Duration
}

// artifactKind maps a crate type to an artifact kind. Other crate types
// (proc-macro, staticlib) are not analysed.
func artifactKind(crateType string) (analyser.ArtifactKind, bool) {
	switch crateType {
	case "bin":
		return analyser.Binary, true
	case "lib", "rlib":
		return analyser.Library, true
	case "dylib", "cdylib":
		return analyser.DynLib, true
	default:
		return 0, false
	}
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

// add records the content of a message. Unknown reasons are ignored.
func (b *Build) add(m *message) {

	switch m.Reason {
	case reasonArtifact:
		if m.Target == nil || len(m.Target.Name) == 0 {
			return
		}
		name := strings.ReplaceAll(m.Target.Name, "-", "_")
		for i, path := range m.Filenames {
			if i >= len(m.Target.CrateTypes) {
				break
			}
			kind, ok := artifactKind(m.Target.CrateTypes[i])
			if !ok {
				continue
			}
			b.Artifacts = append(b.Artifacts, Artifact{Kind: kind, Name: name, Path: path})
		}
	case reasonTiming:
		if m.Target == nil || m.Duration == nil {
			return
		}
		timing := Timing{Unit: m.Target.Name, Duration: seconds(*m.Duration)}
		if m.RmetaTime != nil {
			timing.RmetaTime = seconds(*m.RmetaTime)
		}
		b.Timings = append(b.Timings, timing)
	}
}

// ParseMessages decodes the JSON messages written by cargo on r, one per
// line. Lines that are not JSON objects are skipped.
//
// It returns the build and an error if a message is malformed, otherwise it
// returns nil.
func ParseMessages(r io.Reader) (*Build, error) {

	build := new(Build)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16<<20)

	for n := 1; scanner.Scan(); n++ {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] != '{' {
			continue
		}
		m := new(message)
		if err := json.Unmarshal(line, m); err != nil {
			return nil, errors.Wrapf(ErrInvalidCargoOutput, "line %d: %v", n, err)
		}
		build.add(m)
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "cannot read cargo output")
	}

	return build, nil
}
