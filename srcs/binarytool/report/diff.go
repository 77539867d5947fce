// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"bloattool/srcs/binarytool/analyser"
)

// Listing returns one "<unit> <name> <size>" line per symbol, sorted by name,
// so that two listings can be diffed line by line.
func Listing(s *analyser.Snapshot, full bool) []string {
	lines := make([]string, 0, len(s.Symbols))
	for _, sym := range s.Symbols {
		lines = append(lines, fmt.Sprintf("%s %s %d", sym.Unit, symbolName(sym, full),
			sym.Size))
	}
	sort.Strings(lines)
	return lines
}

// DiffListings diffs two listings and returns the removed lines prefixed
// with "-" and the added lines prefixed with "+". Common lines are skipped.
func DiffListings(before, after []string) []string {

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(joinLines(before), joinLines(after))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out []string
	for _, d := range diffs {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		default:
			continue
		}
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			out = append(out, prefix+line)
		}
	}
	return out
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
