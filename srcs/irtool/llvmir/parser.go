// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

// Package llvmir counts how many times each function of a crate was
// instantiated in the textual LLVM IR emitted by rustc, and how many IR lines
// those instantiations account for.
package llvmir

import (
	"bufio"
	"io"
	"strings"

	"bloattool/srcs/binarytool/symbols"
)

const (
	defineKeyword = "define "
	closingBrace  = "}"
	bodyIndent    = "  "
	maxLineSize   = 64 << 20
)

// FunctionStats holds the instantiation statistics of a single function.
type FunctionStats struct {
	Name       string            `json:"name"`
	TotalLines symbols.LineCount `json:"total_lines"`
	Copies     symbols.CopyCount `json:"copies"`
}

// Add merges other into s. Add is associative and commutative.
func (s FunctionStats) Add(other FunctionStats) FunctionStats {
	return FunctionStats{
		Name:       s.Name,
		TotalLines: s.TotalLines.Add(other.TotalLines),
		Copies:     s.Copies.Add(other.Copies),
	}
}

// Functions maps a demangled, hash-stripped function name to its statistics.
type Functions map[string]FunctionStats

func (f Functions) record(name string, lines symbols.LineCount) {
	f.add(FunctionStats{Name: name, TotalLines: lines, Copies: 1})
}

func (f Functions) add(stats FunctionStats) {
	if current, ok := f[stats.Name]; ok {
		f[stats.Name] = current.Add(stats)
		return
	}
	f[stats.Name] = stats
}

// Merge adds every entry of other into f.
func (f Functions) Merge(other Functions) {
	for _, stats := range other {
		f.add(stats)
	}
}

// Totals returns the sum of lines and copies over all functions.
func (f Functions) Totals() (symbols.LineCount, symbols.CopyCount) {
	var lines symbols.LineCount
	var copies symbols.CopyCount
	for _, stats := range f {
		lines = lines.Add(stats.TotalLines)
		copies = copies.Add(stats.Copies)
	}
	return lines, copies
}

// ParseData scans an IR module and returns the statistics of the functions it
// defines.
//
// It returns the functions found and an error if the reader fails, otherwise
// it returns nil.
func ParseData(r io.Reader) (Functions, error) {

	functions := make(Functions)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	current, tracking := "", false
	var count symbols.LineCount
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, defineKeyword):
			current, tracking = FunctionName(line)
		case line == closingBrace:
			if tracking {
				functions.record(current, count)
			}
			current, tracking = "", false
			count = 0
		case strings.HasPrefix(line, bodyIndent) &&
			!strings.HasPrefix(line, bodyIndent+" "):
			count++
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return functions, nil
}

// FunctionName extracts the function name of a define line. The mangled name
// is read between '@' and '(' and then demangled with its hash removed.
//
// It returns the name and true if the line holds a function name, otherwise
// it returns false.
func FunctionName(line string) (string, bool) {

	start := strings.IndexByte(line, '@')
	if start < 0 {
		return "", false
	}
	rest := line[start+1:]

	end := strings.IndexByte(rest, '(')
	if end < 0 {
		return "", false
	}

	mangled := strings.Trim(rest[:end], `"`)
	return symbols.StripHash(symbols.Demangle(mangled).Trimmed), true
}
