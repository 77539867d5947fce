// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package report

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloattool/srcs/binarytool/analyser"
	"bloattool/srcs/binarytool/comparison"
	"bloattool/srcs/binarytool/symbols"
	"bloattool/srcs/irtool/llvmir"
)

func init() {
	color.NoColor = true
}

func enriched(trimmed, complete string, unit symbols.UnitName, exact bool,
	size symbols.ByteSize) analyser.EnrichedSymbol {
	return analyser.EnrichedSymbol{
		RawSymbol: symbols.RawSymbol{
			MangledName:   "_ZN" + trimmed,
			DemangledName: complete,
			TrimmedName:   trimmed,
			Size:          size,
			Scheme:        symbols.Legacy,
		},
		Unit:  unit,
		Exact: exact,
	}
}

func sampleSnapshot() *analyser.Snapshot {
	return &analyser.Snapshot{
		Binary:   "/target/release/app",
		Format:   "elf64",
		FileSize: 10000,
		TextSize: 4000,
		Symbols: []analyser.EnrichedSymbol{
			enriched("serde::de::deserialize", "serde::de::deserialize::h0123456789abcdef",
				"serde", true, 2000),
			enriched("<T as x::Y>::f", "<T as x::Y>::f::h0123456789abcdef", "x", false, 500),
			enriched("std::io::print", "std::io::print::h0123456789abcdef", "std", true, 1500),
		},
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "0 B", FormatBytes(0))
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.5 KiB", FormatBytes(1536))
	assert.Equal(t, "1.0 MiB", FormatBytes(1<<20))

	assert.Equal(t, "no change", FormatSizeDiff(0))
	assert.Equal(t, "+2.0 KiB", FormatSizeDiff(2048))
	assert.Equal(t, "-2.0 KiB", FormatSizeDiff(-2048))

	assert.Equal(t, "123.5%", FormatPercent(123.456))
	assert.Equal(t, "+10.0%", FormatPercentChange(10, true))
	assert.Equal(t, "-5.5%", FormatPercentChange(-5.5, true))
	assert.Equal(t, "0.0%", FormatPercentChange(0, true))
	assert.Equal(t, "-", FormatPercentChange(12, false))

	assert.Equal(t, "1.50s", FormatDuration(1500*time.Millisecond))
	assert.Equal(t, "+0.25s", FormatDurationDiff(250*time.Millisecond))
	assert.Equal(t, "-0.75s", FormatDurationDiff(-750*time.Millisecond))

	assert.Equal(t, "1 file", FormatCount(1, "file"))
	assert.Equal(t, "0 files", FormatCount(0, "file"))
	assert.Equal(t, "1,200 symbols", FormatCount(1200, "symbol"))

	assert.Equal(t, "serde", UnitLabel("serde", true))
	assert.Equal(t, "serde?", UnitLabel("serde", false))
}

func TestWriteTopUnits(t *testing.T) {
	var buf bytes.Buffer
	WriteTopUnits(&buf, sampleSnapshot(), Options{Limit: 2})
	out := buf.String()

	assert.Contains(t, out, "serde")
	assert.Contains(t, out, "20.0%")
	assert.Contains(t, out, "50.0%")
	assert.Contains(t, out, "std")
	assert.NotContains(t, out, "x?")
	assert.Less(t, strings.Index(out, "serde"), strings.Index(out, "std"))
}

func TestWriteTopSymbols(t *testing.T) {
	var buf bytes.Buffer
	WriteTopSymbols(&buf, sampleSnapshot(), Options{})
	out := buf.String()
	assert.Contains(t, out, "x?")
	assert.Contains(t, out, "<T as x::Y>::f")
	assert.NotContains(t, out, "h0123456789abcdef")

	buf.Reset()
	WriteTopSymbols(&buf, sampleSnapshot(), Options{FullNames: true, Limit: 1})
	out = buf.String()
	assert.Contains(t, out, "serde::de::deserialize::h0123456789abcdef")
	assert.NotContains(t, out, "std::io::print")

	buf.Reset()
	WriteSummary(&buf, sampleSnapshot())
	assert.Contains(t, buf.String(), "Text size: 3.9 KiB (40.0% of file)")
	assert.Contains(t, buf.String(), "3 symbols")
}

func comparisonFixture() *comparison.Result {
	before := sampleSnapshot()
	after := sampleSnapshot()
	after.FileSize = 12048
	after.Symbols[0].Size = 3000
	after.Symbols = append(after.Symbols[:2],
		enriched("regex::compile", "regex::compile::h0123456789abcdef", "regex", true, 64))
	after.BuildDuration = 2 * time.Second
	return comparison.Compare(before, after)
}

func TestWriteComparison(t *testing.T) {
	var buf bytes.Buffer
	WriteComparison(&buf, comparisonFixture(), Options{})
	out := buf.String()

	assert.Contains(t, out, "File size: 9.8 KiB -> 12 KiB (+2.0 KiB)")
	assert.Contains(t, out, "Build time: 0.00s -> 2.00s (+2.00s)")
	assert.Contains(t, out, "+50.0%")
	assert.Contains(t, out, "regex::compile")
	assert.NotContains(t, out, "<T as x::Y>::f", "unchanged symbols are skipped")
	assert.Less(t, strings.Index(out, "serde::de::deserialize"), strings.Index(out, "regex::compile"))
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	WriteMarkdown(&buf, comparisonFixture(), Options{Limit: 10})
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "## Binary size comparison\n"))
	assert.Contains(t, out, "### Crates")
	assert.Contains(t, out, "### Symbols")
	assert.Contains(t, out, "`serde::de::deserialize`")
	assert.Contains(t, out, "`regex`")
	assert.Contains(t, out, "|")
	assert.NotContains(t, out, "\x1b[")
}

func TestSnapshotPersistence(t *testing.T) {
	s := sampleSnapshot()
	s.BuildDuration = 1500 * time.Millisecond
	s.IR = llvmir.NewAnalysis()
	s.IR.Add("/t/app-0001.ll", llvmir.Functions{
		"app::main":       {Name: "app::main", TotalLines: 4, Copies: 1},
		"core::ptr::drop": {Name: "core::ptr::drop", TotalLines: 6, Copies: 2},
	})

	path := filepath.Join(t.TempDir(), "before.json")
	require.True(t, IsSnapshotFile(path))
	assert.False(t, IsSnapshotFile("/target/release/app"))
	require.NoError(t, SaveSnapshot(path, s))

	loaded, err := LoadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, s.Symbols, loaded.Symbols)
	assert.Equal(t, s.BuildDuration, loaded.BuildDuration)
	require.NotNil(t, loaded.IR)
	assert.Equal(t, s.IR.Functions, loaded.IR.Functions)
	assert.Equal(t, symbols.LineCount(10), loaded.IR.TotalLines)

	_, err = LoadSnapshot(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestIRTree(t *testing.T) {
	ir := llvmir.NewAnalysis()
	ir.Add("/t/app-0001.ll", llvmir.Functions{
		"app::main":        {Name: "app::main", TotalLines: 4, Copies: 1},
		"core::ptr::drop":  {Name: "core::ptr::drop", TotalLines: 6, Copies: 2},
		"core::fmt::write": {Name: "core::fmt::write", TotalLines: 1, Copies: 1},
	})

	var buf bytes.Buffer
	WriteIRTree(&buf, ir, Options{Limit: 1})
	out := buf.String()

	assert.Contains(t, out, "LLVM IR (lines: 11, copies: 4, files: 1)")
	assert.Contains(t, out, "[7 lines, 3 copies]  core")
	assert.Contains(t, out, "core::ptr::drop")
	assert.NotContains(t, out, "core::fmt::write")
	assert.NotContains(t, out, "app")
}

func TestWriteIRFunctions(t *testing.T) {
	ir := llvmir.NewAnalysis()
	ir.Add("/t/app-0001.ll", llvmir.Functions{
		"app::main":        {Name: "app::main", TotalLines: 4, Copies: 1},
		"core::ptr::drop":  {Name: "core::ptr::drop", TotalLines: 6, Copies: 2},
		"core::fmt::write": {Name: "core::fmt::write", TotalLines: 1, Copies: 1},
	})

	var buf bytes.Buffer
	WriteIRFunctions(&buf, ir, Options{Limit: 2})
	out := buf.String()

	assert.Contains(t, out, "(TOTAL, 1 files)")
	assert.Contains(t, out, "54.5%")
	assert.Contains(t, out, "50.0%")
	assert.Less(t, strings.Index(out, "core::ptr::drop"), strings.Index(out, "app::main"))
	assert.NotContains(t, out, "core::fmt::write")
}

func TestDiffListings(t *testing.T) {
	before := sampleSnapshot()
	after := sampleSnapshot()
	after.Symbols[2].Size = 1600

	diff := DiffListings(Listing(before, false), Listing(after, false))
	assert.Equal(t, []string{
		"- std std::io::print 1500",
		"+ std std::io::print 1600",
	}, diff)

	assert.Empty(t, DiffListings(Listing(before, false), Listing(before, false)))
}
