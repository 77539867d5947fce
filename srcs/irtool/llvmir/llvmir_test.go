// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package llvmir

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"bloattool/srcs/binarytool/symbols"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	dropInPlace = "core::ptr::drop_in_place<substance::BloatError>"
	debugFmt    = "<&T as core::fmt::Debug>::fmt"
)

const sampleIR = `; ModuleID = 'test'
source_filename = "test"

define internal void @"_ZN4core3ptr42drop_in_place$LT$substance..BloatError$GT$17h70910838441ee278E"(ptr align 8 %_1) unnamed_addr #0 !dbg !123 {
start:
  %a = alloca [8 x i8], align 8
  %b = alloca [8 x i8], align 8
  call void @some_function()
  ret void
}

define internal void @"_ZN42_$LT$$RF$T$u20$as$u20$core..fmt..Debug$GT$3fmt17haddeafc23f955172E"(ptr %self) unnamed_addr #0 !dbg !456 {
start:
  %temp = alloca [16 x i8], align 8
  call void @another_function()
  call void @yet_another_function()
  ret void
}

define internal void @"_ZN42_$LT$$RF$T$u20$as$u20$core..fmt..Debug$GT$3fmt17haddeafc23f955172E"(ptr %self) unnamed_addr #0 !dbg !789 {
start:
  %duplicate = alloca [8 x i8], align 8
  ret void
}
`

func TestParseData(t *testing.T) {
	functions, err := ParseData(strings.NewReader(sampleIR))
	require.NoError(t, err)
	require.Len(t, functions, 2)

	assert.Equal(t, FunctionStats{Name: dropInPlace, TotalLines: 4, Copies: 1},
		functions[dropInPlace])
	assert.Equal(t, FunctionStats{Name: debugFmt, TotalLines: 6, Copies: 2},
		functions[debugFmt])

	lines, copies := functions.Totals()
	assert.Equal(t, symbols.LineCount(10), lines)
	assert.Equal(t, symbols.CopyCount(3), copies)
}

func TestParseDataIgnoresNestedAndStrayLines(t *testing.T) {
	ir := "define void @plain() {\n" +
		"start:\n" +
		"  br label %bb1\n" +
		"    %nested = add i32 1, 2\n" +
		"\t%tab = add i32 1, 2\n" +
		"  ret void\n" +
		"}\n" +
		"  %orphan = add i32 1, 2\n" +
		"}\n" +
		"define void @after() {\n" +
		"  ret void\n" +
		"}\n"

	functions, err := ParseData(strings.NewReader(ir))
	require.NoError(t, err)
	require.Len(t, functions, 2)
	assert.Equal(t, symbols.LineCount(2), functions["plain"].TotalLines)
	assert.Equal(t, symbols.LineCount(1), functions["after"].TotalLines)
	assert.Equal(t, symbols.CopyCount(1), functions["after"].Copies)
}

func TestFunctionName(t *testing.T) {
	tests := []struct {
		line string
		want string
		ok   bool
	}{
		{
			`define internal void @"_ZN4core3ptr42drop_in_place$LT$substance..BloatError$GT$17h70910838441ee278E"(ptr align 8 %_1) unnamed_addr #0 !dbg !123`,
			dropInPlace, true,
		},
		{
			`define internal void @"_ZN42_$LT$$RF$T$u20$as$u20$core..fmt..Debug$GT$3fmt17haddeafc23f955172E"(ptr %self) unnamed_addr #0 !dbg !456`,
			debugFmt, true,
		},
		{
			`define internal void @"_ZN4core3fmt3num50_$LT$impl$u20$core..fmt..Debug$u20$for$u20$u32$GT$3fmt17h245219febfc19038E"(ptr %self) unnamed_addr #0 !dbg !789`,
			"core::fmt::num::<impl core::fmt::Debug for u32>::fmt", true,
		},
		{
			`define internal void @"_ZN3std2rt10lang_start28_$u7b$$u7b$closure$u7d$$u7d$17h0455556706c7eca7E"(ptr %self) unnamed_addr #0 !dbg !999`,
			"std::rt::lang_start::{{closure}}", true,
		},
		{"define i32 @main(i32 %0, ptr %1)", "main", true},
		{"define i32 main", "", false},
		{"define i32 @main", "", false},
	}

	for _, tt := range tests {
		got, ok := FunctionName(tt.line)
		assert.Equal(t, tt.ok, ok, tt.line)
		assert.Equal(t, tt.want, got, tt.line)
	}
}

func TestFunctionUnit(t *testing.T) {
	tests := []struct {
		name string
		want symbols.UnitName
	}{
		{dropInPlace, "core"},
		{debugFmt, "core"},
		{"std::rt::lang_start::{{closure}}", "std"},
		{"serde::ser::Serialize::serialize", "serde"},
		{"<serde_json::Value as alloc::string::ToString>::to_string", "alloc"},
		{"<impl Foo>::bar", "bar"},
		{"Vec::push", "push"},
		{"1abc::thing", "thing"},
		{"<T as Drop>::drop", UnknownUnit},
		{"{{closure}}", UnknownUnit},
		{"", UnknownUnit},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FunctionUnit(tt.name), tt.name)
	}
}

func TestFileUnit(t *testing.T) {
	assert.Equal(t, symbols.UnitName("core"),
		FileUnit(dropInPlace, "target/debug/deps/app-0f1e.ll"))
	assert.Equal(t, symbols.UnitName("serde_json"),
		FileUnit("{{closure}}", "target/debug/deps/serde_json-0a1b2c3d.ll"))
	assert.Equal(t, symbols.UnitName("my-crate"),
		FileUnit("{{closure}}", "my-crate-0a1b.ll"))
	assert.Equal(t, UndemangledUnit, FileUnit("{{closure}}", "main.ll"))
}

func writeFiles(t *testing.T, fs afero.Fs, files map[string]string) {
	t.Helper()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
}

func function(mangled string, body int) string {
	var b strings.Builder
	b.WriteString("define void @" + mangled + "() {\nstart:\n")
	for i := 0; i < body; i++ {
		b.WriteString("  call void @f()\n")
	}
	b.WriteString("}\n")
	return b.String()
}

func TestFindFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"/target/debug/deps/app-1234.ll":                     "",
		"/target/debug/deps/serde-abcd.ll":                   "",
		"/target/debug/deps/serde-abcd.rlib":                 "",
		"/target/debug/build/foo/build_script_build-1234.ll": "",
		"/target/debug/build/bar/build-script-main.ll":       "",
		"/target/debug/incremental/app-x/s-1/cgu.0.ll":       "",
		"/target/release/deps/app-9999.ll":                   "",
	})

	files, err := FindFiles(fs, SearchRoot("/target", ""))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/target/debug/deps/app-1234.ll",
		"/target/debug/deps/serde-abcd.ll",
		"/target/debug/incremental/app-x/s-1/cgu.0.ll",
	}, files)

	files, err = FindFiles(fs, SearchRoot("/target", "release"))
	require.NoError(t, err)
	assert.Equal(t, []string{"/target/release/deps/app-9999.ll"}, files)
}

func TestFindFilesNone(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"/target/debug/deps/app-1234.rlib":                   "",
		"/target/debug/build/foo/build_script_build-1234.ll": "",
	})

	_, err := FindFiles(fs, "/target/debug")
	require.Error(t, err)
	assert.True(t, symbols.IsNoIRFiles(err))

	_, err = FindFiles(fs, "/missing")
	require.Error(t, err)
	assert.True(t, symbols.IsNoIRFiles(err))
}

func commutativityFiles() map[string]string {
	return map[string]string{
		"/ir/app-0001.ll": function("_ZN3app4main17h0123456789abcdefE", 3) +
			function("_ZN4core3ptr13drop_in_place17h1111111111111111E", 2),
		"/ir/app-0002.ll": function("_ZN4core3ptr13drop_in_place17h2222222222222222E", 5) +
			function("_ZN3app4main17h0123456789abcdefE", 1),
		"/ir/serde-0003.ll": function("_ZN5serde3ser3ser17h3333333333333333E", 7) +
			function("Weird", 2),
		"/ir/serde-0004.ll": function("_ZN4core3ptr13drop_in_place17h4444444444444444E", 1),
	}
}

func TestAnalyzeCommutative(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, commutativityFiles())

	paths := []string{"/ir/app-0001.ll", "/ir/app-0002.ll", "/ir/serde-0003.ll", "/ir/serde-0004.ll"}
	reversed := []string{paths[3], paths[2], paths[1], paths[0]}

	var results []*Analysis
	for _, workers := range []int{1, 2, 8} {
		for _, order := range [][]string{paths, reversed} {
			an := &Analyzer{Fs: fs, Workers: workers}
			analysis, err := an.Analyze(context.Background(), order)
			require.NoError(t, err)
			results = append(results, analysis)
		}
	}

	first := results[0]
	assert.Equal(t, FunctionStats{Name: "core::ptr::drop_in_place", TotalLines: 8, Copies: 3},
		first.Functions["core::ptr::drop_in_place"])
	assert.Equal(t, FunctionStats{Name: "app::main", TotalLines: 4, Copies: 2},
		first.Functions["app::main"])
	assert.Equal(t, symbols.LineCount(21), first.TotalLines)
	assert.Equal(t, symbols.CopyCount(7), first.TotalCopies)
	assert.Equal(t, []symbols.UnitName{"app", "core", "serde"}, first.UnitNames())
	assert.Contains(t, first.Units["serde"], "Weird")

	for _, other := range results[1:] {
		assert.Equal(t, first.Functions, other.Functions)
		assert.Equal(t, first.Units, other.Units)
		assert.Equal(t, first.TotalLines, other.TotalLines)
		assert.Equal(t, first.TotalCopies, other.TotalCopies)
		assert.ElementsMatch(t, first.Files, other.Files)
	}
}

func TestAnalyzeCountsFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, commutativityFiles())

	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "files"})
	an := &Analyzer{Fs: fs, Workers: 2, FilesParsed: counter}

	analysis, err := an.AnalyzeDirectory(context.Background(), "/ir")
	require.NoError(t, err)
	assert.Len(t, analysis.Files, 4)
	assert.Equal(t, 4.0, testutil.ToFloat64(counter))

	sorted := analysis.SortedFunctions()
	require.NotEmpty(t, sorted)
	assert.Equal(t, "core::ptr::drop_in_place", sorted[0].Name)
}

func TestAnalyzeFailurePropagates(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, commutativityFiles())

	an := &Analyzer{Fs: fs, Workers: 2}
	analysis, err := an.Analyze(context.Background(),
		[]string{"/ir/app-0001.ll", "/ir/missing.ll", "/ir/serde-0003.ll"})
	require.Error(t, err)
	assert.Nil(t, analysis)
	assert.ErrorIs(t, err, symbols.ErrOpenFailed)
}

func TestAnalyzeDirectoryWithoutFiles(t *testing.T) {
	an := &Analyzer{Fs: afero.NewMemMapFs()}
	_, err := an.AnalyzeDirectory(context.Background(), "/target/debug")
	assert.True(t, symbols.IsNoIRFiles(err))
}

func TestAnalysisRestrict(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, commutativityFiles())

	analysis, err := (&Analyzer{Fs: fs, Workers: 2}).AnalyzeDirectory(context.Background(), "/ir")
	require.NoError(t, err)

	serde, ok := analysis.Restrict("serde")
	require.True(t, ok)
	assert.Equal(t, symbols.LineCount(9), serde.TotalLines)
	assert.Equal(t, symbols.CopyCount(2), serde.TotalCopies)
	assert.Equal(t, []symbols.UnitName{"serde"}, serde.UnitNames())
	assert.Len(t, serde.Functions, 2)
	assert.Len(t, serde.Files, 4)

	_, ok = analysis.Restrict("tokio")
	assert.False(t, ok)
}
