// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package buildtool

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloattool/srcs/binarytool/analyser"
	"bloattool/srcs/binarytool/archive"
	"bloattool/srcs/binarytool/symbols"
)

func init() {
	color.NoColor = true
}

const cargoOutput = `{"reason":"compiler-artifact","package_id":"serde 1.0.0","target":{"kind":["lib"],"crate_types":["lib"],"name":"serde"},"filenames":["/p/target/debug/deps/libserde-1111.rlib","/p/target/debug/deps/libserde-1111.rmeta"],"fresh":false}
{"reason":"build-script-executed","package_id":"serde 1.0.0","linked_libs":[],"out_dir":"/p/target/debug/build/serde-2222/out"}
{"reason":"compiler-message","package_id":"app 0.1.0","message":{"rendered":"warning: unused"}}
{"reason":"timing-info","package_id":"serde 1.0.0","target":{"kind":["lib"],"crate_types":["lib"],"name":"serde"},"mode":"build","duration":1.5,"rmeta_time":0.5}
{"reason":"compiler-artifact","package_id":"my-lib 0.1.0","target":{"kind":["lib"],"crate_types":["rlib","cdylib"],"name":"my-lib"},"filenames":["/p/target/debug/libmy_lib.rlib","/p/target/debug/libmy_lib.so"]}
{"reason":"compiler-artifact","package_id":"derive 0.1.0","target":{"kind":["proc-macro"],"crate_types":["proc-macro"],"name":"derive"},"filenames":["/p/target/debug/deps/libderive.so"]}
{"reason":"compiler-artifact","package_id":"app 0.1.0","target":{"kind":["bin"],"crate_types":["bin"],"name":"app"},"filenames":["/p/target/debug/app"]}
{"reason":"build-finished","success":true}
`

func TestParseMessages(t *testing.T) {
	build, err := ParseMessages(strings.NewReader("   Compiling app\n" + cargoOutput))
	require.NoError(t, err)

	assert.Equal(t, []Artifact{
		{Kind: analyser.Library, Name: "serde", Path: "/p/target/debug/deps/libserde-1111.rlib"},
		{Kind: analyser.Library, Name: "my_lib", Path: "/p/target/debug/libmy_lib.rlib"},
		{Kind: analyser.DynLib, Name: "my_lib", Path: "/p/target/debug/libmy_lib.so"},
		{Kind: analyser.Binary, Name: "app", Path: "/p/target/debug/app"},
	}, build.Artifacts)

	require.Len(t, build.Timings, 1)
	assert.Equal(t, Timing{Unit: "serde", Duration: 1500 * time.Millisecond,
		RmetaTime: 500 * time.Millisecond}, build.Timings[0])
}

func TestParseMessagesInvalid(t *testing.T) {
	_, err := ParseMessages(strings.NewReader(`{"reason":"compiler-artifact",` + "\n"))
	require.Error(t, err)
	assert.Equal(t, ErrInvalidCargoOutput, errors.Cause(err))
	assert.Contains(t, err.Error(), "line 1")
}

func TestParseRlibName(t *testing.T) {
	tests := []struct {
		name string
		unit symbols.UnitName
		ok   bool
	}{
		{"libstd-8e4bd2a6a2b4c5d1.rlib", "std", true},
		{"libcore-0123.rlib", "core", true},
		{"libproc_macro-abcd.rlib", "proc_macro", true},
		{"liballoc.rlib", "alloc", true},
		{"libstd-8e4bd2a6a2b4c5d1.so", "", false},
		{"std-0123.rlib", "", false},
		{"lib-0123.rlib", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit, ok := ParseRlibName(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.unit, unit)
		})
	}
}

func TestFindStdUnits(t *testing.T) {
	fs := afero.NewMemMapFs()
	dir := "/rust/lib/rustlib/x86_64-unknown-linux-gnu/lib"
	for _, name := range []string{"libstd-1.rlib", "libcore-2.rlib", "libstd-1.so",
		"self-contained/crt1.o"} {
		require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, name), nil, 0o644))
	}

	archives, err := FindStdUnits(fs, dir)
	require.NoError(t, err)
	assert.Equal(t, []archive.Archive{
		{Unit: "core", Path: filepath.Join(dir, "libcore-2.rlib")},
		{Unit: "std", Path: filepath.Join(dir, "libstd-1.rlib")},
	}, archives)

	_, err = FindStdUnits(fs, "/missing")
	require.Error(t, err)
}

type fakeRustc struct {
	calls [][]string
	out   string
	err   error
}

func (f *fakeRustc) run(_ context.Context, command string, arguments []string) (string, error) {
	f.calls = append(f.calls, append([]string{command}, arguments...))
	return f.out, f.err
}

func TestToolchainTargetLibDir(t *testing.T) {
	fake := &fakeRustc{out: "/rust/lib/rustlib/wasm32/lib\n"}
	tc := &Toolchain{Rustc: "rustc", RustFlags: []string{"-Copt-level=z"}, Run: fake.run}

	dir, err := tc.TargetLibDir(context.Background(), "wasm32-unknown-unknown")
	require.NoError(t, err)
	assert.Equal(t, "/rust/lib/rustlib/wasm32/lib", dir)
	assert.Equal(t, [][]string{{"rustc", "-Copt-level=z", "--print", "target-libdir",
		"--target", "wasm32-unknown-unknown"}}, fake.calls)

	fake.out = ""
	_, err = tc.TargetLibDir(context.Background(), "")
	assert.ErrorIs(t, err, ErrRustcFailed)

	fake.err = errors.New("exit status 1")
	_, err = tc.TargetLibDir(context.Background(), "")
	assert.Equal(t, ErrRustcFailed, errors.Cause(err))
}

func TestToolchainHostTriple(t *testing.T) {
	fake := &fakeRustc{out: "rustc 1.80.0 (051478957 2024-07-21)\n" +
		"binary: rustc\nhost: x86_64-unknown-linux-gnu\nrelease: 1.80.0\n"}
	tc := &Toolchain{Rustc: "rustc", Run: fake.run}

	host, err := tc.HostTriple(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "x86_64-unknown-linux-gnu", host)

	fake.out = "rustc 1.80.0\n"
	_, err = tc.HostTriple(context.Background())
	assert.Equal(t, ErrRustcFailed, errors.Cause(err))
}

func sampleBuild() *Build {
	return &Build{
		Artifacts: []Artifact{
			{Kind: analyser.Library, Name: "std_compat", Path: "/p/libstd_compat.rlib"},
			{Kind: analyser.Library, Name: "serde", Path: "/p/libserde.rlib"},
			{Kind: analyser.Binary, Name: "tool", Path: "/p/tool"},
			{Kind: analyser.Library, Name: "app", Path: "/p/libapp.rlib"},
			{Kind: analyser.Binary, Name: "app", Path: "/p/app"},
		},
		Duration: 3 * time.Second,
	}
}

func TestNewContext(t *testing.T) {
	std := []archive.Archive{
		{Unit: "core", Path: "/rust/libcore-1.rlib"},
		{Unit: "serde", Path: "/rust/libserde-2.rlib"},
		{Unit: "std", Path: "/rust/libstd-3.rlib"},
	}

	bctx, err := NewContext(sampleBuild(), std, "")
	require.NoError(t, err)

	assert.Equal(t, "/p/app", bctx.BinaryPath)
	assert.Equal(t, analyser.Binary, bctx.Kind)
	assert.Equal(t, 3*time.Second, bctx.BuildDuration)
	assert.Equal(t, []symbols.UnitName{"app", "serde", "std_compat", "tool"}, bctx.DepUnits)
	assert.Equal(t, []symbols.UnitName{"core", "std"}, bctx.StdUnits)
	assert.Len(t, bctx.Archives, 6)
	assert.Equal(t, archive.Archive{Unit: "std_compat", Path: "/p/libstd_compat.rlib"}, bctx.Archives[0])

	named, err := NewContext(sampleBuild(), nil, "tool")
	require.NoError(t, err)
	assert.Equal(t, "/p/tool", named.BinaryPath)
	assert.Empty(t, named.StdUnits)
}

func TestNewContextErrors(t *testing.T) {
	_, err := NewContext(sampleBuild(), nil, "missing")
	assert.ErrorIs(t, err, ErrNoArtifacts)

	libsOnly := &Build{Artifacts: []Artifact{{Kind: analyser.Library, Name: "a", Path: "/a.rlib"}}}
	_, err = NewContext(libsOnly, nil, "")
	assert.ErrorIs(t, err, ErrNoArtifacts)
}

func TestBuildOptions(t *testing.T) {
	opts := buildOptions{Dir: "/p", Bin: "app", Release: true, Target: "aarch64-apple-darwin",
		Extra: []string{"--features", "fast"}}

	assert.Equal(t, []string{"--release", "--target", "aarch64-apple-darwin", "--bin", "app",
		"--features", "fast"}, opts.cargoArguments())
	assert.Equal(t, filepath.Join("/p", "target", "aarch64-apple-darwin", "release"), opts.irRoot())
	assert.Equal(t, filepath.Join("/p", "target", "debug"), buildOptions{Dir: "/p"}.irRoot())
	assert.Equal(t, "--emit=llvm-ir", irRustFlags(""))
	assert.Equal(t, "-Cdebuginfo=0 --emit=llvm-ir", irRustFlags("-Cdebuginfo=0"))
}

func TestWriteTimings(t *testing.T) {
	var buf bytes.Buffer
	WriteTimings(&buf, []Timing{
		{Unit: "serde", Duration: 2 * time.Second, RmetaTime: 500 * time.Millisecond},
		{Unit: "app", Duration: time.Second},
		{Unit: "libc", Duration: 100 * time.Millisecond},
	}, 2)
	out := buf.String()

	assert.Contains(t, out, "2.00s")
	assert.Contains(t, out, "1.50s")
	assert.Less(t, strings.Index(out, "serde"), strings.Index(out, "app"))
	assert.NotContains(t, out, "libc")
}

// fakeCargo writes an executable script printing output on stdout.
func fakeCargo(t *testing.T, output string, status int) string {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "cargo")
	script := "#!/bin/sh\ncat <<'MESSAGES'\n" + output + "MESSAGES\necho 'error: oops' >&2\nexit " +
		string(rune('0'+status)) + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestCargoBuild(t *testing.T) {
	cargo := &Cargo{Command: fakeCargo(t, cargoOutput, 0)}

	build, err := cargo.Build(context.Background(), t.TempDir(), []string{"--release"})
	require.NoError(t, err)
	assert.Len(t, build.Artifacts, 4)
	assert.Positive(t, build.Duration)
}

func TestCargoBuildFailure(t *testing.T) {
	cargo := &Cargo{Command: fakeCargo(t, "", 1)}

	_, err := cargo.Build(context.Background(), t.TempDir(), nil)
	require.Error(t, err)
	assert.Equal(t, ErrCargoFailed, errors.Cause(err))
	assert.Contains(t, err.Error(), "error: oops")
}
