// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package analyser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloattool/srcs/binarytool/archive"
	"bloattool/srcs/binarytool/symbols"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bloat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
merge_std: false
analyze_ir: true
ir_root: target/release
ir_workers: 2
archives:
  - unit: serde
    path: target/release/deps/libserde-0123.rlib
std_units: [std, core]
dep_units: [serde]
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ".text", cfg.CodeSection)
	assert.False(t, cfg.MergeStd)
	assert.True(t, cfg.AnalyzeIR)
	assert.Equal(t, 2, cfg.IRWorkers)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []archive.Archive{
		{Unit: "serde", Path: "target/release/deps/libserde-0123.rlib"},
	}, cfg.Archives)

	ctx := NewContext("app", cfg)
	assert.Equal(t, []symbols.UnitName{"std", "core"}, ctx.StdUnits)
	assert.Equal(t, "target/release", ctx.IRRoot)
	assert.Equal(t, Binary, ctx.Kind)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	tests := []string{
		"code_section: ''\n",
		"ir_workers: -1\n",
		"archives:\n  - unit: serde\n",
		"merge_std: [\n",
	}
	for _, content := range tests {
		path := filepath.Join(t.TempDir(), "bloat.yaml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		_, err := LoadConfig(path)
		assert.Error(t, err, content)
	}
}
