// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

// Package analyser runs the whole analysis of a binary: symbol extraction,
// attribution of the symbols to units and, optionally, the analysis of the
// LLVM IR of the build.
package analyser

import (
	"context"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"bloattool/srcs/binarytool/archive"
	"bloattool/srcs/binarytool/attribution"
	"bloattool/srcs/binarytool/extractor"
	"bloattool/srcs/binarytool/symbols"
	"bloattool/srcs/irtool/llvmir"
)

// ErrUnsupportedKind is returned for artifacts whose code is not linked into
// a single image.
var ErrUnsupportedKind = errors.New("only 'bin', 'dylib' and 'cdylib' artifacts are supported")

// Analyser analyses binaries according to its configuration.
type Analyser struct {
	Config  *Config
	Logger  log.Logger
	Metrics *Metrics
	// Fs is the filesystem holding the IR files.
	Fs afero.Fs
}

// New creates an analyser. A nil configuration stands for DefaultConfig.
func New(cfg *Config, logger log.Logger) *Analyser {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Analyser{
		Config: cfg,
		Logger: logger,
		Fs:     afero.NewOsFs(),
	}
}

// Analyze extracts, attributes and (if enabled) analyses the IR of the binary
// described by bctx. A missing IR tree is only reported as a warning.
//
// It returns the snapshot of the binary and an error if any, otherwise it
// returns nil.
func (a *Analyser) Analyze(ctx context.Context, bctx Context) (*Snapshot, error) {

	start := time.Now()

	if bctx.Kind == Library {
		return nil, errors.Wrap(ErrUnsupportedKind, bctx.BinaryPath)
	}

	res, err := extractor.New(a.Logger).Extract(bctx.BinaryPath, a.Config.CodeSection)
	if err != nil {
		return nil, err
	}

	index, err := archive.BuildIndex(bctx.Archives)
	if err != nil {
		return nil, err
	}
	level.Debug(a.Logger).Log("msg", "dependency index built",
		"archives", len(bctx.Archives), "symbols", index.Len())

	snapshot := NewSnapshot(bctx.BinaryPath, res.Format.String(), res.FileSize,
		res.TextSize, res.Symbols)
	snapshot.BuildDuration = bctx.BuildDuration

	resolver := attribution.NewResolver(index, bctx.StdUnits, bctx.DepUnits)
	snapshot.Enrich(resolver, a.Config.MergeStd)
	a.Metrics.observeSnapshot(snapshot)

	if a.Config.AnalyzeIR {
		ir, err := a.analyzeIR(ctx, bctx)
		if err != nil {
			return nil, err
		}
		snapshot.IR = ir
	}

	if a.Metrics != nil {
		a.Metrics.Duration.Observe(time.Since(start).Seconds())
	}

	level.Info(a.Logger).Log("msg", "binary analysed", "path", bctx.BinaryPath,
		"format", snapshot.Format, "symbols", len(snapshot.Symbols),
		"text_size", snapshot.TextSize)

	return snapshot, nil
}

// analyzeIR returns nil without error when no IR file can be found.
func (a *Analyser) analyzeIR(ctx context.Context, bctx Context) (*llvmir.Analysis, error) {

	root := bctx.IRRoot
	if len(root) == 0 {
		root = a.Config.IRRoot
	}
	if len(root) == 0 {
		level.Warn(a.Logger).Log("msg", "llvm ir analysis skipped", "reason", "no ir root")
		return nil, nil
	}

	an := &llvmir.Analyzer{
		Fs:          a.Fs,
		Workers:     a.Config.IRWorkers,
		Logger:      a.Logger,
		FilesParsed: a.Metrics.irCounter(),
	}

	ir, err := an.AnalyzeDirectory(ctx, root)
	if symbols.IsNoIRFiles(err) {
		level.Warn(a.Logger).Log("msg", "llvm ir analysis skipped", "err", err)
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "llvm ir analysis failed")
	}

	return ir, nil
}
