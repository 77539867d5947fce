// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package llvmir

import (
	"context"
	"runtime"
	"sort"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"bloattool/srcs/binarytool/symbols"
)

// Analysis is the merged result of the analysis of a set of IR files.
type Analysis struct {
	// Functions holds the statistics of every function, all units merged.
	Functions Functions `json:"-"`
	// Units holds the same statistics grouped by unit.
	Units       map[symbols.UnitName]Functions `json:"units"`
	TotalLines  symbols.LineCount              `json:"total_lines"`
	TotalCopies symbols.CopyCount              `json:"total_copies"`
	Files       []string                       `json:"analyzed_files"`
}

// NewAnalysis creates an empty analysis.
func NewAnalysis() *Analysis {
	return &Analysis{
		Functions: make(Functions),
		Units:     make(map[symbols.UnitName]Functions),
	}
}

// Add merges the functions found in file into the analysis.
func (a *Analysis) Add(file string, functions Functions) {

	for _, stats := range functions {
		a.Functions.add(stats)

		unit := FileUnit(stats.Name, file)
		if _, ok := a.Units[unit]; !ok {
			a.Units[unit] = make(Functions)
		}
		a.Units[unit].add(stats)

		a.TotalLines = a.TotalLines.Add(stats.TotalLines)
		a.TotalCopies = a.TotalCopies.Add(stats.Copies)
	}

	a.Files = append(a.Files, file)
}

// Reindex rebuilds the flat function map from the per-unit maps, as after a
// JSON round trip.
func (a *Analysis) Reindex() {
	a.Functions = make(Functions)
	for _, functions := range a.Units {
		a.Functions.Merge(functions)
	}
}

// Restrict returns the part of the analysis made of the functions of unit,
// or false if the analysis holds none.
func (a *Analysis) Restrict(unit symbols.UnitName) (*Analysis, bool) {

	functions, ok := a.Units[unit]
	if !ok {
		return nil, false
	}

	sub := &Analysis{
		Units: map[symbols.UnitName]Functions{unit: functions},
		Files: a.Files,
	}
	sub.Reindex()
	sub.TotalLines, sub.TotalCopies = functions.Totals()

	return sub, true
}

// UnitNames returns the units of the analysis sorted by name.
func (a *Analysis) UnitNames() []symbols.UnitName {
	names := make([]symbols.UnitName, 0, len(a.Units))
	for name := range a.Units {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// SortedFunctions returns the functions of the analysis ordered by decreasing
// line count, then by name.
func (a *Analysis) SortedFunctions() []FunctionStats {
	return sortStats(a.Functions)
}

func sortStats(functions Functions) []FunctionStats {
	list := make([]FunctionStats, 0, len(functions))
	for _, stats := range functions {
		list = append(list, stats)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].TotalLines != list[j].TotalLines {
			return list[i].TotalLines > list[j].TotalLines
		}
		return list[i].Name < list[j].Name
	})
	return list
}

// Analyzer parses IR files with a bounded pool of workers.
type Analyzer struct {
	Fs      afero.Fs
	Workers int
	Logger  log.Logger

	// FilesParsed is incremented once per parsed file when set.
	FilesParsed prometheus.Counter
}

// NewAnalyzer creates an analyzer reading from the OS filesystem with one
// worker per CPU.
func NewAnalyzer(logger log.Logger) *Analyzer {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Analyzer{
		Fs:      afero.NewOsFs(),
		Workers: runtime.NumCPU(),
		Logger:  logger,
	}
}

func (an *Analyzer) fs() afero.Fs {
	if an.Fs == nil {
		return afero.NewOsFs()
	}
	return an.Fs
}

func (an *Analyzer) logger() log.Logger {
	if an.Logger == nil {
		return log.NewNopLogger()
	}
	return an.Logger
}

// Analyze parses every file of paths concurrently. Each worker owns the
// result of its file; results are merged once all workers are done, in the
// order of paths.
//
// It returns the merged analysis and the first error met by a worker if any,
// otherwise it returns nil.
func (an *Analyzer) Analyze(ctx context.Context, paths []string) (*Analysis, error) {

	results := make([]Functions, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	if an.Workers > 0 {
		g.SetLimit(an.Workers)
	}

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			functions, err := an.parseFile(path)
			if err != nil {
				return err
			}
			results[i] = functions
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	analysis := NewAnalysis()
	for i, path := range paths {
		analysis.Add(path, results[i])
	}

	level.Debug(an.logger()).Log("msg", "llvm ir analysed", "files", len(paths),
		"functions", len(analysis.Functions), "lines", analysis.TotalLines)

	return analysis, nil
}

// AnalyzeDirectory discovers the IR files under root and analyses them.
//
// It returns the merged analysis and an error of kind symbols.ErrNoIRFiles
// if root holds no IR file. Callers are expected to treat this kind as an
// absence of IR data.
func (an *Analyzer) AnalyzeDirectory(ctx context.Context, root string) (*Analysis, error) {

	files, err := FindFiles(an.fs(), root)
	if err != nil {
		return nil, err
	}

	level.Info(an.logger()).Log("msg", "llvm ir files found", "root", root,
		"count", len(files))

	return an.Analyze(ctx, files)
}

func (an *Analyzer) parseFile(path string) (Functions, error) {

	file, err := an.fs().Open(path)
	if err != nil {
		return nil, symbols.NewError(symbols.ErrOpenFailed, path, err)
	}
	defer file.Close()

	functions, err := ParseData(file)
	if err != nil {
		return nil, symbols.NewError(symbols.ErrOpenFailed, path, err)
	}

	if an.FilesParsed != nil {
		an.FilesParsed.Inc()
	}

	return functions, nil
}
