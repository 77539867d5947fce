// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package binarytool

import (
	"context"
	"fmt"
	"os"

	"github.com/go-kit/log"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"bloattool/srcs/binarytool/analyser"
	"bloattool/srcs/binarytool/elfcore"
	"bloattool/srcs/binarytool/report"
	"bloattool/srcs/binarytool/symbols"
	u "bloattool/srcs/common"
)

// Logger returns the logger configured by the settings.
func (s *Settings) Logger() log.Logger {
	return u.NewLogger(s.Config.LogLevel)
}

// Analyse runs the analysis described by bctx and writes the metrics file
// when one is requested.
//
// It returns the snapshot and an error if any, otherwise it returns nil.
func (s *Settings) Analyse(ctx context.Context, bctx analyser.Context,
	logger log.Logger) (*analyser.Snapshot, error) {

	reg := prometheus.NewRegistry()
	a := analyser.New(s.Config, logger)
	a.Metrics = analyser.NewMetrics(reg)

	snapshot, err := a.Analyze(ctx, bctx)
	if err != nil {
		return nil, err
	}

	if len(s.Metrics) > 0 {
		if err := prometheus.WriteToTextfile(s.Metrics, reg); err != nil {
			return nil, errors.Wrapf(err, "cannot write metrics to %s", s.Metrics)
		}
	}

	return snapshot, nil
}

// Display prints the report of a snapshot and writes the requested files.
//
// It returns an error if any, otherwise it returns nil.
func (s *Settings) Display(snapshot *analyser.Snapshot) error {

	if len(s.Save) > 0 {
		if err := report.SaveSnapshot(s.Save, snapshot); err != nil {
			return err
		}
		u.PrintOk("Snapshot has been saved to " + s.Save)
	}

	if len(s.Graph) > 0 {
		if err := snapshot.GenerateGraph(s.Graph, s.Report.Limit); err != nil {
			return err
		}
		u.PrintOk("Graph has been saved to " + s.Graph + ".dot")
	}

	if s.JSON {
		return report.WriteJSON(os.Stdout, snapshot)
	}

	report.WriteSummary(os.Stdout, snapshot)

	if len(s.Unit) > 0 || len(s.Filter) > 0 {
		return s.displayFiltered(snapshot)
	}

	u.PrintHeader2("Biggest crates")
	report.WriteTopUnits(os.Stdout, snapshot, s.Report)
	u.PrintHeader2("Biggest functions")
	report.WriteTopSymbols(os.Stdout, snapshot, s.Report)

	if snapshot.IR != nil {
		u.PrintHeader2("LLVM IR")
		report.WriteIRTree(os.Stdout, snapshot.IR, s.Report)
	}

	return nil
}

func (s *Settings) displayFiltered(snapshot *analyser.Snapshot) error {

	syms := snapshot.Symbols
	if len(s.Unit) > 0 {
		syms = snapshot.FilterByUnit(symbols.UnitName(s.Unit))
	}

	if len(s.Filter) > 0 {
		filtered := &analyser.Snapshot{Symbols: syms}
		var err error
		if syms, err = filtered.FilterByName(s.Filter, s.Regex); err != nil {
			return err
		}
	}

	if len(syms) == 0 {
		u.PrintWarning("No symbol matches the given filters")
		return nil
	}

	report.WriteSymbols(os.Stdout, snapshot, analyser.SortBySize(syms), s.Report)
	return nil
}

// displaySections prints the section and symbol tables of an ELF binary.
//
// It returns an error if any, otherwise it returns nil.
func displaySections(path string) error {

	mapped, err := u.MapFile(path)
	if err != nil {
		return symbols.NewError(symbols.ErrOpenFailed, path, err)
	}
	defer mapped.Close()

	if !elfcore.IsELF(mapped.Data) {
		return symbols.NewError(symbols.ErrUnsupportedFormat, path,
			errors.New("section tables are only displayed for ELF binaries"))
	}

	elfFile, err := elfcore.NewELFFile(path, mapped.Data)
	if err != nil {
		return err
	}

	u.PrintHeader2("Sections")
	elfFile.SectionsTable.DisplaySections(os.Stdout)
	elfFile.DisplaySymbolsTables(os.Stdout)
	fmt.Println()

	return nil
}

// RunBinaryAnalyser runs the binary tool: it extracts the symbols of a
// binary, attributes them to units and prints the biggest ones.
func RunBinaryAnalyser() {

	// Init and parse local arguments
	args := new(u.Arguments)
	p, err := args.InitArguments("--binary",
		"The Binary tool attributes the size of a binary to the units that produced it")
	if err != nil {
		u.PrintErr(err)
	}
	if err := parseLocalArguments(p, args); err != nil {
		u.PrintErr(err)
	}

	settings, err := NewSettings(args)
	if err != nil {
		u.PrintErr(err)
	}

	path := *args.StringArg[fileArg]
	if *args.BoolArg[sectionsArg] {
		if err := displaySections(path); err != nil {
			u.PrintErr(err)
		}
	}

	u.PrintInfo("Analysing " + path)
	bctx := analyser.NewContext(path, settings.Config)
	snapshot, err := settings.Analyse(context.Background(), bctx, settings.Logger())
	if err != nil {
		u.PrintErr(err)
	}

	if err := settings.Display(snapshot); err != nil {
		u.PrintErr(err)
	}
}
