// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package binarytool

import (
	"os"
	"strings"

	"github.com/akamensky/argparse"
	"github.com/pkg/errors"

	"bloattool/srcs/binarytool/analyser"
	"bloattool/srcs/binarytool/archive"
	"bloattool/srcs/binarytool/report"
	"bloattool/srcs/binarytool/symbols"
	u "bloattool/srcs/common"
)

const (
	fileArg     = "file"
	sectionsArg = "sections"
)

// Arguments shared by the tools that analyse a binary.
const (
	ConfigArg   = "config"
	sectionArg  = "section"
	splitStdArg = "split-std"
	limitArg    = "n"
	fullFnArg   = "full-fn"
	unitArg     = "unit"
	filterArg   = "filter"
	regexArg    = "regex"
	jsonArg     = "json"
	saveArg     = "save"
	irArg       = "ir"
	irRootArg   = "ir-root"
	workersArg  = "workers"
	graphArg    = "graph"
	metricsArg  = "metrics"
	archiveArg  = "archive"
	stdArg      = "std"
	depArg      = "dep"
	LogLevelArg = "log-level"
)

const defaultLimit = 20

// InitAnalysisArguments registers the arguments that drive an analysis and
// its report.
func InitAnalysisArguments(p *argparse.Parser, args *u.Arguments) {

	args.InitArgParse(p, args, u.STRING, "c", ConfigArg,
		&argparse.Options{Required: false, Help: "YAML configuration file"})
	args.InitArgParse(p, args, u.STRING, "s", sectionArg,
		&argparse.Options{Required: false, Help: "Code section to analyse " +
			"(default: .text)"})
	args.InitArgParse(p, args, u.BOOL, "", splitStdArg,
		&argparse.Options{Required: false, Default: false,
			Help: "Do not merge the standard library units into 'std'"})
	args.InitArgParse(p, args, u.INT, "n", limitArg,
		&argparse.Options{Required: false, Default: defaultLimit,
			Help: "Number of rows to display (0 for all)"})
	args.InitArgParse(p, args, u.BOOL, "", fullFnArg,
		&argparse.Options{Required: false, Default: false,
			Help: "Display complete demangled names"})
	args.InitArgParse(p, args, u.STRING, "u", unitArg,
		&argparse.Options{Required: false, Help: "Only display the symbols of " +
			"this unit"})
	args.InitArgParse(p, args, u.STRING, "", filterArg,
		&argparse.Options{Required: false, Help: "Only display the symbols " +
			"whose name contains this text"})
	args.InitArgParse(p, args, u.BOOL, "", regexArg,
		&argparse.Options{Required: false, Default: false,
			Help: "Interpret --filter as a regular expression"})
	args.InitArgParse(p, args, u.BOOL, "j", jsonArg,
		&argparse.Options{Required: false, Default: false,
			Help: "Write the snapshot as JSON on stdout"})
	args.InitArgParse(p, args, u.STRING, "o", saveArg,
		&argparse.Options{Required: false, Help: "Save the snapshot into this " +
			"JSON file"})
	args.InitArgParse(p, args, u.BOOL, "", irArg,
		&argparse.Options{Required: false, Default: false,
			Help: "Count generic instantiations from the LLVM IR files"})
	args.InitArgParse(p, args, u.STRING, "", irRootArg,
		&argparse.Options{Required: false, Help: "Directory holding the LLVM " +
			"IR files"})
	args.InitArgParse(p, args, u.INT, "", workersArg,
		&argparse.Options{Required: false, Default: 0,
			Help: "Number of IR files parsed concurrently (0 for the configuration value)"})
	args.InitArgParse(p, args, u.STRING, "g", graphArg,
		&argparse.Options{Required: false, Help: "Write a dot graph of the " +
			"biggest units into this file"})
	args.InitArgParse(p, args, u.STRING, "", metricsArg,
		&argparse.Options{Required: false, Help: "Write the metrics of the " +
			"analysis into this file"})
	args.InitArgParse(p, args, u.STRINGLIST, "a", archiveArg,
		&argparse.Options{Required: false, Help: "Dependency archive given as " +
			"<unit>=<path> (can be repeated)"})
	args.InitArgParse(p, args, u.STRINGLIST, "", stdArg,
		&argparse.Options{Required: false, Help: "Name of a standard library unit"})
	args.InitArgParse(p, args, u.STRINGLIST, "", depArg,
		&argparse.Options{Required: false, Help: "Name of a dependency unit"})
	args.InitArgParse(p, args, u.STRING, "", LogLevelArg,
		&argparse.Options{Required: false, Help: "Log level: debug, info, warn " +
			"or error"})
}

// parseLocalArguments parses the arguments of the binary tool.
//
// It returns an error if any, otherwise it returns nil.
func parseLocalArguments(p *argparse.Parser, args *u.Arguments) error {

	args.InitArgParse(p, args, u.STRING, "f", fileArg,
		&argparse.Options{Required: true, Help: "Binary to analyse"})
	args.InitArgParse(p, args, u.BOOL, "", sectionsArg,
		&argparse.Options{Required: false, Default: false,
			Help: "Display the section and symbol tables of an ELF binary"})
	InitAnalysisArguments(p, args)

	return u.ParserWrapper(p, os.Args)
}

// parseArchive parses a "<unit>=<path>" argument.
func parseArchive(value string) (archive.Archive, error) {

	unit, path, ok := strings.Cut(value, "=")
	if !ok || len(unit) == 0 || len(path) == 0 {
		return archive.Archive{}, errors.Errorf("invalid archive %q, "+
			"expected <unit>=<path>", value)
	}

	return archive.Archive{Unit: symbols.UnitName(unit), Path: path}, nil
}

// Settings holds everything an analysis and its report need.
type Settings struct {
	Config *analyser.Config
	Report report.Options

	Unit    string
	Filter  string
	Regex   bool
	JSON    bool
	Save    string
	Graph   string
	Metrics string
}

// NewSettings reads the configuration file (if any) and applies the command
// line arguments registered by InitAnalysisArguments on top of it.
//
// It returns the settings and an error if any, otherwise it returns nil.
func NewSettings(args *u.Arguments) (*Settings, error) {

	cfg := analyser.DefaultConfig()
	if path := *args.StringArg[ConfigArg]; len(path) > 0 {
		var err error
		if cfg, err = analyser.LoadConfig(path); err != nil {
			return nil, err
		}
	}

	if section := *args.StringArg[sectionArg]; len(section) > 0 {
		cfg.CodeSection = section
	}
	if *args.BoolArg[splitStdArg] {
		cfg.MergeStd = false
	}
	if *args.BoolArg[irArg] {
		cfg.AnalyzeIR = true
	}
	if root := *args.StringArg[irRootArg]; len(root) > 0 {
		cfg.IRRoot = root
		cfg.AnalyzeIR = true
	}
	if workers := *args.IntArg[workersArg]; workers > 0 {
		cfg.IRWorkers = workers
	}
	if lvl := *args.StringArg[LogLevelArg]; len(lvl) > 0 {
		cfg.LogLevel = lvl
	}

	for _, value := range *args.StringListArg[archiveArg] {
		a, err := parseArchive(value)
		if err != nil {
			return nil, err
		}
		cfg.Archives = append(cfg.Archives, a)
	}
	cfg.StdUnits = append(cfg.StdUnits, *args.StringListArg[stdArg]...)
	cfg.DepUnits = append(cfg.DepUnits, *args.StringListArg[depArg]...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Settings{
		Config: cfg,
		Report: report.Options{
			Limit:     *args.IntArg[limitArg],
			FullNames: *args.BoolArg[fullFnArg],
		},
		Unit:    *args.StringArg[unitArg],
		Filter:  *args.StringArg[filterArg],
		Regex:   *args.BoolArg[regexArg],
		JSON:    *args.BoolArg[jsonArg],
		Save:    *args.StringArg[saveArg],
		Graph:   *args.StringArg[graphArg],
		Metrics: *args.StringArg[metricsArg],
	}, nil
}
