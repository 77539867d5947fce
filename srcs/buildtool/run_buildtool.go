// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package buildtool

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/spf13/afero"

	"bloattool/srcs/binarytool"
	"bloattool/srcs/binarytool/archive"
	"bloattool/srcs/binarytool/report"
	u "bloattool/srcs/common"
	"bloattool/srcs/irtool/llvmir"
)

const pageSize = 10

// buildOptions are the cargo options that change where artifacts land.
type buildOptions struct {
	Dir     string
	Bin     string
	Release bool
	Target  string
	Extra   []string
}

// cargoArguments returns the arguments given to "cargo build".
func (o buildOptions) cargoArguments() []string {
	var args []string
	if o.Release {
		args = append(args, "--release")
	}
	if len(o.Target) > 0 {
		args = append(args, "--target", o.Target)
	}
	if len(o.Bin) > 0 {
		args = append(args, "--bin", o.Bin)
	}
	return append(args, o.Extra...)
}

// irRoot returns the directory where cargo writes the IR files of the
// build.
func (o buildOptions) irRoot() string {
	targetDir := filepath.Join(o.Dir, "target")
	if len(o.Target) > 0 {
		targetDir = filepath.Join(targetDir, o.Target)
	}
	profile := "debug"
	if o.Release {
		profile = "release"
	}
	return llvmir.SearchRoot(targetDir, profile)
}

// irRustFlags returns the RUSTFLAGS of a build that also emits LLVM IR.
func irRustFlags(current string) string {
	return strings.TrimSpace(current + " --emit=llvm-ir")
}

// findStdArchives locates the rlibs of the standard library of the target.
// The analysis goes on without them when the toolchain cannot be queried.
func findStdArchives(ctx context.Context, t *Toolchain, fs afero.Fs, target string,
	logger log.Logger) []archive.Archive {

	dir, err := t.TargetLibDir(ctx, target)
	if err != nil {
		level.Warn(logger).Log("msg", "standard library not found", "err", err)
		return nil
	}

	archives, err := FindStdUnits(fs, dir)
	if err != nil {
		level.Warn(logger).Log("msg", "standard library not listed", "err", err)
		return nil
	}

	level.Debug(logger).Log("msg", "standard library found", "dir", dir,
		"units", len(archives))
	return archives
}

// selectBinary asks which executable to analyse when the build produced
// several of them.
func selectBinary(build *Build) string {

	names := lo.Uniq(lo.Map(build.Executables(), func(a Artifact, _ int) string {
		return a.Name
	}))
	if len(names) < 2 {
		return ""
	}
	sort.Strings(names)

	var selected string
	prompt := &survey.Select{
		Message:  "Select the binary to analyse",
		Options:  names,
		PageSize: pageSize,
	}
	if err := survey.AskOne(prompt, &selected); err != nil {
		u.PrintWarning(err)
		return ""
	}

	return selected
}

// WriteTimings prints the units that took the longest to compile.
func WriteTimings(w io.Writer, timings []Timing, limit int) {

	sorted := append([]Timing(nil), timings...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Duration != sorted[j].Duration {
			return sorted[i].Duration > sorted[j].Duration
		}
		return sorted[i].Unit < sorted[j].Unit
	})
	if limit > 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Crate", "Time", "Codegen"})
	table.SetAutoFormatHeaders(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT})
	for _, t := range sorted {
		codegen := "-"
		if t.RmetaTime > 0 {
			codegen = report.FormatDuration(t.Duration - t.RmetaTime)
		}
		table.Append([]string{t.Unit, report.FormatDuration(t.Duration), codegen})
	}
	table.Render()
}

// RunBuildTool runs the cargo tool: it builds a cargo project, then analyses
// the produced binary with the units of the build and of the standard
// library.
func RunBuildTool() {

	// Init and parse local arguments
	args := new(u.Arguments)
	p, err := args.InitArguments("--cargo",
		"The Cargo tool builds a project and attributes the size of its binary to crates")
	if err != nil {
		u.PrintErr(err)
	}
	if err := parseLocalArguments(p, args); err != nil {
		u.PrintErr(err)
	}

	settings, err := binarytool.NewSettings(args)
	if err != nil {
		u.PrintErr(err)
	}
	logger := settings.Logger()
	ctx := context.Background()

	opts := buildOptions{
		Dir:     *args.StringArg[dirArg],
		Bin:     *args.StringArg[binArg],
		Release: *args.BoolArg[releaseArg],
		Target:  *args.StringArg[targetArg],
		Extra:   *args.StringListArg[cargoArgArg],
	}

	cargo := NewCargo()
	if settings.Config.AnalyzeIR {
		cargo.Env = append(cargo.Env, "RUSTFLAGS="+irRustFlags(os.Getenv("RUSTFLAGS")))
	}

	u.PrintInfo("Building " + opts.Dir + " with cargo")
	build, err := cargo.Build(ctx, opts.Dir, opts.cargoArguments())
	if err != nil {
		u.PrintErr(err)
	}
	u.PrintOk("Build finished in " + report.FormatDuration(build.Duration))

	std := findStdArchives(ctx, NewToolchain(), afero.NewOsFs(), opts.Target, logger)

	name := opts.Bin
	if len(name) == 0 && !*args.BoolArg[yesArg] {
		name = selectBinary(build)
	}

	bctx, err := NewContext(build, std, name)
	if err != nil {
		u.PrintErr(err)
	}
	if settings.Config.AnalyzeIR && len(settings.Config.IRRoot) == 0 {
		bctx.IRRoot = opts.irRoot()
	}

	u.PrintInfo("Analysing " + bctx.BinaryPath)
	snapshot, err := settings.Analyse(ctx, bctx, logger)
	if err != nil {
		u.PrintErr(err)
	}

	if err := settings.Display(snapshot); err != nil {
		u.PrintErr(err)
	}

	if len(build.Timings) > 0 && !settings.JSON {
		u.PrintHeader2("Compilation times")
		WriteTimings(os.Stdout, build.Timings, settings.Report.Limit)
	}
}
