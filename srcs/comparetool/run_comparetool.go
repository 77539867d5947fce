// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package comparetool

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/go-kit/log"

	"bloattool/srcs/binarytool"
	"bloattool/srcs/binarytool/analyser"
	"bloattool/srcs/binarytool/comparison"
	"bloattool/srcs/binarytool/report"
	u "bloattool/srcs/common"
)

// loader produces the snapshot of one side of a comparison.
type loader struct {
	settings *binarytool.Settings
	logger   log.Logger
}

// load reads a saved snapshot or analyses a binary, depending on the
// extension of path.
//
// It returns the snapshot and an error if any, otherwise it returns nil.
func (l *loader) load(ctx context.Context, path string) (*analyser.Snapshot, error) {

	if report.IsSnapshotFile(path) {
		u.PrintInfo("Loading snapshot " + path)
		return report.LoadSnapshot(path)
	}

	u.PrintInfo("Analysing " + path)
	return l.settings.Analyse(ctx, analyser.NewContext(path, l.settings.Config), l.logger)
}

// compare loads both sides and compares them, keeping only the changes of
// at least threshold bytes.
//
// It returns the snapshots, the comparison and an error if any, otherwise it
// returns nil.
func (l *loader) compare(ctx context.Context, oldPath, newPath string,
	threshold int64) (*analyser.Snapshot, *analyser.Snapshot, *comparison.Result, error) {

	before, err := l.load(ctx, oldPath)
	if err != nil {
		return nil, nil, nil, err
	}

	after, err := l.load(ctx, newPath)
	if err != nil {
		return nil, nil, nil, err
	}

	res := comparison.Compare(before, after)
	if threshold > 0 {
		res = res.SignificantChanges(threshold)
	}

	return before, after, res, nil
}

// askForConfirmation asks a yes/no question, answering yes without asking
// when assumeYes is set.
func askForConfirmation(message string, assumeYes bool) bool {

	if assumeYes {
		return true
	}

	confirmed := false
	prompt := &survey.Confirm{Message: message, Default: false}
	if err := survey.AskOne(prompt, &confirmed); err != nil {
		u.PrintWarning(err)
		return false
	}

	return confirmed
}

// writeListingDiff prints the lines that differ between the symbol listings
// of both snapshots.
func writeListingDiff(w io.Writer, before, after *analyser.Snapshot, full bool) {
	diff := report.DiffListings(report.Listing(before, full), report.Listing(after, full))
	if len(diff) == 0 {
		u.PrintOk("Symbol listings are identical")
		return
	}
	for _, line := range diff {
		fmt.Fprintln(w, line)
	}
}

// RunCompareTool runs the compare tool: it compares the symbols and units
// of two binaries (or two saved snapshots).
func RunCompareTool() {

	// Init and parse local arguments
	args := new(u.Arguments)
	p, err := args.InitArguments("--compare",
		"The Compare tool shows how the size of a binary changed between two builds")
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

	l := &loader{settings: settings, logger: settings.Logger()}
	before, after, res, err := l.compare(context.Background(),
		*args.StringArg[oldArg], *args.StringArg[newArg],
		int64(*args.IntArg[thresholdArg]))
	if err != nil {
		u.PrintErr(err)
	}

	if *args.BoolArg[markdownArg] {
		report.WriteMarkdown(os.Stdout, res, settings.Report)
	} else {
		report.WriteComparison(os.Stdout, res, settings.Report)
	}

	if *args.BoolArg[diffArg] && askForConfirmation("Do you want to see a diff "+
		"between the two symbol listings", *args.BoolArg[yesArg]) {
		u.PrintInfo("Listing diff:")
		writeListingDiff(os.Stdout, before, after, settings.Report.FullNames)
	}
}
