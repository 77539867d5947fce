// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package irtool

import (
	"context"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"bloattool/srcs/binarytool/report"
	"bloattool/srcs/binarytool/symbols"
	u "bloattool/srcs/common"
	"bloattool/srcs/irtool/llvmir"
)

func writeJSON(w io.Writer, ir *llvmir.Analysis) error {
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(ir, "", "  ")
	if err != nil {
		return errors.Wrap(err, "cannot encode llvm ir analysis")
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// RunIRTool runs the IR tool: it counts the lines and copies of every
// function found in the LLVM IR files of a build.
func RunIRTool() {

	// Init and parse local arguments
	args := new(u.Arguments)
	p, err := args.InitArguments("--ir",
		"The IR tool counts the generic instantiations of a build from its LLVM IR")
	if err != nil {
		u.PrintErr(err)
	}
	if err := parseLocalArguments(p, args); err != nil {
		u.PrintErr(err)
	}

	root := *args.StringArg[dirArg]
	if len(root) == 0 {
		root = llvmir.SearchRoot(*args.StringArg[targetDirArg], *args.StringArg[profileArg])
	}

	an := llvmir.NewAnalyzer(u.NewLogger(*args.StringArg[logLevelArg]))
	if workers := *args.IntArg[workersArg]; workers > 0 {
		an.Workers = workers
	}

	u.PrintInfo("Searching LLVM IR files in " + root)
	ir, err := an.AnalyzeDirectory(context.Background(), root)
	if symbols.IsNoIRFiles(err) {
		u.PrintErr(err, " (build with RUSTFLAGS=\"--emit=llvm-ir\")")
	} else if err != nil {
		u.PrintErr(err)
	}

	if unit := *args.StringArg[unitArg]; len(unit) > 0 {
		sub, ok := ir.Restrict(symbols.UnitName(unit))
		if !ok {
			u.PrintErr(errors.Errorf("no function of unit %q, found units: %v",
				unit, ir.UnitNames()))
		}
		ir = sub
	}

	if *args.BoolArg[jsonArg] {
		if err := writeJSON(os.Stdout, ir); err != nil {
			u.PrintErr(err)
		}
		return
	}

	opts := report.Options{Limit: *args.IntArg[limitArg]}
	if *args.BoolArg[treeArg] {
		report.WriteIRTree(os.Stdout, ir, opts)
	} else {
		report.WriteIRFunctions(os.Stdout, ir, opts)
	}
	u.PrintOk("Analysed ", len(ir.Files), " LLVM IR files")
}
