// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package main

import (
	"errors"

	"bloattool/srcs/binarytool"
	"bloattool/srcs/buildtool"
	u "bloattool/srcs/common"
	"bloattool/srcs/comparetool"
	"bloattool/srcs/irtool"
)

func main() {

	// Init global arguments
	args := new(u.Arguments)
	parser, err := args.InitArguments("bloattool",
		"Toolkit which finds out what takes space in a binary and why")
	if err != nil {
		u.PrintErr(err)
	}

	// Parse arguments
	if err := args.ParseMainArguments(parser, args); err != nil {
		u.PrintErr(err)
	}

	switch {
	case *args.BoolArg[u.BINARY]:
		u.PrintHeader1("(*) RUN BINARY SIZE ANALYSER")
		binarytool.RunBinaryAnalyser()
	case *args.BoolArg[u.COMPARE]:
		u.PrintHeader1("(*) RUN BINARY COMPARISON TOOL")
		comparetool.RunCompareTool()
	case *args.BoolArg[u.IR]:
		u.PrintHeader1("(*) RUN LLVM IR ANALYSER")
		irtool.RunIRTool()
	case *args.BoolArg[u.CARGO]:
		u.PrintHeader1("(*) RUN CARGO BUILD ANALYSER")
		buildtool.RunBuildTool()
	default:
		u.PrintErr(errors.New("one of --binary, --compare, --ir or --cargo must be given"))
	}
}
