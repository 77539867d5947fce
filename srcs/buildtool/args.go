// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package buildtool

import (
	"os"

	"github.com/akamensky/argparse"

	"bloattool/srcs/binarytool"
	u "bloattool/srcs/common"
)

const (
	dirArg      = "dir"
	binArg      = "bin"
	releaseArg  = "release"
	targetArg   = "target"
	cargoArgArg = "cargo-arg"
	yesArg      = "yes"
)

// parseLocalArguments parses the arguments of the cargo tool.
//
// It returns an error if any, otherwise it returns nil.
func parseLocalArguments(p *argparse.Parser, args *u.Arguments) error {

	args.InitArgParse(p, args, u.STRING, "d", dirArg,
		&argparse.Options{Required: false, Default: ".",
			Help: "Directory of the cargo project"})
	args.InitArgParse(p, args, u.STRING, "b", binArg,
		&argparse.Options{Required: false, Help: "Name of the binary to analyse"})
	args.InitArgParse(p, args, u.BOOL, "r", releaseArg,
		&argparse.Options{Required: false, Default: false,
			Help: "Build with the release profile"})
	args.InitArgParse(p, args, u.STRING, "", targetArg,
		&argparse.Options{Required: false, Help: "Target triple to build for"})
	args.InitArgParse(p, args, u.STRINGLIST, "", cargoArgArg,
		&argparse.Options{Required: false, Help: "Extra argument given to " +
			"'cargo build' (can be repeated)"})
	args.InitArgParse(p, args, u.BOOL, "y", yesArg,
		&argparse.Options{Required: false, Default: false,
			Help: "Do not ask which binary to analyse"})
	binarytool.InitAnalysisArguments(p, args)

	return u.ParserWrapper(p, os.Args)
}
