// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package irtool

import (
	"os"

	"github.com/akamensky/argparse"

	u "bloattool/srcs/common"
)

const (
	dirArg       = "dir"
	targetDirArg = "target-dir"
	profileArg   = "profile"
	limitArg     = "n"
	unitArg      = "unit"
	treeArg      = "tree"
	workersArg   = "workers"
	jsonArg      = "json"
	logLevelArg  = "log-level"
)

// parseLocalArguments parses the arguments of the IR tool.
//
// It returns an error if any, otherwise it returns nil.
func parseLocalArguments(p *argparse.Parser, args *u.Arguments) error {

	args.InitArgParse(p, args, u.STRING, "d", dirArg,
		&argparse.Options{Required: false, Help: "Directory holding the LLVM " +
			"IR (.ll) files"})
	args.InitArgParse(p, args, u.STRING, "t", targetDirArg,
		&argparse.Options{Required: false, Default: "target",
			Help: "Cargo target directory, used when --dir is not set"})
	args.InitArgParse(p, args, u.STRING, "p", profileArg,
		&argparse.Options{Required: false, Default: "debug",
			Help: "Cargo profile, used when --dir is not set"})
	args.InitArgParse(p, args, u.INT, "n", limitArg,
		&argparse.Options{Required: false, Default: 20,
			Help: "Number of functions to display (0 for all)"})
	args.InitArgParse(p, args, u.STRING, "u", unitArg,
		&argparse.Options{Required: false, Help: "Only display the functions " +
			"of this unit"})
	args.InitArgParse(p, args, u.BOOL, "", treeArg,
		&argparse.Options{Required: false, Default: false,
			Help: "Display the functions grouped by unit"})
	args.InitArgParse(p, args, u.INT, "w", workersArg,
		&argparse.Options{Required: false, Default: 0,
			Help: "Number of files parsed concurrently (0 for one per CPU)"})
	args.InitArgParse(p, args, u.BOOL, "j", jsonArg,
		&argparse.Options{Required: false, Default: false,
			Help: "Write the analysis as JSON on stdout"})
	args.InitArgParse(p, args, u.STRING, "", logLevelArg,
		&argparse.Options{Required: false, Default: "info",
			Help: "Log level: debug, info, warn or error"})

	return u.ParserWrapper(p, os.Args)
}
