// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package comparetool

import (
	"os"

	"github.com/akamensky/argparse"

	"bloattool/srcs/binarytool"
	u "bloattool/srcs/common"
)

const (
	oldArg       = "old"
	newArg       = "new"
	thresholdArg = "threshold"
	markdownArg  = "markdown"
	diffArg      = "diff"
	yesArg       = "yes"
)

// parseLocalArguments parses the arguments of the compare tool.
//
// It returns an error if any, otherwise it returns nil.
func parseLocalArguments(p *argparse.Parser, args *u.Arguments) error {

	args.InitArgParse(p, args, u.STRING, "", oldArg,
		&argparse.Options{Required: true, Help: "Binary (or saved .json " +
			"snapshot) before the change"})
	args.InitArgParse(p, args, u.STRING, "", newArg,
		&argparse.Options{Required: true, Help: "Binary (or saved .json " +
			"snapshot) after the change"})
	args.InitArgParse(p, args, u.INT, "", thresholdArg,
		&argparse.Options{Required: false, Default: 0,
			Help: "Hide the changes smaller than this number of bytes"})
	args.InitArgParse(p, args, u.BOOL, "m", markdownArg,
		&argparse.Options{Required: false, Default: false,
			Help: "Write the comparison as Markdown"})
	args.InitArgParse(p, args, u.BOOL, "", diffArg,
		&argparse.Options{Required: false, Default: false,
			Help: "Display a diff of the symbol listings of both binaries"})
	args.InitArgParse(p, args, u.BOOL, "y", yesArg,
		&argparse.Options{Required: false, Default: false,
			Help: "Do not ask for confirmation"})
	binarytool.InitAnalysisArguments(p, args)

	return u.ParserWrapper(p, os.Args)
}
