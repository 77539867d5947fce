// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package common

import (
	"errors"
	"fmt"
	"os"

	"github.com/akamensky/argparse"
)

// Exported constants to determine arguments type.
const (
	INT = iota
	BOOL
	STRING
	STRINGLIST
)

// Exported constants to determine which tool is used.
const (
	BINARY  = "binary"
	COMPARE = "compare"
	IR      = "ir"
	CARGO   = "cargo"
)

// Exported constants shared by several tools.
const (
	SEP = string(os.PathSeparator)
)

// Arguments holds the values of all the parsed arguments of a tool.
type Arguments struct {
	IntArg        map[string]*int
	BoolArg       map[string]*bool
	StringArg     map[string]*string
	StringListArg map[string]*[]string
}

// toolFlags lists the flags that select a tool. They are consumed by the main
// parser and removed before a tool parses its local arguments.
var toolFlags = []string{"--" + BINARY, "--" + COMPARE, "--" + IR, "--" + CARGO}

// InitArguments allows to initialize the parser in order to parse given
// arguments.
//
// It returns a parser as well as an error if any, otherwise it returns nil.
func (args *Arguments) InitArguments(name, description string) (*argparse.Parser, error) {

	args.IntArg = make(map[string]*int)
	args.BoolArg = make(map[string]*bool)
	args.StringArg = make(map[string]*string)
	args.StringListArg = make(map[string]*[]string)

	p := argparse.NewParser(name, description)

	return p, nil
}

// ParseMainArguments parses the main arguments of the toolchain. Only the tool
// selector is parsed here, the remaining arguments belong to the tool.
//
// It returns an error if any, otherwise it returns nil.
func (args *Arguments) ParseMainArguments(p *argparse.Parser, a *Arguments) error {

	if a == nil {
		return errors.New("args structure should be initialized")
	}

	a.InitArgParse(p, a, BOOL, "", BINARY,
		&argparse.Options{Required: false, Default: false,
			Help: "Analyse the size of a binary and attribute its symbols to units"})
	a.InitArgParse(p, a, BOOL, "", COMPARE,
		&argparse.Options{Required: false, Default: false,
			Help: "Compare two binaries (or two saved snapshots)"})
	a.InitArgParse(p, a, BOOL, "", IR,
		&argparse.Options{Required: false, Default: false,
			Help: "Count generic instantiations from LLVM IR files"})
	a.InitArgParse(p, a, BOOL, "", CARGO,
		&argparse.Options{Required: false, Default: false,
			Help: "Build a cargo project and analyse the produced binary"})

	// Parse only the two first arguments <program name, [tool]>
	toParse := os.Args
	if len(os.Args) > 2 {
		toParse = os.Args[:2]
	}

	if err := p.Parse(toParse); err != nil {
		fmt.Print(p.Usage(err))
		return err
	}

	return nil
}

// InitArgParse initializes an argument of the given type and records its
// value holder into the arguments structure.
func (*Arguments) InitArgParse(p *argparse.Parser, args *Arguments, typeVar int,
	short, name string, options *argparse.Options) {

	switch typeVar {
	case INT:
		args.IntArg[name] = new(int)
		args.IntArg[name] = p.Int(short, name, options)
	case BOOL:
		args.BoolArg[name] = new(bool)
		args.BoolArg[name] = p.Flag(short, name, options)
	case STRING:
		args.StringArg[name] = new(string)
		args.StringArg[name] = p.String(short, name, options)
	case STRINGLIST:
		args.StringListArg[name] = new([]string)
		args.StringListArg[name] = p.StringList(short, name, options)
	}
}

// ParserWrapper parses the given arguments, skipping the tool selector
// flags, and displays the usage of the parser on failure.
//
// It returns an error if any, otherwise it returns nil.
func ParserWrapper(p *argparse.Parser, args []string) error {

	filtered := make([]string, 0, len(args))
	for i, arg := range args {
		if i > 0 && Contains(toolFlags, arg) {
			continue
		}
		filtered = append(filtered, arg)
	}

	if err := p.Parse(filtered); err != nil {
		fmt.Print(p.Usage(err))
		return err
	}

	return nil
}

// Contains checks if a given string is present in a slice.
func Contains(s []string, e string) bool {
	for _, a := range s {
		if a == e {
			return true
		}
	}
	return false
}
