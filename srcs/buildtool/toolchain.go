// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package buildtool

import (
	"context"
	"os"
	"strings"

	"github.com/pkg/errors"

	u "bloattool/srcs/common"
)

// ErrRustcFailed is returned when rustc cannot answer a query.
var ErrRustcFailed = errors.New("failed to execute 'rustc'")

// CommandRunner runs a command and returns its standard output.
type CommandRunner func(ctx context.Context, command string, arguments []string) (string, error)

// Toolchain queries the Rust compiler.
type Toolchain struct {
	Rustc string
	// RustFlags are passed to every query, as cargo does with RUSTFLAGS.
	RustFlags []string
	Run       CommandRunner
}

// NewToolchain returns the toolchain found in PATH, honouring RUSTFLAGS.
func NewToolchain() *Toolchain {
	return &Toolchain{
		Rustc:     "rustc",
		RustFlags: strings.Fields(os.Getenv("RUSTFLAGS")),
		Run:       u.ExecuteCommand,
	}
}

func (t *Toolchain) query(ctx context.Context, args ...string) (string, error) {
	out, err := t.Run(ctx, t.Rustc, append(append([]string{}, t.RustFlags...), args...))
	if err != nil {
		return "", errors.Wrap(ErrRustcFailed, err.Error())
	}
	return strings.TrimSpace(out), nil
}

// TargetLibDir returns the directory holding the standard library of the
// given target triple, or of the host when target is empty.
//
// It returns the directory and an error if any, otherwise it returns nil.
func (t *Toolchain) TargetLibDir(ctx context.Context, target string) (string, error) {

	args := []string{"--print", "target-libdir"}
	if len(target) > 0 {
		args = append(args, "--target", target)
	}

	dir, err := t.query(ctx, args...)
	if err != nil {
		return "", err
	}
	if len(dir) == 0 {
		return "", errors.Wrap(ErrRustcFailed, "empty target-libdir")
	}

	return dir, nil
}

// HostTriple returns the target triple of the host.
//
// It returns the triple and an error if any, otherwise it returns nil.
func (t *Toolchain) HostTriple(ctx context.Context) (string, error) {

	out, err := t.query(ctx, "-vV")
	if err != nil {
		return "", err
	}

	for _, line := range strings.Split(out, "\n") {
		if host := strings.TrimPrefix(line, "host: "); host != line {
			return strings.TrimSpace(host), nil
		}
	}

	return "", errors.Wrap(ErrRustcFailed, "no host in 'rustc -vV' output")
}
