// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package buildtool

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrCargoFailed is returned when cargo exits with an error.
var ErrCargoFailed = errors.New("failed to execute 'cargo build'")

const messageFormat = "--message-format=json-render-diagnostics"

// Cargo runs cargo builds.
type Cargo struct {
	Command string
	// Env is appended to the environment of the build.
	Env []string
}

// NewCargo returns the cargo command found in PATH.
func NewCargo() *Cargo {
	return &Cargo{Command: "cargo"}
}

// Build runs "cargo build" in dir with the given extra arguments. The JSON
// messages are decoded while cargo writes them.
//
// It returns the build and an error if any, otherwise it returns nil.
func (c *Cargo) Build(ctx context.Context, dir string, args []string) (*Build, error) {

	arguments := append([]string{"build", messageFormat}, args...)
	cmd := exec.CommandContext(ctx, c.Command, arguments...)
	cmd.Dir = dir
	if len(c.Env) > 0 {
		cmd.Env = append(cmd.Environ(), c.Env...)
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, "cannot read cargo output")
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrap(ErrCargoFailed, err.Error())
	}

	build, parseErr := ParseMessages(stdout)
	waitErr := cmd.Wait()
	if waitErr != nil {
		return nil, errors.Wrapf(ErrCargoFailed, "%s: %s", waitErr,
			strings.TrimSpace(stderr.String()))
	}
	if parseErr != nil {
		return nil, parseErr
	}

	build.Duration = time.Since(start)
	return build, nil
}

// RunCargo builds the project in dir with the cargo found in PATH.
//
// It returns the build and an error if any, otherwise it returns nil.
func RunCargo(ctx context.Context, dir string, args []string) (*Build, error) {
	return NewCargo().Build(ctx, dir, args)
}
