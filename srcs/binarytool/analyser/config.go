// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package analyser

import (
	"runtime"

	"github.com/pkg/errors"

	"bloattool/srcs/binarytool/archive"
	"bloattool/srcs/binarytool/extractor"
	u "bloattool/srcs/common"
)

// Config holds the options of an analysis. It can be read from a YAML file
// and is then overridden by command line flags.
type Config struct {
	// CodeSection is the section whose symbols are extracted.
	CodeSection string `yaml:"code_section"`
	// MergeStd folds the standard library units into a single "std" unit.
	MergeStd bool `yaml:"merge_std"`
	// AnalyzeIR enables the analysis of the LLVM IR files found in IRRoot.
	AnalyzeIR bool   `yaml:"analyze_ir"`
	IRRoot    string `yaml:"ir_root"`
	IRWorkers int    `yaml:"ir_workers"`

	Archives []archive.Archive `yaml:"archives"`
	StdUnits []string          `yaml:"std_units"`
	DepUnits []string          `yaml:"dep_units"`

	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		CodeSection: extractor.DefaultSection,
		MergeStd:    true,
		IRWorkers:   runtime.NumCPU(),
		LogLevel:    "info",
	}
}

// LoadConfig reads the YAML file at path on top of the default
// configuration.
//
// It returns the configuration and an error if any, otherwise it returns nil.
func LoadConfig(path string) (*Config, error) {

	cfg := DefaultConfig()
	if err := u.ReadYamlFile(path, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid configuration %s", path)
	}

	return cfg, nil
}

// Validate checks the consistency of the configuration.
func (c *Config) Validate() error {

	if len(c.CodeSection) == 0 {
		return errors.New("code_section must not be empty")
	}

	if c.IRWorkers < 0 {
		return errors.Errorf("ir_workers must be positive, got %d", c.IRWorkers)
	}

	for i, a := range c.Archives {
		if len(a.Unit) == 0 || len(a.Path) == 0 {
			return errors.Errorf("archive #%d needs both a unit and a path", i)
		}
	}

	return nil
}
