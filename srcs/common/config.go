// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package common

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ReadYamlFile decodes the yaml file located at path into out. Fields that are
// absent from the file keep the value they had before the call.
//
// It returns an error if any, otherwise it returns nil.
func ReadYamlFile(path string, out interface{}) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "cannot read config file %s", path)
	}

	if err := yaml.Unmarshal(content, out); err != nil {
		return errors.Wrapf(err, "cannot decode config file %s", path)
	}

	return nil
}
