// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package comparison

import (
	"time"

	"bloattool/srcs/binarytool/symbols"
)

// Delta holds the sizes of an entry on both sides of a comparison. A nil
// size means the entry is absent from that side.
type Delta struct {
	Before *symbols.ByteSize `json:"size_before,omitempty"`
	After  *symbols.ByteSize `json:"size_after,omitempty"`
}

func size(s symbols.ByteSize) *symbols.ByteSize {
	return &s
}

// IsNew reports whether the entry only exists after.
func (d Delta) IsNew() bool { return d.Before == nil && d.After != nil }

// IsRemoved reports whether the entry only exists before.
func (d Delta) IsRemoved() bool { return d.Before != nil && d.After == nil }

// AbsoluteChange returns after - before, an absent side counting as zero.
func (d Delta) AbsoluteChange() int64 {
	var before, after symbols.ByteSize
	if d.Before != nil {
		before = *d.Before
	}
	if d.After != nil {
		after = *d.After
	}
	return before.Diff(after)
}

// PercentChange returns (after - before) / before * 100. It is undefined,
// and false is returned, unless both sides exist and before is not zero.
func (d Delta) PercentChange() (float64, bool) {
	if d.Before == nil || d.After == nil || *d.Before == 0 {
		return 0, false
	}
	return float64(d.Before.Diff(*d.After)) / float64(*d.Before) * 100, true
}

// SymbolChange is the size change of a symbol, identified by its trimmed
// demangled name.
type SymbolChange struct {
	Name      string           `json:"name"`
	Demangled string           `json:"demangled"`
	Unit      symbols.UnitName `json:"unit"`
	Delta
}

// UnitChange is the size change of a unit.
type UnitChange struct {
	Name symbols.UnitName `json:"name"`
	Delta
}

// ScalarDelta is the change of a value present on both sides.
type ScalarDelta struct {
	Before symbols.ByteSize `json:"before"`
	After  symbols.ByteSize `json:"after"`
}

// Change returns after - before.
func (d ScalarDelta) Change() int64 { return d.Before.Diff(d.After) }

// PercentChange returns the relative change, undefined when before is zero.
func (d ScalarDelta) PercentChange() (float64, bool) {
	return Delta{Before: size(d.Before), After: size(d.After)}.PercentChange()
}

// DurationDelta is the change of the build duration.
type DurationDelta struct {
	Before time.Duration `json:"before"`
	After  time.Duration `json:"after"`
}

// Change returns after - before.
func (d DurationDelta) Change() time.Duration { return d.After - d.Before }
