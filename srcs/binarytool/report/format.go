// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

// Package report renders snapshots and comparisons as tables, Markdown, JSON
// and trees.
package report

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"bloattool/srcs/binarytool/symbols"
)

const (
	noChange  = "no change"
	undefined = "-"
)

// FormatBytes formats a size with binary units ("1.5 KiB").
func FormatBytes(size symbols.ByteSize) string {
	return humanize.IBytes(uint64(size))
}

// FormatSizeDiff formats a signed size change ("+1.5 KiB").
func FormatSizeDiff(diff int64) string {
	switch {
	case diff > 0:
		return "+" + humanize.IBytes(uint64(diff))
	case diff < 0:
		return "-" + humanize.IBytes(uint64(-diff))
	default:
		return noChange
	}
}

// FormatPercent formats a share of a total ("12.5%").
func FormatPercent(value float64) string {
	return fmt.Sprintf("%.1f%%", value)
}

// FormatPercentChange formats a relative change, or "-" when undefined.
func FormatPercentChange(value float64, ok bool) string {
	if !ok {
		return undefined
	}
	if value > 0 {
		return fmt.Sprintf("+%.1f%%", value)
	}
	return fmt.Sprintf("%.1f%%", value)
}

// FormatDuration formats a duration in seconds ("1.50s").
func FormatDuration(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// FormatDurationDiff formats a signed duration change ("+0.25s").
func FormatDurationDiff(d time.Duration) string {
	if d > 0 {
		return fmt.Sprintf("+%.2fs", d.Seconds())
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// FormatCount formats a count followed by its noun, pluralised when needed.
func FormatCount(count int, singular string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%s %ss", humanize.Comma(int64(count)), singular)
}

// UnitLabel returns the name of a unit, suffixed with '?' when the
// attribution was guessed.
func UnitLabel(unit symbols.UnitName, exact bool) string {
	if exact {
		return string(unit)
	}
	return string(unit) + "?"
}

// colorDiff colours growth in red and shrinkage in green.
func colorDiff(diff int64, text string) string {
	switch {
	case diff > 0:
		return color.RedString(text)
	case diff < 0:
		return color.GreenString(text)
	default:
		return color.HiBlackString(text)
	}
}

func share(part, total symbols.ByteSize) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
