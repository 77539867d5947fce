// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"bloattool/srcs/binarytool/comparison"
)

func newMarkdownTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	return table
}

// markdownCode escapes a name for a Markdown table cell.
func markdownCode(name string) string {
	return "`" + strings.ReplaceAll(name, "|", `\|`) + "`"
}

// WriteMarkdown prints the comparison as a Markdown document, suitable for a
// pull request comment. Colours are never used.
func WriteMarkdown(w io.Writer, res *comparison.Result, opts Options) {

	fmt.Fprintln(w, "## Binary size comparison")
	fmt.Fprintln(w)

	table := newMarkdownTable(w, []string{"", "Before", "After", "Change"})
	table.Append([]string{"File size", FormatBytes(res.FileSize.Before),
		FormatBytes(res.FileSize.After), FormatSizeDiff(res.FileSize.Change())})
	table.Append([]string{"Text size", FormatBytes(res.TextSize.Before),
		FormatBytes(res.TextSize.After), FormatSizeDiff(res.TextSize.Change())})
	if res.BuildDuration.Before > 0 || res.BuildDuration.After > 0 {
		table.Append([]string{"Build time", FormatDuration(res.BuildDuration.Before),
			FormatDuration(res.BuildDuration.After),
			FormatDurationDiff(res.BuildDuration.Change())})
	}
	table.Render()

	units := changedUnits(res)
	if len(units) > 0 {
		comparison.SortByPercent(units)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "### Crates")
		fmt.Fprintln(w)
		table = newMarkdownTable(w, []string{"Crate", "Before", "After", "Change", "%"})
		for _, c := range limit(units, opts.Limit) {
			pct, ok := c.PercentChange()
			table.Append([]string{markdownCode(string(c.Name)), formatSide(c.Delta, true),
				formatSide(c.Delta, false), FormatSizeDiff(c.AbsoluteChange()),
				FormatPercentChange(pct, ok)})
		}
		table.Render()
	}

	syms := res.ChangedSymbols()
	if len(syms) > 0 {
		comparison.SortByPercent(syms)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "### Symbols")
		fmt.Fprintln(w)
		table = newMarkdownTable(w, []string{"Symbol", "Before", "After", "Change", "%"})
		for _, c := range limit(syms, opts.Limit) {
			pct, ok := c.PercentChange()
			name := c.Name
			if opts.FullNames {
				name = c.Demangled
			}
			table.Append([]string{markdownCode(name), formatSide(c.Delta, true),
				formatSide(c.Delta, false), FormatSizeDiff(c.AbsoluteChange()),
				FormatPercentChange(pct, ok)})
		}
		table.Render()
	}
}
