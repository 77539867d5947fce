// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"bloattool/srcs/binarytool/analyser"
	"bloattool/srcs/binarytool/comparison"
)

// Options tunes the rendering of reports.
type Options struct {
	// Limit is the maximum number of rows of a table, all rows if not
	// positive.
	Limit int
	// FullNames prints complete demangled names instead of trimmed ones.
	FullNames bool
}

func newTable(w io.Writer, header []string, align []int) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetColumnAlignment(align)
	return table
}

func symbolName(sym analyser.EnrichedSymbol, full bool) string {
	if full {
		return sym.DemangledName
	}
	return sym.TrimmedName
}

func limit[T any](list []T, n int) []T {
	if n > 0 && n < len(list) {
		return list[:n]
	}
	return list
}

// WriteSummary prints the sizes of the snapshot.
func WriteSummary(w io.Writer, s *analyser.Snapshot) {
	fmt.Fprintf(w, "File: %s (%s)\n", s.Binary, s.Format)
	fmt.Fprintf(w, "File size: %s\n", FormatBytes(s.FileSize))
	fmt.Fprintf(w, "Text size: %s (%s of file)\n", FormatBytes(s.TextSize),
		FormatPercent(share(s.TextSize, s.FileSize)))
	fmt.Fprintf(w, "Symbols: %s\n", FormatCount(len(s.Symbols), "symbol"))
	if s.BuildDuration > 0 {
		fmt.Fprintf(w, "Build time: %s\n", FormatDuration(s.BuildDuration))
	}
}

// WriteTopUnits prints the biggest units of the snapshot with their share of
// the file and of the code section.
func WriteTopUnits(w io.Writer, s *analyser.Snapshot, opts Options) {

	table := newTable(w, []string{"File", ".text", "Size", "Crate"},
		[]int{tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
			tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT})

	for _, us := range s.TopUnits(opts.Limit) {
		table.Append([]string{
			FormatPercent(share(us.Size, s.FileSize)),
			FormatPercent(share(us.Size, s.TextSize)),
			FormatBytes(us.Size),
			UnitLabel(us.Unit, us.Exact),
		})
	}

	table.SetFooter([]string{
		FormatPercent(share(s.TextSize, s.FileSize)), "100.0%",
		FormatBytes(s.TextSize), ".text section size",
	})
	table.Render()
}

// WriteTopSymbols prints the biggest symbols of the snapshot.
func WriteTopSymbols(w io.Writer, s *analyser.Snapshot, opts Options) {
	WriteSymbols(w, s, s.TopSymbols(opts.Limit), opts)
}

// WriteSymbols prints syms, in the given order, as a table.
func WriteSymbols(w io.Writer, s *analyser.Snapshot, syms []analyser.EnrichedSymbol,
	opts Options) {

	table := newTable(w, []string{"File", ".text", "Size", "Crate", "Name"},
		[]int{tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
			tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

	for _, sym := range limit(syms, opts.Limit) {
		table.Append([]string{
			FormatPercent(share(sym.Size, s.FileSize)),
			FormatPercent(share(sym.Size, s.TextSize)),
			FormatBytes(sym.Size),
			UnitLabel(sym.Unit, sym.Exact),
			symbolName(sym, opts.FullNames),
		})
	}
	table.Render()
}

func formatSide(d comparison.Delta, before bool) string {
	v := d.After
	if before {
		v = d.Before
	}
	if v == nil {
		return undefined
	}
	return FormatBytes(*v)
}

// WriteComparison prints the size deltas, then the unit and symbol changes
// ordered by decreasing relative change. Unchanged entries are skipped.
func WriteComparison(w io.Writer, res *comparison.Result, opts Options) {

	fmt.Fprintf(w, "File size: %s -> %s (%s)\n", FormatBytes(res.FileSize.Before),
		FormatBytes(res.FileSize.After),
		colorDiff(res.FileSize.Change(), FormatSizeDiff(res.FileSize.Change())))
	fmt.Fprintf(w, "Text size: %s -> %s (%s)\n", FormatBytes(res.TextSize.Before),
		FormatBytes(res.TextSize.After),
		colorDiff(res.TextSize.Change(), FormatSizeDiff(res.TextSize.Change())))
	if res.BuildDuration.Before > 0 || res.BuildDuration.After > 0 {
		fmt.Fprintf(w, "Build time: %s -> %s (%s)\n",
			FormatDuration(res.BuildDuration.Before), FormatDuration(res.BuildDuration.After),
			FormatDurationDiff(res.BuildDuration.Change()))
	}
	fmt.Fprintln(w)

	align := []int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT}

	units := changedUnits(res)
	comparison.SortByPercent(units)
	table := newTable(w, []string{"Crate", "Before", "After", "Change", "%"}, align)
	for _, c := range limit(units, opts.Limit) {
		pct, ok := c.PercentChange()
		table.Append([]string{
			string(c.Name),
			formatSide(c.Delta, true),
			formatSide(c.Delta, false),
			colorDiff(c.AbsoluteChange(), FormatSizeDiff(c.AbsoluteChange())),
			FormatPercentChange(pct, ok),
		})
	}
	table.Render()
	fmt.Fprintln(w)

	syms := res.ChangedSymbols()
	comparison.SortByPercent(syms)
	table = newTable(w, []string{"Symbol", "Before", "After", "Change", "%"}, align)
	for _, c := range limit(syms, opts.Limit) {
		pct, ok := c.PercentChange()
		name := c.Name
		if opts.FullNames {
			name = c.Demangled
		}
		table.Append([]string{
			name,
			formatSide(c.Delta, true),
			formatSide(c.Delta, false),
			colorDiff(c.AbsoluteChange(), FormatSizeDiff(c.AbsoluteChange())),
			FormatPercentChange(pct, ok),
		})
	}
	table.Render()
}

func changedUnits(res *comparison.Result) []comparison.UnitChange {
	var out []comparison.UnitChange
	for _, c := range res.Units {
		if c.AbsoluteChange() != 0 || c.IsNew() || c.IsRemoved() {
			out = append(out, c)
		}
	}
	return out
}

// WriteCounts prints the number of symbols of the biggest units.
func WriteCounts(w io.Writer, s *analyser.Snapshot, opts Options) {
	table := newTable(w, []string{"Crate", "Symbols"},
		[]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	for _, us := range s.TopUnits(opts.Limit) {
		table.Append([]string{UnitLabel(us.Unit, us.Exact), strconv.Itoa(us.Count)})
	}
	table.Render()
}
