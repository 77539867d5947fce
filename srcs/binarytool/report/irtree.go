// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/xlab/treeprint"

	"bloattool/srcs/binarytool/symbols"
	"bloattool/srcs/irtool/llvmir"
)

type unitLines struct {
	unit   symbols.UnitName
	lines  symbols.LineCount
	copies symbols.CopyCount
}

// IRTree builds a tree of the IR analysis: one branch per unit, ordered by
// decreasing line count, holding its opts.Limit biggest functions.
func IRTree(ir *llvmir.Analysis, opts Options) treeprint.Tree {

	root := treeprint.NewWithRoot(fmt.Sprintf("LLVM IR (lines: %d, copies: %d, files: %d)",
		ir.TotalLines, ir.TotalCopies, len(ir.Files)))

	units := make([]unitLines, 0, len(ir.Units))
	for unit, functions := range ir.Units {
		lines, copies := functions.Totals()
		units = append(units, unitLines{unit: unit, lines: lines, copies: copies})
	}
	sort.Slice(units, func(i, j int) bool {
		if units[i].lines != units[j].lines {
			return units[i].lines > units[j].lines
		}
		return units[i].unit < units[j].unit
	})

	for _, ul := range limit(units, opts.Limit) {
		branch := root.AddMetaBranch(fmt.Sprintf("%d lines, %d copies", ul.lines, ul.copies),
			string(ul.unit))
		sub := &llvmir.Analysis{Functions: ir.Units[ul.unit]}
		for _, stats := range limit(sub.SortedFunctions(), opts.Limit) {
			branch.AddMetaNode(fmt.Sprintf("%d lines, %d copies", stats.TotalLines, stats.Copies),
				stats.Name)
		}
	}

	return root
}

// WriteIRTree prints the tree built by IRTree.
func WriteIRTree(w io.Writer, ir *llvmir.Analysis, opts Options) {
	fmt.Fprint(w, IRTree(ir, opts).String())
}

func lineShare(part, total uint64) string {
	if total == 0 {
		return FormatPercent(0)
	}
	return FormatPercent(float64(part) / float64(total) * 100)
}

// WriteIRFunctions prints the functions of the IR analysis with the most
// lines, with their share of the lines and copies of the whole build.
func WriteIRFunctions(w io.Writer, ir *llvmir.Analysis, opts Options) {

	table := newTable(w, []string{"Lines", "", "Copies", "", "Function name"},
		[]int{tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
			tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT})

	table.Append([]string{
		strconv.FormatUint(uint64(ir.TotalLines), 10), FormatPercent(100),
		strconv.FormatUint(uint64(ir.TotalCopies), 10), FormatPercent(100),
		fmt.Sprintf("(TOTAL, %d files)", len(ir.Files)),
	})

	for _, stats := range limit(ir.SortedFunctions(), opts.Limit) {
		table.Append([]string{
			strconv.FormatUint(uint64(stats.TotalLines), 10),
			lineShare(uint64(stats.TotalLines), uint64(ir.TotalLines)),
			strconv.FormatUint(uint64(stats.Copies), 10),
			lineShare(uint64(stats.Copies), uint64(ir.TotalCopies)),
			stats.Name,
		})
	}
	table.Render()
}
