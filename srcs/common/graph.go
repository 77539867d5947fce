// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package common

import (
	"os"
	"sort"
	"strconv"

	"github.com/awalterschulze/gographviz"
	"github.com/pkg/errors"
)

// Edge is a labelled edge of a dependency graph.
type Edge struct {
	To    string
	Label string
}

// BuildGraph builds a directed graph named after programName where each key of
// data is linked to its edges. Nodes are filled with the colour found in
// colors, if any.
//
// It returns the graph and an error if any, otherwise it returns nil.
func BuildGraph(programName string, data map[string][]Edge,
	colors map[string]string) (*gographviz.Graph, error) {

	graph := gographviz.NewGraph()
	if err := graph.SetName(strconv.Quote(programName)); err != nil {
		return nil, err
	}
	if err := graph.SetDir(true); err != nil {
		return nil, err
	}

	// Sorted keys keep the dot file stable.
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := addNode(graph, key, colors); err != nil {
			return nil, err
		}
		for _, edge := range data[key] {
			if err := addNode(graph, edge.To, colors); err != nil {
				return nil, err
			}
			attrs := map[string]string{}
			if len(edge.Label) > 0 {
				attrs["label"] = strconv.Quote(edge.Label)
			}
			if err := graph.AddEdge(strconv.Quote(key), strconv.Quote(edge.To),
				true, attrs); err != nil {
				return nil, err
			}
		}
	}

	return graph, nil
}

func addNode(graph *gographviz.Graph, name string, colors map[string]string) error {
	quoted := strconv.Quote(name)
	if graph.IsNode(quoted) {
		return nil
	}

	attrs := map[string]string{}
	if c, ok := colors[name]; ok {
		attrs["style"] = "filled"
		attrs["fillcolor"] = strconv.Quote(c)
	}

	return graph.AddNode(graph.Name, quoted, attrs)
}

// GenerateGraph builds the graph of the given data and saves it as a dot file
// at path (the ".dot" extension is appended).
//
// It returns an error if any, otherwise it returns nil.
func GenerateGraph(programName, path string, data map[string][]Edge,
	colors map[string]string) error {

	graph, err := BuildGraph(programName, data, colors)
	if err != nil {
		return errors.Wrap(err, "cannot build graph")
	}

	if err := os.WriteFile(path+".dot", []byte(graph.String()), 0644); err != nil {
		return errors.Wrapf(err, "cannot write graph %s.dot", path)
	}

	return nil
}
