// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

// Package artest synthesizes static library archives for tests.
package artest

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const magic = "!<arch>\n"

// Member returns an archive member header followed by data and its padding.
func Member(name string, data []byte) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%-16s%-12s%-6s%-6s%-8s%-10d`\n", name, "0", "0", "0", "644", len(data))
	b.Write(data)
	if len(data)%2 == 1 {
		b.WriteByte('\n')
	}
	return b.Bytes()
}

// GNU returns a GNU archive whose symbol table lists syms.
func GNU(syms ...string) []byte {
	var table bytes.Buffer
	_ = binary.Write(&table, binary.BigEndian, uint32(len(syms)))
	for range syms {
		_ = binary.Write(&table, binary.BigEndian, uint32(0))
	}
	for _, s := range syms {
		table.WriteString(s)
		table.WriteByte(0)
	}

	var b bytes.Buffer
	b.WriteString(magic)
	b.Write(Member("/", table.Bytes()))
	b.Write(Member("lib.o/", []byte("object")))
	return b.Bytes()
}
