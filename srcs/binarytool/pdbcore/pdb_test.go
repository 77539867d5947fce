// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package pdbcore_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloattool/srcs/binarytool/pdbcore"
	"bloattool/srcs/binarytool/pdbcore/pdbtest"
	"bloattool/srcs/binarytool/symbols"
)

func TestParse(t *testing.T) {
	raw := pdbtest.Builder{
		Sections: []pdbcore.SectionHeader{
			pdbtest.Section(".text", 0x1000, 0x2000),
			pdbtest.Section(".rdata", 0x3000, 0x100),
		},
		Publics: []pdbcore.PublicSymbol{
			{Name: "_ZN3foo3bar17h0123456789abcdefE", Segment: 1, Offset: 0x10,
				Code: true, Function: true},
			{Name: "CONSTANT", Segment: 2, Offset: 0x8},
		},
		Procedures: []pdbcore.Procedure{
			{Name: "foo::bar", Segment: 1, Offset: 0x10, Length: 0x30},
			{Name: "baz", Segment: 1, Offset: 0x80, Length: 0x8},
		},
	}.Build()

	require.True(t, pdbcore.IsMSF(raw))

	pdb, err := pdbcore.Parse("test.pdb", raw)
	require.NoError(t, err)

	require.Len(t, pdb.Sections, 2)
	assert.Equal(t, uint32(0x3000), pdb.Sections[1].VirtualAddress)

	require.Len(t, pdb.Modules, 1)
	assert.Equal(t, "main.obj", pdb.Modules[0].Name)

	assert.Equal(t, []pdbcore.PublicSymbol{
		{Name: "_ZN3foo3bar17h0123456789abcdefE", Segment: 1, Offset: 0x10,
			Code: true, Function: true},
		{Name: "CONSTANT", Segment: 2, Offset: 0x8},
	}, pdb.Publics)
	assert.Equal(t, []pdbcore.Procedure{
		{Name: "foo::bar", Segment: 1, Offset: 0x10, Length: 0x30},
		{Name: "baz", Segment: 1, Offset: 0x80, Length: 0x8},
	}, pdb.Procedures)

	rva, ok := pdb.RVA(1, 0x10)
	assert.True(t, ok)
	assert.Equal(t, uint64(0x1010), rva)

	_, ok = pdb.RVA(0, 0x10)
	assert.False(t, ok)
	_, ok = pdb.RVA(3, 0x10)
	assert.False(t, ok)
}

func TestParseErrors(t *testing.T) {
	raw := pdbtest.Builder{
		Sections: []pdbcore.SectionHeader{pdbtest.Section(".text", 0x1000, 0x10)},
	}.Build()

	_, err := pdbcore.Parse("test.pdb", raw[:16])
	assert.True(t, errors.Is(err, symbols.ErrUnexpectedEOF))

	bad := append([]byte(nil), raw...)
	bad[0] = 'X'
	_, err = pdbcore.Parse("test.pdb", bad)
	assert.True(t, errors.Is(err, symbols.ErrInvalidStructure))

	// Drop the blocks holding the directory and the block map.
	_, err = pdbcore.Parse("test.pdb", raw[:len(raw)-1024])
	assert.True(t, symbols.IsParseError(err))
}

func TestStreams(t *testing.T) {
	raw := pdbtest.Builder{}.Build()
	msf, err := pdbcore.OpenMSF("test.pdb", raw)
	require.NoError(t, err)
	assert.Equal(t, 7, msf.NumStreams())

	empty, err := msf.Stream(0)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = msf.Stream(42)
	assert.True(t, errors.Is(err, symbols.ErrInvalidStructure))
}
