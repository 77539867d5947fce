// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package elfcore_test

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloattool/srcs/binarytool/elfcore"
	"bloattool/srcs/binarytool/elfcore/elftest"
	"bloattool/srcs/binarytool/symbols"
)

func TestSectionFunctions(t *testing.T) {
	for _, tc := range []struct {
		name  string
		class elf.Class
		order binary.ByteOrder
	}{
		{"elf64 little endian", elf.ELFCLASS64, binary.LittleEndian},
		{"elf64 big endian", elf.ELFCLASS64, binary.BigEndian},
		{"elf32 little endian", elf.ELFCLASS32, binary.LittleEndian},
		{"elf32 big endian", elf.ELFCLASS32, binary.BigEndian},
	} {
		t.Run(tc.name, func(t *testing.T) {
			raw := elftest.Builder{
				Class:    tc.class,
				Order:    tc.order,
				TextAddr: 0x1000,
				TextSize: 0x100,
				Symbols: []elftest.Symbol{
					{Name: "second", Value: 0x1040, Size: 0x20},
					{Name: "first", Value: 0x1000, Size: 0x40},
					{Name: "last", Value: 0x10c0},
					{Name: "imported", Undefined: true},
				},
			}.Build()

			f, err := elfcore.NewELFFile("test", raw)
			require.NoError(t, err)
			assert.Equal(t, tc.class, f.Class)

			functions, size, err := f.SectionFunctions(".text")
			require.NoError(t, err)
			assert.Equal(t, uint64(0x100), size)
			assert.Equal(t, []elfcore.ELFFunction{
				{Name: "first", Addr: 0x1000, Size: 0x40},
				{Name: "second", Addr: 0x1040, Size: 0x20},
				{Name: "last", Addr: 0x10c0, Size: 0x40},
			}, functions)
		})
	}
}

func TestSectionFunctionsKeepsZeroSizeRecords(t *testing.T) {
	raw := elftest.Builder{
		TextAddr: 0x1000,
		TextSize: 0x20,
		Symbols: []elftest.Symbol{
			{Name: "a", Value: 0x1000, Size: 0x10},
			{Name: "label", Value: 0x1010},
			{Name: "b", Value: 0x1010, Size: 0x10},
			{Name: "end_marker", Value: 0x1020},
		},
	}.Build()

	f, err := elfcore.NewELFFile("test", raw)
	require.NoError(t, err)

	functions, _, err := f.SectionFunctions(".text")
	require.NoError(t, err)
	assert.Equal(t, []elfcore.ELFFunction{
		{Name: "a", Addr: 0x1000, Size: 0x10},
		{Name: "label", Addr: 0x1010, Size: 0x10},
		{Name: "b", Addr: 0x1010, Size: 0x10},
		{Name: "end_marker", Addr: 0x1020, Size: 0},
	}, functions)
}

func TestSectionNotFound(t *testing.T) {
	raw := elftest.Builder{TextAddr: 0x1000, TextSize: 0x10}.Build()
	f, err := elfcore.NewELFFile("test", raw)
	require.NoError(t, err)

	_, _, err = f.SectionFunctions(".custom")
	assert.True(t, errors.Is(err, symbols.ErrInvalidStructure))
}

func TestTruncatedFile(t *testing.T) {
	raw := elftest.Builder{TextAddr: 0x1000, TextSize: 0x10,
		Symbols: []elftest.Symbol{{Name: "f", Value: 0x1000, Size: 4}}}.Build()

	_, err := elfcore.NewELFFile("test", raw[:len(raw)-8])
	require.Error(t, err)
	assert.True(t, errors.Is(err, symbols.ErrUnexpectedEOF))

	_, err = elfcore.NewELFFile("test", raw[:10])
	assert.True(t, errors.Is(err, symbols.ErrUnexpectedEOF))
}

func TestSymtabLinkOutOfRange(t *testing.T) {
	for _, class := range []elf.Class{elf.ELFCLASS64, elf.ELFCLASS32} {
		raw := elftest.Builder{
			Class:    class,
			TextAddr: 0x1000,
			TextSize: 0x10,
			Symbols:  []elftest.Symbol{{Name: "f", Value: 0x1000, Size: 4}},
			// Low 16 bits name the real .strtab.
			SymtabLink: 0x10003,
		}.Build()

		_, err := elfcore.NewELFFile("test", raw)
		require.Error(t, err, class.String())
		assert.True(t, errors.Is(err, symbols.ErrInvalidStructure), class.String())
	}
}

func TestInvalidClass(t *testing.T) {
	raw := elftest.Builder{TextAddr: 0x1000, TextSize: 0x10}.Build()
	raw[elf.EI_CLASS] = 7

	_, err := elfcore.NewELFFile("test", raw)
	assert.True(t, errors.Is(err, symbols.ErrInvalidStructure))
}

func TestDisplay(t *testing.T) {
	raw := elftest.Builder{TextAddr: 0x1000, TextSize: 0x10,
		Symbols: []elftest.Symbol{{Name: "main", Value: 0x1000, Size: 4}}}.Build()
	f, err := elfcore.NewELFFile("test", raw)
	require.NoError(t, err)

	var buf bytes.Buffer
	f.SectionsTable.DisplaySections(&buf)
	f.DisplaySymbolsTables(&buf)
	assert.Contains(t, buf.String(), ".symtab")
	assert.Contains(t, buf.String(), "main")
}
