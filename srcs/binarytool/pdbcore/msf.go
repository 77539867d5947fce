// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

// Package pdbcore reads the parts of a program database (PDB) needed to
// rebuild the symbol table of a PE binary: section headers, public symbols
// and procedure records.
package pdbcore

import (
	"bytes"
	"encoding/binary"

	"bloattool/srcs/binarytool/symbols"
)

// MSFMagic starts every MSF 7.00 container.
const MSFMagic = "Microsoft C/C++ MSF 7.00\r\n\x1aDS\x00\x00\x00"

const nilStreamSize = 0xffffffff

// SuperBlock is the header of an MSF container.
type SuperBlock struct {
	Magic             [32]byte
	BlockSize         uint32
	FreeBlockMapBlock uint32
	NumBlocks         uint32
	NumDirectoryBytes uint32
	Unknown           uint32
	BlockMapAddr      uint32
}

// MSF is a multi-stream file: a set of streams scattered over fixed size
// blocks.
type MSF struct {
	Name        string
	Raw         []byte
	Super       SuperBlock
	streamSizes []uint32
	streamPages [][]uint32
}

// IsMSF reports whether raw starts with the MSF magic.
func IsMSF(raw []byte) bool {
	return bytes.HasPrefix(raw, []byte(MSFMagic))
}

// OpenMSF decodes the superblock and the stream directory of raw.
//
// It returns the container and an error if any, otherwise it returns nil.
func OpenMSF(name string, raw []byte) (*MSF, error) {

	m := &MSF{Name: name, Raw: raw}

	if len(raw) < binary.Size(SuperBlock{}) {
		return nil, symbols.Truncated(name, "msf superblock")
	}
	if !IsMSF(raw) {
		return nil, symbols.Invalid(name, "invalid msf magic")
	}
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, &m.Super); err != nil {
		return nil, symbols.Truncated(name, "msf superblock")
	}

	switch m.Super.BlockSize {
	case 512, 1024, 2048, 4096:
	default:
		return nil, symbols.Invalid(name, "invalid msf block size: %d", m.Super.BlockSize)
	}

	if err := m.readDirectory(); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *MSF) numPages(size uint32) uint32 {
	return (size + m.Super.BlockSize - 1) / m.Super.BlockSize
}

func (m *MSF) block(index uint32) ([]byte, error) {
	start := uint64(index) * uint64(m.Super.BlockSize)
	end := start + uint64(m.Super.BlockSize)
	if end > uint64(len(m.Raw)) {
		// The last block of a file may be short.
		if start < uint64(len(m.Raw)) {
			return m.Raw[start:], nil
		}
		return nil, symbols.Truncated(m.Name, "msf block")
	}
	return m.Raw[start:end], nil
}

// gather concatenates the given blocks and truncates the result to size.
func (m *MSF) gather(pages []uint32, size uint32) ([]byte, error) {
	out := make([]byte, 0, len(pages)*int(m.Super.BlockSize))
	for _, page := range pages {
		b, err := m.block(page)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	if uint32(len(out)) < size {
		return nil, symbols.Truncated(m.Name, "msf stream")
	}
	return out[:size], nil
}

func (m *MSF) readDirectory() error {

	dirPages := m.numPages(m.Super.NumDirectoryBytes)
	blockMap, err := m.block(m.Super.BlockMapAddr)
	if err != nil {
		return err
	}
	if uint64(dirPages)*4 > uint64(len(blockMap)) {
		return symbols.Invalid(m.Name, "msf directory too large: %d bytes",
			m.Super.NumDirectoryBytes)
	}

	pages := make([]uint32, dirPages)
	for i := range pages {
		pages[i] = binary.LittleEndian.Uint32(blockMap[i*4:])
	}

	directory, err := m.gather(pages, m.Super.NumDirectoryBytes)
	if err != nil {
		return err
	}

	r := newReader(m.Name, directory)
	numStreams, err := r.u32()
	if err != nil {
		return err
	}
	if uint64(numStreams)*4 > uint64(len(directory)) {
		return symbols.Invalid(m.Name, "invalid msf stream count: %d", numStreams)
	}

	m.streamSizes = make([]uint32, numStreams)
	for i := range m.streamSizes {
		if m.streamSizes[i], err = r.u32(); err != nil {
			return err
		}
	}

	m.streamPages = make([][]uint32, numStreams)
	for i, size := range m.streamSizes {
		if size == nilStreamSize {
			continue
		}
		m.streamPages[i] = make([]uint32, m.numPages(size))
		for j := range m.streamPages[i] {
			if m.streamPages[i][j], err = r.u32(); err != nil {
				return err
			}
		}
	}

	return nil
}

// NumStreams returns the number of streams of the container.
func (m *MSF) NumStreams() int {
	return len(m.streamSizes)
}

// Stream returns the content of the stream at index. Nil streams are empty.
//
// It returns the content and an error if any, otherwise it returns nil.
func (m *MSF) Stream(index int) ([]byte, error) {
	if index < 0 || index >= len(m.streamSizes) {
		return nil, symbols.Invalid(m.Name, "invalid msf stream index: %d", index)
	}
	if m.streamSizes[index] == nilStreamSize {
		return nil, nil
	}
	return m.gather(m.streamPages[index], m.streamSizes[index])
}
