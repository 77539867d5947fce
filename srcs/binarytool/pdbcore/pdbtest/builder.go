// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

// Package pdbtest synthesizes minimal program databases for tests.
package pdbtest

import (
	"bytes"
	"encoding/binary"

	"bloattool/srcs/binarytool/pdbcore"
)

const blockSize = 512

// Section returns a section header with the given name and address.
func Section(name string, virtualAddress, size uint32) pdbcore.SectionHeader {
	s := pdbcore.SectionHeader{VirtualAddress: virtualAddress, VirtualSize: size}
	copy(s.Name[:], name)
	return s
}

// Builder describes the database to produce. Public symbols are written to
// the global symbol record stream and procedures to a single module.
type Builder struct {
	Sections   []pdbcore.SectionHeader
	Publics    []pdbcore.PublicSymbol
	Procedures []pdbcore.Procedure
}

func record(kind uint16, body []byte) []byte {
	var b bytes.Buffer
	payload := append([]byte{byte(kind), byte(kind >> 8)}, body...)
	for (len(payload)+2)%4 != 0 {
		payload = append(payload, 0)
	}
	_ = binary.Write(&b, binary.LittleEndian, uint16(len(payload)))
	b.Write(payload)
	return b.Bytes()
}

func (b Builder) symRecords() []byte {
	var out bytes.Buffer
	for _, p := range b.Publics {
		var body bytes.Buffer
		var flags uint32
		if p.Code {
			flags |= 1
		}
		if p.Function {
			flags |= 2
		}
		_ = binary.Write(&body, binary.LittleEndian, flags)
		_ = binary.Write(&body, binary.LittleEndian, p.Offset)
		_ = binary.Write(&body, binary.LittleEndian, p.Segment)
		body.WriteString(p.Name)
		body.WriteByte(0)
		out.Write(record(pdbcore.SPub32, body.Bytes()))
	}
	return out.Bytes()
}

func (b Builder) moduleSymbols() []byte {
	var out bytes.Buffer
	_ = binary.Write(&out, binary.LittleEndian, uint32(4))
	for _, p := range b.Procedures {
		var body bytes.Buffer
		for i := 0; i < 3; i++ {
			_ = binary.Write(&body, binary.LittleEndian, uint32(0))
		}
		_ = binary.Write(&body, binary.LittleEndian, p.Length)
		for i := 0; i < 3; i++ {
			_ = binary.Write(&body, binary.LittleEndian, uint32(0))
		}
		_ = binary.Write(&body, binary.LittleEndian, p.Offset)
		_ = binary.Write(&body, binary.LittleEndian, p.Segment)
		body.WriteByte(0)
		body.WriteString(p.Name)
		body.WriteByte(0)
		out.Write(record(pdbcore.SGProc32, body.Bytes()))
	}
	return out.Bytes()
}

func (b Builder) dbi(moduleSize uint32) []byte {
	var modInfo bytes.Buffer
	_ = binary.Write(&modInfo, binary.LittleEndian, pdbcore.ModInfoHeader{
		ModuleSymStream: 5,
		SymByteSize:     moduleSize,
	})
	modInfo.WriteString("main.obj\x00main.obj\x00")
	for modInfo.Len()%4 != 0 {
		modInfo.WriteByte(0)
	}

	dbg := make([]uint16, 11)
	for i := range dbg {
		dbg[i] = 0xffff
	}
	dbg[5] = 6

	var out bytes.Buffer
	_ = binary.Write(&out, binary.LittleEndian, pdbcore.DBIHeader{
		VersionSignature:      -1,
		VersionHeader:         19990903,
		GlobalStreamIndex:     0xffff,
		PublicStreamIndex:     0xffff,
		SymRecordStream:       4,
		ModInfoSize:           int32(modInfo.Len()),
		OptionalDbgHeaderSize: int32(len(dbg) * 2),
	})
	out.Write(modInfo.Bytes())
	_ = binary.Write(&out, binary.LittleEndian, dbg)
	return out.Bytes()
}

func (b Builder) sectionHeaders() []byte {
	var out bytes.Buffer
	_ = binary.Write(&out, binary.LittleEndian, b.Sections)
	return out.Bytes()
}

// Build returns the bytes of the described database.
func (b Builder) Build() []byte {
	module := b.moduleSymbols()
	streams := [][]byte{nil, nil, nil, b.dbi(uint32(len(module))),
		b.symRecords(), module, b.sectionHeaders()}

	// Blocks 0 to 2 hold the superblock and the free block maps.
	next := uint32(3)
	pages := make([][]uint32, len(streams))
	for i, s := range streams {
		for off := 0; off < len(s); off += blockSize {
			pages[i] = append(pages[i], next)
			next++
		}
	}

	var dir bytes.Buffer
	_ = binary.Write(&dir, binary.LittleEndian, uint32(len(streams)))
	for _, s := range streams {
		_ = binary.Write(&dir, binary.LittleEndian, uint32(len(s)))
	}
	for _, p := range pages {
		_ = binary.Write(&dir, binary.LittleEndian, p)
	}

	var dirPages []uint32
	for off := 0; off < dir.Len(); off += blockSize {
		dirPages = append(dirPages, next)
		next++
	}
	blockMap := next
	next++

	out := make([]byte, int(next)*blockSize)
	var super bytes.Buffer
	var magic [32]byte
	copy(magic[:], pdbcore.MSFMagic)
	_ = binary.Write(&super, binary.LittleEndian, pdbcore.SuperBlock{
		Magic:             magic,
		BlockSize:         blockSize,
		FreeBlockMapBlock: 1,
		NumBlocks:         next,
		NumDirectoryBytes: uint32(dir.Len()),
		BlockMapAddr:      blockMap,
	})
	copy(out, super.Bytes())

	for i, s := range streams {
		for j, page := range pages[i] {
			copy(out[int(page)*blockSize:], s[j*blockSize:])
		}
	}
	for j, page := range dirPages {
		copy(out[int(page)*blockSize:], dir.Bytes()[j*blockSize:])
	}
	for j, page := range dirPages {
		binary.LittleEndian.PutUint32(out[int(blockMap)*blockSize+j*4:], page)
	}

	return out
}
