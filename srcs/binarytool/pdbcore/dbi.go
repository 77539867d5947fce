// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package pdbcore

import (
	"bloattool/srcs/binarytool/symbols"
)

// Fixed stream indexes.
const (
	StreamDBI = 3
)

// DbgHeader slot holding the stream of the original section headers.
const dbgSectionHeaders = 5

const noStream = 0xffff

// DBIHeader is the header of the debug information stream.
type DBIHeader struct {
	VersionSignature        int32
	VersionHeader           uint32
	Age                     uint32
	GlobalStreamIndex       uint16
	BuildNumber             uint16
	PublicStreamIndex       uint16
	PdbDllVersion           uint16
	SymRecordStream         uint16
	PdbDllRbld              uint16
	ModInfoSize             int32
	SectionContributionSize int32
	SectionMapSize          int32
	SourceInfoSize          int32
	TypeServerMapSize       int32
	MFCTypeServerIndex      uint32
	OptionalDbgHeaderSize   int32
	ECSubstreamSize         int32
	Flags                   uint16
	Machine                 uint16
	Padding                 uint32
}

// ModInfoHeader is the fixed part of a module entry of the DBI stream.
type ModInfoHeader struct {
	Unused1              uint32
	SectionContribution  [28]byte
	Flags                uint16
	ModuleSymStream      uint16
	SymByteSize          uint32
	C11ByteSize          uint32
	C13ByteSize          uint32
	SourceFileCount      uint16
	Padding              uint16
	Unused2              uint32
	SourceFileNameIndex  uint32
	PdbFilePathNameIndex uint32
}

// Module is a compiland listed in the DBI stream.
type Module struct {
	Name        string
	ObjFileName string
	SymStream   uint16
	SymByteSize uint32
}

// SectionHeader is an IMAGE_SECTION_HEADER copied into the database.
type SectionHeader struct {
	Name                 [8]byte
	VirtualSize          uint32
	VirtualAddress       uint32
	SizeOfRawData        uint32
	PointerToRawData     uint32
	PointerToRelocations uint32
	PointerToLinenumbers uint32
	NumberOfRelocations  uint16
	NumberOfLinenumbers  uint16
	Characteristics      uint32
}

// DBI holds the decoded parts of the debug information stream.
type DBI struct {
	Header           DBIHeader
	Modules          []Module
	SectionHdrStream uint16
}

func parseDBI(name string, stream []byte) (*DBI, error) {

	r := newReader(name, stream)
	dbi := &DBI{SectionHdrStream: noStream}
	if err := r.read(&dbi.Header); err != nil {
		return nil, err
	}

	h := dbi.Header
	for _, size := range []int32{h.ModInfoSize, h.SectionContributionSize,
		h.SectionMapSize, h.SourceInfoSize, h.TypeServerMapSize,
		h.ECSubstreamSize, h.OptionalDbgHeaderSize} {
		if size < 0 {
			return nil, symbols.Invalid(name, "negative dbi substream size: %d", size)
		}
	}

	modInfo, err := r.bytes(int(h.ModInfoSize))
	if err != nil {
		return nil, err
	}
	if dbi.Modules, err = parseModules(name, modInfo); err != nil {
		return nil, err
	}

	// Skip the substreams that are not needed, in their on-disk order.
	for _, size := range []int32{h.SectionContributionSize, h.SectionMapSize,
		h.SourceInfoSize, h.TypeServerMapSize, h.ECSubstreamSize} {
		if _, err := r.bytes(int(size)); err != nil {
			return nil, err
		}
	}

	dbg, err := r.bytes(int(h.OptionalDbgHeaderSize))
	if err != nil {
		return nil, err
	}
	if len(dbg) >= (dbgSectionHeaders+1)*2 {
		dr := newReader(name, dbg[dbgSectionHeaders*2:])
		if dbi.SectionHdrStream, err = dr.u16(); err != nil {
			return nil, err
		}
	}

	return dbi, nil
}

func parseModules(name string, modInfo []byte) ([]Module, error) {

	r := newReader(name, modInfo)
	modules := make([]Module, 0)
	for r.remaining() > 0 {
		var header ModInfoHeader
		if err := r.read(&header); err != nil {
			return nil, err
		}
		moduleName, err := r.cstring()
		if err != nil {
			return nil, err
		}
		objName, err := r.cstring()
		if err != nil {
			return nil, err
		}
		r.align(4)

		modules = append(modules, Module{
			Name:        moduleName,
			ObjFileName: objName,
			SymStream:   header.ModuleSymStream,
			SymByteSize: header.SymByteSize,
		})
	}

	return modules, nil
}

func parseSectionHeaders(name string, stream []byte) ([]SectionHeader, error) {
	r := newReader(name, stream)
	sections := make([]SectionHeader, 0, len(stream)/40)
	for r.remaining() > 0 {
		var s SectionHeader
		if err := r.read(&s); err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, nil
}
