// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package pdbcore

import (
	"encoding/binary"

	"bloattool/srcs/binarytool/symbols"
)

// PDB is the symbol information recovered from a program database.
type PDB struct {
	Sections   []SectionHeader
	Publics    []PublicSymbol
	Procedures []Procedure
	Modules    []Module
}

// Parse decodes the global symbol records and the symbols of every module.
//
// It returns the database and an error if any, otherwise it returns nil.
func Parse(name string, raw []byte) (*PDB, error) {

	msf, err := OpenMSF(name, raw)
	if err != nil {
		return nil, err
	}

	dbiStream, err := msf.Stream(StreamDBI)
	if err != nil {
		return nil, err
	}
	dbi, err := parseDBI(name, dbiStream)
	if err != nil {
		return nil, err
	}

	pdb := &PDB{Modules: dbi.Modules}

	if dbi.SectionHdrStream != noStream {
		stream, err := msf.Stream(int(dbi.SectionHdrStream))
		if err != nil {
			return nil, err
		}
		if pdb.Sections, err = parseSectionHeaders(name, stream); err != nil {
			return nil, err
		}
	}

	if dbi.Header.SymRecordStream != noStream {
		stream, err := msf.Stream(int(dbi.Header.SymRecordStream))
		if err != nil {
			return nil, err
		}
		pdb.Publics, pdb.Procedures, err = parseRecords(name, stream,
			pdb.Publics, pdb.Procedures)
		if err != nil {
			return nil, err
		}
	}

	for _, module := range dbi.Modules {
		if module.SymStream == noStream {
			continue
		}
		stream, err := msf.Stream(int(module.SymStream))
		if err != nil {
			return nil, err
		}
		if uint64(module.SymByteSize) > uint64(len(stream)) {
			return nil, symbols.Truncated(name, "module symbol stream")
		}
		stream = stream[:module.SymByteSize]
		if len(stream) < 4 {
			continue
		}
		if signature := binary.LittleEndian.Uint32(stream); signature != moduleCV4 {
			return nil, symbols.Invalid(name, "invalid module signature: %d", signature)
		}
		pdb.Publics, pdb.Procedures, err = parseRecords(name, stream[4:],
			pdb.Publics, pdb.Procedures)
		if err != nil {
			return nil, err
		}
	}

	return pdb, nil
}

// RVA converts a (segment, offset) address into a relative virtual address.
// Segments are 1-based indexes into the section headers.
func (p *PDB) RVA(segment uint16, offset uint32) (uint64, bool) {
	if segment == 0 || int(segment) > len(p.Sections) {
		return 0, false
	}
	return uint64(p.Sections[segment-1].VirtualAddress) + uint64(offset), true
}
