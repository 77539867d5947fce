// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package pdbcore

// CodeView symbol record kinds.
const (
	SPub32      = 0x110e
	SLProc32    = 0x110f
	SGProc32    = 0x1110
	SLProc32ID  = 0x1146
	SGProc32ID  = 0x1147
	moduleCV4   = 4
	pubFlagCode = 0x1
	pubFlagFunc = 0x2
)

// PublicSymbol is an S_PUB32 record. Its name is the linker (mangled) name.
type PublicSymbol struct {
	Name     string
	Segment  uint16
	Offset   uint32
	Code     bool
	Function bool
}

// Procedure is an S_*PROC32* record. Its name is the undecorated name.
type Procedure struct {
	Name    string
	Segment uint16
	Offset  uint32
	Length  uint32
}

type procHeader struct {
	Parent       uint32
	End          uint32
	Next         uint32
	CodeSize     uint32
	DbgStart     uint32
	DbgEnd       uint32
	FunctionType uint32
	Offset       uint32
	Segment      uint16
	Flags        uint8
}

// parseRecords walks a sequence of symbol records and collects public
// symbols and procedures. Other record kinds are skipped.
func parseRecords(name string, data []byte, publics []PublicSymbol,
	procs []Procedure) ([]PublicSymbol, []Procedure, error) {

	r := newReader(name, data)
	for r.remaining() >= 4 {
		length, err := r.u16()
		if err != nil {
			return nil, nil, err
		}
		if length < 2 {
			// Padding at the end of a stream.
			break
		}
		body, err := r.bytes(int(length))
		if err != nil {
			return nil, nil, err
		}

		br := newReader(name, body)
		kind, _ := br.u16()
		switch kind {
		case SPub32:
			flags, err := br.u32()
			if err != nil {
				return nil, nil, err
			}
			offset, err := br.u32()
			if err != nil {
				return nil, nil, err
			}
			segment, err := br.u16()
			if err != nil {
				return nil, nil, err
			}
			symName, err := br.cstring()
			if err != nil {
				return nil, nil, err
			}
			publics = append(publics, PublicSymbol{
				Name:     symName,
				Segment:  segment,
				Offset:   offset,
				Code:     flags&pubFlagCode != 0,
				Function: flags&pubFlagFunc != 0,
			})
		case SGProc32, SLProc32, SGProc32ID, SLProc32ID:
			var h procHeader
			if err := br.read(&h); err != nil {
				return nil, nil, err
			}
			symName, err := br.cstring()
			if err != nil {
				return nil, nil, err
			}
			procs = append(procs, Procedure{
				Name:    symName,
				Segment: h.Segment,
				Offset:  h.Offset,
				Length:  h.CodeSize,
			})
		}
	}

	return publics, procs, nil
}
