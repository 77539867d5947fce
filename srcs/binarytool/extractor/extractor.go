// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

// Package extractor reads the symbols of the code section of a binary,
// whatever its executable format.
package extractor

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"sort"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"bloattool/srcs/binarytool/symbols"
	u "bloattool/srcs/common"
)

// DefaultSection is the code section analysed when none is given.
const DefaultSection = ".text"

// Format is an executable file format.
type Format int

const (
	FormatUnknown Format = iota
	FormatELF32
	FormatELF64
	FormatMachO
	FormatPE
)

func (f Format) String() string {
	switch f {
	case FormatELF32:
		return "elf32"
	case FormatELF64:
		return "elf64"
	case FormatMachO:
		return "mach-o"
	case FormatPE:
		return "pe"
	default:
		return "unknown"
	}
}

// Result holds the symbols of the code section of a binary, sorted by
// address with one symbol per address.
type Result struct {
	Format   Format
	Symbols  []symbols.RawSymbol
	TextSize symbols.ByteSize
	FileSize symbols.ByteSize
}

// Extractor extracts symbols from binaries.
type Extractor struct {
	Logger log.Logger
}

// New creates an extractor logging to logger.
func New(logger log.Logger) *Extractor {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Extractor{Logger: logger}
}

// Extract reads the binary located at path with a silent extractor.
func Extract(path, sectionName string) (*Result, error) {
	return New(nil).Extract(path, sectionName)
}

// DetectFormat classifies raw from its leading bytes.
func DetectFormat(raw []byte) Format {
	if len(raw) < 4 {
		return FormatUnknown
	}
	switch {
	case raw[0] == 0x7f && raw[1] == 'E' && raw[2] == 'L' && raw[3] == 'F':
		if len(raw) > 4 && raw[4] == 1 {
			return FormatELF32
		}
		if len(raw) > 4 && raw[4] == 2 {
			return FormatELF64
		}
		return FormatUnknown
	case raw[0] == 'M' && raw[1] == 'Z':
		return FormatPE
	}

	switch binary.LittleEndian.Uint32(raw) {
	case 0xfeedface, 0xfeedfacf, 0xcefaedfe, 0xcffaedfe:
		return FormatMachO
	}

	return FormatUnknown
}

// Extract reads the symbols of the section sectionName (DefaultSection when
// empty) of the binary located at path. The whole file size comes from the
// file system.
//
// It returns the result and an error if any, otherwise it returns nil.
func (e *Extractor) Extract(path, sectionName string) (*Result, error) {

	if len(sectionName) == 0 {
		sectionName = DefaultSection
	}

	stats, err := os.Stat(path)
	if err != nil {
		return nil, symbols.NewError(symbols.ErrOpenFailed, path, err)
	}

	mapped, err := u.MapFile(path)
	if err != nil {
		return nil, symbols.NewError(symbols.ErrOpenFailed, path, err)
	}
	defer mapped.Close()

	format := DetectFormat(mapped.Data)
	var raws []rawEntry
	var textSize uint64

	switch format {
	case FormatELF32, FormatELF64:
		raws, textSize, err = parseELF(path, mapped.Data, sectionName)
	case FormatMachO:
		raws, textSize, err = parseMachO(path, mapped.Data, sectionName)
	case FormatPE:
		raws, textSize, err = e.parsePE(path, mapped.Data, sectionName)
	default:
		return nil, symbols.NewError(symbols.ErrUnsupportedFormat, path, nil)
	}
	if err != nil {
		return nil, err
	}

	result := &Result{
		Format:   format,
		Symbols:  dedup(raws),
		TextSize: symbols.ByteSize(textSize),
		FileSize: symbols.ByteSize(stats.Size()),
	}

	level.Debug(e.Logger).Log("msg", "extracted symbols", "path", path,
		"format", format, "records", len(raws), "symbols", len(result.Symbols),
		"text_size", result.TextSize)

	return result, nil
}

// rawEntry is a symbol before demangling. A non-nil sym is used as is.
type rawEntry struct {
	name    string
	address uint64
	size    uint64
	sym     *symbols.RawSymbol
}

func (r rawEntry) symbol() symbols.RawSymbol {
	if r.sym != nil {
		return *r.sym
	}
	return symbols.NewRawSymbol(r.name, r.address, symbols.ByteSize(r.size))
}

// dedup sorts entries by address and keeps the first entry of each address.
func dedup(raws []rawEntry) []symbols.RawSymbol {
	sort.SliceStable(raws, func(i, j int) bool {
		return raws[i].address < raws[j].address
	})

	out := make([]symbols.RawSymbol, 0, len(raws))
	for i, r := range raws {
		if i > 0 && r.address == raws[i-1].address {
			continue
		}
		out = append(out, r.symbol())
	}
	return out
}

// synthesizeSizes fills the size of each entry (sorted by address) with the
// distance to the next one, capped at the end of the section.
func synthesizeSizes(raws []rawEntry, sectionEnd uint64) {
	sort.SliceStable(raws, func(i, j int) bool {
		return raws[i].address < raws[j].address
	})
	for i := range raws {
		end := sectionEnd
		for j := i + 1; j < len(raws); j++ {
			if raws[j].address > raws[i].address {
				end = raws[j].address
				break
			}
		}
		if end > raws[i].address {
			raws[i].size = end - raws[i].address
		}
	}
}

// parseError converts a decoding error of the standard library readers into
// the parse error taxonomy.
func parseError(path string, err error) error {
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return symbols.NewError(symbols.ErrUnexpectedEOF, path, err)
	}
	return symbols.NewError(symbols.ErrInvalidStructure, path, err)
}

func reader(raw []byte) io.ReaderAt {
	return bytes.NewReader(raw)
}
