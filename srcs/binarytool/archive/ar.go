// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package archive

import (
	"bytes"
	"encoding/binary"
	"strconv"
	"strings"

	"bloattool/srcs/binarytool/symbols"
)

// Magic starts every ar archive.
const Magic = "!<arch>\n"

const (
	headerSize   = 60
	gnuSymtab    = "/"
	gnuSymtab64  = "/SYM64/"
	bsdSymtab    = "__.SYMDEF"
	bsdSymtabSrt = "__.SYMDEF SORTED"
	bsdLongName  = "#1/"
)

// MemberHeader is the fixed size header preceding each member.
type MemberHeader struct {
	Name  [16]byte
	Mtime [12]byte
	UID   [6]byte
	GID   [6]byte
	Mode  [8]byte
	Size  [10]byte
	Fmag  [2]byte
}

// Member is a member of an archive.
type Member struct {
	Name string
	Data []byte
}

// Members splits an archive into its members. BSD long names ("#1/<len>")
// are resolved, GNU long names are kept as written.
//
// It returns the members and an error if any, otherwise it returns nil.
func Members(path string, raw []byte) ([]Member, error) {

	if !bytes.HasPrefix(raw, []byte(Magic)) {
		return nil, symbols.Invalid(path, "invalid archive magic")
	}

	members := make([]Member, 0)
	pos := len(Magic)
	for pos < len(raw) {
		if pos+headerSize > len(raw) {
			return nil, symbols.Truncated(path, "archive member header")
		}
		var header MemberHeader
		if err := binary.Read(bytes.NewReader(raw[pos:pos+headerSize]),
			binary.LittleEndian, &header); err != nil {
			return nil, symbols.Truncated(path, "archive member header")
		}
		if string(header.Fmag[:]) != "`\n" {
			return nil, symbols.Invalid(path, "invalid archive member terminator at %d", pos)
		}
		size, err := strconv.ParseUint(strings.TrimSpace(string(header.Size[:])), 10, 63)
		if err != nil {
			return nil, symbols.Invalid(path, "invalid archive member size at %d", pos)
		}
		pos += headerSize
		if uint64(len(raw)-pos) < size {
			return nil, symbols.Truncated(path, "archive member")
		}

		name := strings.TrimRight(string(header.Name[:]), " ")
		data := raw[pos : pos+int(size)]
		if strings.HasPrefix(name, bsdLongName) {
			n, err := strconv.Atoi(name[len(bsdLongName):])
			if err != nil || n > len(data) {
				return nil, symbols.Invalid(path, "invalid archive long name %q", name)
			}
			name = strings.TrimRight(string(data[:n]), "\x00")
			data = data[n:]
		}
		members = append(members, Member{Name: name, Data: data})

		pos += int(size)
		// Members are aligned on even offsets.
		if pos%2 == 1 {
			pos++
		}
	}

	return members, nil
}

// ParseSymbols returns the names listed in the symbol table of an archive,
// in the order they are written. Archives without symbol table yield no
// symbol.
//
// It returns the symbols and an error if any, otherwise it returns nil.
func ParseSymbols(path string, raw []byte) ([]string, error) {

	members, err := Members(path, raw)
	if err != nil {
		return nil, err
	}

	for _, m := range members {
		switch m.Name {
		case gnuSymtab:
			return parseGNUSymtab(path, m.Data, 4)
		case gnuSymtab64:
			return parseGNUSymtab(path, m.Data, 8)
		case bsdSymtab, bsdSymtabSrt:
			return parseBSDSymtab(path, m.Data)
		}
	}

	return []string{}, nil
}

func readUint(data []byte, width int) uint64 {
	if width == 8 {
		return binary.BigEndian.Uint64(data)
	}
	return uint64(binary.BigEndian.Uint32(data))
}

// parseGNUSymtab decodes a big endian count, the member offsets and the
// NUL-terminated names.
func parseGNUSymtab(path string, data []byte, width int) ([]string, error) {
	if len(data) < width {
		return nil, symbols.Truncated(path, "archive symbol table")
	}
	count := readUint(data, width)
	namesStart := uint64(width) + count*uint64(width)
	if count > uint64(len(data)) || namesStart > uint64(len(data)) {
		return nil, symbols.Truncated(path, "archive symbol table")
	}

	return splitNames(path, data[namesStart:], int(count))
}

// parseBSDSymtab decodes the ranlib entries (string index, member offset)
// followed by the string table.
func parseBSDSymtab(path string, data []byte) ([]string, error) {
	if len(data) < 4 {
		return nil, symbols.Truncated(path, "archive symbol table")
	}
	ranlibSize := uint64(binary.LittleEndian.Uint32(data))
	if ranlibSize%8 != 0 {
		return nil, symbols.Invalid(path, "invalid ranlib size: %d", ranlibSize)
	}
	if 4+ranlibSize+4 > uint64(len(data)) {
		return nil, symbols.Truncated(path, "archive symbol table")
	}
	ranlib := data[4 : 4+ranlibSize]
	strSize := uint64(binary.LittleEndian.Uint32(data[4+ranlibSize:]))
	strStart := 8 + ranlibSize
	if strStart+strSize > uint64(len(data)) {
		return nil, symbols.Truncated(path, "archive string table")
	}
	strtab := data[strStart : strStart+strSize]

	names := make([]string, 0, len(ranlib)/8)
	for i := 0; i+8 <= len(ranlib); i += 8 {
		strx := binary.LittleEndian.Uint32(ranlib[i:])
		if uint64(strx) >= uint64(len(strtab)) {
			return nil, symbols.Invalid(path, "invalid ranlib string index: %d", strx)
		}
		end := bytes.IndexByte(strtab[strx:], 0)
		if end < 0 {
			return nil, symbols.Truncated(path, "archive string table")
		}
		names = append(names, string(strtab[strx:int(strx)+end]))
	}

	return names, nil
}

func splitNames(path string, data []byte, count int) ([]string, error) {
	names := make([]string, 0, count)
	for i := 0; i < count; i++ {
		end := bytes.IndexByte(data, 0)
		if end < 0 {
			return nil, symbols.Truncated(path, "archive symbol names")
		}
		names = append(names, string(data[:end]))
		data = data[end+1:]
	}
	return names, nil
}
