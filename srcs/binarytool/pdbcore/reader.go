// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package pdbcore

import (
	"bytes"
	"encoding/binary"

	"bloattool/srcs/binarytool/symbols"
)

// reader is a bounds-checked little endian cursor over a stream.
type reader struct {
	name string
	buf  []byte
	pos  int
}

func newReader(name string, buf []byte) *reader {
	return &reader{name: name, buf: buf}
}

func (r *reader) remaining() int {
	return len(r.buf) - r.pos
}

func (r *reader) bytes(n int) ([]byte, error) {
	if n < 0 || n > r.remaining() {
		return nil, symbols.Truncated(r.name, "pdb stream")
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) u8() (uint8, error) {
	b, err := r.bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) u16() (uint16, error) {
	b, err := r.bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *reader) u32() (uint32, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) cstring() (string, error) {
	end := bytes.IndexByte(r.buf[r.pos:], 0)
	if end < 0 {
		return "", symbols.Truncated(r.name, "unterminated pdb string")
	}
	s := string(r.buf[r.pos : r.pos+end])
	r.pos += end + 1
	return s, nil
}

func (r *reader) align(n int) {
	if rem := r.pos % n; rem != 0 {
		r.pos += n - rem
	}
	if r.pos > len(r.buf) {
		r.pos = len(r.buf)
	}
}

// read decodes a fixed size structure.
func (r *reader) read(out interface{}) error {
	size := binary.Size(out)
	b, err := r.bytes(size)
	if err != nil {
		return err
	}
	return binary.Read(bytes.NewReader(b), binary.LittleEndian, out)
}
