// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package command

import (
	"encoding/binary"
	"fmt"
)

// Decoder provides sequential decoding of one command buffer.
//
// The decoder tracks a single read position; after Next reports true,
// Tag identifies the current command and the typed read methods consume
// its operands. A truncated stream surfaces through Err.
type Decoder struct {
	data []byte
	pos  int

	currentTag Tag
	err        error
}

// NewDecoder creates a decoder over one buffer.
func NewDecoder(b Buffer) *Decoder {
	return &Decoder{data: b.data}
}

// Next advances to the next command in the stream.
// Returns true if there is another command, false when iteration is
// complete or a decode error occurred.
func (d *Decoder) Next() bool {
	if d.err != nil || d.pos >= len(d.data) {
		return false
	}
	d.currentTag = Tag(d.data[d.pos])
	d.pos++
	return true
}

// Tag returns the current command tag.
func (d *Decoder) Tag() Tag {
	return d.currentTag
}

// Err returns the first decode error encountered, if any.
func (d *Decoder) Err() error {
	return d.err
}

func (d *Decoder) fail() {
	if d.err == nil {
		d.err = fmt.Errorf("command: truncated %s at offset %d", d.currentTag, d.pos)
	}
}

// U32 reads a 32-bit operand.
func (d *Decoder) U32() uint32 {
	if d.pos+4 > len(d.data) {
		d.fail()
		return 0
	}
	v := binary.LittleEndian.Uint32(d.data[d.pos:])
	d.pos += 4
	return v
}

// U64 reads a 64-bit operand.
func (d *Decoder) U64() uint64 {
	if d.pos+8 > len(d.data) {
		d.fail()
		return 0
	}
	v := binary.LittleEndian.Uint64(d.data[d.pos:])
	d.pos += 8
	return v
}

// Byte reads a single byte operand.
func (d *Decoder) Byte() byte {
	if d.pos >= len(d.data) {
		d.fail()
		return 0
	}
	v := d.data[d.pos]
	d.pos++
	return v
}

// Bytes reads a length-prefixed payload. The returned slice aliases the
// buffer and is valid until the buffer is released.
func (d *Decoder) Bytes() []byte {
	n := int(d.U32())
	if d.err != nil || d.pos+n > len(d.data) {
		d.fail()
		return nil
	}
	p := d.data[d.pos : d.pos+n]
	d.pos += n
	return p
}
