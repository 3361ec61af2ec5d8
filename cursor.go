// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bwnet

import "encoding/binary"

// byteCursor is a small sequential little-endian reader/writer over a
// slice, the Go-native replacement for the reference implementation's
// std::io::Cursor plus byteorder::{ReadBytesExt, WriteBytesExt, LE}.
// All trailer fields are little-endian regardless of host order.
type byteCursor struct {
	b   []byte
	off int
}

func newByteCursor(b []byte) *byteCursor { return &byteCursor{b: b} }

func (c *byteCursor) PutUint16(v uint16) {
	binary.LittleEndian.PutUint16(c.b[c.off:c.off+2], v)
	c.off += 2
}

func (c *byteCursor) PutUint32(v uint32) {
	binary.LittleEndian.PutUint32(c.b[c.off:c.off+4], v)
	c.off += 4
}

func (c *byteCursor) Uint16() uint16 {
	v := binary.LittleEndian.Uint16(c.b[c.off : c.off+2])
	c.off += 2
	return v
}

func (c *byteCursor) Uint32() uint32 {
	v := binary.LittleEndian.Uint32(c.b[c.off : c.off+4])
	c.off += 4
	return v
}
