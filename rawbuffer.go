// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bwnet

import "encoding/binary"

const (
	// PrefixLen is the size, in bytes, of the opaque prefix field.
	PrefixLen = 4
	// FlagsLen is the size, in bytes, of the flags field.
	FlagsLen = 2
	// MinLen is the minimum length of a raw packet: prefix + flags.
	MinLen = PrefixLen + FlagsLen
	// MaxLen is the largest datagram this codec will produce or accept:
	// the Ethernet-safe UDP MTU of 1500 minus the IPv4+UDP header of 28
	// bytes. This matches the reference implementation's hard-coded
	// constant and must not be changed independently of it.
	MaxLen = 1472
	// MaxFooterLen is the largest trailer this codec will ever produce,
	// a hard constant matching the reference implementation: fragment
	// range (8) + request offset (2) + sequence number (4) + ack count
	// and at least one ack (5) + cumulative ack (4) + checksum (4), plus
	// headroom the reference implementation reserves for an
	// indexed-channel field this codec does not yet support.
	MaxFooterLen = 33
)

// RawBuffer is a fixed-capacity byte buffer with a length cursor. It
// has no notion of body or trailer boundaries; that bookkeeping lives
// in Packet. RawBuffer is embedded by value wherever it is used so
// that a RawBuffer (and therefore a Packet) never allocates past
// construction.
type RawBuffer struct {
	data [MaxLen]byte
	len  int
}

// NewRawBuffer returns an empty raw buffer: length MinLen, all bytes
// zero.
func NewRawBuffer() *RawBuffer {
	b := &RawBuffer{}
	b.len = MinLen
	return b
}

// RawData returns the full backing array, ignoring the length cursor.
// Use this as the destination of a ReadFrom/recvfrom call.
func (b *RawBuffer) RawData() []byte { return b.data[:] }

// RawDataMut is an alias of RawData kept for symmetry with the other
// *Mut accessors; Go slices are already mutable views.
func (b *RawBuffer) RawDataMut() []byte { return b.data[:] }

// MaxLen returns the buffer's fixed capacity.
func (b *RawBuffer) MaxLen() int { return len(b.data) }

// Len returns the current length cursor.
func (b *RawBuffer) Len() int { return b.len }

// SetLen sets the length cursor directly. It panics if n is outside
// [MinLen, MaxLen]; the wire protocol gives the caller no way to
// represent an out-of-range length, so this is a programmer error.
func (b *RawBuffer) SetLen(n int) {
	if n < MinLen {
		panic("bwnet: given length too small")
	}
	if n > MaxLen {
		panic("bwnet: given length too high")
	}
	b.len = n
}

// AvailableLen returns how many more bytes can be appended before
// reaching MaxLen.
func (b *RawBuffer) AvailableLen() int { return b.MaxLen() - b.len }

// Data returns the buffer contents up to the length cursor. Use this
// as the source of a WriteTo/sendto call.
func (b *RawBuffer) Data() []byte { return b.data[:b.len] }

// DataMut is the mutable counterpart of Data.
func (b *RawBuffer) DataMut() []byte { return b.data[:b.len] }

// MaxBodyLen returns the largest possible body+trailer length: the
// buffer capacity minus the prefix.
func (b *RawBuffer) MaxBodyLen() int { return b.MaxLen() - PrefixLen }

// BodyLen returns the current body+trailer length: the length cursor
// minus the prefix.
func (b *RawBuffer) BodyLen() int { return b.len - PrefixLen }

// BodyData returns the flags word through the length cursor. The
// checksum is computed over exactly this region.
func (b *RawBuffer) BodyData() []byte { return b.data[PrefixLen:b.len] }

// BodyDataMut is the mutable counterpart of BodyData.
func (b *RawBuffer) BodyDataMut() []byte { return b.data[PrefixLen:b.len] }

// Reset zeroes the prefix and flags and returns the length cursor to
// MinLen. Body and trailer bytes past MinLen are left untouched; they
// are unreachable until Grow makes them so again.
func (b *RawBuffer) Reset() {
	b.len = MinLen
	for i := 0; i < MinLen; i++ {
		b.data[i] = 0
	}
}

// Grow appends n uninitialized bytes at the tail and returns a mutable
// slice to them. It panics if fewer than n bytes are available.
func (b *RawBuffer) Grow(n int) []byte {
	if b.AvailableLen() < n {
		panic("bwnet: not enough available data")
	}
	p := b.data[b.len : b.len+n]
	b.len += n
	return p
}

// GrowWrite is Grow followed by a sequential little-endian writer over
// the newly appended bytes.
func (b *RawBuffer) GrowWrite(n int) *byteCursor {
	return newByteCursor(b.Grow(n))
}

// Shrink retreats the length cursor by n bytes and returns a read-only
// slice of the freed region. The underlying bytes are left untouched,
// so a caller can roll back to the previous length to recover them. It
// panics if the resulting length would fall below MinLen.
func (b *RawBuffer) Shrink(n int) []byte {
	if b.len-n < MinLen {
		panic("bwnet: not enough data to shrink")
	}
	b.len -= n
	return b.data[b.len : b.len+n]
}

// ShrinkRead is Shrink followed by a sequential little-endian reader
// over the freed bytes.
func (b *RawBuffer) ShrinkRead(n int) *byteCursor {
	return newByteCursor(b.Shrink(n))
}

// ReadPrefix reads the little-endian u32 prefix at [0, PrefixLen).
func (b *RawBuffer) ReadPrefix() uint32 {
	return binary.LittleEndian.Uint32(b.data[:PrefixLen])
}

// WritePrefix writes the little-endian u32 prefix at [0, PrefixLen).
func (b *RawBuffer) WritePrefix(prefix uint32) {
	binary.LittleEndian.PutUint32(b.data[:PrefixLen], prefix)
}

// ReadFlags reads the little-endian u16 flags word at
// [PrefixLen, PrefixLen+FlagsLen).
func (b *RawBuffer) ReadFlags() Flags {
	return Flags(binary.LittleEndian.Uint16(b.data[PrefixLen : PrefixLen+FlagsLen]))
}

// WriteFlags writes the little-endian u16 flags word at
// [PrefixLen, PrefixLen+FlagsLen).
func (b *RawBuffer) WriteFlags(flags Flags) {
	binary.LittleEndian.PutUint16(b.data[PrefixLen:PrefixLen+FlagsLen], uint16(flags))
}
