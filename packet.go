// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bwnet

import "fmt"

// Packet layers body/footer bookkeeping over a RawBuffer. It tracks
// the footer offset (the first byte past the body) and the offset of
// the first request element in the body, and defers footer encode and
// decode to SyncData/SyncState.
type Packet struct {
	raw                RawBuffer
	footerOffset       int
	firstRequestOffset int
}

// NewPacket returns an empty packet: zero-length body, no trailer.
func NewPacket() *Packet {
	p := &Packet{footerOffset: MinLen}
	p.raw.len = MinLen
	return p
}

// Raw returns the packet's backing RawBuffer. Callers needing
// recvfrom/sendto access (RawDataMut, Data) should go through here.
func (p *Packet) Raw() *RawBuffer { return &p.raw }

// MaxLen returns the largest body a producer may Grow before a
// trailer is encoded: the raw buffer's capacity minus the fixed header
// and the worst-case trailer.
func (p *Packet) MaxLen() int { return p.raw.MaxLen() - MinLen - MaxFooterLen }

// Len returns the current body length.
func (p *Packet) Len() int { return p.footerOffset - MinLen }

// AvailableLen returns how many more body bytes can be grown before
// hitting MaxLen.
func (p *Packet) AvailableLen() int { return p.MaxLen() - p.Len() }

// Data returns the body: bytes from just after the flags word up to
// the footer offset.
func (p *Packet) Data() []byte { return p.raw.RawData()[MinLen:p.footerOffset] }

// DataMut is the mutable counterpart of Data.
func (p *Packet) DataMut() []byte { return p.raw.RawDataMut()[MinLen:p.footerOffset] }

// Grow appends n bytes to the body and returns a mutable slice to
// them. Any trailer bytes previously written past the footer offset
// are discarded, since SyncData always rebuilds the trailer from
// scratch. It panics if fewer than n bytes of body room remain.
func (p *Packet) Grow(n int) []byte {
	if p.AvailableLen() < n {
		panic("bwnet: not enough available data")
	}
	start := p.footerOffset
	p.footerOffset += n
	// The raw length may still reflect a stale trailer; pull it back up
	// to the new footer offset so the grown region is addressable.
	p.raw.SetLen(p.footerOffset)
	return p.raw.RawDataMut()[start:p.footerOffset]
}

// GrowWrite is Grow followed by a sequential little-endian writer.
func (p *Packet) GrowWrite(n int) *byteCursor {
	return newByteCursor(p.Grow(n))
}

// FooterLen returns the current trailer length. It must never exceed
// MaxFooterLen.
func (p *Packet) FooterLen() int { return p.raw.Len() - p.footerOffset }

// FooterAvailableLen returns how many more trailer bytes can be
// written before hitting MaxFooterLen.
func (p *Packet) FooterAvailableLen() int { return MaxFooterLen - p.FooterLen() }

// FirstRequestOffset returns the byte offset (relative to the start of
// the flags word) of the first request element in the body, and
// whether one is set. Offsets 0 and 1 point inside the flags word
// itself and so are reused as the "no request present" sentinel.
func (p *Packet) FirstRequestOffset() (offset int, ok bool) {
	if p.firstRequestOffset >= FlagsLen {
		return p.firstRequestOffset, true
	}
	return 0, false
}

// SetFirstRequestOffset records the offset of the first request
// element. It panics if offset is below FlagsLen, since such an offset
// cannot legitimately point into the body.
func (p *Packet) SetFirstRequestOffset(offset int) {
	if offset < FlagsLen {
		panic("bwnet: invalid request offset")
	}
	p.firstRequestOffset = offset
}

// ClearFirstRequestOffset restores the "no request present" sentinel.
func (p *Packet) ClearFirstRequestOffset() { p.firstRequestOffset = 0 }

// Reset returns the packet to its empty state: zero-length body, no
// trailer, no first-request offset, and the backing RawBuffer reset.
func (p *Packet) Reset() {
	p.raw.Reset()
	p.footerOffset = MinLen
	p.firstRequestOffset = 0
}

// SyncData encodes cfg into the packet's trailer, growing the raw
// buffer (not the body — the footer offset is unchanged) with each
// field in the fixed order the wire format requires. Single acks that
// do not fit in the remaining trailer budget are left in cfg's queue
// for a subsequent packet; overflow is not an error.
func (p *Packet) SyncData(cfg *PacketConfig) {
	// A previous SyncData may have left a stale trailer in place;
	// truncate back to the footer offset before rebuilding.
	if p.footerOffset < p.raw.Len() {
		p.raw.SetLen(p.footerOffset)
	}

	var flags Flags

	if first, last, ok := cfg.SequenceRange(); ok {
		flags |= IsFragment
		c := p.raw.GrowWrite(8)
		c.PutUint32(first)
		c.PutUint32(last)
	}

	if offset, ok := p.FirstRequestOffset(); ok {
		flags |= HasRequests
		p.raw.GrowWrite(2).PutUint16(uint16(offset))
	}

	_, _, hasRange := cfg.SequenceRange()
	if cfg.Reliable() || hasRange {
		flags |= HasSequenceNumber
		p.raw.GrowWrite(4).PutUint32(cfg.SequenceNum())
	}

	if cfg.SingleAcks().Len() > 0 {
		flags |= HasAcks

		available := p.FooterAvailableLen() - 1 // ack count byte
		if _, ok := cfg.CumulativeAck(); ok {
			available -= 4
		}
		if cfg.HasChecksum() {
			available -= 4
		}

		var count int
		for {
			ack, ok := cfg.SingleAcks().PopFront()
			if !ok {
				break
			}
			if available < 4 {
				// Doesn't fit: put it back and stop. It stays at the
				// front of the queue for the next packet.
				cfg.SingleAcks().PushFront(ack)
				break
			}
			p.raw.GrowWrite(4).PutUint32(ack)
			available -= 4
			count++
		}

		if count == 0 {
			panic("bwnet: HAS_ACKS trailer with zero acks")
		}
		p.raw.Grow(1)[0] = byte(count)
	}

	if ack, ok := cfg.CumulativeAck(); ok {
		flags |= HasCumulativeAck
		p.raw.GrowWrite(4).PutUint32(ack)
	}

	if cfg.Reliable() {
		flags |= IsReliable
	}
	if cfg.OnChannel() {
		flags |= OnChannel
	}
	if cfg.HasChecksum() {
		flags |= HasChecksum
	}

	p.raw.WriteFlags(flags)

	if cfg.HasChecksum() {
		sum := checksum(p.raw.BodyData())
		p.raw.GrowWrite(4).PutUint32(sum)
	}
}

// SyncState decodes the trailer of a just-received datagram of the
// given length into cfg, peeling fields off the tail in the reverse of
// the order SyncData writes them. If it returns an error, the
// packet's internal state is undefined and must be discarded or Reset
// before reuse.
func (p *Packet) SyncState(length int, cfg *PacketConfig) error {
	p.raw.SetLen(length)

	flags := p.raw.ReadFlags()
	if unknown := flags &^ flagsKnownOnDecode; unknown != 0 {
		return &PacketSyncError{Kind: ErrorUnknownFlags, Flags: unknown}
	}

	if flags.has(HasChecksum) {
		expected := p.raw.ShrinkRead(4).Uint32()
		if got := checksum(p.raw.BodyData()); got != expected {
			return &PacketSyncError{Kind: ErrorInvalidChecksum}
		}
	}

	if flags.has(HasCumulativeAck) {
		ack := p.raw.ShrinkRead(4).Uint32()
		if ack == 0 {
			return &PacketSyncError{Kind: ErrorCorrupted}
		}
		cfg.SetCumulativeAck(ack)
	}

	if flags.has(HasAcks) {
		count := p.raw.Shrink(1)[0]
		if count == 0 {
			return &PacketSyncError{Kind: ErrorCorrupted}
		}
		// Peel the whole ack block at once and read it forward, so the
		// queue receives the acks in the order the sender wrote them.
		c := p.raw.ShrinkRead(4 * int(count))
		for i := byte(0); i < count; i++ {
			cfg.SingleAcks().PushBack(c.Uint32())
		}
	}

	if flags.has(HasSequenceNumber) {
		cfg.SetSequenceNum(p.raw.ShrinkRead(4).Uint32())
	}

	if flags.has(HasRequests) {
		offset := int(p.raw.ShrinkRead(2).Uint16())
		if offset < FlagsLen {
			return &PacketSyncError{Kind: ErrorCorrupted}
		}
		p.SetFirstRequestOffset(offset)
	}

	if flags.has(IsFragment) {
		c := p.raw.ShrinkRead(8)
		first := c.Uint32()
		last := c.Uint32()
		if first >= last {
			return &PacketSyncError{Kind: ErrorCorrupted}
		}
		cfg.SetSequenceRange(first, last)
	}

	cfg.SetReliable(flags.has(IsReliable))
	cfg.SetOnChannel(flags.has(OnChannel))

	// raw.Len() is now the body's end (the footer has been shrunk
	// away); record it as the footer offset, then restore the full
	// datagram length so body and trailer both remain addressable.
	p.footerOffset = p.raw.Len()
	p.raw.SetLen(length)

	if p.FooterLen() > MaxFooterLen {
		panic("bwnet: decoded footer exceeds MaxFooterLen")
	}

	return nil
}

func (p *Packet) String() string {
	if offset, ok := p.FirstRequestOffset(); ok {
		return fmt.Sprintf("Packet{len=%d footerLen=%d requestOffset=%d}", p.Len(), p.FooterLen(), offset)
	}
	return fmt.Sprintf("Packet{len=%d footerLen=%d}", p.Len(), p.FooterLen())
}
