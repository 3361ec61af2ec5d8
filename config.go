// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bwnet

import "fmt"

// PacketConfig is the in-memory representation of a packet's trailer.
// It carries no I/O and all of its setters are side-effect free beyond
// the struct itself; Packet.SyncData reads it to build a trailer,
// Packet.SyncState writes into it after parsing one.
type PacketConfig struct {
	sequenceNum      uint32
	sequenceFirstNum uint32
	sequenceLastNum  uint32
	reliable         bool
	onChannel        bool
	hasChecksum      bool
	cumulativeAck    uint32
	singleAcks       ackQueue
}

// NewPacketConfig returns a zero-value packet configuration: no
// sequence number, no fragment range, unreliable, off-channel, no
// checksum, no acks.
func NewPacketConfig() *PacketConfig {
	return &PacketConfig{}
}

// SequenceNum returns the packet's sequence number. It is only
// meaningful when Reliable is true and/or SequenceRange is present.
func (c *PacketConfig) SequenceNum() uint32 { return c.sequenceNum }

// SetSequenceNum sets the packet's sequence number.
func (c *PacketConfig) SetSequenceNum(n uint32) { c.sequenceNum = n }

// SequenceRange returns the inclusive fragment range (first, last) and
// true if this packet is a fragment of a chain, i.e. first < last.
func (c *PacketConfig) SequenceRange() (first, last uint32, ok bool) {
	if c.sequenceFirstNum < c.sequenceLastNum {
		return c.sequenceFirstNum, c.sequenceLastNum, true
	}
	return 0, 0, false
}

// SetSequenceRange marks this packet as a fragment of the chain
// [first, last] (inclusive). It panics if first >= last; the wire
// protocol has no way to represent an invalid range, so rejecting one
// here is a programmer error, not a decode-time failure.
func (c *PacketConfig) SetSequenceRange(first, last uint32) {
	if first >= last {
		panic("bwnet: invalid sequence range")
	}
	c.sequenceFirstNum = first
	c.sequenceLastNum = last
}

// ClearSequenceRange removes the fragment range; the packet is no
// longer a fragment of any chain.
func (c *PacketConfig) ClearSequenceRange() {
	c.sequenceFirstNum = 0
	c.sequenceLastNum = 0
}

// Reliable reports whether the sender requires an acknowledgment of
// this packet from the receiver.
func (c *PacketConfig) Reliable() bool { return c.reliable }

// SetReliable sets the reliable flag.
func (c *PacketConfig) SetReliable(reliable bool) { c.reliable = reliable }

// CumulativeAck returns the cumulative ack (an exclusive upper bound on
// acknowledged sequence numbers) and true if one is set; zero is the
// absent sentinel.
func (c *PacketConfig) CumulativeAck() (uint32, bool) {
	return c.cumulativeAck, c.cumulativeAck != 0
}

// SetCumulativeAck sets the cumulative ack. It panics if n is zero,
// since zero is reserved as the absent sentinel; use
// ClearCumulativeAck to remove it.
func (c *PacketConfig) SetCumulativeAck(n uint32) {
	if n == 0 {
		panic("bwnet: ack number is zero")
	}
	c.cumulativeAck = n
}

// ClearCumulativeAck removes the cumulative ack.
func (c *PacketConfig) ClearCumulativeAck() { c.cumulativeAck = 0 }

// OnChannel reports whether this packet is being transferred on a
// channel.
func (c *PacketConfig) OnChannel() bool { return c.onChannel }

// SetOnChannel sets the on-channel flag.
func (c *PacketConfig) SetOnChannel(onChannel bool) { c.onChannel = onChannel }

// HasChecksum reports whether a checksum should be (or was) present.
func (c *PacketConfig) HasChecksum() bool { return c.hasChecksum }

// SetChecksum enables or disables the trailer checksum.
func (c *PacketConfig) SetChecksum(enabled bool) { c.hasChecksum = enabled }

// SingleAcks exposes the FIFO of individual-sequence-number acks so
// SyncData can pop from the front and SyncState can push to the back.
func (c *PacketConfig) SingleAcks() *ackQueue { return &c.singleAcks }

// Reset returns the configuration to its zero value, ready for reuse.
func (c *PacketConfig) Reset() {
	*c = PacketConfig{}
}

func (c *PacketConfig) String() string {
	return fmt.Sprintf("PacketConfig{seq=%d reliable=%t onChannel=%t checksum=%t acks=%d}",
		c.sequenceNum, c.reliable, c.onChannel, c.hasChecksum, c.singleAcks.Len())
}
