// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bwnet_test

import (
	"bytes"
	"errors"
	"testing"

	"code.hybscloud.com/bwnet"
)

func TestSyncDataEmptyNoFlags(t *testing.T) {
	p := bwnet.NewPacket()
	cfg := bwnet.NewPacketConfig()
	p.SyncData(cfg)

	if got, want := p.Raw().Len(), bwnet.MinLen; got != want {
		t.Fatalf("encoded length = %d, want %d", got, want)
	}
	if got := p.Raw().ReadFlags(); got != 0 {
		t.Fatalf("flags = %#x, want 0", got)
	}

	var out bwnet.PacketConfig
	p2 := bwnet.NewPacket()
	copy(p2.Raw().RawDataMut(), p.Raw().Data())
	if err := p2.SyncState(p.Raw().Len(), &out); err != nil {
		t.Fatalf("SyncState: %v", err)
	}
	if out.Reliable() || out.OnChannel() || out.HasChecksum() {
		t.Fatalf("decoded config not default: %+v", out)
	}
	if len(p2.Data()) != 0 {
		t.Fatalf("decoded body not empty: %x", p2.Data())
	}
}

func TestSyncDataReliableSequenceNumber(t *testing.T) {
	p := bwnet.NewPacket()
	copy(p.Grow(4), []byte{0xDE, 0xAD, 0xBE, 0xEF})

	cfg := bwnet.NewPacketConfig()
	cfg.SetReliable(true)
	cfg.SetSequenceNum(7)
	p.SyncData(cfg)

	if got, want := p.Raw().ReadFlags(), bwnet.IsReliable|bwnet.HasSequenceNumber; got != want {
		t.Fatalf("flags = %#04x, want %#04x", uint16(got), uint16(want))
	}
	if got, want := p.Raw().Len(), bwnet.MinLen+4+4; got != want {
		t.Fatalf("encoded length = %d, want %d", got, want)
	}
	wantTrailer := []byte{0x07, 0x00, 0x00, 0x00}
	if got := p.Raw().Data()[bwnet.MinLen+4:]; !bytes.Equal(got, wantTrailer) {
		t.Fatalf("trailer = % x, want % x", got, wantTrailer)
	}

	roundTrip(t, p, cfg)
}

func TestSyncDataFragmentRange(t *testing.T) {
	p := bwnet.NewPacket()
	copy(p.Grow(1), []byte{0x01})

	cfg := bwnet.NewPacketConfig()
	cfg.SetSequenceRange(3, 5)
	cfg.SetSequenceNum(4)
	p.SyncData(cfg)

	if got, want := p.Raw().ReadFlags(), bwnet.IsFragment|bwnet.HasSequenceNumber; got != want {
		t.Fatalf("flags = %#04x, want %#04x", uint16(got), uint16(want))
	}
	if got, want := p.Raw().Len(), 19; got != want {
		t.Fatalf("encoded length = %d, want %d", got, want)
	}
	wantTrailer := []byte{
		0x03, 0x00, 0x00, 0x00,
		0x05, 0x00, 0x00, 0x00,
		0x04, 0x00, 0x00, 0x00,
	}
	if got := p.Raw().Data()[bwnet.MinLen+1:]; !bytes.Equal(got, wantTrailer) {
		t.Fatalf("trailer = % x, want % x", got, wantTrailer)
	}

	roundTrip(t, p, cfg)
}

func TestSyncDataCumulativeAckAndChecksum(t *testing.T) {
	p := bwnet.NewPacket()
	p.Grow(32) // zeroed body, already 4-byte aligned

	cfg := bwnet.NewPacketConfig()
	cfg.SetCumulativeAck(0x11223344)
	cfg.SetChecksum(true)
	p.SyncData(cfg)

	if got, want := p.Raw().ReadFlags(), bwnet.HasCumulativeAck|bwnet.HasChecksum; got != want {
		t.Fatalf("flags = %#04x, want %#04x", uint16(got), uint16(want))
	}

	roundTrip(t, p, cfg)

	// Flipping a body byte must invalidate the checksum on decode.
	mutated := append([]byte(nil), p.Raw().Data()...)
	mutated[bwnet.MinLen] ^= 0xFF

	p2 := bwnet.NewPacket()
	copy(p2.Raw().RawDataMut(), mutated)
	var out bwnet.PacketConfig
	err := p2.SyncState(len(mutated), &out)
	if !errors.Is(err, bwnet.ErrInvalidChecksum) {
		t.Fatalf("SyncState error = %v, want ErrInvalidChecksum", err)
	}
}

func TestSyncStateRejectsUnknownFlags(t *testing.T) {
	p := bwnet.NewPacket()
	p.Raw().WriteFlags(bwnet.HasPiggybacks)

	var out bwnet.PacketConfig
	err := p.SyncState(p.Raw().Len(), &out)
	var syncErr *bwnet.PacketSyncError
	if !errors.As(err, &syncErr) {
		t.Fatalf("SyncState error = %v, want *PacketSyncError", err)
	}
	if syncErr.Kind != bwnet.ErrorUnknownFlags {
		t.Fatalf("Kind = %v, want ErrorUnknownFlags", syncErr.Kind)
	}
	if syncErr.Flags != bwnet.HasPiggybacks {
		t.Fatalf("Flags = %#x, want %#x", syncErr.Flags, bwnet.HasPiggybacks)
	}
	if !errors.Is(err, bwnet.ErrUnknownFlags) {
		t.Fatalf("errors.Is(err, ErrUnknownFlags) = false")
	}
}

func TestSyncStateRejectsZeroCumulativeAck(t *testing.T) {
	p := bwnet.NewPacket()
	p.Raw().WriteFlags(bwnet.HasCumulativeAck)
	p.Raw().GrowWrite(4).PutUint32(0)

	var out bwnet.PacketConfig
	err := p.SyncState(p.Raw().Len(), &out)
	if !errors.Is(err, bwnet.ErrCorrupted) {
		t.Fatalf("SyncState error = %v, want ErrCorrupted", err)
	}
}

func TestSyncStateRejectsZeroAckCount(t *testing.T) {
	p := bwnet.NewPacket()
	p.Raw().WriteFlags(bwnet.HasAcks)
	p.Raw().Grow(1)[0] = 0

	var out bwnet.PacketConfig
	err := p.SyncState(p.Raw().Len(), &out)
	if !errors.Is(err, bwnet.ErrCorrupted) {
		t.Fatalf("SyncState error = %v, want ErrCorrupted", err)
	}
}

func TestSyncStateRejectsRequestOffsetBelowFlagsLen(t *testing.T) {
	p := bwnet.NewPacket()
	p.Raw().WriteFlags(bwnet.HasRequests)
	p.Raw().GrowWrite(2).PutUint16(1) // < FlagsLen(2)

	var out bwnet.PacketConfig
	err := p.SyncState(p.Raw().Len(), &out)
	if !errors.Is(err, bwnet.ErrCorrupted) {
		t.Fatalf("SyncState error = %v, want ErrCorrupted", err)
	}
}

func TestSyncStateRejectsInvertedFragmentRange(t *testing.T) {
	p := bwnet.NewPacket()
	p.Raw().WriteFlags(bwnet.IsFragment)
	c := p.Raw().GrowWrite(8)
	c.PutUint32(5)
	c.PutUint32(3)

	var out bwnet.PacketConfig
	err := p.SyncState(p.Raw().Len(), &out)
	if !errors.Is(err, bwnet.ErrCorrupted) {
		t.Fatalf("SyncState error = %v, want ErrCorrupted", err)
	}
}

func TestAckQueueFIFOWithinBudget(t *testing.T) {
	p := bwnet.NewPacket()
	cfg := bwnet.NewPacketConfig()
	for _, ack := range []uint32{1, 2, 3} {
		cfg.SingleAcks().PushBack(ack)
	}
	p.SyncData(cfg)

	if cfg.SingleAcks().Len() != 0 {
		t.Fatalf("all acks should have been written, %d left", cfg.SingleAcks().Len())
	}

	var out bwnet.PacketConfig
	mustDecode(t, p, &out)

	var got []uint32
	for {
		v, ok := out.SingleAcks().PopFront()
		if !ok {
			break
		}
		got = append(got, v)
	}
	want := []uint32{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("acks = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("acks = %v, want %v", got, want)
		}
	}
}

func TestAckQueueOverflowLeavesRemainderQueued(t *testing.T) {
	p := bwnet.NewPacket()
	cfg := bwnet.NewPacketConfig()
	// With no other trailer fields, the real MaxFooterLen(33) budget
	// fits floor((33-1)/4) = 8 acks; the rest stay queued.
	for ack := uint32(1); ack <= 10; ack++ {
		cfg.SingleAcks().PushBack(ack)
	}
	p.SyncData(cfg)

	if got, want := cfg.SingleAcks().Len(), 2; got != want {
		t.Fatalf("remaining acks = %d, want %d", got, want)
	}
	if got := cfg.SingleAcks().Slice(); len(got) != 2 || got[0] != 9 || got[1] != 10 {
		t.Fatalf("remaining acks = %v, want [9 10]", got)
	}
	if p.FooterLen() > bwnet.MaxFooterLen {
		t.Fatalf("footer len %d exceeds MaxFooterLen %d", p.FooterLen(), bwnet.MaxFooterLen)
	}

	var out bwnet.PacketConfig
	mustDecode(t, p, &out)
	if got := out.SingleAcks().Slice(); len(got) != 8 {
		t.Fatalf("decoded acks = %v, want 8 acks", got)
	}
}

func TestPacketFirstRequestOffsetSentinel(t *testing.T) {
	p := bwnet.NewPacket()
	if _, ok := p.FirstRequestOffset(); ok {
		t.Fatalf("fresh packet should have no request offset")
	}
	p.SetFirstRequestOffset(bwnet.FlagsLen)
	off, ok := p.FirstRequestOffset()
	if !ok || off != bwnet.FlagsLen {
		t.Fatalf("FirstRequestOffset() = (%d, %t), want (%d, true)", off, ok, bwnet.FlagsLen)
	}
	p.ClearFirstRequestOffset()
	if _, ok := p.FirstRequestOffset(); ok {
		t.Fatalf("expected no request offset after clear")
	}
	mustPanic(t, "offset below FlagsLen", func() { p.SetFirstRequestOffset(bwnet.FlagsLen - 1) })
}

func TestPacketResetIdempotentAfterGrow(t *testing.T) {
	p := bwnet.NewPacket()
	p.Grow(16)
	p.SetFirstRequestOffset(bwnet.FlagsLen)
	p.Reset()
	if p.Len() != 0 {
		t.Fatalf("Len() after reset = %d, want 0", p.Len())
	}
	if _, ok := p.FirstRequestOffset(); ok {
		t.Fatalf("request offset should be cleared by reset")
	}
	p.Reset()
	if p.Len() != 0 {
		t.Fatalf("Len() after second reset = %d, want 0", p.Len())
	}
}

func TestPacketMaxLenAccountsForHeaderAndFooter(t *testing.T) {
	p := bwnet.NewPacket()
	want := bwnet.MaxLen - bwnet.MinLen - bwnet.MaxFooterLen
	if got := p.MaxLen(); got != want {
		t.Fatalf("MaxLen() = %d, want %d", got, want)
	}
}

func TestPacketGrowOverwritesStaleTrailerOnNextSync(t *testing.T) {
	p := bwnet.NewPacket()
	cfg := bwnet.NewPacketConfig()
	cfg.SetReliable(true)
	cfg.SetSequenceNum(1)
	p.SyncData(cfg)
	firstLen := p.Raw().Len()

	// Grow the body again; this must discard the previously written
	// trailer bytes rather than leaving them interleaved with new body
	// data. A size distinct from the trailer's own length keeps this
	// check from passing by coincidence.
	p.Grow(7)
	if got := p.Raw().Len(); got != p.Len()+bwnet.MinLen {
		t.Fatalf("raw length %d does not track footer offset after grow", got)
	}
	if p.Raw().Len() == firstLen {
		t.Fatalf("raw length did not change after growing the body")
	}

	cfg2 := bwnet.NewPacketConfig()
	p.SyncData(cfg2)
	var out bwnet.PacketConfig
	mustDecode(t, p, &out)
	if out.Reliable() {
		t.Fatalf("stale reliable flag survived a body grow + re-sync")
	}
}

func roundTrip(t *testing.T, p *bwnet.Packet, cfg *bwnet.PacketConfig) {
	t.Helper()
	wantBody := append([]byte(nil), p.Data()...)

	var out bwnet.PacketConfig
	p2 := mustDecode(t, p, &out)

	if !bytes.Equal(p2.Data(), wantBody) {
		t.Fatalf("decoded body = % x, want % x", p2.Data(), wantBody)
	}
	if out.Reliable() != cfg.Reliable() {
		t.Fatalf("Reliable mismatch: got %t want %t", out.Reliable(), cfg.Reliable())
	}
	if out.OnChannel() != cfg.OnChannel() {
		t.Fatalf("OnChannel mismatch: got %t want %t", out.OnChannel(), cfg.OnChannel())
	}
	wantFirst, wantLast, wantOK := cfg.SequenceRange()
	gotFirst, gotLast, gotOK := out.SequenceRange()
	if wantOK != gotOK || wantFirst != gotFirst || wantLast != gotLast {
		t.Fatalf("SequenceRange mismatch: got (%d,%d,%t) want (%d,%d,%t)", gotFirst, gotLast, gotOK, wantFirst, wantLast, wantOK)
	}
}

func mustDecode(t *testing.T, p *bwnet.Packet, out *bwnet.PacketConfig) *bwnet.Packet {
	t.Helper()
	p2 := bwnet.NewPacket()
	raw := p.Raw().Data()
	copy(p2.Raw().RawDataMut(), raw)
	if err := p2.SyncState(len(raw), out); err != nil {
		t.Fatalf("SyncState: %v", err)
	}
	return p2
}
