// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package bwnet implements the wire-level packet codec and reliability
// footer of a BigWorld-family UDP game protocol.
//
// A peer exchanges short UDP datagrams whose payload is a 4-byte opaque
// prefix, a 2-byte flag word, a variable-length body, and an optional,
// tightly packed trailer whose presence is driven entirely by the flag
// word:
//
//	[0..4)  prefix             opaque u32, LE, owned by the session layer
//	[4..6)  flags              u16 LE, selects which trailer fields follow
//	[6..F)  body               F = footer offset
//	[F..L)  trailer, written in this order when present:
//	          IS_FRAGMENT         seq_first:u32, seq_last:u32
//	          HAS_REQUESTS        first_request_offset:u16
//	          HAS_SEQUENCE_NUMBER sequence_num:u32
//	          HAS_ACKS            ack[0]:u32 .. ack[k-1]:u32, count:u8
//	          HAS_CUMULATIVE_ACK  cumulative_ack:u32
//	          HAS_CHECKSUM        checksum:u32
//
// All integers are little-endian. L is the datagram length; the trailer
// is at most MaxFooterLen bytes.
//
// RawBuffer is a fixed-capacity byte buffer with a length cursor. Packet
// layers body/footer bookkeeping on top of it. PacketConfig is the
// in-memory representation of the trailer; Packet.SyncData encodes it
// into the trailer, Packet.SyncState decodes it back out. Encoding
// always rebuilds the trailer from scratch; decoding peels fields off
// the datagram tail in reverse, because each field's presence is known
// from the flags but its offset depends on which higher-index flags are
// also set.
//
// The codec is single-threaded, non-suspending, and allocation-free
// after construction except for the ack queue. It does not perform I/O;
// callers own the socket and the send/receive loop (see package
// session for a collaborator implementation).
package bwnet
