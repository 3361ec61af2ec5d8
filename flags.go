// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bwnet

// Flags is the 16-bit trailer-presence word carried at byte offset
// [PrefixLen, PrefixLen+FlagsLen) of every datagram.
type Flags uint16

// Trailer flag bits, matching the reference BigWorld wire format.
const (
	HasRequests       Flags = 0x0001
	HasPiggybacks     Flags = 0x0002 // reserved: see flagsKnownOnDecode
	HasAcks           Flags = 0x0004
	OnChannel         Flags = 0x0008
	IsReliable        Flags = 0x0010
	IsFragment        Flags = 0x0020
	HasSequenceNumber Flags = 0x0040
	IndexedChannel    Flags = 0x0080 // reserved: see flagsKnownOnDecode
	HasChecksum       Flags = 0x0100
	CreateChannel     Flags = 0x0200 // reserved: see flagsKnownOnDecode
	HasCumulativeAck  Flags = 0x0400
	// flagsReserved0x1000 is the reserved bit named in the wire format;
	// it has no defined meaning and is rejected on decode like the other
	// reserved bits above.
	flagsReserved0x1000 Flags = 0x1000
)

// flagsKnownOnDecode is every bit SyncState accepts. HasPiggybacks,
// IndexedChannel, CreateChannel and the 0x1000 reserved bit are defined
// as named constants (so a future revision has somewhere to attach
// encode/decode logic) but are never emitted and are rejected on
// decode with ErrUnknownFlags.
const flagsKnownOnDecode = HasRequests | HasAcks | OnChannel | IsReliable |
	IsFragment | HasSequenceNumber | HasChecksum | HasCumulativeAck

func (f Flags) has(bit Flags) bool { return f&bit != 0 }
