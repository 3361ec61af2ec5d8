// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bwnet

import (
	"errors"
	"fmt"

	"code.hybscloud.com/iox"
)

var (
	// ErrInvalidArgument reports a misuse that a caller checks for
	// before handing data to the codec, such as package session
	// rejecting a body larger than Packet.MaxLen. The codec's own
	// encode-side violations (growing past capacity, an invalid
	// sequence range, a request offset below FlagsLen) are programmer
	// errors and panic instead; see PacketSyncError for the one
	// decode-side error path.
	ErrInvalidArgument = errors.New("bwnet: invalid argument")

	// ErrWouldBlock and ErrMore are re-exported so callers driving
	// Conn.Send/Conn.Receive (package session) over a non-blocking
	// transport can reference them without importing iox directly,
	// mirroring the teacher framer package's own re-export of these two
	// control-flow sentinels.
	ErrWouldBlock = iox.ErrWouldBlock
	ErrMore       = iox.ErrMore
)

// SyncStateErrorKind classifies why Packet.SyncState failed.
type SyncStateErrorKind uint8

const (
	// ErrorUnknownFlags means the flag word contains bits outside
	// flagsKnownOnDecode.
	ErrorUnknownFlags SyncStateErrorKind = iota + 1
	// ErrorCorrupted means a required field's value violates its
	// invariant: zero cumulative ack, zero ack count, a request offset
	// below FlagsLen, or a fragment range with first >= last.
	ErrorCorrupted
	// ErrorInvalidChecksum means HasChecksum was set but the appended
	// word does not match the recomputed checksum.
	ErrorInvalidChecksum
)

func (k SyncStateErrorKind) String() string {
	switch k {
	case ErrorUnknownFlags:
		return "unknown flags"
	case ErrorCorrupted:
		return "corrupted"
	case ErrorInvalidChecksum:
		return "invalid checksum"
	default:
		return "unknown error kind"
	}
}

// PacketSyncError is returned by Packet.SyncState. After it is
// returned, the packet's internal state is undefined; discard the
// packet or Reset it before reuse.
type PacketSyncError struct {
	Kind  SyncStateErrorKind
	Flags Flags // populated only when Kind == ErrorUnknownFlags
}

func (e *PacketSyncError) Error() string {
	if e.Kind == ErrorUnknownFlags {
		return fmt.Sprintf("bwnet: unknown flags: 0x%04x", uint16(e.Flags))
	}
	return "bwnet: " + e.Kind.String()
}

// Is supports errors.Is(err, ErrCorrupted) and friends without
// requiring callers to unwrap the flag bits out of ErrorUnknownFlags.
func (e *PacketSyncError) Is(target error) bool {
	other, ok := target.(*PacketSyncError)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// Sentinel errors usable with errors.Is against any PacketSyncError of
// the matching kind, regardless of the offending flag bits.
var (
	ErrUnknownFlags    = &PacketSyncError{Kind: ErrorUnknownFlags}
	ErrCorrupted       = &PacketSyncError{Kind: ErrorCorrupted}
	ErrInvalidChecksum = &PacketSyncError{Kind: ErrorInvalidChecksum}
)
