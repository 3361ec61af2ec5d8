// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package session

import (
	"encoding/binary"
	"log/slog"
	"time"

	"code.hybscloud.com/bwnet/internal/bo"
	"code.hybscloud.com/bwnet/internal/logging"
)

// PrefixPolicy decides how a Conn interprets the opaque 4-byte packet
// prefix as a connection/epoch counter. The codec itself never
// interprets the prefix (spec Open Question (c)); a Conn that wants to
// use it as a meaningful counter still needs to agree on a byte order
// with whatever assigns it, independent of the wire format's own
// always-little-endian trailer fields.
type PrefixPolicy interface {
	// Order returns the byte order this policy uses to read or write
	// the prefix's 4 bytes as a uint32 counter value.
	Order() binary.ByteOrder
}

type networkPrefix struct{}

func (networkPrefix) Order() binary.ByteOrder { return binary.BigEndian }

type localPrefix struct{}

func (localPrefix) Order() binary.ByteOrder { return bo.Native() }

// Options configures a Conn.
type Options struct {
	ReadLimit  int
	RetryDelay time.Duration
	Prefix     PrefixPolicy
	Logger     *slog.Logger
}

var defaultOptions = Options{
	ReadLimit:  0,
	RetryDelay: -1, // non-blocking by default, matching the teacher's framer default
	Prefix:     networkPrefix{},
	Logger:     logging.L(),
}

// Option configures a Conn at construction time.
type Option func(*Options)

// WithReadLimit caps the size of a single received datagram. Zero
// means bwnet.MaxLen, the codec's own hard ceiling.
func WithReadLimit(n int) Option {
	return func(o *Options) { o.ReadLimit = n }
}

// WithRetryDelay controls how Send/Receive handle bwnet.ErrWouldBlock
// from the underlying net.PacketConn: negative means return
// ErrWouldBlock immediately, zero means yield and retry, positive
// means sleep for the duration and retry.
func WithRetryDelay(d time.Duration) Option {
	return func(o *Options) { o.RetryDelay = d }
}

// WithBlock enables cooperative blocking (yield-and-retry) on
// ErrWouldBlock.
func WithBlock() Option {
	return func(o *Options) { o.RetryDelay = 0 }
}

// WithNonblock forces non-blocking behavior (return ErrWouldBlock
// immediately). This is the default.
func WithNonblock() Option {
	return func(o *Options) { o.RetryDelay = -1 }
}

// WithNetworkPrefix treats the opaque prefix as a big-endian counter,
// the sane default for packets crossing a real network boundary.
func WithNetworkPrefix() Option {
	return func(o *Options) { o.Prefix = networkPrefix{} }
}

// WithLocalPrefix treats the opaque prefix in the process's native
// byte order, avoiding a pointless byteswap for same-process loopback
// traffic such as the bwnetctl serve demo and tests.
func WithLocalPrefix() Option {
	return func(o *Options) { o.Prefix = localPrefix{} }
}

// WithLogger overrides the logger a Conn uses for its lifecycle and
// per-packet trace messages. Defaults to logging.L().
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}
