// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package session wraps the bwnet codec with a small transport-facing
// layer: a net.PacketConn adapter that drives SyncData/SyncState, a
// toml config, prometheus counters, and a byte-order policy for the
// codec's otherwise-opaque prefix field. None of this changes the wire
// format; it is the collaborator API spec.md describes as sitting
// around the codec (§6), not a replacement for it.
package session

import (
	"errors"
	"fmt"
	"net"
	"runtime"
	"time"

	"github.com/google/uuid"

	"code.hybscloud.com/bwnet"
)

// Conn pairs a net.PacketConn with the bwnet codec: Send encodes a
// PacketConfig and body into a datagram, Receive decodes one back out.
// A Conn is not safe for concurrent use by multiple goroutines calling
// Send or Receive at the same time; callers needing that should run
// their own send/receive loops each with their own Conn, as the
// teacher's framer does with its Reader/Writer split.
type Conn struct {
	pc   net.PacketConn
	id   uuid.UUID
	opts Options

	retryDelay time.Duration
}

// NewConn wraps pc. id is generated for log labeling only and is never
// placed on the wire.
func NewConn(pc net.PacketConn, opts ...Option) *Conn {
	o := defaultOptions
	for _, fn := range opts {
		fn(&o)
	}
	return &Conn{
		pc:         pc,
		id:         uuid.New(),
		opts:       o,
		retryDelay: o.RetryDelay,
	}
}

// ID returns the connection's log identifier.
func (c *Conn) ID() uuid.UUID { return c.id }

// Close closes the underlying net.PacketConn.
func (c *Conn) Close() error { return c.pc.Close() }

func (c *Conn) readLimit() int {
	if c.opts.ReadLimit > 0 && c.opts.ReadLimit < bwnet.MaxLen {
		return c.opts.ReadLimit
	}
	return bwnet.MaxLen
}

func (c *Conn) waitOnceOnWouldBlock() bool {
	if c.retryDelay < 0 {
		return false
	}
	if c.retryDelay == 0 {
		runtime.Gosched()
		return true
	}
	time.Sleep(c.retryDelay)
	return true
}

// encode builds the packet Send or a CaptureConn will write to the
// wire, performed exactly once per call since SyncData drains cfg's
// ack queue and is not safe to repeat for the same logical send. The
// prefix is written under the Conn's PrefixPolicy rather than
// RawBuffer's own little-endian accessor, since the policy's byte
// order is what gives the opaque 4 bytes their meaning as a counter.
func (c *Conn) encode(body []byte, cfg *bwnet.PacketConfig, prefix uint32) (*bwnet.Packet, error) {
	p := bwnet.NewPacket()
	if len(body) > p.MaxLen() {
		return nil, fmt.Errorf("bwnet/session: body of %d bytes exceeds max %d: %w", len(body), p.MaxLen(), bwnet.ErrInvalidArgument)
	}
	copy(p.Grow(len(body)), body)
	p.SyncData(cfg)
	if remaining := cfg.SingleAcks().Len(); remaining > 0 {
		// The trailer budget was full: SyncData already pushed the acks
		// it couldn't fit back onto the front of cfg's queue for the
		// caller's next send.
		AcksOverflowed.Add(float64(remaining))
	}
	c.opts.Prefix.Order().PutUint32(p.Raw().RawDataMut()[:bwnet.PrefixLen], prefix)
	return p, nil
}

// decodePrefix reads the prefix out of raw wire bytes under the
// Conn's PrefixPolicy.
func (c *Conn) decodePrefix(raw []byte) uint32 {
	return c.opts.Prefix.Order().Uint32(raw[:bwnet.PrefixLen])
}

// writeEncoded writes an already-encoded packet to addr, retrying on
// bwnet.ErrWouldBlock according to the Conn's retry policy.
func (c *Conn) writeEncoded(addr net.Addr, p *bwnet.Packet) error {
	c.opts.Logger.Debug("packet_send", "conn", c.id, "addr", addr, "len", p.Raw().Len())

	for {
		n, err := c.pc.WriteTo(p.Raw().Data(), addr)
		if err == nil {
			if n != p.Raw().Len() {
				return fmt.Errorf("bwnet/session: short write: wrote %d of %d bytes", n, p.Raw().Len())
			}
			PacketsSent.Inc()
			return nil
		}
		if !errors.Is(err, bwnet.ErrWouldBlock) {
			return fmt.Errorf("bwnet/session: write: %w", err)
		}
		if !c.waitOnceOnWouldBlock() {
			return bwnet.ErrWouldBlock
		}
	}
}

// SendReceiver is implemented by both Conn and CaptureConn, letting
// callers like cmd/bwnetctl serve switch between plain and captured
// sessions without branching on the concrete type.
type SendReceiver interface {
	Send(addr net.Addr, prefix uint32, body []byte, cfg *bwnet.PacketConfig) error
	Receive() (*Received, error)
}

// Send encodes body and cfg into a packet with the given opaque prefix
// and writes it to addr. It retries on bwnet.ErrWouldBlock according
// to the Conn's retry policy (see WithRetryDelay/WithBlock/WithNonblock).
func (c *Conn) Send(addr net.Addr, prefix uint32, body []byte, cfg *bwnet.PacketConfig) error {
	p, err := c.encode(body, cfg, prefix)
	if err != nil {
		return err
	}
	return c.writeEncoded(addr, p)
}

// Received is the result of a successful Receive.
type Received struct {
	From   net.Addr
	Prefix uint32
	Body   []byte
	Config bwnet.PacketConfig

	// Raw is the exact wire bytes as received, before SyncState peeled
	// the trailer off. CaptureConn uses this to record traffic without
	// re-encoding (and so without disturbing Config's ack queue).
	Raw []byte
}

// Receive reads and decodes one datagram. It retries on
// bwnet.ErrWouldBlock according to the Conn's retry policy. A decode
// failure (bad flags, corrupted trailer, bad checksum) is returned as
// an error and also recorded in the DecodeErrors metric; it is not
// retried, since the datagram that caused it has already been
// consumed from the socket.
func (c *Conn) Receive() (*Received, error) {
	buf := make([]byte, c.readLimit())
	var n int
	var from net.Addr
	for {
		var err error
		n, from, err = c.pc.ReadFrom(buf)
		if err == nil {
			break
		}
		if !errors.Is(err, bwnet.ErrWouldBlock) {
			return nil, fmt.Errorf("bwnet/session: read: %w", err)
		}
		if !c.waitOnceOnWouldBlock() {
			return nil, bwnet.ErrWouldBlock
		}
	}

	p := bwnet.NewPacket()
	copy(p.Raw().RawDataMut(), buf[:n])
	var cfg bwnet.PacketConfig
	if err := p.SyncState(n, &cfg); err != nil {
		DecodeErrors.WithLabelValues(decodeErrorLabel(err)).Inc()
		c.opts.Logger.Warn("packet_decode_error", "conn", c.id, "from", from, "error", err)
		return nil, err
	}

	PacketsReceived.Inc()
	body := append([]byte(nil), p.Data()...)
	prefix := c.decodePrefix(buf)
	raw := append([]byte(nil), buf[:n]...)

	return &Received{From: from, Prefix: prefix, Body: body, Config: cfg, Raw: raw}, nil
}

func decodeErrorLabel(err error) string {
	var syncErr *bwnet.PacketSyncError
	if !errors.As(err, &syncErr) {
		return "unknown"
	}
	switch syncErr.Kind {
	case bwnet.ErrorUnknownFlags:
		return DecodeErrorUnknownFlags
	case bwnet.ErrorCorrupted:
		return DecodeErrorCorrupted
	case bwnet.ErrorInvalidChecksum:
		return DecodeErrorInvalidChecksum
	default:
		return "unknown"
	}
}
