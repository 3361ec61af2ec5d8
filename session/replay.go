// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package session

import (
	"fmt"
	"io"
	"net"
	"time"

	"code.hybscloud.com/bwnet"
	"code.hybscloud.com/bwnet/internal/wireframe"
)

// CaptureConn wraps a Conn and records every Send/Receive to a capture
// file via wireframe. It is a debugging aid, not a proxy: it never
// alters or delays traffic, it only mirrors it to disk as it passes
// through the wrapped Conn's own Send/Receive calls.
type CaptureConn struct {
	*Conn
	w     *wireframe.Writer
	start time.Time
}

// NewCaptureConn wraps conn, writing a record to cw for every packet
// Send or Receive handles.
func NewCaptureConn(conn *Conn, cw *wireframe.Writer) *CaptureConn {
	return &CaptureConn{Conn: conn, w: cw, start: captureNow()}
}

// captureNow is the single time.Now() call site in this file, isolated
// so tests can substitute a fixed clock if ever needed.
func captureNow() time.Time { return time.Now() }

func (c *CaptureConn) elapsed() time.Duration { return captureNow().Sub(c.start) }

// Send behaves like Conn.Send and additionally appends an outbound
// capture record holding exactly the bytes SyncData produced. The
// packet is encoded once, via Conn.encode, since SyncData drains cfg's
// ack queue and calling it a second time would both corrupt the queue
// and desync the captured bytes from the ones actually sent.
func (c *CaptureConn) Send(addr net.Addr, prefix uint32, body []byte, cfg *bwnet.PacketConfig) error {
	p, err := c.Conn.encode(body, cfg, prefix)
	if err != nil {
		return err
	}

	rec := wireframe.Record{
		Direction: wireframe.DirectionOutbound,
		Elapsed:   c.elapsed(),
		Addr:      addr.String(),
		Payload:   append([]byte(nil), p.Raw().Data()...),
	}
	if err := c.w.WriteRecord(rec); err != nil {
		return fmt.Errorf("bwnet/session: capture write: %w", err)
	}
	return c.Conn.writeEncoded(addr, p)
}

// Receive behaves like Conn.Receive and additionally appends an
// inbound capture record. Only datagrams that decode cleanly are
// captured; a malformed datagram is reported to the caller exactly as
// Conn.Receive would, with nothing written to the capture.
func (c *CaptureConn) Receive() (*Received, error) {
	recv, err := c.Conn.Receive()
	if err != nil {
		return nil, err
	}

	rec := wireframe.Record{
		Direction: wireframe.DirectionInbound,
		Elapsed:   c.elapsed(),
		Addr:      recv.From.String(),
		Payload:   recv.Raw,
	}
	if err := c.w.WriteRecord(rec); err != nil {
		return nil, fmt.Errorf("bwnet/session: capture write: %w", err)
	}
	return recv, nil
}

// ReplayDecoder replays a capture file's inbound records through
// SyncState, the same decode path a live Conn.Receive uses, without
// touching a network. It is for regression-testing captured traffic
// against the current codec, not for retransmitting it.
type ReplayDecoder struct {
	r *wireframe.Reader
}

// NewReplayDecoder wraps r, a previously captured stream.
func NewReplayDecoder(r *wireframe.Reader) *ReplayDecoder {
	return &ReplayDecoder{r: r}
}

// ReplayedPacket is one decoded record from a capture file.
type ReplayedPacket struct {
	Record wireframe.Record
	Config bwnet.PacketConfig
	Body   []byte
}

// Next decodes the next record in the capture, skipping outbound
// records (nothing to verify decode-wise for traffic this process
// itself produced). It returns io.EOF when the capture is exhausted.
func (d *ReplayDecoder) Next() (*ReplayedPacket, error) {
	for {
		rec, err := d.r.ReadRecord()
		if err != nil {
			return nil, err
		}
		if rec.Direction != wireframe.DirectionInbound {
			continue
		}

		p := bwnet.NewPacket()
		copy(p.Raw().RawDataMut(), rec.Payload)
		var cfg bwnet.PacketConfig
		if err := p.SyncState(len(rec.Payload), &cfg); err != nil {
			return nil, fmt.Errorf("bwnet/session: replay decode at %s: %w", rec.Elapsed, err)
		}
		return &ReplayedPacket{
			Record: rec,
			Config: cfg,
			Body:   append([]byte(nil), p.Data()...),
		}, nil
	}
}

// DrainReplay decodes every inbound record in the capture, calling fn
// for each. It stops and returns the first non-io.EOF error.
func DrainReplay(r *wireframe.Reader, fn func(*ReplayedPacket) error) error {
	d := NewReplayDecoder(r)
	for {
		pkt, err := d.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(pkt); err != nil {
			return err
		}
	}
}
