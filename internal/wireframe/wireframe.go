// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wireframe is a small record-at-a-time framing format used by
// session's capture/replay tooling. It is not a live interception
// proxy: a capture file is written by a Conn as packets pass through
// it and later replayed by feeding recorded payloads back through
// SyncData/SyncState, entirely offline from the original traffic.
//
// Wire format per record, adapted from the length-prefix scheme the
// teacher package uses for stream framing:
//
//	direction byte
//	elapsed   int64 (little-endian, nanoseconds since the capture began)
//	addr      length-prefixed string (1- or 3-byte length header, see putLength)
//	payload   length-prefixed bytes (same length header)
package wireframe

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"
)

// Direction values recorded alongside each captured packet.
const (
	DirectionOutbound byte = 1
	DirectionInbound  byte = 2
)

// Record is one captured packet.
type Record struct {
	Direction byte
	Elapsed   time.Duration
	Addr      string
	Payload   []byte
}

// maxRecordPayload matches bwnet.MaxLen indirectly: wireframe does not
// import bwnet to avoid a dependency cycle with session, but a payload
// this large already exceeds any real datagram this codec produces.
const maxRecordPayload = 1<<16 - 1

// putLength writes n using the teacher's compact variable-length
// header: values up to 253 fit in a single byte; larger values up to
// 65535 use a 0xFE marker followed by two bytes.
func putLength(w io.Writer, n int) error {
	if n < 0 || n > maxRecordPayload {
		return fmt.Errorf("wireframe: length %d out of range", n)
	}
	if n <= 253 {
		_, err := w.Write([]byte{byte(n)})
		return err
	}
	var hdr [3]byte
	hdr[0] = 0xFE
	binary.LittleEndian.PutUint16(hdr[1:], uint16(n))
	_, err := w.Write(hdr[:])
	return err
}

func getLength(r io.Reader) (int, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	if b[0] != 0xFE {
		return int(b[0]), nil
	}
	var ext [2]byte
	if _, err := io.ReadFull(r, ext[:]); err != nil {
		return 0, err
	}
	return int(binary.LittleEndian.Uint16(ext[:])), nil
}

// Writer appends Records to an underlying io.Writer, one capture file
// per Writer instance.
type Writer struct{ w io.Writer }

// NewWriter wraps w for sequential record writes.
func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

// WriteRecord appends one record.
func (cw *Writer) WriteRecord(rec Record) error {
	if _, err := cw.w.Write([]byte{rec.Direction}); err != nil {
		return err
	}
	var elapsed [8]byte
	binary.LittleEndian.PutUint64(elapsed[:], uint64(rec.Elapsed))
	if _, err := cw.w.Write(elapsed[:]); err != nil {
		return err
	}
	if err := putLength(cw.w, len(rec.Addr)); err != nil {
		return err
	}
	if _, err := io.WriteString(cw.w, rec.Addr); err != nil {
		return err
	}
	if err := putLength(cw.w, len(rec.Payload)); err != nil {
		return err
	}
	_, err := cw.w.Write(rec.Payload)
	return err
}

// Reader reads Records back out in the order they were written.
type Reader struct{ r io.Reader }

// NewReader wraps r for sequential record reads.
func NewReader(r io.Reader) *Reader { return &Reader{r: r} }

// ReadRecord reads the next record, or io.EOF when the capture is
// exhausted (only between records; a partial record is
// io.ErrUnexpectedEOF).
func (cr *Reader) ReadRecord() (Record, error) {
	var dir [1]byte
	if _, err := io.ReadFull(cr.r, dir[:]); err != nil {
		return Record{}, err // io.EOF propagates as-is between records
	}

	var elapsed [8]byte
	if _, err := io.ReadFull(cr.r, elapsed[:]); err != nil {
		return Record{}, unexpected(err)
	}

	addrLen, err := getLength(cr.r)
	if err != nil {
		return Record{}, unexpected(err)
	}
	addrBuf := make([]byte, addrLen)
	if _, err := io.ReadFull(cr.r, addrBuf); err != nil {
		return Record{}, unexpected(err)
	}

	payloadLen, err := getLength(cr.r)
	if err != nil {
		return Record{}, unexpected(err)
	}
	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(cr.r, payload); err != nil {
		return Record{}, unexpected(err)
	}

	return Record{
		Direction: dir[0],
		Elapsed:   time.Duration(binary.LittleEndian.Uint64(elapsed[:])),
		Addr:      string(addrBuf),
		Payload:   payload,
	}, nil
}

func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
