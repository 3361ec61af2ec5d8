// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wireframe_test

import (
	"bytes"
	"io"
	"testing"
	"time"

	"code.hybscloud.com/bwnet/internal/wireframe"
)

func TestWriteReadRecordRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := wireframe.NewWriter(&buf)

	records := []wireframe.Record{
		{Direction: wireframe.DirectionOutbound, Elapsed: 0, Addr: "127.0.0.1:9000", Payload: []byte{1, 2, 3}},
		{Direction: wireframe.DirectionInbound, Elapsed: 50 * time.Millisecond, Addr: "127.0.0.1:9001", Payload: bytes.Repeat([]byte{0xAB}, 300)},
		{Direction: wireframe.DirectionInbound, Elapsed: time.Second, Addr: "", Payload: nil},
	}
	for _, rec := range records {
		if err := w.WriteRecord(rec); err != nil {
			t.Fatalf("WriteRecord: %v", err)
		}
	}

	r := wireframe.NewReader(&buf)
	for i, want := range records {
		got, err := r.ReadRecord()
		if err != nil {
			t.Fatalf("record %d: ReadRecord: %v", i, err)
		}
		if got.Direction != want.Direction || got.Elapsed != want.Elapsed || got.Addr != want.Addr || !bytes.Equal(got.Payload, want.Payload) {
			t.Fatalf("record %d = %+v, want %+v", i, got, want)
		}
	}

	if _, err := r.ReadRecord(); err != io.EOF {
		t.Fatalf("final ReadRecord error = %v, want io.EOF", err)
	}
}

func TestReadRecordTruncatedIsUnexpectedEOF(t *testing.T) {
	var buf bytes.Buffer
	w := wireframe.NewWriter(&buf)
	if err := w.WriteRecord(wireframe.Record{Direction: wireframe.DirectionOutbound, Addr: "x", Payload: []byte{1, 2, 3, 4}}); err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}

	truncated := buf.Bytes()[:buf.Len()-2]
	r := wireframe.NewReader(bytes.NewReader(truncated))
	if _, err := r.ReadRecord(); err != io.ErrUnexpectedEOF {
		t.Fatalf("ReadRecord error = %v, want io.ErrUnexpectedEOF", err)
	}
}
