// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bwnet

// ackQueue is a FIFO of single-ack sequence numbers. SyncData pops
// from the front (oldest acks go out first); SyncState pushes to the
// back in wire order so the acks surfaced to the application are in
// the order the remote peer originally wrote them, even though the
// trailer as a whole is peeled off from its tail. Its backing
// array grows with peer liveness and is trimmed as acks are drained,
// matching the "capacity grows, is trimmed" resource policy.
type ackQueue struct {
	buf  []uint32
	head int
}

// Len returns the number of queued acks.
func (q *ackQueue) Len() int { return len(q.buf) - q.head }

// PushBack appends an ack to the tail of the queue.
func (q *ackQueue) PushBack(v uint32) {
	q.buf = append(q.buf, v)
}

// PushFront puts an ack back at the head of the queue. It is used by
// SyncData to return an ack it popped but could not fit in the
// current trailer.
func (q *ackQueue) PushFront(v uint32) {
	if q.head > 0 {
		q.head--
		q.buf[q.head] = v
		return
	}
	q.buf = append([]uint32{v}, q.buf...)
}

// PopFront removes and returns the oldest queued ack.
func (q *ackQueue) PopFront() (uint32, bool) {
	if q.head >= len(q.buf) {
		return 0, false
	}
	v := q.buf[q.head]
	q.buf[q.head] = 0
	q.head++
	if q.head == len(q.buf) {
		q.buf = q.buf[:0]
		q.head = 0
	} else if q.head > 64 && q.head*2 > len(q.buf) {
		// Trim the drained prefix once it dominates the backing array,
		// instead of on every pop, to avoid O(n) compaction per ack.
		q.buf = append(q.buf[:0], q.buf[q.head:]...)
		q.head = 0
	}
	return v, true
}

// Slice returns the queued acks in FIFO order without draining them.
// It is intended for tests and diagnostics; encode/decode use
// PushBack/PopFront directly.
func (q *ackQueue) Slice() []uint32 {
	out := make([]uint32, q.Len())
	copy(out, q.buf[q.head:])
	return out
}

// Reset empties the queue, retaining its backing array.
func (q *ackQueue) Reset() {
	q.buf = q.buf[:0]
	q.head = 0
}
