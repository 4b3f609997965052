package bufq

import (
	"io"

	"github.com/valyala/bytebufferpool"
)

var _queuePool bytebufferpool.Pool

// compactThreshold is the consumed-prefix size above which the queue slides
// remaining bytes back to the start of the backing buffer.
const compactThreshold = 1 << 16

// Queue is an unbounded FIFO byte queue. It backs the read and write
// buffers of the IO-free protocol layers: producers append with Write,
// consumers inspect with Peek and remove with Discard or Next.
//
// A Queue is single-owner and not safe for concurrent use.
type Queue struct {
	bb  *bytebufferpool.ByteBuffer
	off int
}

// New creates an empty queue backed by pooled storage.
func New() *Queue {
	bb := _queuePool.Get()
	bb.Reset()
	return &Queue{bb: bb}
}

// Len returns the number of unconsumed bytes.
func (q *Queue) Len() int {
	return len(q.bb.B) - q.off
}

// Write appends p to the tail of the queue. It never fails; the error
// return exists to satisfy io.Writer.
func (q *Queue) Write(p []byte) (int, error) {
	q.bb.B = append(q.bb.B, p...)
	return len(p), nil
}

// WriteByte appends a single byte to the tail of the queue.
func (q *Queue) WriteByte(c byte) error {
	q.bb.B = append(q.bb.B, c)
	return nil
}

// Peek returns a view of the first n unconsumed bytes without removing
// them. The view is invalidated by any mutation of the queue. Peek panics
// if fewer than n bytes are buffered; callers check Len first.
func (q *Queue) Peek(n int) []byte {
	if n > q.Len() {
		panic("bufq: peek beyond buffered length")
	}
	return q.bb.B[q.off : q.off+n]
}

// Next removes and returns the first n bytes as a freshly allocated slice.
// It panics if fewer than n bytes are buffered.
func (q *Queue) Next(n int) []byte {
	out := make([]byte, n)
	copy(out, q.bb.B[q.off:q.off+n])
	q.Discard(n)
	return out
}

// Discard removes the first n bytes. It panics if fewer than n bytes are
// buffered.
func (q *Queue) Discard(n int) {
	if n > q.Len() {
		panic("bufq: discard beyond buffered length")
	}
	q.off += n
	if q.off == len(q.bb.B) {
		q.bb.B = q.bb.B[:0]
		q.off = 0
		return
	}
	if q.off > compactThreshold {
		remaining := copy(q.bb.B, q.bb.B[q.off:])
		q.bb.B = q.bb.B[:remaining]
		q.off = 0
	}
}

// Read drains up to len(p) bytes into p. An empty queue returns (0, nil):
// the queue is a would-block boundary, not a closed stream, so it never
// reports io.EOF.
func (q *Queue) Read(p []byte) (int, error) {
	n := copy(p, q.bb.B[q.off:])
	q.Discard(n)
	return n, nil
}

// WriteTo drains the entire queue into w. Used by callers flushing a write
// buffer to their transport.
func (q *Queue) WriteTo(w io.Writer) (int64, error) {
	if q.Len() == 0 {
		return 0, nil
	}
	n, err := w.Write(q.bb.B[q.off:])
	q.Discard(n)
	return int64(n), err
}

// Reset drops all buffered bytes.
func (q *Queue) Reset() {
	q.bb.Reset()
	q.off = 0
}

// Release wipes the backing storage and returns it to the pool. The queue
// must not be used afterwards. Wiping matters because read buffers hold
// plaintext and write buffers held key material during handshakes.
func (q *Queue) Release() {
	b := q.bb.B[:cap(q.bb.B)]
	for i := range b {
		b[i] = 0
	}
	q.bb.Reset()
	_queuePool.Put(q.bb)
	q.bb = nil
}
