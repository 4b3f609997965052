package bufq

import (
	"bytes"
	"testing"
)

func TestQueueWritePeekDiscard(t *testing.T) {
	q := New()

	q.Write([]byte{1, 2, 3, 4})
	if q.Len() != 4 {
		t.Fatalf("length after write: got %d", q.Len())
	}

	if !bytes.Equal(q.Peek(2), []byte{1, 2}) {
		t.Fatalf("peek mismatch: %v", q.Peek(2))
	}
	if q.Len() != 4 {
		t.Fatal("peek must not consume")
	}

	q.Discard(2)
	if q.Len() != 2 {
		t.Fatalf("length after discard: got %d", q.Len())
	}
	if !bytes.Equal(q.Peek(2), []byte{3, 4}) {
		t.Fatalf("remaining bytes mismatch: %v", q.Peek(2))
	}
}

func TestQueueNext(t *testing.T) {
	q := New()
	q.Write([]byte("abcdef"))

	head := q.Next(3)
	if !bytes.Equal(head, []byte("abc")) {
		t.Fatalf("next mismatch: %q", head)
	}
	if q.Len() != 3 {
		t.Fatalf("length after next: got %d", q.Len())
	}

	// Next returns an owned copy, detached from the queue.
	q.Write([]byte("ghi"))
	if !bytes.Equal(head, []byte("abc")) {
		t.Fatalf("next result aliased queue storage: %q", head)
	}
}

func TestQueueFifoOrder(t *testing.T) {
	q := New()

	q.Write([]byte{1})
	q.Write([]byte{2, 3})
	q.WriteByte(4)

	if !bytes.Equal(q.Next(4), []byte{1, 2, 3, 4}) {
		t.Fatal("bytes must come out in write order")
	}
}

func TestQueueRead(t *testing.T) {
	q := New()
	q.Write([]byte("stream"))

	buf := make([]byte, 4)
	n, err := q.Read(buf)
	if err != nil || n != 4 {
		t.Fatalf("read: n=%d err=%v", n, err)
	}
	if !bytes.Equal(buf, []byte("stre")) {
		t.Fatalf("read bytes mismatch: %q", buf)
	}

	n, err = q.Read(buf)
	if err != nil || n != 2 {
		t.Fatalf("second read: n=%d err=%v", n, err)
	}

	// Empty queue would-blocks instead of reporting EOF.
	n, err = q.Read(buf)
	if err != nil || n != 0 {
		t.Fatalf("empty read: n=%d err=%v", n, err)
	}
}

func TestQueueWriteTo(t *testing.T) {
	q := New()
	q.Write([]byte("drain me"))

	var sink bytes.Buffer
	n, err := q.WriteTo(&sink)
	if err != nil || n != 8 {
		t.Fatalf("writeto: n=%d err=%v", n, err)
	}
	if sink.String() != "drain me" {
		t.Fatalf("drained bytes mismatch: %q", sink.String())
	}
	if q.Len() != 0 {
		t.Fatalf("queue not drained: %d left", q.Len())
	}
}

func TestQueueCompaction(t *testing.T) {
	q := New()

	big := make([]byte, 1<<17)
	for i := range big {
		big[i] = byte(i % 251)
	}

	// Consume past the compaction threshold with a live tail, then keep
	// using the queue.
	q.Write(big)
	q.Discard(1<<16 + 1)

	want := big[1<<16+1:]
	if !bytes.Equal(q.Peek(q.Len()), want) {
		t.Fatal("tail corrupted by compaction")
	}

	q.Write([]byte{0xEE})
	if !bytes.Equal(q.Next(q.Len()), append(append([]byte{}, want...), 0xEE)) {
		t.Fatal("append after compaction corrupted")
	}
}

func TestQueueDiscardBeyondLength(t *testing.T) {
	q := New()
	q.Write([]byte{1, 2})

	defer func() {
		if recover() == nil {
			t.Fatal("discard beyond length must panic")
		}
	}()
	q.Discard(3)
}
