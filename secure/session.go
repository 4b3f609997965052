package secure

import (
	"crypto/rsa"

	"github.com/gosuda/loco/utils/bufq"
)

// Session presents a byte-oriented read/write surface over the
// packet-oriented secure layer, so byte-stream codecs can be chained on
// top of the encryption envelope.
//
// Packet boundaries are not preserved from the caller's perspective:
// bytes written by any sequence of Write calls are recovered by the peer's
// Read calls in the same order and count, but not necessarily in the same
// chunks. Session is a byte pipe, not a datagram pipe.
type Session struct {
	layer *Layer

	// residual holds decrypted plaintext from a packet the caller has
	// only partially consumed.
	residual *bufq.Queue
}

// NewSession wraps an established secure layer.
func NewSession(layer *Layer) *Session {
	return &Session{
		layer:    layer,
		residual: bufq.New(),
	}
}

// NewClientSession creates a client-side session: a fresh session key, the
// handshake preamble already queued in the layer's WriteBuffer, and a byte
// surface on top.
func NewClientSession(pub *rsa.PublicKey) (*Session, error) {
	layer, err := NewClientLayer(pub)
	if err != nil {
		return nil, err
	}
	return NewSession(layer), nil
}

// Layer exposes the underlying secure layer; the caller moves bytes
// between its buffers and the transport.
func (s *Session) Layer() *Layer {
	return s.layer
}

// Write wraps p as a single secure packet under a fresh random IV.
func (s *Session) Write(p []byte) (int, error) {
	s.layer.SendData(p)
	return len(p), nil
}

// Read drains up to len(p) plaintext bytes. Residual plaintext from a
// previous packet is served first; otherwise one packet is decrypted from
// the layer's read buffer. When no packet is fully buffered, Read returns
// (0, nil) — a would-block, not EOF.
func (s *Session) Read(p []byte) (int, error) {
	for s.residual.Len() == 0 {
		pkt, err := s.layer.Read()
		if err != nil {
			return 0, err
		}
		if pkt == nil {
			return 0, nil
		}
		if len(pkt.Data) == 0 {
			continue
		}
		s.residual.Write(pkt.Data)
	}

	return s.residual.Read(p)
}

// Close releases the residual buffer and closes the underlying layer,
// wiping the session key.
func (s *Session) Close() {
	s.residual.Release()
	s.residual = nil
	s.layer.Close()
}
