package secure

import (
	"crypto/rsa"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/loco/common"
	"github.com/gosuda/loco/cryptoops"
	"github.com/gosuda/loco/utils/bufq"
)

type readPhase uint8

const (
	phasePending readPhase = iota
	phaseHeader
	phaseCorrupted
)

// Layer is the IO-free secure packet sink and stream. It owns the 16-byte
// session key for its whole lifetime: Send enciphers packets into
// WriteBuffer, Read deciphers packets out of ReadBuffer, and the parser
// resumes across arbitrarily fragmented input exactly like the command
// stream.
//
// A Layer is single-owner and not safe for concurrent use.
type Layer struct {
	key [common.KeySize]byte

	phase readPhase
	head  rawHead

	// ReadBuffer is filled by the caller from the transport.
	ReadBuffer *bufq.Queue

	// WriteBuffer receives framed ciphertext. The caller drains it.
	WriteBuffer *bufq.Queue
}

// NewLayer creates a secure layer around an established session key. Use
// NewClientLayer on the initiating side; the responder obtains the key
// from RecvHandshake.
func NewLayer(key [common.KeySize]byte) *Layer {
	return &Layer{
		key:         key,
		ReadBuffer:  bufq.New(),
		WriteBuffer: bufq.New(),
	}
}

// NewClientLayer creates a layer with a fresh random session key and
// immediately emits the handshake preamble into WriteBuffer, so no secure
// packet can precede the handshake on the wire.
func NewClientLayer(pub *rsa.PublicKey) (*Layer, error) {
	l := NewLayer(cryptoops.GenerateKey())
	if err := l.sendHandshake(pub); err != nil {
		l.Close()
		return nil, err
	}
	return l, nil
}

// Send enciphers pkt.Data under the session key and the packet's IV, then
// appends the framed result to WriteBuffer: a 4-byte little-endian size
// (16 + ciphertext length), the 16 IV bytes, and the ciphertext.
//
// The caller supplies the IV. IVs must never repeat under the same key;
// use SendData when a fresh random IV per packet is wanted.
func (l *Layer) Send(pkt Packet) {
	ciphertext := cryptoops.Encrypt(&l.key, pkt.IV, pkt.Data)

	var head [common.SecureHeadSize]byte
	encodeSecureHead(head[:], rawHead{
		Size: uint32(common.IVSize + len(ciphertext)),
		IV:   pkt.IV,
	})

	l.WriteBuffer.Write(head[:])
	l.WriteBuffer.Write(ciphertext)
}

// SendData wraps data as a single packet under a fresh random IV.
func (l *Layer) SendData(data []byte) {
	l.Send(Packet{
		IV:   cryptoops.GenerateIV(),
		Data: data,
	})
}

// Read returns the next fully buffered packet with its data deciphered,
// or (nil, nil) when ReadBuffer holds less than a complete packet. State
// is retained across would-block returns; a malformed head traps the
// layer and every further Read fails.
func (l *Layer) Read() (*Packet, error) {
	for {
		switch l.phase {
		case phasePending:
			if l.ReadBuffer.Len() < common.SecureHeadSize {
				return nil, nil
			}

			head, err := decodeSecureHead(l.ReadBuffer.Peek(common.SecureHeadSize))
			if err != nil {
				l.phase = phaseCorrupted
				log.Warn().Err(err).Msg("secure layer corrupted on head decode")
				return nil, fmt.Errorf("%w: %w", common.ErrMalformedFrame, err)
			}
			l.ReadBuffer.Discard(common.SecureHeadSize)

			l.head = head
			l.phase = phaseHeader

		case phaseHeader:
			ciphertextLen := int(l.head.Size) - common.IVSize
			if l.ReadBuffer.Len() < ciphertextLen {
				return nil, nil
			}

			ciphertext := l.ReadBuffer.Next(ciphertextLen)
			plaintext, err := cryptoops.Decrypt(&l.key, l.head.IV, ciphertext)
			if err != nil {
				l.phase = phaseCorrupted
				log.Warn().Err(err).Msg("secure layer corrupted on decrypt")
				return nil, err
			}

			pkt := &Packet{
				IV:   l.head.IV,
				Data: plaintext,
			}

			l.head = rawHead{}
			l.phase = phasePending
			return pkt, nil

		case phaseCorrupted:
			return nil, common.ErrStreamCorrupted
		}
	}
}

// Close wipes the session key and releases both buffers. The layer must
// not be used afterwards.
func (l *Layer) Close() {
	cryptoops.Wipe(l.key[:])
	if l.ReadBuffer != nil {
		l.ReadBuffer.Release()
		l.ReadBuffer = nil
	}
	if l.WriteBuffer != nil {
		l.WriteBuffer.Release()
		l.WriteBuffer = nil
	}
}
