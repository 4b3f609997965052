package secure

import (
	"encoding/binary"

	"github.com/gosuda/loco/common"
)

// Packet is one unit of the encryption envelope. Data is plaintext on the
// caller side of the layer; the wire carries it enciphered.
type Packet struct {
	IV   [common.IVSize]byte
	Data []byte
}

// rawHead is the decoded 20-byte secure packet head. Size counts the IV
// plus the ciphertext, so it is at least 16.
type rawHead struct {
	Size uint32
	IV   [common.IVSize]byte
}

func encodeSecureHead(dst []byte, head rawHead) {
	binary.LittleEndian.PutUint32(dst[:4], head.Size)
	copy(dst[4:common.SecureHeadSize], head.IV[:])
}

func decodeSecureHead(data []byte) (rawHead, error) {
	var head rawHead
	if len(data) < common.SecureHeadSize {
		return head, common.ErrInvalidLength
	}

	head.Size = binary.LittleEndian.Uint32(data[:4])
	copy(head.IV[:], data[4:common.SecureHeadSize])

	if head.Size < common.IVSize {
		return head, common.ErrMalformedFrame
	}
	if head.Size > maxSecurePacketSize {
		return head, common.ErrMalformedFrame
	}

	return head, nil
}

// maxSecurePacketSize bounds a single secure packet on the wire. A head
// announcing more is treated as a malformed frame rather than an
// allocation request.
const maxSecurePacketSize = 1 << 26
