package secure

import (
	"crypto/rsa"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/loco/common"
	"github.com/gosuda/loco/cryptoops"
	"github.com/gosuda/loco/utils/bufq"
)

// sendHandshake wraps the session key under the peer's RSA public key and
// appends the handshake preamble to WriteBuffer: encrypted_key_size(4),
// key_type(4) = 15, encrypt_type(4) = 2, then the wrapped key. One-shot
// per session; emitted from NewClientLayer before any packet.
func (l *Layer) sendHandshake(pub *rsa.PublicKey) error {
	wrapped, err := cryptoops.WrapKey(pub, l.key)
	if err != nil {
		return err
	}

	var head [common.HandshakeHeadSize]byte
	binary.LittleEndian.PutUint32(head[0:4], uint32(len(wrapped)))
	binary.LittleEndian.PutUint32(head[4:8], common.KeyTypeRsaOaepSha1Mgf1Sha1)
	binary.LittleEndian.PutUint32(head[8:12], common.EncryptTypeAesCfb128)

	l.WriteBuffer.Write(head[:])
	l.WriteBuffer.Write(wrapped)
	cryptoops.Wipe(wrapped)

	log.Debug().Int("wrapped_key_size", len(wrapped)).Msg("handshake emitted")
	return nil
}

// decodeHandshakeHead validates the 12-byte preamble head and returns the
// announced wrapped key size.
func decodeHandshakeHead(data []byte) (int, error) {
	keySize := binary.LittleEndian.Uint32(data[0:4])
	keyType := binary.LittleEndian.Uint32(data[4:8])
	encryptType := binary.LittleEndian.Uint32(data[8:12])

	switch keyType {
	case common.KeyTypeRsaOaepSha1Mgf1Sha1, common.KeyTypeRsaOaepSha1Mgf1Sha1Legacy:
	default:
		return 0, fmt.Errorf("%w: %w: %d", common.ErrMalformedFrame, common.ErrUnknownKeyType, keyType)
	}

	if encryptType != common.EncryptTypeAesCfb128 {
		return 0, fmt.Errorf("%w: %w: %d", common.ErrMalformedFrame, common.ErrUnknownBulkType, encryptType)
	}

	if keySize == 0 || keySize > common.MaxWrappedKeySize {
		return 0, fmt.Errorf("%w: %w: %d", common.ErrMalformedFrame, common.ErrKeySizeTooLarge, keySize)
	}

	return int(keySize), nil
}

// RecvHandshake parses the handshake preamble from a caller-filled read
// queue and unwraps the session key with the responder's RSA private key.
// It reports ok = false while the queue holds less than the full preamble;
// partial input stays buffered and a later call resumes.
//
// The returned key seeds NewLayer on the responder side.
func RecvHandshake(priv *rsa.PrivateKey, q *bufq.Queue) (key [common.KeySize]byte, ok bool, err error) {
	if q.Len() < common.HandshakeHeadSize {
		return key, false, nil
	}

	keySize, err := decodeHandshakeHead(q.Peek(common.HandshakeHeadSize))
	if err != nil {
		log.Warn().Err(err).Msg("handshake head rejected")
		return key, false, err
	}

	if q.Len() < common.HandshakeHeadSize+keySize {
		return key, false, nil
	}

	q.Discard(common.HandshakeHeadSize)
	wrapped := q.Next(keySize)
	defer cryptoops.Wipe(wrapped)

	key, err = cryptoops.UnwrapKey(priv, wrapped)
	if err != nil {
		log.Warn().Err(err).Msg("handshake key unwrap failed")
		return key, false, err
	}

	log.Debug().Int("wrapped_key_size", keySize).Msg("handshake accepted")
	return key, true, nil
}

// ReadHandshakeFrom reads a complete handshake preamble from r and unwraps
// the session key. EOF before the full preamble surfaces as ErrShortRead.
// Convenience for responders driving a blocking transport directly.
func ReadHandshakeFrom(priv *rsa.PrivateKey, r io.Reader) ([common.KeySize]byte, error) {
	var key [common.KeySize]byte

	var head [common.HandshakeHeadSize]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return key, shortReadErr(err)
	}

	keySize, err := decodeHandshakeHead(head[:])
	if err != nil {
		return key, err
	}

	wrapped := make([]byte, keySize)
	if _, err := io.ReadFull(r, wrapped); err != nil {
		return key, shortReadErr(err)
	}
	defer cryptoops.Wipe(wrapped)

	return cryptoops.UnwrapKey(priv, wrapped)
}

func shortReadErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %w", common.ErrShortRead, err)
	}
	return err
}
