package common

import "errors"

const (
	// MethodSize is the fixed width of the NUL-padded method identifier.
	MethodSize = 11

	// HeaderSize is the fixed command header width: id(4) + status(2) +
	// method(11) + data_type(1).
	HeaderSize = 18

	// HeadSize is the full command head width: header + data_size(4).
	HeadSize = HeaderSize + 4

	// SecureHeadSize is the secure packet head width: size(4) + iv(16).
	SecureHeadSize = 4 + IVSize

	// HandshakeHeadSize is the handshake preamble head width:
	// encrypted_key_size(4) + key_type(4) + encrypt_type(4).
	HandshakeHeadSize = 12

	KeySize = 16
	IVSize  = 16

	// MaxWrappedKeySize bounds the wrapped session key announced by a
	// handshake head. 1024 bytes covers RSA moduli up to 8192 bits.
	MaxWrappedKeySize = 1024
)

const (
	// KeyTypeRsaOaepSha1Mgf1Sha1 is the key wrap algorithm identifier
	// emitted on the wire.
	KeyTypeRsaOaepSha1Mgf1Sha1 = 15

	// KeyTypeRsaOaepSha1Mgf1Sha1Legacy is the historical identifier for
	// the same algorithm. Accepted on decode, never emitted.
	KeyTypeRsaOaepSha1Mgf1Sha1Legacy = 12

	// EncryptTypeAesCfb128 is the bulk cipher identifier: AES-128 in
	// CFB-128 mode, no padding.
	EncryptTypeAesCfb128 = 2
)

var (
	ErrShortRead      = errors.New("stream ended before full frame")
	ErrMalformedFrame = errors.New("malformed frame head")
	ErrCorruptedData  = errors.New("corrupted data")
	ErrInvalidKey     = errors.New("invalid key")

	ErrMethodTooLong    = errors.New("method exceeds 11 bytes")
	ErrMethodInvalid    = errors.New("invalid method bytes")
	ErrInvalidLength    = errors.New("invalid buffer length")
	ErrStreamCorrupted  = errors.New("stream corrupted, discard and reconnect")
	ErrKeySizeTooLarge  = errors.New("wrapped key size exceeds limit")
	ErrUnknownKeyType   = errors.New("unknown key encrypt type")
	ErrUnknownBulkType  = errors.New("unknown bulk encrypt type")
)
