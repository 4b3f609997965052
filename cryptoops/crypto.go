package cryptoops

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"fmt"

	"github.com/gosuda/loco/common"
	"github.com/gosuda/loco/utils/randpool"
)

// GenerateKey draws a fresh 16-byte AES-128 session key from the system
// CSPRNG.
func GenerateKey() [common.KeySize]byte {
	return randpool.Rand16()
}

// GenerateIV draws a fresh 16-byte CFB initialization vector. IVs must be
// unique per packet under the same key; a deterministic counter is not an
// acceptable substitute here.
func GenerateIV() [common.IVSize]byte {
	return randpool.Rand16()
}

// Encrypt enciphers plaintext with AES-128 in CFB-128 mode under
// (key, iv). CFB is a stream mode: the ciphertext length equals the
// plaintext length, no padding.
func Encrypt(key *[common.KeySize]byte, iv [common.IVSize]byte, plaintext []byte) []byte {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		// aes.NewCipher only fails on invalid key length, which the
		// fixed-size array rules out.
		panic(err)
	}

	ciphertext := make([]byte, len(plaintext))
	cipher.NewCFBEncrypter(block, iv[:]).XORKeyStream(ciphertext, plaintext)
	return ciphertext
}

// Decrypt is the inverse of Encrypt. CFB carries no integrity check, so
// the error return is reserved for primitive-level failures and future
// AEAD substitution.
func Decrypt(key *[common.KeySize]byte, iv [common.IVSize]byte, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrCorruptedData, err)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCFBDecrypter(block, iv[:]).XORKeyStream(plaintext, ciphertext)
	return plaintext, nil
}

// WrapKey encrypts the 16-byte session key under the peer's RSA public key
// using OAEP with SHA-1 as both the digest and the MGF1 base hash. The
// output length equals the RSA modulus size.
func WrapKey(pub *rsa.PublicKey, key [common.KeySize]byte) ([]byte, error) {
	wrapped, err := rsa.EncryptOAEP(sha1.New(), rand.Reader, pub, key[:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrCorruptedData, err)
	}
	return wrapped, nil
}

// UnwrapKey decrypts a wrapped session key. OAEP verification failure
// yields ErrCorruptedData; a decrypted payload of the wrong length yields
// ErrInvalidKey.
func UnwrapKey(priv *rsa.PrivateKey, wrapped []byte) ([common.KeySize]byte, error) {
	var key [common.KeySize]byte

	plain, err := rsa.DecryptOAEP(sha1.New(), nil, priv, wrapped, nil)
	if err != nil {
		return key, fmt.Errorf("%w: oaep unwrap: %w", common.ErrCorruptedData, err)
	}

	if len(plain) != common.KeySize {
		Wipe(plain)
		return key, fmt.Errorf("%w: unwrapped %d bytes, want %d",
			common.ErrInvalidKey, len(plain), common.KeySize)
	}

	copy(key[:], plain)
	Wipe(plain)
	return key, nil
}

// Wipe overwrites b, including its spare capacity, with zeros. Used for
// buffers that held key material or plaintext keys.
func Wipe(b []byte) {
	b = b[:cap(b)]
	for i := range b {
		b[i] = 0
	}
}
