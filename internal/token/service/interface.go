// Package service provides the cryptographic engines and the authenticated
// session token transform built on top of them. The transform implements an
// encrypt-and-MAC construction over AES-CBC and HMAC with a hex wire format.
package service

import (
	tokenDomain "github.com/allisson/sessiontoken/internal/token/domain"
)

// BlockCipher defines the interface for the confidentiality engine.
//
// Implementations must be stateless and safe for concurrent use: every call
// allocates its own cipher mode instance, so no locking discipline is needed.
type BlockCipher interface {
	// Encrypt encrypts plaintext under the given IV, padding to the block size.
	Encrypt(plaintext, iv []byte) ([]byte, error)

	// Decrypt decrypts ciphertext under the given IV and removes the padding.
	Decrypt(ciphertext, iv []byte) ([]byte, error)

	// BlockSize returns the cipher block size in bytes. IVs must be this long.
	BlockSize() int
}

// Signer defines the interface for the authentication engine.
type Signer interface {
	// Sum computes the authentication tag over message.
	Sum(message []byte) []byte

	// Size returns the tag length in bytes.
	Size() int
}

// IVSource defines the interface for per-encryption initialization vectors.
//
// This is a security-critical extension point: the default implementation
// reads crypto/rand, and replacing it is only safe for deterministic tests.
// IV reuse under CBC breaks the confidentiality guarantees of the transform.
// Implementations must be safe for concurrent use.
type IVSource interface {
	// IV returns size fresh bytes.
	IV(size int) ([]byte, error)
}

// Transformer defines the interface for the session token transform. It is
// one link in an ordered chain of interchangeable transforms applied to a
// session string by an external coordinator; the transform itself consumes
// and produces only strings.
type Transformer interface {
	// Encode converts an opaque payload into a transport token.
	Encode(plaintext string) (string, error)

	// Decode reverses Encode. Every failure is tokenDomain.ErrInvalidToken.
	Decode(token string) (string, error)
}

// NewBlockCipher creates the confidentiality engine for the specified algorithm.
// Returns tokenDomain.ErrInvalidKeySize or tokenDomain.ErrUnsupportedCipherAlgorithm
// when the key and algorithm do not form a valid combination.
func NewBlockCipher(key []byte, alg tokenDomain.CipherAlgorithm) (BlockCipher, error) {
	switch alg {
	case tokenDomain.AES128CBC, tokenDomain.AES192CBC, tokenDomain.AES256CBC:
		return NewAESCBC(key, alg)
	default:
		return nil, tokenDomain.ErrUnsupportedCipherAlgorithm
	}
}

// NewSigner creates the authentication engine for the specified algorithm.
func NewSigner(key []byte, alg tokenDomain.MACAlgorithm) (Signer, error) {
	switch alg {
	case tokenDomain.HMACSHA256, tokenDomain.HMACSHA512:
		return NewHMACSigner(key, alg)
	default:
		return nil, tokenDomain.ErrUnsupportedMACAlgorithm
	}
}
