package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	tokenDomain "github.com/allisson/sessiontoken/internal/token/domain"
)

// HMACSigner implements the Signer interface using HMAC.
//
// The signer holds only the immutable key bytes; every Sum call allocates a
// fresh hash instance, so it is safe for concurrent use.
type HMACSigner struct {
	key  []byte
	hash func() hash.Hash
	size int
}

// NewHMACSigner creates a new HMAC signer for the given MAC algorithm.
//
// HMAC accepts keys of any length structurally; the practical minimum is
// enforced where operator input enters the system, not here. The key is
// copied on ingestion so that external mutations cannot affect in-use keys.
func NewHMACSigner(key []byte, alg tokenDomain.MACAlgorithm) (*HMACSigner, error) {
	var h func() hash.Hash
	var size int

	switch alg {
	case tokenDomain.HMACSHA256:
		h = sha256.New
		size = sha256.Size
	case tokenDomain.HMACSHA512:
		h = sha512.New
		size = sha512.Size
	default:
		return nil, tokenDomain.ErrUnsupportedMACAlgorithm
	}

	keyCopy := make([]byte, len(key))
	copy(keyCopy, key)

	return &HMACSigner{key: keyCopy, hash: h, size: size}, nil
}

// Sum computes the authentication tag over message.
func (s *HMACSigner) Sum(message []byte) []byte {
	mac := hmac.New(s.hash, s.key)
	mac.Write(message)
	return mac.Sum(nil)
}

// Size returns the tag length in bytes.
func (s *HMACSigner) Size() int {
	return s.size
}
