package service

import (
	"crypto/rand"

	apperrors "github.com/allisson/sessiontoken/internal/errors"
)

// CryptoRandIVSource implements IVSource using crypto/rand.
//
// This is the production default. crypto/rand is safe for concurrent use, so
// the source needs no synchronization of its own.
type CryptoRandIVSource struct{}

// NewCryptoRandIVSource creates the default cryptographically secure IV source.
func NewCryptoRandIVSource() *CryptoRandIVSource {
	return &CryptoRandIVSource{}
}

// IV returns size fresh random bytes from the operating system entropy source.
func (c *CryptoRandIVSource) IV(size int) ([]byte, error) {
	iv := make([]byte, size)
	if _, err := rand.Read(iv); err != nil {
		return nil, apperrors.Wrap(err, "failed to generate iv")
	}
	return iv, nil
}
