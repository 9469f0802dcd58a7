package service

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"

	apperrors "github.com/allisson/sessiontoken/internal/errors"
	tokenDomain "github.com/allisson/sessiontoken/internal/token/domain"
)

// HKDF info parameters. Versioned so a future algorithm change can derive
// fresh keys from the same master secret without colliding with these.
const (
	encryptionKeyInfo = "session-token-encryption-v1"
	signingKeyInfo    = "session-token-signing-v1"
)

// DeriveKeyMaterial derives a full key pair from a single master secret using
// HKDF-SHA256. Distinct info parameters separate encryption key usage from
// signing key usage, so the two keys are independent even though they share a
// master secret.
//
// The derived encryption key length follows the cipher algorithm; the derived
// signing key length follows the MAC tag size (32 bytes for hmac-sha256, 64
// for hmac-sha512). The master secret itself is not retained.
func DeriveKeyMaterial(
	masterSecret []byte,
	cipherAlg tokenDomain.CipherAlgorithm,
	macAlg tokenDomain.MACAlgorithm,
) (tokenDomain.KeyMaterial, error) {
	if !tokenDomain.SupportedCipherAlgorithm(cipherAlg) {
		return tokenDomain.KeyMaterial{}, tokenDomain.ErrUnsupportedCipherAlgorithm
	}
	if !tokenDomain.SupportedMACAlgorithm(macAlg) {
		return tokenDomain.KeyMaterial{}, tokenDomain.ErrUnsupportedMACAlgorithm
	}

	signingKeySize := tokenDomain.MinSigningKeySize
	if macAlg == tokenDomain.HMACSHA512 {
		signingKeySize = 64
	}

	encryptionKey, err := deriveKey(
		masterSecret,
		encryptionKeyInfo,
		tokenDomain.CipherKeySize(cipherAlg),
	)
	if err != nil {
		return tokenDomain.KeyMaterial{}, err
	}

	signingKey, err := deriveKey(masterSecret, signingKeyInfo, signingKeySize)
	if err != nil {
		tokenDomain.Zero(encryptionKey)
		return tokenDomain.KeyMaterial{}, err
	}

	return tokenDomain.KeyMaterial{
		EncryptionKey:   encryptionKey,
		CipherAlgorithm: cipherAlg,
		SigningKey:      signingKey,
		MACAlgorithm:    macAlg,
	}, nil
}

// deriveKey reads size bytes from HKDF-SHA256 keyed by secret with the given
// info parameter.
func deriveKey(secret []byte, info string, size int) ([]byte, error) {
	reader := hkdf.New(sha256.New, secret, nil, []byte(info))
	key := make([]byte, size)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, apperrors.Wrap(err, "failed to derive key")
	}
	return key, nil
}
