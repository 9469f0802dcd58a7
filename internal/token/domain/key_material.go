package domain

import (
	"encoding/base64"
	"fmt"
	"os"
)

// KeyMaterial holds the symmetric keys and algorithm identifiers for the
// session token transform.
//
// Key material is constructed once, outside any per-request path, and treated
// as immutable afterwards. The transform validates it at construction by
// exercising the real cryptographic paths, so a bad key size is an
// operator-visible startup fault rather than a silent per-request failure.
//
// Fields:
//   - EncryptionKey: Raw key bytes for the block cipher
//   - CipherAlgorithm: AES-CBC variant selecting the required key size
//   - SigningKey: Raw key bytes for the MAC
//   - MACAlgorithm: HMAC variant selecting the tag size
type KeyMaterial struct {
	EncryptionKey   []byte
	CipherAlgorithm CipherAlgorithm
	SigningKey      []byte
	MACAlgorithm    MACAlgorithm
}

// Validate checks that the algorithms are supported and the encryption key
// length matches the chosen cipher. The signing key only has to be non-empty:
// HMAC accepts any key length structurally, and the environment loader is the
// place where the practical minimum is enforced.
func (k KeyMaterial) Validate() error {
	if !SupportedCipherAlgorithm(k.CipherAlgorithm) {
		return fmt.Errorf("%w: %q", ErrUnsupportedCipherAlgorithm, k.CipherAlgorithm)
	}
	if !SupportedMACAlgorithm(k.MACAlgorithm) {
		return fmt.Errorf("%w: %q", ErrUnsupportedMACAlgorithm, k.MACAlgorithm)
	}
	if len(k.EncryptionKey) != CipherKeySize(k.CipherAlgorithm) {
		return fmt.Errorf(
			"%w: %s requires %d bytes, got %d",
			ErrInvalidKeySize,
			k.CipherAlgorithm,
			CipherKeySize(k.CipherAlgorithm),
			len(k.EncryptionKey),
		)
	}
	if len(k.SigningKey) == 0 {
		return fmt.Errorf("%w: signing key must not be empty", ErrInvalidKeySize)
	}
	return nil
}

// Close zeroes the key material. Call it when the keys are no longer needed
// (e.g. during application shutdown).
func (k *KeyMaterial) Close() {
	Zero(k.EncryptionKey)
	Zero(k.SigningKey)
}

// LoadKeyMaterialFromEnv loads session token keys from environment variables.
//
// This function reads key configuration from four environment variables:
//   - ENCRYPTION_KEY: base64-encoded encryption key
//   - SIGNING_KEY: base64-encoded signing key
//   - CIPHER_ALGORITHM: cipher name (defaults to "aes-256-cbc" when unset)
//   - MAC_ALGORITHM: MAC name (defaults to "hmac-sha256" when unset)
//
// Each key must base64-decode to a length accepted by its algorithm; signing
// keys shorter than MinSigningKeySize bytes are rejected. On error, any
// decoded key bytes are zeroed before returning.
//
// Returns:
//   - A validated KeyMaterial ready to construct a transform
//   - ErrEncryptionKeyNotSet / ErrSigningKeyNotSet if a key is missing
//   - ErrInvalidKeyBase64 if base64 decoding fails
//   - ErrInvalidKeySize / ErrUnsupported*Algorithm on validation failure
func LoadKeyMaterialFromEnv() (KeyMaterial, error) {
	encRaw := os.Getenv("ENCRYPTION_KEY")
	if encRaw == "" {
		return KeyMaterial{}, ErrEncryptionKeyNotSet
	}

	signRaw := os.Getenv("SIGNING_KEY")
	if signRaw == "" {
		return KeyMaterial{}, ErrSigningKeyNotSet
	}

	cipherAlg := CipherAlgorithm(os.Getenv("CIPHER_ALGORITHM"))
	if cipherAlg == "" {
		cipherAlg = AES256CBC
	}
	macAlg := MACAlgorithm(os.Getenv("MAC_ALGORITHM"))
	if macAlg == "" {
		macAlg = HMACSHA256
	}

	encKey, err := base64.StdEncoding.DecodeString(encRaw)
	if err != nil {
		return KeyMaterial{}, fmt.Errorf("%w: ENCRYPTION_KEY: %v", ErrInvalidKeyBase64, err)
	}

	signKey, err := base64.StdEncoding.DecodeString(signRaw)
	if err != nil {
		Zero(encKey)
		return KeyMaterial{}, fmt.Errorf("%w: SIGNING_KEY: %v", ErrInvalidKeyBase64, err)
	}

	km := KeyMaterial{
		EncryptionKey:   encKey,
		CipherAlgorithm: cipherAlg,
		SigningKey:      signKey,
		MACAlgorithm:    macAlg,
	}

	if len(signKey) < MinSigningKeySize {
		km.Close()
		return KeyMaterial{}, fmt.Errorf(
			"%w: signing key must be at least %d bytes, got %d",
			ErrInvalidKeySize,
			MinSigningKeySize,
			len(signKey),
		)
	}

	if err := km.Validate(); err != nil {
		km.Close()
		return KeyMaterial{}, err
	}

	return km, nil
}
