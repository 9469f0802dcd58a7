package domain

import (
	"github.com/allisson/sessiontoken/internal/errors"
)

// Session token error definitions.
//
// Two disjoint classes exist. Configuration errors wrap errors.ErrInvalidConfig
// and surface synchronously at construction time; they indicate an operator
// mistake and must be loud. Runtime invalidity is always ErrInvalidToken: every
// decode failure collapses into it so that callers (and attackers) cannot
// distinguish a malformed token from a tampered one or from a wrong key.
var (
	// ErrUnsupportedCipherAlgorithm indicates the cipher algorithm is not supported.
	//
	// Supported algorithms: aes-128-cbc, aes-192-cbc, aes-256-cbc.
	ErrUnsupportedCipherAlgorithm = errors.Wrap(errors.ErrInvalidConfig, "unsupported cipher algorithm")

	// ErrUnsupportedMACAlgorithm indicates the MAC algorithm is not supported.
	//
	// Supported algorithms: hmac-sha256, hmac-sha512.
	ErrUnsupportedMACAlgorithm = errors.Wrap(errors.ErrInvalidConfig, "unsupported mac algorithm")

	// ErrInvalidKeySize indicates a key length does not match the chosen algorithm.
	//
	// Encryption keys must be 16, 24 or 32 bytes depending on the AES variant.
	// Signing keys loaded from the environment must be at least 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidConfig, "invalid key size")

	// ErrKeyValidationFailed indicates the construction-time self-test failed.
	//
	// The transform exercises the real encrypt/decrypt and MAC paths on an empty
	// payload during construction; any failure there means the key material and
	// algorithms are incompatible and the process should not start.
	ErrKeyValidationFailed = errors.Wrap(errors.ErrInvalidConfig, "key validation failed")

	// ErrEncryptionKeyNotSet indicates the ENCRYPTION_KEY environment variable is missing.
	ErrEncryptionKeyNotSet = errors.Wrap(errors.ErrInvalidConfig, "ENCRYPTION_KEY environment variable not set")

	// ErrSigningKeyNotSet indicates the SIGNING_KEY environment variable is missing.
	ErrSigningKeyNotSet = errors.Wrap(errors.ErrInvalidConfig, "SIGNING_KEY environment variable not set")

	// ErrInvalidKeyBase64 indicates a key environment variable is not valid base64.
	ErrInvalidKeyBase64 = errors.Wrap(errors.ErrInvalidConfig, "invalid base64-encoded key")

	// ErrInvalidToken indicates a session token failed to decode.
	//
	// This error can occur due to:
	//   - Malformed token structure or invalid hex encoding
	//   - Wrong decryption key or IV size mismatch
	//   - Padding validation failure during decryption
	//   - Authentication tag mismatch (tampering)
	//
	// For security reasons, the specific cause is never disclosed to prevent
	// information leakage that could aid attackers.
	ErrInvalidToken = errors.Wrap(errors.ErrInvalidInput, "invalid session token")
)
