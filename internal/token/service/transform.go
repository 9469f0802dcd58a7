package service

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log/slog"

	tokenDomain "github.com/allisson/sessiontoken/internal/token/domain"
)

// Transform implements the authenticated session token transform.
//
// Encode converts an opaque payload string into a tamper-evident,
// confidentiality-protected transport token; Decode reverses it. The wire
// format is hex(iv) "/" hex(ciphertext) ":" hex(mac) with all hex lowercase.
//
// The authentication tag is computed over the plaintext, not the ciphertext
// (encrypt-and-MAC). This is a known weaker pattern than encrypt-then-MAC for
// some cipher modes, but it is preserved deliberately: changing it would break
// wire compatibility with every existing token holder sharing these keys.
//
// Thread safety:
//
//	After construction the transform holds only immutable key material. Every
//	call allocates its own cipher mode, MAC instance and IV, so it is safe
//	for unsynchronized concurrent use by any number of goroutines.
type Transform struct {
	cipher   BlockCipher
	signer   Signer
	ivSource IVSource
	logger   *slog.Logger
}

// Option configures optional Transform collaborators.
type Option func(*Transform)

// WithIVSource replaces the default crypto/rand IV source.
//
// This is a security-critical extension point meant for deterministic tests:
// IV reuse under CBC breaks the confidentiality guarantees of the transform.
func WithIVSource(source IVSource) Option {
	return func(t *Transform) {
		t.ivSource = source
	}
}

// WithLogger injects a diagnostic sink. The transform logs at debug level
// that a decode failed, never which step failed, and never key material or
// plaintext. The default sink discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Transform) {
		t.logger = logger
	}
}

// NewTransform creates a session token transform from validated key material.
//
// Construction performs one full round of encrypt-then-decrypt on an empty
// payload and one MAC computation on an empty payload through the real
// cryptographic paths. Any failure propagates as a configuration error
// (tokenDomain.ErrKeyValidationFailed chain, rooted in ErrInvalidConfig),
// distinct from and never confusable with a runtime decode failure. This
// makes bad key sizing an operator-visible startup fault.
func NewTransform(km tokenDomain.KeyMaterial, opts ...Option) (*Transform, error) {
	if err := km.Validate(); err != nil {
		return nil, err
	}

	blockCipher, err := NewBlockCipher(km.EncryptionKey, km.CipherAlgorithm)
	if err != nil {
		return nil, err
	}

	signer, err := NewSigner(km.SigningKey, km.MACAlgorithm)
	if err != nil {
		return nil, err
	}

	t := &Transform{
		cipher:   blockCipher,
		signer:   signer,
		ivSource: NewCryptoRandIVSource(),
		logger:   slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(t)
	}

	if err := t.selfTest(); err != nil {
		return nil, fmt.Errorf("%w: %v", tokenDomain.ErrKeyValidationFailed, err)
	}

	return t, nil
}

// selfTest exercises the real encode and decode paths on an empty payload.
func (t *Transform) selfTest() error {
	iv, err := t.ivSource.IV(t.cipher.BlockSize())
	if err != nil {
		return err
	}

	ciphertext, err := t.cipher.Encrypt(nil, iv)
	if err != nil {
		return err
	}

	plaintext, err := t.cipher.Decrypt(ciphertext, iv)
	if err != nil {
		return err
	}
	if len(plaintext) != 0 {
		return fmt.Errorf("round trip of empty payload produced %d bytes", len(plaintext))
	}

	if tag := t.signer.Sum(nil); len(tag) != t.signer.Size() {
		return fmt.Errorf("mac produced %d bytes, want %d", len(tag), t.signer.Size())
	}

	return nil
}

// Encode converts a plaintext payload into a transport token.
//
// A fresh IV is drawn for every call, so encoding the same payload twice
// produces different tokens that both decode back to the same payload. Given
// already-validated key material the only failure condition is entropy
// exhaustion from the IV source.
func (t *Transform) Encode(plaintext string) (string, error) {
	payload := []byte(plaintext)

	iv, err := t.ivSource.IV(t.cipher.BlockSize())
	if err != nil {
		return "", err
	}

	ciphertext, err := t.cipher.Encrypt(payload, iv)
	if err != nil {
		return "", err
	}

	token := tokenDomain.Token{
		IV:         iv,
		Ciphertext: ciphertext,
		MACHex:     hex.EncodeToString(t.signer.Sum(payload)),
	}

	return token.String(), nil
}

// Decode converts a transport token back into its plaintext payload.
//
// Any failure at any step (malformed hex, IV or block size mismatch, padding
// validation failure, tag mismatch) collapses into the single
// tokenDomain.ErrInvalidToken. The caller must not be able to distinguish
// failure causes: doing so would hand an attacker an oracle for iteratively
// forging tokens. The surrounding session layer should treat the invalid
// result as "no session present".
func (t *Transform) Decode(token string) (string, error) {
	plaintext, err := t.decode(token)
	if err != nil {
		t.logger.Debug("session token rejected")
		return "", tokenDomain.ErrInvalidToken
	}
	return plaintext, nil
}

// decode performs the actual parsing and cryptographic verification. Its
// error details stay internal; Decode collapses them into ErrInvalidToken.
func (t *Transform) decode(token string) (string, error) {
	parsed, err := tokenDomain.ParseToken(token)
	if err != nil {
		return "", err
	}

	plaintext, err := t.cipher.Decrypt(parsed.Ciphertext, parsed.IV)
	if err != nil {
		return "", err
	}

	// The tag is verified as a wire string: the lowercase hex of the
	// recomputed tag must equal the token's tag field byte for byte. A tag
	// that decodes to the right value in a different spelling (uppercase hex)
	// is rejected, keeping the accept-set identical across implementations
	// sharing these keys.
	tagHex := hex.EncodeToString(t.signer.Sum(plaintext))
	if subtle.ConstantTimeCompare([]byte(tagHex), []byte(parsed.MACHex)) != 1 {
		return "", tokenDomain.ErrInvalidToken
	}

	return string(plaintext), nil
}
