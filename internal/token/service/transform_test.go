package service

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/allisson/sessiontoken/internal/errors"
	tokenDomain "github.com/allisson/sessiontoken/internal/token/domain"
)

// fixedIVSource returns the same IV on every call. Only usable in tests: IV
// reuse under CBC breaks confidentiality.
type fixedIVSource struct {
	value byte
}

func (f *fixedIVSource) IV(size int) ([]byte, error) {
	iv := make([]byte, size)
	for i := range iv {
		iv[i] = f.value
	}
	return iv, nil
}

// failingIVSource simulates entropy exhaustion.
type failingIVSource struct{}

func (f *failingIVSource) IV(size int) ([]byte, error) {
	return nil, apperrors.New("entropy source unavailable")
}

func testKeyMaterial() tokenDomain.KeyMaterial {
	return tokenDomain.KeyMaterial{
		EncryptionKey:   make([]byte, 32),
		CipherAlgorithm: tokenDomain.AES256CBC,
		SigningKey:      make([]byte, 32),
		MACAlgorithm:    tokenDomain.HMACSHA256,
	}
}

func newTestTransform(t *testing.T, opts ...Option) *Transform {
	t.Helper()
	transform, err := NewTransform(testKeyMaterial(), opts...)
	require.NoError(t, err)
	return transform
}

func TestNewTransform(t *testing.T) {
	t.Run("valid key material", func(t *testing.T) {
		transform, err := NewTransform(testKeyMaterial())
		require.NoError(t, err)
		assert.NotNil(t, transform)
	})

	t.Run("fail fast on unsupported encryption key length", func(t *testing.T) {
		km := testKeyMaterial()
		km.EncryptionKey = make([]byte, 20)

		_, err := NewTransform(km)
		require.Error(t, err)
		assert.ErrorIs(t, err, tokenDomain.ErrInvalidKeySize)
		assert.ErrorIs(t, err, apperrors.ErrInvalidConfig)
	})

	t.Run("fail fast on unsupported algorithms", func(t *testing.T) {
		km := testKeyMaterial()
		km.CipherAlgorithm = tokenDomain.CipherAlgorithm("des-cbc")
		_, err := NewTransform(km)
		assert.ErrorIs(t, err, tokenDomain.ErrUnsupportedCipherAlgorithm)

		km = testKeyMaterial()
		km.MACAlgorithm = tokenDomain.MACAlgorithm("md5")
		_, err = NewTransform(km)
		assert.ErrorIs(t, err, tokenDomain.ErrUnsupportedMACAlgorithm)
	})

	t.Run("self-test failure is a configuration error", func(t *testing.T) {
		_, err := NewTransform(testKeyMaterial(), WithIVSource(&failingIVSource{}))
		require.Error(t, err)
		assert.ErrorIs(t, err, tokenDomain.ErrKeyValidationFailed)
		assert.ErrorIs(t, err, apperrors.ErrInvalidConfig)
		assert.NotErrorIs(t, err, tokenDomain.ErrInvalidToken)
	})

	t.Run("construction errors never look like decode failures", func(t *testing.T) {
		km := testKeyMaterial()
		km.EncryptionKey = nil
		_, err := NewTransform(km)
		require.Error(t, err)
		assert.NotErrorIs(t, err, tokenDomain.ErrInvalidToken)
	})
}

func TestTransformRoundTrip(t *testing.T) {
	transform := newTestTransform(t)

	payloads := []string{
		"",
		"hello",
		"a",
		strings.Repeat("x", 1000),
		"multi-byte: héllo wörld — ಠ_ಠ — 日本語",
		"reserved delimiters inside payload: a/b:c",
	}

	for _, payload := range payloads {
		t.Run(fmt.Sprintf("payload %q", payload), func(t *testing.T) {
			token, err := transform.Encode(payload)
			require.NoError(t, err)

			decoded, err := transform.Decode(token)
			require.NoError(t, err)
			assert.Equal(t, payload, decoded)
		})
	}
}

func TestTransformWireFormat(t *testing.T) {
	t.Run("concrete scenario with zero keys", func(t *testing.T) {
		km := tokenDomain.KeyMaterial{
			EncryptionKey:   make([]byte, 16),
			CipherAlgorithm: tokenDomain.AES128CBC,
			SigningKey:      make([]byte, 32),
			MACAlgorithm:    tokenDomain.HMACSHA256,
		}
		transform, err := NewTransform(km)
		require.NoError(t, err)

		token, err := transform.Encode("hello")
		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]+/[0-9a-f]+:[0-9a-f]+$`), token)

		decoded, err := transform.Decode(token)
		require.NoError(t, err)
		assert.Equal(t, "hello", decoded)
	})

	t.Run("iv appears hex-encoded before the slash", func(t *testing.T) {
		transform := newTestTransform(t, WithIVSource(&fixedIVSource{value: 0xab}))

		token, err := transform.Encode("payload")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(token, strings.Repeat("ab", 16)+"/"))
	})

	t.Run("field lengths follow the algorithms", func(t *testing.T) {
		transform := newTestTransform(t)

		token, err := transform.Encode("hello")
		require.NoError(t, err)

		parsed, err := tokenDomain.ParseToken(token)
		require.NoError(t, err)
		assert.Len(t, parsed.IV, 16)
		assert.Len(t, parsed.Ciphertext, 16) // "hello" pads to one block
		assert.Len(t, parsed.MACHex, 64)
	})

	t.Run("tag is compared as a wire string, so its casing matters", func(t *testing.T) {
		transform := newTestTransform(t)

		token, err := transform.Encode("hello")
		require.NoError(t, err)

		colon := strings.LastIndex(token, ":")
		upperTag := token[:colon+1] + strings.ToUpper(token[colon+1:])
		require.NotEqual(t, token, upperTag)

		// Uppercase hex decodes to the same tag bytes, but the spelling
		// differs from the recomputed lowercase tag and must be rejected.
		_, err = transform.Decode(upperTag)
		assert.ErrorIs(t, err, tokenDomain.ErrInvalidToken)

		// The iv and ciphertext fields only pass through hex decoding, so
		// their casing does not affect acceptance.
		upperBody := strings.ToUpper(token[:colon]) + token[colon:]
		plaintext, err := transform.Decode(upperBody)
		require.NoError(t, err)
		assert.Equal(t, "hello", plaintext)
	})
}

func TestTransformNonDeterminism(t *testing.T) {
	transform := newTestTransform(t)

	first, err := transform.Encode("same payload")
	require.NoError(t, err)
	second, err := transform.Encode("same payload")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "fresh IV per call must produce different tokens")

	decodedFirst, err := transform.Decode(first)
	require.NoError(t, err)
	decodedSecond, err := transform.Decode(second)
	require.NoError(t, err)
	assert.Equal(t, decodedFirst, decodedSecond)
}

func TestTransformTamperSensitivity(t *testing.T) {
	transform := newTestTransform(t)

	token, err := transform.Encode("sensitive session payload")
	require.NoError(t, err)

	slash := strings.Index(token, "/")
	colon := strings.LastIndex(token, ":")
	require.Greater(t, slash, 0)
	require.Greater(t, colon, slash)

	flip := func(s string, i int) string {
		replacement := byte('0')
		if s[i] == '0' {
			replacement = '1'
		}
		return s[:i] + string(replacement) + s[i+1:]
	}

	t.Run("flipped iv character", func(t *testing.T) {
		_, err := transform.Decode(flip(token, 0))
		assert.ErrorIs(t, err, tokenDomain.ErrInvalidToken)
	})

	t.Run("flipped ciphertext character", func(t *testing.T) {
		_, err := transform.Decode(flip(token, slash+1))
		assert.ErrorIs(t, err, tokenDomain.ErrInvalidToken)
	})

	t.Run("flipped tag character", func(t *testing.T) {
		_, err := transform.Decode(flip(token, colon+1))
		assert.ErrorIs(t, err, tokenDomain.ErrInvalidToken)
	})

	t.Run("every ciphertext position is covered", func(t *testing.T) {
		for i := slash + 1; i < colon; i++ {
			_, err := transform.Decode(flip(token, i))
			assert.ErrorIs(t, err, tokenDomain.ErrInvalidToken, "position %d", i)
		}
	})
}

func TestTransformCrossKeyRejection(t *testing.T) {
	transform := newTestTransform(t)

	otherKM := testKeyMaterial()
	otherKM.EncryptionKey[0] = 0xff
	otherKM.SigningKey[0] = 0xff
	other, err := NewTransform(otherKM)
	require.NoError(t, err)

	token, err := transform.Encode("session payload")
	require.NoError(t, err)

	_, err = other.Decode(token)
	assert.ErrorIs(t, err, tokenDomain.ErrInvalidToken)

	t.Run("different signing key only", func(t *testing.T) {
		km := testKeyMaterial()
		km.SigningKey[0] = 0x01
		signOnly, err := NewTransform(km)
		require.NoError(t, err)

		_, err = signOnly.Decode(token)
		assert.ErrorIs(t, err, tokenDomain.ErrInvalidToken)
	})

	t.Run("different encryption key only", func(t *testing.T) {
		km := testKeyMaterial()
		km.EncryptionKey[0] = 0x01
		encOnly, err := NewTransform(km)
		require.NoError(t, err)

		_, err = encOnly.Decode(token)
		assert.ErrorIs(t, err, tokenDomain.ErrInvalidToken)
	})
}

func TestTransformMalformedInput(t *testing.T) {
	transform := newTestTransform(t)

	for _, token := range []string{
		"",
		"not-a-token",
		"ab/cd",
		"zz/zz:zz",
		"/:",
		"abc/def:012",            // odd-length hex fields
		"00000000/00000000:0000", // wrong iv and block lengths
		strings.Repeat("/", 100) + strings.Repeat(":", 100),
	} {
		t.Run(fmt.Sprintf("token %q", token), func(t *testing.T) {
			plaintext, err := transform.Decode(token)
			assert.ErrorIs(t, err, tokenDomain.ErrInvalidToken)
			assert.Empty(t, plaintext)
		})
	}
}

func TestTransformEncodeEntropyFailure(t *testing.T) {
	transform := newTestTransform(t)
	// Swap the IV source after the construction-time self-test has passed.
	transform.ivSource = &failingIVSource{}

	_, err := transform.Encode("payload")
	require.Error(t, err)
	assert.NotErrorIs(t, err, tokenDomain.ErrInvalidToken)
}

func TestTransformLoggerNeverLeaksSecrets(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	transform := newTestTransform(t, WithLogger(logger))

	token, err := transform.Encode("super secret payload")
	require.NoError(t, err)

	_, err = transform.Decode("tampered" + token)
	require.ErrorIs(t, err, tokenDomain.ErrInvalidToken)

	logged := buf.String()
	assert.Contains(t, logged, "session token rejected")
	assert.NotContains(t, logged, "super secret payload")
	assert.NotContains(t, logged, token)
}

func TestTransformConcurrency(t *testing.T) {
	transform := newTestTransform(t)

	var g errgroup.Group
	for w := 0; w < 8; w++ {
		worker := w
		g.Go(func() error {
			for i := 0; i < 200; i++ {
				payload := fmt.Sprintf("worker-%d-message-%d", worker, i)
				token, err := transform.Encode(payload)
				if err != nil {
					return err
				}
				decoded, err := transform.Decode(token)
				if err != nil {
					return err
				}
				if decoded != payload {
					return fmt.Errorf("round trip mismatch: got %q, want %q", decoded, payload)
				}
			}
			return nil
		})
	}

	require.NoError(t, g.Wait())
}
