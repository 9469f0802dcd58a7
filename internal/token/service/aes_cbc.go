package service

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	apperrors "github.com/allisson/sessiontoken/internal/errors"
	tokenDomain "github.com/allisson/sessiontoken/internal/token/domain"
)

// AESCBCCipher implements the BlockCipher interface using AES in CBC mode
// with PKCS#7 padding.
//
// CBC chains ciphertext blocks, so identical plaintexts encrypt differently
// as long as every message uses a fresh, unpredictable IV. The caller owns
// IV generation; this engine only enforces the IV length.
//
// Thread safety:
//
//	The cipher instance holds only the immutable AES key schedule and is safe
//	for concurrent use from multiple goroutines. Each Encrypt/Decrypt call
//	allocates its own cipher.BlockMode.
type AESCBCCipher struct {
	block cipher.Block
}

// NewAESCBC creates a new AES-CBC cipher instance.
//
// The key length must match the algorithm: 16 bytes for aes-128-cbc, 24 for
// aes-192-cbc, 32 for aes-256-cbc. Keys should be generated using crypto/rand.
func NewAESCBC(key []byte, alg tokenDomain.CipherAlgorithm) (*AESCBCCipher, error) {
	size := tokenDomain.CipherKeySize(alg)
	if size < 0 {
		return nil, tokenDomain.ErrUnsupportedCipherAlgorithm
	}
	if len(key) != size {
		return nil, fmt.Errorf(
			"%w: %s requires %d bytes, got %d",
			tokenDomain.ErrInvalidKeySize,
			alg,
			size,
			len(key),
		)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create AES cipher")
	}

	return &AESCBCCipher{block: block}, nil
}

// Encrypt encrypts plaintext under iv using CBC mode with PKCS#7 padding.
//
// The plaintext may be empty; padding guarantees the ciphertext is always at
// least one block long. The iv must be exactly BlockSize bytes and must never
// be reused under the same key.
func (a *AESCBCCipher) Encrypt(plaintext, iv []byte) ([]byte, error) {
	if len(iv) != a.block.BlockSize() {
		return nil, fmt.Errorf(
			"%w: iv must be %d bytes, got %d",
			apperrors.ErrInvalidInput,
			a.block.BlockSize(),
			len(iv),
		)
	}

	padded := pkcs7Pad(plaintext, a.block.BlockSize())
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(a.block, iv).CryptBlocks(ciphertext, padded)
	return ciphertext, nil
}

// Decrypt decrypts ciphertext under iv and strips the PKCS#7 padding.
//
// All structural failures (wrong iv length, ciphertext not a positive multiple
// of the block size, invalid padding) are reported as errors rather than
// panics so the transform can collapse them into a uniform invalid result.
func (a *AESCBCCipher) Decrypt(ciphertext, iv []byte) ([]byte, error) {
	blockSize := a.block.BlockSize()
	if len(iv) != blockSize {
		return nil, fmt.Errorf("%w: invalid iv length", apperrors.ErrInvalidInput)
	}
	if len(ciphertext) == 0 || len(ciphertext)%blockSize != 0 {
		return nil, fmt.Errorf("%w: invalid ciphertext length", apperrors.ErrInvalidInput)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(a.block, iv).CryptBlocks(plaintext, ciphertext)
	return pkcs7Unpad(plaintext, blockSize)
}

// BlockSize returns the AES block size in bytes.
func (a *AESCBCCipher) BlockSize() int {
	return a.block.BlockSize()
}

// pkcs7Pad extends data to a multiple of blockSize by appending n bytes of
// value n. The result is always at least one byte longer than the input.
func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

// pkcs7Unpad validates and removes PKCS#7 padding.
func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("%w: invalid padded length", apperrors.ErrInvalidInput)
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize {
		return nil, fmt.Errorf("%w: invalid padding", apperrors.ErrInvalidInput)
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, fmt.Errorf("%w: invalid padding", apperrors.ErrInvalidInput)
		}
	}
	return data[:len(data)-padLen], nil
}
