package commands

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	tokenDomain "github.com/allisson/sessiontoken/internal/token/domain"
	tokenService "github.com/allisson/sessiontoken/internal/token/service"
)

// RunKeygen generates encryption and signing keys for the session token transform.
//
// With no master secret, both keys are drawn fresh from crypto/rand. With
// --master-secret (base64, at least 32 bytes decoded) the keys are derived
// deterministically with HKDF-SHA256, so the same secret always yields the
// same key pair. Key material is zeroed from memory after encoding.
//
// Output format:
//   - ENCRYPTION_KEY="<base64>"
//   - SIGNING_KEY="<base64>"
//   - CIPHER_ALGORITHM="<cipher>"
//   - MAC_ALGORITHM="<mac>"
func RunKeygen(w io.Writer, cipherAlgorithm, macAlgorithm, masterSecret string) error {
	cipherAlg := tokenDomain.CipherAlgorithm(cipherAlgorithm)
	macAlg := tokenDomain.MACAlgorithm(macAlgorithm)

	if !tokenDomain.SupportedCipherAlgorithm(cipherAlg) {
		return fmt.Errorf("unsupported cipher algorithm: %s", cipherAlgorithm)
	}
	if !tokenDomain.SupportedMACAlgorithm(macAlg) {
		return fmt.Errorf("unsupported mac algorithm: %s", macAlgorithm)
	}

	var km tokenDomain.KeyMaterial

	if masterSecret != "" {
		secret, err := base64.StdEncoding.DecodeString(masterSecret)
		if err != nil {
			return fmt.Errorf("master secret is not valid base64: %w", err)
		}
		defer tokenDomain.Zero(secret)

		if len(secret) < tokenDomain.MinSigningKeySize {
			return fmt.Errorf(
				"master secret must be at least %d bytes, got %d",
				tokenDomain.MinSigningKeySize,
				len(secret),
			)
		}

		km, err = tokenService.DeriveKeyMaterial(secret, cipherAlg, macAlg)
		if err != nil {
			return fmt.Errorf("failed to derive key material: %w", err)
		}
	} else {
		encryptionKey := make([]byte, tokenDomain.CipherKeySize(cipherAlg))
		if _, err := rand.Read(encryptionKey); err != nil {
			return fmt.Errorf("failed to generate encryption key: %w", err)
		}

		signingKeySize := tokenDomain.MinSigningKeySize
		if macAlg == tokenDomain.HMACSHA512 {
			signingKeySize = 64
		}
		signingKey := make([]byte, signingKeySize)
		if _, err := rand.Read(signingKey); err != nil {
			tokenDomain.Zero(encryptionKey)
			return fmt.Errorf("failed to generate signing key: %w", err)
		}

		km = tokenDomain.KeyMaterial{
			EncryptionKey:   encryptionKey,
			CipherAlgorithm: cipherAlg,
			SigningKey:      signingKey,
			MACAlgorithm:    macAlg,
		}
	}
	defer km.Close()

	fmt.Fprintln(w, "# Session token key configuration")
	fmt.Fprintln(w, "# Copy these environment variables to your .env file or secrets manager")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "ENCRYPTION_KEY=\"%s\"\n", base64.StdEncoding.EncodeToString(km.EncryptionKey))
	fmt.Fprintf(w, "SIGNING_KEY=\"%s\"\n", base64.StdEncoding.EncodeToString(km.SigningKey))
	fmt.Fprintf(w, "CIPHER_ALGORITHM=\"%s\"\n", km.CipherAlgorithm)
	fmt.Fprintf(w, "MAC_ALGORITHM=\"%s\"\n", km.MACAlgorithm)

	return nil
}
