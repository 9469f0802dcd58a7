package service

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	jellydator "github.com/jellydator/validation"

	tokenDomain "github.com/allisson/sessiontoken/internal/token/domain"
	appvalidation "github.com/allisson/sessiontoken/internal/validation"
)

// LoadKeyMaterial loads session token keys from the environment.
//
// Explicit ENCRYPTION_KEY / SIGNING_KEY values take precedence. When both are
// absent, a base64 MASTER_SECRET of at least 32 decoded bytes is accepted and
// the key pair is derived from it with HKDF-SHA256, so a single provisioned
// secret can stand in for two managed keys. A partially provisioned pair (one
// key set, the other missing) is an error even when MASTER_SECRET is present.
// The decoded secret is zeroed before returning.
func LoadKeyMaterial() (tokenDomain.KeyMaterial, error) {
	km, err := tokenDomain.LoadKeyMaterialFromEnv()
	if err == nil {
		return km, nil
	}
	if !errors.Is(err, tokenDomain.ErrEncryptionKeyNotSet) || os.Getenv("SIGNING_KEY") != "" {
		return tokenDomain.KeyMaterial{}, err
	}

	secretRaw := os.Getenv("MASTER_SECRET")
	if secretRaw == "" {
		return tokenDomain.KeyMaterial{}, err
	}

	if ruleErr := jellydator.Validate(secretRaw, appvalidation.Base64); ruleErr != nil {
		return tokenDomain.KeyMaterial{}, fmt.Errorf(
			"%w: MASTER_SECRET: %v",
			tokenDomain.ErrInvalidKeyBase64,
			ruleErr,
		)
	}

	secret, decErr := base64.StdEncoding.DecodeString(secretRaw)
	if decErr != nil {
		return tokenDomain.KeyMaterial{}, fmt.Errorf(
			"%w: MASTER_SECRET: %v",
			tokenDomain.ErrInvalidKeyBase64,
			decErr,
		)
	}
	defer tokenDomain.Zero(secret)

	if len(secret) < tokenDomain.MinSigningKeySize {
		return tokenDomain.KeyMaterial{}, fmt.Errorf(
			"%w: master secret must be at least %d bytes, got %d",
			tokenDomain.ErrInvalidKeySize,
			tokenDomain.MinSigningKeySize,
			len(secret),
		)
	}

	cipherAlg := tokenDomain.CipherAlgorithm(os.Getenv("CIPHER_ALGORITHM"))
	if cipherAlg == "" {
		cipherAlg = tokenDomain.AES256CBC
	}
	macAlg := tokenDomain.MACAlgorithm(os.Getenv("MAC_ALGORITHM"))
	if macAlg == "" {
		macAlg = tokenDomain.HMACSHA256
	}

	return DeriveKeyMaterial(secret, cipherAlg, macAlg)
}
