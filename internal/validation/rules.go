// Package validation provides custom validation rules for the application.
package validation

import (
	"encoding/base64"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/sessiontoken/internal/errors"
	tokenDomain "github.com/allisson/sessiontoken/internal/token/domain"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// Base64 validates that a string is valid base64-encoded data.
var Base64 = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_base64_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	_, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return validation.NewError("validation_base64", "must be valid base64-encoded data")
	}
	return nil
})

// CipherAlgorithm validates that a string names a supported cipher algorithm.
var CipherAlgorithm = validation.NewStringRuleWithError(
	func(s string) bool {
		return tokenDomain.SupportedCipherAlgorithm(tokenDomain.CipherAlgorithm(s))
	},
	validation.NewError(
		"validation_cipher_algorithm",
		"must be one of: aes-128-cbc, aes-192-cbc, aes-256-cbc",
	),
)

// MACAlgorithm validates that a string names a supported MAC algorithm.
var MACAlgorithm = validation.NewStringRuleWithError(
	func(s string) bool {
		return tokenDomain.SupportedMACAlgorithm(tokenDomain.MACAlgorithm(s))
	},
	validation.NewError(
		"validation_mac_algorithm",
		"must be one of: hmac-sha256, hmac-sha512",
	),
)

// LogLevel validates that a string names a supported log level.
var LogLevel = validation.NewStringRuleWithError(
	func(s string) bool {
		switch s {
		case "debug", "info", "warn", "error":
			return true
		default:
			return false
		}
	},
	validation.NewError("validation_log_level", "must be one of: debug, info, warn, error"),
)
