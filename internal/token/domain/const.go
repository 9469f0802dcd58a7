package domain

// CipherAlgorithm represents the block cipher used for session token confidentiality.
//
// All supported algorithms are AES variants operating in CBC mode with PKCS#7
// padding. CBC requires a fresh, unpredictable IV for every encryption; the
// service layer draws one per Encode call.
type CipherAlgorithm string

const (
	// AES128CBC represents AES-128 in CBC mode (16-byte key).
	AES128CBC CipherAlgorithm = "aes-128-cbc"

	// AES192CBC represents AES-192 in CBC mode (24-byte key).
	AES192CBC CipherAlgorithm = "aes-192-cbc"

	// AES256CBC represents AES-256 in CBC mode (32-byte key).
	AES256CBC CipherAlgorithm = "aes-256-cbc"
)

// MACAlgorithm represents the keyed hash used for session token authentication.
type MACAlgorithm string

const (
	// HMACSHA256 represents HMAC with SHA-256 (32-byte tag).
	HMACSHA256 MACAlgorithm = "hmac-sha256"

	// HMACSHA512 represents HMAC with SHA-512 (64-byte tag).
	HMACSHA512 MACAlgorithm = "hmac-sha512"
)

// BlockSize is the AES block size in bytes. IVs are always this long.
const BlockSize = 16

// MinSigningKeySize is the minimum signing key length accepted when loading
// key material from the environment. HMAC itself accepts any key length, but
// shorter keys do not provide a practical security margin.
const MinSigningKeySize = 32

// cipherKeySizes maps each cipher algorithm to its required key length in bytes.
var cipherKeySizes = map[CipherAlgorithm]int{
	AES128CBC: 16,
	AES192CBC: 24,
	AES256CBC: 32,
}

// CipherKeySize returns the required key length in bytes for alg.
// It returns -1 for unsupported algorithms.
func CipherKeySize(alg CipherAlgorithm) int {
	if size, ok := cipherKeySizes[alg]; ok {
		return size
	}
	return -1
}

// SupportedCipherAlgorithm reports whether alg is a recognized cipher algorithm.
func SupportedCipherAlgorithm(alg CipherAlgorithm) bool {
	_, ok := cipherKeySizes[alg]
	return ok
}

// SupportedMACAlgorithm reports whether alg is a recognized MAC algorithm.
func SupportedMACAlgorithm(alg MACAlgorithm) bool {
	switch alg {
	case HMACSHA256, HMACSHA512:
		return true
	default:
		return false
	}
}
