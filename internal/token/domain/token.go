package domain

import (
	"encoding/hex"
	"strings"
)

// Token represents a decoded session token in the transport wire format.
//
// The wire format is three lowercase hex fields joined by reserved delimiters:
//
//	hex(iv) "/" hex(ciphertext) ":" hex(mac)
//
// Hex never contains '/' or ':', so delimiter collision is structurally
// impossible. The format must match exactly for interoperability across
// implementations sharing the same keys.
//
// Fields:
//   - IV: The per-encryption initialization vector (cipher block size bytes)
//   - Ciphertext: The encrypted payload, padded to the block size
//   - MACHex: The authentication tag exactly as it appears on the wire
//
// The tag field keeps its wire spelling because verification compares the hex
// strings, not the decoded bytes: a tag that hex-decodes to the right value
// but is spelled differently (e.g. uppercase) is not a valid token.
type Token struct {
	IV         []byte
	Ciphertext []byte
	MACHex     string
}

// ParseToken creates a Token from its string representation.
//
// Parsing is intentionally lax about structure: the string is split on the
// last '/' into (iv, rest) and rest on the last ':' into (ciphertext, mac).
// A missing delimiter leaves the corresponding field empty instead of failing
// immediately, deferring the actual rejection to the cryptographic step so
// that structural and cryptographic failures are indistinguishable to callers.
//
// Returns ErrInvalidToken if the iv or ciphertext field is not valid hex. The
// tag field is not decoded: it is kept verbatim so verification can compare
// the wire string itself.
func ParseToken(content string) (Token, error) {
	ivHex := ""
	rest := content
	if i := strings.LastIndex(content, "/"); i >= 0 {
		ivHex = content[:i]
		rest = content[i+1:]
	}

	ciphertextHex := rest
	macHex := ""
	if i := strings.LastIndex(rest, ":"); i >= 0 {
		ciphertextHex = rest[:i]
		macHex = rest[i+1:]
	}

	iv, err := hex.DecodeString(ivHex)
	if err != nil {
		return Token{}, ErrInvalidToken
	}
	ciphertext, err := hex.DecodeString(ciphertextHex)
	if err != nil {
		return Token{}, ErrInvalidToken
	}

	return Token{
		IV:         iv,
		Ciphertext: ciphertext,
		MACHex:     macHex,
	}, nil
}

// String serializes the Token to its wire representation.
//
// This method provides round-trip serialization with ParseToken:
//
//	original := Token{IV: iv, Ciphertext: ct, MACHex: macHex}
//	serialized := original.String()
//	parsed, _ := ParseToken(serialized)
//	// parsed equals original
func (t Token) String() string {
	var b strings.Builder
	b.Grow(2*len(t.IV) + 2*len(t.Ciphertext) + len(t.MACHex) + 2)
	b.WriteString(hex.EncodeToString(t.IV))
	b.WriteByte('/')
	b.WriteString(hex.EncodeToString(t.Ciphertext))
	b.WriteByte(':')
	b.WriteString(t.MACHex)
	return b.String()
}
