package helpers

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// One-time code helpers. Codes are 7 ASCII digits (leading zeros allowed)
// and only their SHA-256 hash is ever stored or compared.

const otpDigits = 10000000 // 10^7

// GenerateOTP returns a fresh 7-digit code together with its storage hash.
// A failing random source is the only error and callers treat it as fatal.
func GenerateOTP() (code string, hash string, err error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", "", err
	}
	n := binary.BigEndian.Uint64(b[:]) % otpDigits
	code = fmt.Sprintf("%07d", n)
	return code, HashOTP(code), nil
}

// HashOTP returns the hex-encoded SHA-256 of a submitted code so it can be
// compared against a stored hash without retaining the plaintext.
func HashOTP(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// GenerateResetToken returns a 32-byte random token (hex for transport)
// and its SHA-256 hash (hex for storage).
func GenerateResetToken() (token string, hash string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(b)
	sum := sha256.Sum256([]byte(token))
	return token, hex.EncodeToString(sum[:]), nil
}

// HashResetToken hashes a transport-form reset token for lookup.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
