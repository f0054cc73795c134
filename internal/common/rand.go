package common

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateRandByteArray returns n cryptographically secure random bytes.
func GenerateRandByteArray(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// MakeRandHexString returns a hex string built from size random bytes,
// so the result is 2*size characters long.
func MakeRandHexString(size int) (string, error) {
	buf, err := GenerateRandByteArray(size)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
