package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashKey returns the hex SHA-256 of s.
func HashKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
