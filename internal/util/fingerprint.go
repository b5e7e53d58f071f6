package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns a SHA-256 hex digest of arbitrary bytes.
func Fingerprint(data []byte) string {
	s := sha256.Sum256(data)
	return hex.EncodeToString(s[:])
}

// ShortFingerprint returns the first 8 hex chars of Fingerprint, enough to
// keep rendered artifact names distinct without unwieldy filenames.
func ShortFingerprint(data []byte) string {
	return Fingerprint(data)[:8]
}
