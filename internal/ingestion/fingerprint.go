package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint derives the deduplication key for a feed entry from its URL
// and title. The function is pure: identical inputs always yield the same
// fingerprint across runs and processes, which is what makes repeated
// scrapes of an unchanged feed idempotent.
func Fingerprint(url, title string) string {
	hash := sha256.Sum256([]byte(url + "\n" + title))
	return hex.EncodeToString(hash[:])
}
