package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores simplified clause text keyed by a digest of the original
// clause, so repeated uploads of the same document skip remote calls.
type Cache interface {
	Get(key string) (string, bool)
	Set(key string, value string, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives the cache key for a clause text.
func Key(clause string) string {
	hash := sha256.Sum256([]byte(clause))
	return "lexiclarus:v1:" + hex.EncodeToString(hash[:])
}
