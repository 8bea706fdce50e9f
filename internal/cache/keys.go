package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Key prefixes for the record types stored in the registry
const (
	PrefixOrigin = "origin"
)

// GenerateKey returns the SHA256 hex digest of an identity string.
// Identities are hashed verbatim: two urls differing in any byte are
// distinct origins.
func GenerateKey(identity string) string {
	hash := sha256.Sum256([]byte(identity))
	return hex.EncodeToString(hash[:])
}

// GenerateKeyWithPrefix generates a key with a prefix
func GenerateKeyWithPrefix(prefix, identity string) string {
	return prefix + ":" + GenerateKey(identity)
}

// OriginKey generates the key of an origin record
func OriginKey(provider, url string) string {
	return GenerateKeyWithPrefix(PrefixOrigin, provider+"|"+url)
}
