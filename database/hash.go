package database

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// hmacHasher hashes remember tokens with HMAC-SHA256 before they
// are stored or looked up.
type hmacHasher struct {
	key []byte
}

// newHMAC returns an hmacHasher using the given secret key.
func newHMAC(key string) hmacHasher {
	return hmacHasher{
		key: []byte(key),
	}
}

// Hash hashes the input string using HMAC with the secret key
// provided when the hmacHasher was created. A fresh MAC is built
// per call so Hash is safe for concurrent use.
func (h hmacHasher) Hash(input string) string {
	mac := hmac.New(sha256.New, h.key)
	mac.Write([]byte(input))
	b := mac.Sum(nil)
	return base64.URLEncoding.EncodeToString(b)
}
