package auth

import (
	"crypto/rand"
	"encoding/base64"
)

// RememberTokenBytes is the byte size of a remember token before encoding.
const RememberTokenBytes = 32

// MakeRememberToken generates a new remember token of a predetermined
// byte size.
func MakeRememberToken() (string, error) {
	return randString(RememberTokenBytes)
}

// NBytes returns the decoded byte count of a base64 token string.
// It is used to validate that incoming tokens are of the expected size.
func NBytes(base64String string) (int, error) {
	b, err := base64.URLEncoding.DecodeString(base64String)
	if err != nil {
		return -1, err
	}
	return len(b), nil
}

// randString generates a random string encoding nBytes of entropy.
func randString(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
