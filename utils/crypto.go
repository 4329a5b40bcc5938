package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Hash a byte slice using SHA-256 and return the lowercase hex checksum.
func Hash(b []byte) string {
	hash := sha256.Sum256(b)
	return hex.EncodeToString(hash[:])
}

// Returns a HMAC-SHA256 digest of data under key.
func HmacSHA256(key []byte, data string) ([]byte, error) {
	mac := hmac.New(sha256.New, key)
	_, err := mac.Write([]byte(data))
	return mac.Sum(nil), err
}

// HmacChain threads data through successive HMAC-SHA256 operations, each step
// keyed by the digest of the previous one. The whole chain fails if any step fails.
func HmacChain(seed []byte, data ...string) ([]byte, error) {
	key := seed
	for _, d := range data {
		var err error
		key, err = HmacSHA256(key, d)
		if err != nil {
			return nil, err
		}
	}
	return key, nil
}
