package utils

import (
	"crypto/rand"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

const (
	keyPrefix    = "ltzf_"
	keyTagLength = 16
	keyRandChars = 59
	keyAlphabet  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// KeytagOf returns the lookup prefix of a full API key. The tag is stored in
// clear so a key can be found without hashing every candidate row.
func KeytagOf(key string) string {
	if len(key) <= keyTagLength {
		return key
	}
	return key[:keyTagLength]
}

// WellFormedKey reports whether a string has the shape of a full key.
// It says nothing about whether the key is known or active.
func WellFormedKey(key string) bool {
	if len(key) != len(keyPrefix)+keyRandChars {
		return false
	}
	return key[:len(keyPrefix)] == keyPrefix
}

// GenerateAPIKey returns a fresh full key: "ltzf_" plus 59 random
// alphanumerics. The first 16 characters double as the keytag.
func GenerateAPIKey() (string, error) {
	buf := make([]byte, 0, len(keyPrefix)+keyRandChars)
	buf = append(buf, keyPrefix...)
	max := big.NewInt(int64(len(keyAlphabet)))
	for i := 0; i < keyRandChars; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf = append(buf, keyAlphabet[n.Int64()])
	}
	return string(buf), nil
}

// HashAPIKey hashes everything past the keytag. bcrypt salts internally.
func HashAPIKey(key string) (string, error) {
	secret := key
	if len(secret) > keyTagLength {
		secret = secret[keyTagLength:]
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CompareAPIKey reports whether the supplied full key matches the stored hash.
func CompareAPIKey(storedHash, key string) bool {
	secret := key
	if len(secret) > keyTagLength {
		secret = secret[keyTagLength:]
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(secret)) == nil
}
