package accounts

import (
	"crypto/rand"
	"math/big"
)

// KeyLength is the length of generated activation and reset keys.
const KeyLength = 20

const keyAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateKey returns an unpredictable alphanumeric key of KeyLength
// characters. Keys gate account activation and password resets, so they are
// drawn from crypto/rand; the directory additionally enforces uniqueness at
// the storage layer.
func GenerateKey() string {
	max := big.NewInt(int64(len(keyAlphabet)))
	buf := make([]byte, KeyLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failing means the platform entropy source is
			// broken; there is no safe fallback for key material.
			panic("accounts: crypto/rand unavailable: " + err.Error())
		}
		buf[i] = keyAlphabet[n.Int64()]
	}
	return string(buf)
}

// GenerateActivationKey returns a key for account activation
func GenerateActivationKey() string {
	return GenerateKey()
}

// GenerateResetKey returns a key for password resets
func GenerateResetKey() string {
	return GenerateKey()
}
