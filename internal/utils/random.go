package utils

import (
	"crypto/rand"
	"encoding/base64"
	"math/big"
)

// RandomURLSafeString returns numBytes of CSPRNG entropy encoded as
// unpadded URL-safe base64, suitable for opaque identifiers that travel
// in JSON bodies and query strings.
func RandomURLSafeString(numBytes int) string {
	bytes := make([]byte, numBytes)
	if _, err := rand.Read(bytes); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes)
}

// RandomNumericString generates a random string containing only digits.
func RandomNumericString(length int) string {
	const digits = "0123456789"
	b := make([]byte, length)
	for i := range b {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			panic(err)
		}
		b[i] = digits[num.Int64()]
	}
	return string(b)
}
