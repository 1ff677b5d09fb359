package utils

import (
	"crypto/rand"
	"math/big"
)

const numberBytes = "0123456789"

// GenerateActivationCode produces a short-lived numeric token for SMS
// confirmation.
func GenerateActivationCode(length int) string {
	if length <= 0 {
		length = ActivationCodeLength
	}
	return generateRandom(length, numberBytes)
}

func generateRandom(length int, charset string) string {
	result := make([]byte, length)
	charsetLength := big.NewInt(int64(len(charset)))

	for i := range result {
		num, _ := rand.Int(rand.Reader, charsetLength)
		result[i] = charset[num.Int64()]
	}

	return string(result)
}
