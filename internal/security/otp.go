package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateOTP returns a uniformly random numeric code of the given
// number of digits.
func GenerateOTP(digits int) (string, error) {
	if digits <= 0 {
		return "", fmt.Errorf("otp digits must be > 0, got %d", digits)
	}
	max := big.NewInt(1)
	for i := 0; i < digits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}
