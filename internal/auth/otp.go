package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const OTPDigits = 6

// GenerateOTP returns a uniformly random numeric code of n digits.
func GenerateOTP(n int) (string, error) {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
	v, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", n, v), nil
}
