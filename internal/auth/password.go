package auth

import "golang.org/x/crypto/bcrypt"

const MinPasswordLength = 8

func HashSecret(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(b), err
}

// CheckSecret compares a bcrypt hash with a candidate password or OTP.
func CheckSecret(hash, plain string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
