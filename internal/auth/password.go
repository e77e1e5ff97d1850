package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt ignores everything past 72 bytes, so longer passwords are refused instead of truncated.
const maxPasswordBytes = 72

var ErrPasswordTooLong = errors.New("password must be at most 72 bytes")

func HashPassword(plain string) (string, error) {
	if len(plain) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(b), err
}

// VerifyPassword returns nil only when plain matches hash.
func VerifyPassword(plain, hash string) error {
	if hash == "" {
		return bcrypt.ErrMismatchedHashAndPassword
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
