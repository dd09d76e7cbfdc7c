package library

import (
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost trades hashing latency for brute-force resistance. 12 keeps
// login under ~250ms on commodity hardware.
const bcryptCost = 12

// HashPassword generates a salted bcrypt hash for the given password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrInvalidCredentials
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(h), err
}

// ComparePasswordAndHash validates the cleartext password against the
// stored hash. Any failure, including a malformed stored hash, is
// reported as invalid credentials: verification fails closed.
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		// malformed stored hashes land here too; fail closed
		return ErrInvalidCredentials
	}
	return nil
}
