package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// HashPassword bcrypt-hashes a plaintext secret at the default cost.
// Besides login passwords this also covers reset token secrets, which are
// stored the same way.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// CheckPasswordHash reports whether the plaintext matches the stored
// bcrypt hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
