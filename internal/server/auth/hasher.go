// Package auth implements the password hasher and the signed-token codec.
package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword produces a salted adaptive one-way hash of the plaintext.
// Output length is algorithm-defined.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether the plaintext matches the stored hash.
// The comparison is done by the algorithm's own verify routine; the reason
// for a mismatch is never reported.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
