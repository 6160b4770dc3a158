// Package password wraps bcrypt hashing for local-credential accounts.
package password

import "golang.org/x/crypto/bcrypt"

// hashCost matches the 10-round work factor used for all stored hashes.
const hashCost = 10

// Hash derives a salted one-way hash from the plaintext password.
func Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), hashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether the plaintext matches the stored hash. The
// comparison is delegated to bcrypt's own constant-time routine.
func Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
