package password

import "golang.org/x/crypto/bcrypt"

// MaxLength is the longest password accepted at the boundary. bcrypt
// silently truncates input beyond 72 bytes, so longer values are rejected
// during validation instead of being hashed.
const MaxLength = 72

// Hash derives a salted bcrypt digest. Two calls with the same password
// produce different digests.
func Hash(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// Verify reports whether password matches the stored digest. Malformed
// digests verify as false rather than erroring.
func Verify(password string, hash []byte) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}
