package auth

import "golang.org/x/crypto/bcrypt"

// DefaultCost is the bcrypt work factor used for stored passwords.
const DefaultCost = 12

func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

// CheckPassword reports whether password matches hash. Any failure,
// including a malformed hash, counts as a mismatch.
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
