package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a dashboard password with bcrypt.  The cost
// comes from configuration; values outside bcrypt's valid range fall
// back to the library default so a typo in BCRYPT_COST cannot produce
// weak hashes.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword compares a stored bcrypt hash against a login
// attempt in constant time.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
