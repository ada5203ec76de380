package security

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a salted bcrypt digest from a plaintext password.
// A hashing failure means misconfiguration (oversized input), not bad
// credentials.
func HashPassword(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// VerifyPassword reports whether plain matches the stored digest. Any
// failure, including a corrupt digest, reads as "did not match" so callers
// never distinguish it from wrong credentials.
func VerifyPassword(digest, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
