package hash

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrEmptyHash = errors.New("stored password hash is empty")

func HashPassword(password string) (string, error) {
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashBytes), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash. A
// mismatch is a false return, never an error; an error means the stored hash
// itself is unusable.
func CheckPassword(storedHash, password string) (bool, error) {
	if storedHash == "" {
		return false, ErrEmptyHash
	}
	err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}
