package configstore

import (
	"context"

	"github.com/Laisky/errors/v2"
	"golang.org/x/crypto/bcrypt"
)

// HashAdminPassword bcrypt-hashes a plaintext admin password for
// SetAdminHash, grounded on the teacher's common.Password2Hash.
func HashAdminPassword(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hash admin password")
	}
	return string(hashed), nil
}

// VerifyAdminPassword checks plaintext against the stored hash fetched
// via Store.GetAdminHash.
func VerifyAdminPassword(ctx context.Context, store Store, plaintext string) (bool, error) {
	hash, err := store.GetAdminHash(ctx)
	if err != nil {
		return false, err
	}
	if hash == "" {
		return false, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)); err != nil {
		return false, nil
	}
	return true, nil
}
