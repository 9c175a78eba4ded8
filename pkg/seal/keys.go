package seal

import (
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// MinPasswordLength is the minimum accepted password length in bytes.
	MinPasswordLength = 32

	keySize  = 32 // AES-256
	saltSize = 16

	// kdfInfo provides domain separation for derived keys.
	kdfInfo = "sealedsession-token-v1"
)

// deriveKey expands a password and per-token salt into an AES-256 key.
// The caller must clear the returned key with clearBytes once done.
func deriveKey(password string, salt []byte) ([]byte, error) {
	r := hkdf.New(sha256.New, []byte(password), salt, []byte(kdfInfo))

	key := make([]byte, keySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}
	return key, nil
}

func clearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
