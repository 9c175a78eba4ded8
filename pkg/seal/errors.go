package seal

import "errors"

var (
	// Configuration errors
	ErrNoPassword       = errors.New("seal.no_password")
	ErrPasswordTooShort = errors.New("seal.password_too_short")

	// Sealing errors
	ErrSerialize        = errors.New("seal.serialize_failed")
	ErrEncryptionFailed = errors.New("seal.encryption_failed")

	// Unsealing errors
	ErrInvalidToken     = errors.New("seal.invalid_token")
	ErrDecryptionFailed = errors.New("seal.decryption_failed")
	ErrExpired          = errors.New("seal.expired")
	ErrDeserialize      = errors.New("seal.deserialize_failed")
)
