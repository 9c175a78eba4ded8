// Package seal implements sealed tokens: opaque strings that carry a
// JSON-encoded value, encrypted and authenticated under a password, with an
// embedded expiry.
//
// # Architecture
//
//  1. Password validation: each password must be at least 32 bytes.
//  2. Key derivation: HKDF(SHA-256) over the password and a random 16-byte
//     per-token salt yields an AES-256 key.
//  3. Encryption: AES-GCM with a random nonce prepended to the ciphertext.
//     The token prefix, salt and expiry are bound as additional data.
//
// The resulting token is s1*<salt>*<nonce+ciphertext>*<expiry-ms>, every
// segment base64url without padding. An empty expiry segment means the
// token never expires.
//
// Multiple passwords may be configured: the first seals, all of them are
// tried on unseal, so a rotated password keeps existing tokens readable.
//
// # Usage
//
//	s, err := seal.New([]string{os.Getenv("SESSION_PASSWORD")}, seal.WithTTL(14*24*time.Hour))
//	if err != nil {
//	    return err
//	}
//
//	token, err := s.Seal(map[string]any{"user_id": 42})
//
//	var data map[string]any
//	if err := s.Unseal(token, &data); err != nil {
//	    // treat as no session
//	}
//
// # Error Handling
//
// Sealing fails with ErrSerialize or ErrEncryptionFailed. Unsealing fails
// with ErrInvalidToken (malformed), ErrDecryptionFailed (wrong password or
// tampering), ErrExpired or ErrDeserialize. Use errors.Is to match.
package seal
