package seal

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	tokenPrefix = "s1"
	separator   = "*"

	// DefaultSkew is the clock tolerance applied to token expiry.
	DefaultSkew = 60 * time.Second
)

var encoding = base64.RawURLEncoding

// Sealer turns values into opaque, expiring, authenticated tokens and back.
// It is immutable after construction and safe for concurrent use.
type Sealer struct {
	passwords []string
	ttl       time.Duration
	skew      time.Duration
	now       func() time.Time
}

// New creates a Sealer. The first password seals new tokens; every password
// is tried when unsealing so that old tokens survive a rotation.
func New(passwords []string, opts ...Option) (*Sealer, error) {
	passwords = slices.DeleteFunc(slices.Clone(passwords), func(p string) bool { return p == "" })
	if len(passwords) == 0 {
		return nil, ErrNoPassword
	}

	for i, p := range passwords {
		if len(p) < MinPasswordLength {
			return nil, fmt.Errorf("%w: password %d has %d chars, need at least %d", ErrPasswordTooShort, i, len(p), MinPasswordLength)
		}
	}

	s := &Sealer{
		passwords: passwords,
		skew:      DefaultSkew,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// TTL returns the lifetime stamped into sealed tokens. Zero means no expiry.
func (s *Sealer) TTL() time.Duration {
	return s.ttl
}

// Seal JSON-encodes v and seals the result.
func (s *Sealer) Seal(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", errors.Join(ErrSerialize, err)
	}
	return s.SealBytes(data)
}

// SealBytes seals raw bytes into a token of the form
// s1*<salt>*<nonce+ciphertext>*<expiry-ms>.
func (s *Sealer) SealBytes(data []byte) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", errors.Join(ErrEncryptionFailed, err)
	}

	gcm, err := newGCM(s.passwords[0], salt)
	if err != nil {
		return "", errors.Join(ErrEncryptionFailed, err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.Join(ErrEncryptionFailed, err)
	}

	var expiry string
	if s.ttl > 0 {
		expiry = strconv.FormatInt(s.now().Add(s.ttl).UnixMilli(), 10)
	}

	encSalt := encoding.EncodeToString(salt)

	// Expiry is bound as additional data so it cannot be altered without
	// breaking authentication.
	ciphertext := gcm.Seal(nonce, nonce, data, additionalData(encSalt, expiry))

	return strings.Join([]string{tokenPrefix, encSalt, encoding.EncodeToString(ciphertext), expiry}, separator), nil
}

// Unseal authenticates and decrypts token, then JSON-decodes it into dst.
func (s *Sealer) Unseal(token string, dst any) error {
	data, err := s.UnsealBytes(token)
	if err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return errors.Join(ErrDeserialize, err)
	}
	return nil
}

// UnsealBytes authenticates and decrypts token.
func (s *Sealer) UnsealBytes(token string) ([]byte, error) {
	parts := strings.Split(token, separator)
	if len(parts) != 4 || parts[0] != tokenPrefix {
		return nil, ErrInvalidToken
	}
	encSalt, encCiphertext, expiry := parts[1], parts[2], parts[3]

	salt, err := encoding.DecodeString(encSalt)
	if err != nil || len(salt) != saltSize {
		return nil, ErrInvalidToken
	}
	ciphertext, err := encoding.DecodeString(encCiphertext)
	if err != nil {
		return nil, ErrInvalidToken
	}

	var expiresAt time.Time
	if expiry != "" {
		ms, err := strconv.ParseInt(expiry, 10, 64)
		if err != nil {
			return nil, ErrInvalidToken
		}
		expiresAt = time.UnixMilli(ms)
	}

	aad := additionalData(encSalt, expiry)

	var (
		plaintext []byte
		opened    bool
	)
	for _, password := range s.passwords {
		gcm, err := newGCM(password, salt)
		if err != nil {
			continue
		}
		if len(ciphertext) < gcm.NonceSize() {
			return nil, ErrInvalidToken
		}

		nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
		if plaintext, err = gcm.Open(nil, nonce, sealed, aad); err == nil {
			opened = true
			break
		}
	}
	if !opened {
		return nil, ErrDecryptionFailed
	}

	// Expiry is only trusted after authentication succeeded.
	if err := s.checkExpiry(expiresAt); err != nil {
		return nil, err
	}

	return plaintext, nil
}

// checkExpiry enforces both the embedded expiry and the configured TTL:
// a Sealer with a TTL rejects tokens that never expire or that were minted
// with a longer lifetime.
func (s *Sealer) checkExpiry(expiresAt time.Time) error {
	now := s.now()
	if expiresAt.IsZero() {
		if s.ttl > 0 {
			return ErrExpired
		}
		return nil
	}

	if now.After(expiresAt.Add(s.skew)) {
		return ErrExpired
	}
	if s.ttl > 0 && expiresAt.After(now.Add(s.ttl+s.skew)) {
		return ErrExpired
	}
	return nil
}

func newGCM(password string, salt []byte) (cipher.AEAD, error) {
	key, err := deriveKey(password, salt)
	if err != nil {
		return nil, err
	}
	defer clearBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func additionalData(encSalt, expiry string) []byte {
	return []byte(tokenPrefix + separator + encSalt + separator + expiry)
}

// Seal seals v with a single password and ttl.
func Seal(v any, password string, ttl time.Duration) (string, error) {
	s, err := New([]string{password}, WithTTL(ttl))
	if err != nil {
		return "", err
	}
	return s.Seal(v)
}

// Unseal opens a token produced by Seal with the same password and ttl.
func Unseal(token, password string, ttl time.Duration, dst any) error {
	s, err := New([]string{password}, WithTTL(ttl))
	if err != nil {
		return err
	}
	return s.Unseal(token, dst)
}
