package keys

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// DefaultIterations is the default PBKDF2-HMAC-SHA256 iteration count for
	// the password-derived wrapping key. Deliberately slow (hundreds of
	// milliseconds) to resist offline brute force; callers on latency-sensitive
	// paths should run wrap/unwrap off the event loop.
	DefaultIterations = 600_000

	wrapSaltSize  = 16
	wrapNonceSize = 12
	wrapTagSize   = 16
)

// WrappedKey is a key encrypted under a password-derived wrapping key,
// suitable for persistence through the external key store. The wrapping key
// itself is re-derived on every unwrap and never stored.
type WrappedKey struct {
	// Ciphertext is the AES-256-GCM sealed key, tag appended.
	Ciphertext []byte `json:"ciphertext"`
	// Salt is the per-user random PBKDF2 salt.
	Salt []byte `json:"salt"`
	// Nonce is the GCM nonce used for this wrap.
	Nonce []byte `json:"nonce"`
	// Iterations is the PBKDF2 iteration count the salt was used with.
	Iterations int `json:"iterations"`
}

// WrapWithPassword encrypts key under a key derived from password via
// PBKDF2-HMAC-SHA256 with a fresh random salt. The returned WrappedKey is
// safe to hand to an untrusted store: recovering the key requires the
// password.
func WrapWithPassword(key []byte, password string, iterations int) (*WrappedKey, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}
	if iterations <= 0 {
		return nil, ErrInvalidIterations
	}

	salt := make([]byte, wrapSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	nonce := make([]byte, wrapNonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	secret := pbkdf2.Key([]byte(password), salt, iterations, KeySize, sha256.New)
	defer Zero(secret)

	gcm, err := newGCM(secret)
	if err != nil {
		return nil, err
	}

	return &WrappedKey{
		Ciphertext: gcm.Seal(nil, nonce, key, nil),
		Salt:       salt,
		Nonce:      nonce,
		Iterations: iterations,
	}, nil
}

// UnwrapWithPassword re-derives the wrapping key from password and decrypts
// the wrapped key. A wrong password or a tampered blob fails with
// ErrAuthenticationFailure; no partial output is ever returned.
func UnwrapWithPassword(wrapped *WrappedKey, password string) ([]byte, error) {
	if wrapped == nil ||
		len(wrapped.Salt) != wrapSaltSize ||
		len(wrapped.Nonce) != wrapNonceSize ||
		len(wrapped.Ciphertext) < wrapTagSize {
		return nil, ErrInvalidWrappedKey
	}
	if wrapped.Iterations <= 0 {
		return nil, ErrInvalidIterations
	}

	secret := pbkdf2.Key([]byte(password), wrapped.Salt, wrapped.Iterations, KeySize, sha256.New)
	defer Zero(secret)

	gcm, err := newGCM(secret)
	if err != nil {
		return nil, err
	}

	key, err := gcm.Open(nil, wrapped.Nonce, wrapped.Ciphertext, nil)
	if err != nil {
		return nil, ErrAuthenticationFailure
	}
	return key, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
