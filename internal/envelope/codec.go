package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
)

// Codec encrypts and decrypts envelopes under purpose keys. The zero value
// is usable; the compression fields mirror the client options.
//
// Nonces come from the system CSPRNG and are never reused for a given key by
// construction; callers encrypting very high volumes under one key should
// rotate the key well before the 96-bit birthday bound is approached. That
// rotation is operational policy, not enforced here.
type Codec struct {
	// CompressionThreshold is the minimum plaintext size, in bytes, before
	// zstd compression is attempted. Zero means DefaultCompressionThreshold.
	CompressionThreshold int
	// CompressionDisabled turns compression off entirely.
	CompressionDisabled bool
}

// Encrypt seals plaintext into an envelope under key.
//
// For ClassificationPublic no cryptographic operation is performed: the
// envelope carries the plaintext itself with algorithm "none". For every
// other classification the plaintext is framed (and possibly compressed),
// sealed with AES-256-GCM under a fresh random nonce, and the 16-byte tag is
// carried as a separate field.
func (c *Codec) Encrypt(plaintext, key []byte, class Classification, version uint64) (*Envelope, error) {
	if _, err := ParseClassification(string(class)); err != nil {
		return nil, err
	}
	if !class.Encrypted() {
		return NewPublic(plaintext, version), nil
	}
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}

	framed, err := c.frame(plaintext)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	sealed := gcm.Seal(nil, nonce, framed, nil)
	split := len(sealed) - TagSize
	return newSealed(sealed[:split], nonce, sealed[split:], class, version), nil
}

// Decrypt opens an envelope. Public envelopes return their ciphertext
// unchanged. Sealed envelopes are verified and decrypted in a single AEAD
// operation; any mismatch fails with ErrAuthenticationFailure and nothing
// else.
func (c *Codec) Decrypt(env *Envelope, key []byte) ([]byte, error) {
	if err := env.Validate(); err != nil {
		return nil, err
	}
	if env.Algorithm == AlgorithmNone {
		return append([]byte(nil), env.Ciphertext...), nil
	}
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, 0, len(env.Ciphertext)+TagSize)
	sealed = append(sealed, env.Ciphertext...)
	sealed = append(sealed, env.AuthTag...)

	framed, err := gcm.Open(nil, env.Nonce, sealed, nil)
	if err != nil {
		return nil, ErrAuthenticationFailure
	}
	return unframe(framed)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
