// Package sign implements device signatures over envelope bytes using
// Ed25519. The private-key half (GenerateKeypair, Sign) is only linked into
// the client core; the storage side links Verify alone, which is what makes
// the zero-knowledge split a property of the deployed binary rather than a
// runtime check.
package sign

import (
	"crypto/rand"
	"errors"

	"github.com/cloudflare/circl/sign/ed25519"
)

const (
	// PublicKeySize is the size of an Ed25519 public key in bytes.
	PublicKeySize = ed25519.PublicKeySize
	// PrivateKeySize is the size of an Ed25519 private key in bytes.
	PrivateKeySize = ed25519.PrivateKeySize
	// SignatureSize is the size of an Ed25519 signature in bytes.
	SignatureSize = ed25519.SignatureSize
)

var (
	// ErrSignatureInvalid is returned when a signature does not verify:
	// tampered bytes, a tampered signature, or the wrong device key.
	ErrSignatureInvalid = errors.New("sign: signature verification failed")

	// ErrInvalidPublicKeySize is returned for a malformed public key.
	ErrInvalidPublicKeySize = errors.New("sign: invalid public key size")

	// ErrInvalidPrivateKeySize is returned for a malformed private key.
	ErrInvalidPrivateKeySize = errors.New("sign: invalid private key size")
)

// Keypair is a device signing keypair. The private key never leaves the
// device; the public key is the only part shared with the storage
// collaborator.
type Keypair struct {
	PublicKey  []byte
	PrivateKey []byte
}

// GenerateKeypair creates a new device signing keypair from the system
// CSPRNG.
func GenerateKeypair() (*Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &Keypair{PublicKey: pub, PrivateKey: priv}, nil
}

// KeypairFromPrivate reconstructs a keypair from a stored private key. The
// public key is embedded in the Ed25519 private key.
func KeypairFromPrivate(privateKey []byte) (*Keypair, error) {
	if len(privateKey) != PrivateKeySize {
		return nil, ErrInvalidPrivateKeySize
	}
	priv := ed25519.PrivateKey(append([]byte(nil), privateKey...))
	pub := priv.Public().(ed25519.PublicKey)
	return &Keypair{PublicKey: pub, PrivateKey: priv}, nil
}

// Sign signs message with the keypair's private key.
func (k *Keypair) Sign(message []byte) ([]byte, error) {
	if len(k.PrivateKey) != PrivateKeySize {
		return nil, ErrInvalidPrivateKeySize
	}
	return ed25519.Sign(ed25519.PrivateKey(k.PrivateKey), message), nil
}

// Zero wipes the private key. The keypair is unusable for signing afterwards.
func (k *Keypair) Zero() {
	for i := range k.PrivateKey {
		k.PrivateKey[i] = 0
	}
	k.PrivateKey = nil
}

// Verify checks signature over message against publicKey. It returns
// ErrSignatureInvalid on any mismatch and says nothing about the message
// content beyond its integrity since signing.
func Verify(publicKey, message, signature []byte) error {
	if len(publicKey) != PublicKeySize {
		return ErrInvalidPublicKeySize
	}
	if len(signature) != SignatureSize {
		return ErrSignatureInvalid
	}
	if !ed25519.Verify(ed25519.PublicKey(publicKey), message, signature) {
		return ErrSignatureInvalid
	}
	return nil
}
