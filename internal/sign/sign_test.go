package sign

import (
	"bytes"
	"errors"
	"testing"
)

func TestSignVerify_RoundTrip(t *testing.T) {
	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair() error = %v", err)
	}
	if len(kp.PublicKey) != PublicKeySize {
		t.Errorf("public key length = %d, want %d", len(kp.PublicKey), PublicKeySize)
	}
	if len(kp.PrivateKey) != PrivateKeySize {
		t.Errorf("private key length = %d, want %d", len(kp.PrivateKey), PrivateKeySize)
	}

	message := []byte("ciphertext||nonce||tag")
	sig, err := kp.Sign(message)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	if len(sig) != SignatureSize {
		t.Errorf("signature length = %d, want %d", len(sig), SignatureSize)
	}

	if err := Verify(kp.PublicKey, message, sig); err != nil {
		t.Errorf("Verify() error = %v", err)
	}
}

func TestVerify_MutatedMessage(t *testing.T) {
	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair() error = %v", err)
	}
	message := []byte("envelope bytes")
	sig, err := kp.Sign(message)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	for i := range message {
		mutated := append([]byte(nil), message...)
		mutated[i] ^= 0x01
		if err := Verify(kp.PublicKey, mutated, sig); !errors.Is(err, ErrSignatureInvalid) {
			t.Fatalf("byte %d: Verify(mutated message) error = %v, want ErrSignatureInvalid", i, err)
		}
	}
}

func TestVerify_MutatedSignature(t *testing.T) {
	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair() error = %v", err)
	}
	message := []byte("envelope bytes")
	sig, err := kp.Sign(message)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	mutated := append([]byte(nil), sig...)
	mutated[0] ^= 0x01
	if err := Verify(kp.PublicKey, message, mutated); !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("Verify(mutated signature) error = %v, want ErrSignatureInvalid", err)
	}
}

func TestVerify_WrongKey(t *testing.T) {
	signer, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair() error = %v", err)
	}
	other, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair() error = %v", err)
	}

	message := []byte("envelope bytes")
	sig, err := signer.Sign(message)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	if err := Verify(other.PublicKey, message, sig); !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("Verify(wrong key) error = %v, want ErrSignatureInvalid", err)
	}
}

func TestVerify_MalformedInputs(t *testing.T) {
	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair() error = %v", err)
	}
	message := []byte("m")
	sig, err := kp.Sign(message)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	if err := Verify(kp.PublicKey[:16], message, sig); !errors.Is(err, ErrInvalidPublicKeySize) {
		t.Errorf("short public key error = %v, want ErrInvalidPublicKeySize", err)
	}
	if err := Verify(kp.PublicKey, message, sig[:32]); !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("short signature error = %v, want ErrSignatureInvalid", err)
	}
}

func TestKeypairFromPrivate(t *testing.T) {
	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair() error = %v", err)
	}

	restored, err := KeypairFromPrivate(kp.PrivateKey)
	if err != nil {
		t.Fatalf("KeypairFromPrivate() error = %v", err)
	}
	if !bytes.Equal(restored.PublicKey, kp.PublicKey) {
		t.Error("restored public key differs from original")
	}

	message := []byte("signed after restore")
	sig, err := restored.Sign(message)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	if err := Verify(kp.PublicKey, message, sig); err != nil {
		t.Errorf("Verify() of restored keypair signature error = %v", err)
	}

	if _, err := KeypairFromPrivate(make([]byte, 32)); !errors.Is(err, ErrInvalidPrivateKeySize) {
		t.Errorf("short private key error = %v, want ErrInvalidPrivateKeySize", err)
	}
}

func TestKeypair_Zero(t *testing.T) {
	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair() error = %v", err)
	}
	kp.Zero()
	if kp.PrivateKey != nil {
		t.Error("Zero() left the private key in place")
	}
	if _, err := kp.Sign([]byte("m")); !errors.Is(err, ErrInvalidPrivateKeySize) {
		t.Errorf("Sign() after Zero() error = %v, want ErrInvalidPrivateKeySize", err)
	}
}
