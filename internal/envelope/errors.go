package envelope

import "errors"

var (
	// ErrAuthenticationFailure is returned when AEAD decryption fails: a
	// tampered ciphertext, a tampered tag, or the wrong key. No partial
	// plaintext is ever returned alongside it.
	ErrAuthenticationFailure = errors.New("envelope: authentication failure")

	// ErrUnsupportedClassification is returned for a classification value
	// outside the known enum.
	ErrUnsupportedClassification = errors.New("envelope: unsupported classification")

	// ErrInvalidKeySize is returned when the purpose key is not 32 bytes.
	ErrInvalidKeySize = errors.New("envelope: key must be 32 bytes")

	// ErrInvalidEnvelope is returned when an envelope is structurally
	// inconsistent (wrong nonce/tag size for its algorithm, or a
	// classification/algorithm pairing the constructors cannot produce).
	ErrInvalidEnvelope = errors.New("envelope: invalid envelope")

	// ErrUnsupportedAlgorithm is returned for an algorithm string other than
	// AES-256-GCM or none.
	ErrUnsupportedAlgorithm = errors.New("envelope: unsupported algorithm")

	// ErrDecompressionFailed is returned when the compressed plaintext frame
	// cannot be restored or exceeds the decompressed-size cap.
	ErrDecompressionFailed = errors.New("envelope: decompression failed")
)
