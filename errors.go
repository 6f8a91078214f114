package vaultbak

import (
	"errors"
	"fmt"

	"github.com/vaultbak/client-go/internal/envelope"
	"github.com/vaultbak/client-go/internal/hkdf"
	"github.com/vaultbak/client-go/internal/keys"
	"github.com/vaultbak/client-go/internal/sign"
	"github.com/vaultbak/client-go/internal/storage"
)

// Sentinel errors for errors.Is() checks. Cryptographic failures are always
// terminal for the operation that produced them: no partial result is ever
// returned alongside one of these.
var (
	// ErrAuthenticationFailure is returned when an AEAD tag mismatch occurs:
	// tampered ciphertext, tampered tag, wrong key, or a wrong password
	// during unwrap.
	ErrAuthenticationFailure = envelope.ErrAuthenticationFailure

	// ErrSignatureInvalid is returned when an envelope signature does not
	// verify: tampered envelope bytes or the wrong device key. The envelope
	// is rejected before any decryption is attempted.
	ErrSignatureInvalid = sign.ErrSignatureInvalid

	// ErrRollbackDetected is returned when a retrieved envelope's version is
	// lower than the highest version this client has seen for the record.
	// The storage service is untrusted for freshness; the client is the
	// version authority.
	ErrRollbackDetected = errors.New("vaultbak: version rollback detected")

	// ErrMissingMasterKey is returned when a derivation is requested before
	// the master key is available for the session.
	ErrMissingMasterKey = keys.ErrMissingMasterKey

	// ErrUnsupportedClassification is returned for a classification outside
	// the known enum.
	ErrUnsupportedClassification = envelope.ErrUnsupportedClassification

	// ErrInvalidEnvelope is returned when an envelope received from the
	// storage service is missing or structurally inconsistent. The envelope
	// is rejected before any cryptographic operation touches it.
	ErrInvalidEnvelope = envelope.ErrInvalidEnvelope

	// ErrOutputLengthExceeded is returned when a key derivation requests
	// more output than HKDF-SHA-256 can produce.
	ErrOutputLengthExceeded = hkdf.ErrOutputLengthExceeded

	// ErrNonceReuse is returned when the session detects a repeated nonce
	// under a still-active key. This indicates a CSPRNG or accounting defect;
	// the session aborts rather than continue encrypting under a compromised
	// invariant, and every subsequent operation fails with this error.
	ErrNonceReuse = errors.New("vaultbak: nonce reuse detected, session aborted")

	// ErrSessionClosed is returned when operations are attempted on a closed
	// session.
	ErrSessionClosed = errors.New("vaultbak: session has been closed")

	// ErrClientClosed is returned when operations are attempted on a closed
	// client.
	ErrClientClosed = errors.New("vaultbak: client has been closed")

	// ErrKeyNotFound is returned by a Keystore when the named entry does not
	// exist.
	ErrKeyNotFound = errors.New("vaultbak: key not found in keystore")

	// ErrNotEnrolled is returned by Unlock when no wrapped master key exists
	// in the keystore; call Enroll first.
	ErrNotEnrolled = errors.New("vaultbak: account not enrolled on this keystore")

	// ErrAlreadyEnrolled is returned by Enroll when a wrapped master key
	// already exists in the keystore.
	ErrAlreadyEnrolled = errors.New("vaultbak: account already enrolled on this keystore")

	// ErrMissingTransport is returned when an operation needs the storage
	// service but no transport was configured.
	ErrMissingTransport = errors.New("vaultbak: no transport configured")

	// ErrEnvelopeNotFound is returned when the storage service has no
	// envelope with the requested ID.
	ErrEnvelopeNotFound = storage.ErrEnvelopeNotFound

	// ErrDeviceNotRegistered is returned when the storage service does not
	// know the uploading device's public key.
	ErrDeviceNotRegistered = storage.ErrDeviceNotRegistered

	// ErrRecordMismatch is returned when a retrieved envelope belongs to a
	// different logical record than the one requested.
	ErrRecordMismatch = errors.New("vaultbak: envelope belongs to a different record")
)

// StorageError wraps a failure reported by the storage service.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
