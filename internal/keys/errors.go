package keys

import "errors"

var (
	// ErrMissingMasterKey is returned when a derivation is requested before
	// the user master key has been generated or unwrapped for the session.
	ErrMissingMasterKey = errors.New("keys: master key not available")

	// ErrAuthenticationFailure is returned when unwrapping fails because the
	// password is wrong or the wrapped blob was tampered with.
	ErrAuthenticationFailure = errors.New("keys: authentication failure")

	// ErrInvalidKeySize is returned when key material is not exactly 32 bytes.
	ErrInvalidKeySize = errors.New("keys: key must be 32 bytes")

	// ErrInvalidIterations is returned when a wrap is requested with a
	// non-positive PBKDF2 iteration count.
	ErrInvalidIterations = errors.New("keys: iteration count must be positive")

	// ErrInvalidWrappedKey is returned when a wrapped key blob is structurally
	// malformed (wrong salt or nonce size, truncated ciphertext).
	ErrInvalidWrappedKey = errors.New("keys: invalid wrapped key")
)
