// Package storage defines the error contract shared by every storage
// transport. The HTTP client, the in-process store, and the root package all
// report these sentinels, so errors.Is identities agree without the storage
// side having to import the client core.
package storage

import "errors"

// Sentinel errors for errors.Is() checks
var (
	// ErrEnvelopeNotFound is returned when no envelope exists with the
	// requested ID.
	ErrEnvelopeNotFound = errors.New("envelope not found")

	// ErrDeviceNotRegistered is returned when the storage side does not know
	// the device's public key.
	ErrDeviceNotRegistered = errors.New("device not registered")
)
