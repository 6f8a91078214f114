// Package serverstore is an in-process implementation of the storage side of
// the protocol, used in tests and examples and as a reference for what a real
// service may do with an envelope: verify the device signature and store the
// opaque fields. Its import graph contains only the envelope parser and the
// verification half of the signature code — no key hierarchy and no decrypt
// path — which is the zero-knowledge property stated as a build boundary.
package serverstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vaultbak/client-go/internal/envelope"
	"github.com/vaultbak/client-go/internal/sign"
	"github.com/vaultbak/client-go/internal/storage"
)

// Errors shared with the client core through internal/storage, so callers
// can use errors.Is on either side of the boundary.
var (
	ErrEnvelopeNotFound    = storage.ErrEnvelopeNotFound
	ErrDeviceNotRegistered = storage.ErrDeviceNotRegistered
	ErrSignatureInvalid    = sign.ErrSignatureInvalid
)

// Store holds envelopes and device verification keys in memory. It satisfies
// the client core's Transport interface, so it can be injected with
// WithTransport. The zero value is not usable; call New.
type Store struct {
	mu      sync.RWMutex
	devices map[string][]byte
	seq     int
	stored  map[string]*entry
}

type entry struct {
	record   string
	deviceID string
	env      *envelope.Envelope
}

// New returns an empty store.
func New() *Store {
	return &Store{
		devices: make(map[string][]byte),
		stored:  make(map[string]*entry),
	}
}

// RegisterDevice records a device's signature verification key. Registering
// the same device again replaces the key, which is how key rotation reaches
// the storage side.
func (s *Store) RegisterDevice(_ context.Context, deviceID string, publicKey []byte) error {
	if len(publicKey) != sign.PublicKeySize {
		return sign.ErrInvalidPublicKeySize
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices[deviceID] = append([]byte(nil), publicKey...)
	return nil
}

// Upload verifies the envelope signature against the uploading device's
// registered key and stores the envelope. Unknown devices and bad signatures
// are rejected; the payload itself is opaque and stays that way.
func (s *Store) Upload(_ context.Context, record, deviceID string, env *envelope.Envelope) (string, error) {
	if env == nil {
		return "", envelope.ErrInvalidEnvelope
	}
	if err := env.Validate(); err != nil {
		return "", err
	}
	if !env.Signed() {
		return "", ErrSignatureInvalid
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pub, ok := s.devices[deviceID]
	if !ok {
		return "", ErrDeviceNotRegistered
	}
	if err := sign.Verify(pub, env.SigningBytes(), env.Signature); err != nil {
		return "", err
	}

	s.seq++
	id := fmt.Sprintf("env-%06d", s.seq)
	s.stored[id] = &entry{record: record, deviceID: deviceID, env: env.Clone()}
	return id, nil
}

// Retrieve returns a stored envelope by ID. Envelopes are append-only: an
// upload never replaces an earlier one, so superseded versions remain
// retrievable, and it is the client's watermark that rejects them.
func (s *Store) Retrieve(_ context.Context, id string) (string, string, *envelope.Envelope, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.stored[id]
	if !ok {
		return "", "", nil, ErrEnvelopeNotFound
	}
	return e.record, e.deviceID, e.env.Clone(), nil
}

// Envelopes returns the IDs stored for a logical record, oldest first. The
// service can enumerate what it holds; only the client can tell which entry
// is current.
func (s *Store) Envelopes(record string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	for id, e := range s.stored {
		if e.record == record {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids) // IDs are zero-padded sequence numbers
	return ids
}

// Len returns the number of stored envelopes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.stored)
}
