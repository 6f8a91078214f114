package vaultbak

import (
	"context"
	"fmt"
	"sync"

	"github.com/vaultbak/client-go/internal/keys"
	"github.com/vaultbak/client-go/internal/shamir"
	"github.com/vaultbak/client-go/internal/sign"
)

// Session holds the unlocked key material for one enrollment: the key
// hierarchy, the device signing keypair, a cache of purpose keys, and the
// per-record version watermarks used for rollback detection. Sessions come
// from Client.Enroll or Client.Unlock and must be closed with Close, which
// wipes every key the session holds.
//
// All methods are safe for concurrent use; operations on one session are
// serialized.
type Session struct {
	client    *Client
	hierarchy *keys.Hierarchy
	dmk       []byte
	keypair   *sign.Keypair

	// purpose caches derived purpose keys so repeated seals do not redo the
	// HKDF expand. Entries are zeroized on Close.
	purpose map[string][]byte

	// versions is the per-record watermark: the highest version this client
	// has produced or successfully verified. The storage service is not
	// trusted for freshness, so this map is the version authority.
	versions map[string]uint64

	// nonces records every nonce sealed under this session's purpose keys.
	// A repeat means the CSPRNG or the accounting is broken, and the session
	// poisons itself rather than keep encrypting.
	nonces map[string]struct{}

	// trusted maps device IDs to signature verification keys. Seeded with
	// this device; additional devices are added with TrustDevice.
	trusted map[string][]byte

	mu       sync.Mutex
	closed   bool
	poisoned bool
}

// PublicKey returns this device's signature verification key.
func (s *Session) PublicKey() []byte {
	return append([]byte(nil), s.keypair.PublicKey...)
}

// TrustDevice adds another device's verification key, allowing this session
// to verify and open envelopes that device uploaded. How the key gets here is
// the application's concern; it should arrive over an authenticated channel,
// not from the storage service.
func (s *Session) TrustDevice(deviceID string, publicKey []byte) error {
	if len(publicKey) != sign.PublicKeySize {
		return sign.ErrInvalidPublicKeySize
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return err
	}
	s.trusted[deviceID] = append([]byte(nil), publicKey...)
	return nil
}

// PurposeKey returns the key for a purpose tag, deriving and caching it on
// first use. The returned slice is the caller's copy.
func (s *Session) PurposeKey(purpose string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return nil, err
	}
	key, err := s.purposeKeyLocked(purpose)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), key...), nil
}

func (s *Session) purposeKeyLocked(purpose string) ([]byte, error) {
	if key, ok := s.purpose[purpose]; ok {
		return key, nil
	}
	key, err := keys.PurposeKey(s.dmk, purpose)
	if err != nil {
		return nil, err
	}
	s.purpose[purpose] = key
	return key, nil
}

// Seal produces a signed envelope for the next version of a record without
// uploading it. Backup is Seal plus upload; Seal is exported for callers that
// move envelopes themselves.
func (s *Session) Seal(record string, plaintext []byte, class Classification) (*Envelope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return nil, err
	}
	return s.sealLocked(record, plaintext, class)
}

func (s *Session) sealLocked(record string, plaintext []byte, class Classification) (*Envelope, error) {
	var key []byte
	if class.Encrypted() {
		var err error
		key, err = s.purposeKeyLocked(PurposeBackup)
		if err != nil {
			return nil, err
		}
	}

	env, err := s.client.codec.Encrypt(plaintext, key, class, s.versions[record]+1)
	if err != nil {
		return nil, err
	}
	if len(env.Nonce) > 0 {
		if err := s.recordNonceLocked(PurposeBackup, env.Nonce); err != nil {
			return nil, err
		}
	}

	sig, err := s.keypair.Sign(env.SigningBytes())
	if err != nil {
		return nil, fmt.Errorf("sign envelope: %w", err)
	}
	env.Signature = sig
	return env, nil
}

// recordNonceLocked poisons the session if a nonce repeats under a live key.
func (s *Session) recordNonceLocked(purpose string, nonce []byte) error {
	seen := purpose + "\x00" + string(nonce)
	if _, ok := s.nonces[seen]; ok {
		s.poisoned = true
		return ErrNonceReuse
	}
	s.nonces[seen] = struct{}{}
	return nil
}

// Backup seals the next version of a record and uploads it, returning the
// service-assigned envelope ID. The record's version watermark advances only
// after the upload succeeds.
func (s *Session) Backup(ctx context.Context, record string, plaintext []byte, class Classification) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return "", err
	}
	if s.client.transport == nil {
		return "", ErrMissingTransport
	}

	env, err := s.sealLocked(record, plaintext, class)
	if err != nil {
		return "", err
	}
	id, err := s.client.transport.Upload(ctx, record, s.client.deviceID, env)
	if err != nil {
		return "", err
	}
	s.versions[record] = env.Version
	return id, nil
}

// Restore fetches an envelope by ID and opens it for the given record. The
// signature is verified before any decryption, the version is checked against
// the watermark, and only then is the payload decrypted. A failed restore
// never moves the watermark.
func (s *Session) Restore(ctx context.Context, record, id string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return nil, err
	}
	if s.client.transport == nil {
		return nil, ErrMissingTransport
	}

	gotRecord, deviceID, env, err := s.client.transport.Retrieve(ctx, id)
	if err != nil {
		return nil, err
	}
	if gotRecord != record {
		return nil, ErrRecordMismatch
	}
	return s.openLocked(record, deviceID, env)
}

// Open verifies and decrypts an envelope obtained outside the transport, for
// example one moved by the caller. deviceID names the device that signed it.
func (s *Session) Open(record, deviceID string, env *Envelope) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return nil, err
	}
	return s.openLocked(record, deviceID, env)
}

func (s *Session) openLocked(record, deviceID string, env *Envelope) ([]byte, error) {
	// The envelope came from an untrusted party; a missing one is a rejected
	// operation, not a crash.
	if env == nil {
		return nil, ErrInvalidEnvelope
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}
	if !env.Signed() {
		return nil, ErrSignatureInvalid
	}
	pub, ok := s.trusted[deviceID]
	if !ok {
		return nil, fmt.Errorf("%w: unknown device %q", ErrDeviceNotRegistered, deviceID)
	}
	if err := sign.Verify(pub, env.SigningBytes(), env.Signature); err != nil {
		return nil, err
	}

	if env.Version < s.versions[record] {
		return nil, fmt.Errorf("%w: record %q version %d below watermark %d",
			ErrRollbackDetected, record, env.Version, s.versions[record])
	}

	var key []byte
	if env.Classification.Encrypted() {
		var err error
		key, err = s.purposeKeyLocked(PurposeBackup)
		if err != nil {
			return nil, err
		}
	}
	plaintext, err := s.client.codec.Decrypt(env, key)
	if err != nil {
		return nil, err
	}

	s.versions[record] = env.Version
	return plaintext, nil
}

// Version returns the watermark for a record: the highest version this
// session has produced or verified. Zero means the record is unknown.
func (s *Session) Version(record string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.versions[record]
}

// RecoveryShares splits the user master key into Shamir shares. Any threshold
// of them reconstructs the key via CombineRecoveryShares; fewer reveal
// nothing. Shares are raw key material and must be distributed out of band,
// never through the storage service.
func (s *Session) RecoveryShares(parts, threshold int) ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return nil, err
	}
	umk, err := s.hierarchy.Master()
	if err != nil {
		return nil, err
	}
	defer keys.Zero(umk)
	return shamir.Split(umk, parts, threshold)
}

// Close wipes every key the session holds: the master key, the device master
// key, cached purpose keys, and the signing private key. Subsequent calls on
// the session fail with ErrSessionClosed. Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true

	s.hierarchy.Zero()
	keys.Zero(s.dmk)
	s.dmk = nil
	for tag, key := range s.purpose {
		keys.Zero(key)
		delete(s.purpose, tag)
	}
	s.keypair.Zero()
}

func (s *Session) usable() error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.poisoned {
		return ErrNonceReuse
	}
	return nil
}
