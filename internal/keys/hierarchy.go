// Package keys implements the vaultbak key hierarchy: a randomly generated
// user master key at the top, a deterministically derived per-device key
// below it, and purpose-scoped keys at the leaves. All derivation goes
// through the RFC 5869 HKDF in internal/hkdf, so the chain is reproducible
// from the master key alone.
package keys

import (
	"crypto/rand"
	"sync"

	"github.com/vaultbak/client-go/internal/hkdf"
)

// KeySize is the size of every symmetric key in the hierarchy.
const KeySize = 32

// HKDF info strings. Distinct strings guarantee that keys derived from the
// same parent are cryptographically unrelated.
const (
	DeviceKeyInfo   = "device-key-v1"
	BackupKeyInfo   = "backup-key-v1"
	MetadataKeyInfo = "metadata-key-v1"
)

// GenerateMasterKey returns a fresh 256-bit key from the system CSPRNG.
func GenerateMasterKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}

// Hierarchy holds the user master key for one session and derives the keys
// below it. It is owned by a single session object, never shared process-wide,
// and must be wiped with Zero when the session ends.
type Hierarchy struct {
	mu  sync.RWMutex
	umk []byte
}

// NewHierarchy returns an empty hierarchy. Derivations fail with
// ErrMissingMasterKey until SetMaster or Generate populates it.
func NewHierarchy() *Hierarchy {
	return &Hierarchy{}
}

// SetMaster installs the user master key, taking its own copy.
func (h *Hierarchy) SetMaster(umk []byte) error {
	if len(umk) != KeySize {
		return ErrInvalidKeySize
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.umk = append([]byte(nil), umk...)
	return nil
}

// Generate creates a fresh master key and installs it.
func (h *Hierarchy) Generate() error {
	umk, err := GenerateMasterKey()
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.umk = umk
	return nil
}

// Master returns a copy of the user master key.
func (h *Hierarchy) Master() ([]byte, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.umk == nil {
		return nil, ErrMissingMasterKey
	}
	return append([]byte(nil), h.umk...), nil
}

// DeviceKey derives the device master key for the given device salt:
// HKDF(salt=deviceSalt, ikm=UMK, info="device-key-v1"). The derivation is
// deterministic, so the same device always recovers the same key across
// sessions without persisting it.
func (h *Hierarchy) DeviceKey(deviceSalt []byte) ([]byte, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.umk == nil {
		return nil, ErrMissingMasterKey
	}
	return hkdf.Derive(deviceSalt, h.umk, []byte(DeviceKeyInfo), KeySize)
}

// Zero wipes the master key. The hierarchy reverts to its unpopulated state.
func (h *Hierarchy) Zero() {
	h.mu.Lock()
	defer h.mu.Unlock()
	Zero(h.umk)
	h.umk = nil
}

// PurposeKey derives a purpose-scoped key from a device master key:
// HKDF(salt=zero, ikm=dmk, info=purpose). Distinct purpose tags yield
// unrelated keys even though both descend from the same device key.
func PurposeKey(dmk []byte, purpose string) ([]byte, error) {
	if len(dmk) != KeySize {
		return nil, ErrInvalidKeySize
	}
	return hkdf.Derive(nil, dmk, []byte(purpose), KeySize)
}

// Zero overwrites b with zero bytes.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
