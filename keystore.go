package vaultbak

import (
	"errors"
	"fmt"
	"sync"

	"github.com/99designs/keyring"
)

// Keystore is the external key-store collaborator: a named byte store used
// to persist the wrapped master key and device private keys. This core
// treats it as opaque and imposes no schema of its own.
type Keystore interface {
	// Get returns the bytes stored under name, or ErrKeyNotFound.
	Get(name string) ([]byte, error)
	// Put stores data under name, replacing any existing entry.
	Put(name string, data []byte) error
	// Delete removes the entry under name. Deleting a missing entry is not
	// an error.
	Delete(name string) error
}

// MemoryKeystore is an in-memory Keystore for tests and ephemeral sessions.
// It is safe for concurrent use.
type MemoryKeystore struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemoryKeystore creates an empty in-memory keystore.
func NewMemoryKeystore() *MemoryKeystore {
	return &MemoryKeystore{items: make(map[string][]byte)}
}

// Get implements Keystore.
func (m *MemoryKeystore) Get(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.items[name]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return append([]byte(nil), data...), nil
}

// Put implements Keystore.
func (m *MemoryKeystore) Put(name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[name] = append([]byte(nil), data...)
	return nil
}

// Delete implements Keystore.
func (m *MemoryKeystore) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, name)
	return nil
}

// KeyringKeystore persists entries in the operating system keychain via the
// 99designs/keyring backends (macOS Keychain, Secret Service, wincred, ...).
type KeyringKeystore struct {
	ring keyring.Keyring
}

// NewKeyringKeystore opens the OS keychain under the given service name.
func NewKeyringKeystore(service string) (*KeyringKeystore, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: service,
	})
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	return &KeyringKeystore{ring: ring}, nil
}

// Get implements Keystore.
func (k *KeyringKeystore) Get(name string) ([]byte, error) {
	item, err := k.ring.Get(name)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("get %q from keyring: %w", name, err)
	}
	return item.Data, nil
}

// Put implements Keystore.
func (k *KeyringKeystore) Put(name string, data []byte) error {
	err := k.ring.Set(keyring.Item{
		Key:  name,
		Data: data,
	})
	if err != nil {
		return fmt.Errorf("store %q in keyring: %w", name, err)
	}
	return nil
}

// Delete implements Keystore.
func (k *KeyringKeystore) Delete(name string) error {
	err := k.ring.Remove(name)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("remove %q from keyring: %w", name, err)
	}
	return nil
}
