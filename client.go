package vaultbak

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/vaultbak/client-go/internal/envelope"
	"github.com/vaultbak/client-go/internal/keys"
	"github.com/vaultbak/client-go/internal/sign"
)

// Keystore entry names.
const (
	keystoreMasterKey = "vaultbak/umk.wrapped"
	keystoreDeviceKey = "vaultbak/device/%s/signing-key"
)

// Client owns the configuration shared by sessions: the key store, the
// storage transport, and the device identity. It holds no key material
// itself; Enroll and Unlock produce a Session that does.
type Client struct {
	keystore  Keystore
	transport Transport
	deviceID  string

	iterations int
	codec      *envelope.Codec

	mu     sync.RWMutex
	closed bool
}

// New creates a client. A device ID is required; keystore defaults to an
// in-memory store and the transport is built from WithAPIKey/WithBaseURL
// unless one is injected with WithTransport.
func New(opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.deviceID == "" {
		return nil, errors.New("vaultbak: device ID is required")
	}
	if cfg.keystore == nil {
		cfg.keystore = NewMemoryKeystore()
	}

	transport := cfg.transport
	if transport == nil && cfg.apiKey != "" {
		t, err := newAPITransport(cfg.apiKey, cfg.baseURL, cfg.httpClient)
		if err != nil {
			return nil, err
		}
		transport = t
	}

	return &Client{
		keystore:   cfg.keystore,
		transport:  transport,
		deviceID:   cfg.deviceID,
		iterations: cfg.iterations,
		codec: &envelope.Codec{
			CompressionThreshold: cfg.compressionThreshold,
			CompressionDisabled:  cfg.compressionDisabled,
		},
	}, nil
}

// DeviceID returns the configured device identifier.
func (c *Client) DeviceID() string {
	return c.deviceID
}

// Close marks the client closed. Sessions already open remain usable until
// their own Close.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *Client) checkOpen() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClientClosed
	}
	return nil
}

// Enroll creates the account on this keystore: it generates the user master
// key, wraps it under the password, persists the wrapped blob, generates the
// device signing keypair, and registers the public key with the storage
// service. It returns an unlocked session.
func (c *Client) Enroll(ctx context.Context, password string) (*Session, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if _, err := c.keystore.Get(keystoreMasterKey); err == nil {
		return nil, ErrAlreadyEnrolled
	} else if !errors.Is(err, ErrKeyNotFound) {
		return nil, fmt.Errorf("read keystore: %w", err)
	}

	umk, err := keys.GenerateMasterKey()
	if err != nil {
		return nil, fmt.Errorf("generate master key: %w", err)
	}
	defer keys.Zero(umk)

	wrapped, err := keys.WrapWithPassword(umk, password, c.iterations)
	if err != nil {
		return nil, fmt.Errorf("wrap master key: %w", err)
	}
	blob, err := json.Marshal(wrapped)
	if err != nil {
		return nil, fmt.Errorf("encode wrapped key: %w", err)
	}
	if err := c.keystore.Put(keystoreMasterKey, blob); err != nil {
		return nil, fmt.Errorf("persist wrapped key: %w", err)
	}

	keypair, err := c.ensureDeviceKeypair(ctx, true)
	if err != nil {
		return nil, err
	}

	return c.newSession(umk, keypair)
}

// Unlock opens a session for an enrolled account. A wrong password fails
// with ErrAuthenticationFailure; the caller decides whether to re-prompt.
// The PBKDF2 step is CPU-bound by design and can take hundreds of
// milliseconds; run it off any UI thread.
func (c *Client) Unlock(ctx context.Context, password string) (*Session, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}

	blob, err := c.keystore.Get(keystoreMasterKey)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, ErrNotEnrolled
		}
		return nil, fmt.Errorf("read keystore: %w", err)
	}
	var wrapped keys.WrappedKey
	if err := json.Unmarshal(blob, &wrapped); err != nil {
		return nil, fmt.Errorf("decode wrapped key: %w", err)
	}

	umk, err := keys.UnwrapWithPassword(&wrapped, password)
	if err != nil {
		if errors.Is(err, keys.ErrAuthenticationFailure) {
			return nil, ErrAuthenticationFailure
		}
		return nil, err
	}
	defer keys.Zero(umk)

	keypair, err := c.ensureDeviceKeypair(ctx, false)
	if err != nil {
		return nil, err
	}

	return c.newSession(umk, keypair)
}

// ensureDeviceKeypair loads this device's signing keypair from the keystore,
// generating and registering a fresh one when absent (always the case during
// enrollment, and for a new device joining an existing account).
func (c *Client) ensureDeviceKeypair(ctx context.Context, fresh bool) (*sign.Keypair, error) {
	name := fmt.Sprintf(keystoreDeviceKey, c.deviceID)

	if !fresh {
		if priv, err := c.keystore.Get(name); err == nil {
			return sign.KeypairFromPrivate(priv)
		} else if !errors.Is(err, ErrKeyNotFound) {
			return nil, fmt.Errorf("read keystore: %w", err)
		}
	}

	keypair, err := sign.GenerateKeypair()
	if err != nil {
		return nil, fmt.Errorf("generate device keypair: %w", err)
	}
	if err := c.keystore.Put(name, keypair.PrivateKey); err != nil {
		return nil, fmt.Errorf("persist device key: %w", err)
	}
	if c.transport != nil {
		if err := c.transport.RegisterDevice(ctx, c.deviceID, keypair.PublicKey); err != nil {
			return nil, err
		}
	}
	return keypair, nil
}

// newSession derives the device master key and assembles a session. The
// hierarchy takes its own copy of the master key.
func (c *Client) newSession(umk []byte, keypair *sign.Keypair) (*Session, error) {
	hierarchy := keys.NewHierarchy()
	if err := hierarchy.SetMaster(umk); err != nil {
		return nil, err
	}

	deviceSalt := sha256.Sum256([]byte(c.deviceID))
	dmk, err := hierarchy.DeviceKey(deviceSalt[:])
	if err != nil {
		return nil, fmt.Errorf("derive device key: %w", err)
	}

	return &Session{
		client:    c,
		hierarchy: hierarchy,
		dmk:       dmk,
		keypair:   keypair,
		purpose:   make(map[string][]byte),
		versions:  make(map[string]uint64),
		nonces:    make(map[string]struct{}),
		trusted: map[string][]byte{
			c.deviceID: append([]byte(nil), keypair.PublicKey...),
		},
	}, nil
}
