package vaultbak

import (
	"net/http"

	"github.com/vaultbak/client-go/internal/keys"
)

// clientConfig holds configuration for the client.
type clientConfig struct {
	keystore   Keystore
	transport  Transport
	apiKey     string
	baseURL    string
	httpClient *http.Client
	deviceID   string
	iterations int

	compressionThreshold int
	compressionDisabled  bool
}

func defaultConfig() *clientConfig {
	return &clientConfig{
		iterations: keys.DefaultIterations,
	}
}

// Option configures the client.
type Option func(*clientConfig)

// WithKeystore sets the key store used to persist the wrapped master key and
// device private keys. Defaults to an in-memory store, which does not
// survive the process; production clients should use NewKeyringKeystore or
// their own implementation.
func WithKeystore(ks Keystore) Option {
	return func(c *clientConfig) {
		c.keystore = ks
	}
}

// WithTransport injects a storage transport directly, bypassing the HTTP
// client. Useful for tests (serverstore.Store satisfies Transport) and for
// custom transports.
func WithTransport(t Transport) Option {
	return func(c *clientConfig) {
		c.transport = t
	}
}

// WithAPIKey sets the API key for the built-in HTTP transport.
func WithAPIKey(key string) Option {
	return func(c *clientConfig) {
		c.apiKey = key
	}
}

// WithBaseURL sets the storage service base URL for the built-in HTTP
// transport.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client for the built-in transport.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithDeviceID sets the stable identifier for this device. The device master
// key is derived from its hash, so changing it changes every key below the
// master key.
func WithDeviceID(id string) Option {
	return func(c *clientConfig) {
		c.deviceID = id
	}
}

// WithPBKDF2Iterations overrides the password-wrap iteration count. Lowering
// it weakens brute-force resistance; it exists for tests.
func WithPBKDF2Iterations(n int) Option {
	return func(c *clientConfig) {
		c.iterations = n
	}
}

// WithCompressionThreshold sets the minimum plaintext size in bytes before
// compression is attempted for sealed envelopes.
func WithCompressionThreshold(bytes int) Option {
	return func(c *clientConfig) {
		c.compressionThreshold = bytes
	}
}

// WithCompressionDisabled disables plaintext compression entirely.
func WithCompressionDisabled() Option {
	return func(c *clientConfig) {
		c.compressionDisabled = true
	}
}
