package vaultbak

import (
	"context"
	"errors"
	"net/http"

	"github.com/vaultbak/client-go/internal/api"
)

// Transport is the storage-service collaborator: it carries opaque envelopes
// and device public keys, nothing else. Implementations include the HTTP
// client built from WithAPIKey/WithBaseURL and the in-process
// serverstore.Store used in tests and examples.
//
// Nothing returned by a Transport is trusted: the session verifies signature
// and version on every retrieved envelope before decrypting.
type Transport interface {
	// RegisterDevice shares a device's signature verification key with the
	// service. The private key never crosses this interface.
	RegisterDevice(ctx context.Context, deviceID string, publicKey []byte) error

	// Upload stores a signed envelope for a logical record and returns the
	// service-assigned envelope ID.
	Upload(ctx context.Context, record, deviceID string, env *Envelope) (string, error)

	// Retrieve fetches a stored envelope by ID, along with the record name
	// and device ID the service recorded for it.
	Retrieve(ctx context.Context, id string) (record, deviceID string, env *Envelope, err error)
}

// apiTransport adapts the internal HTTP client to the Transport interface.
type apiTransport struct {
	client *api.Client
}

func newAPITransport(apiKey, baseURL string, httpClient *http.Client) (*apiTransport, error) {
	opts := []api.Option{api.WithBaseURL(baseURL)}
	if httpClient != nil {
		opts = append(opts, api.WithHTTPClient(httpClient))
	}
	client, err := api.New(apiKey, opts...)
	if err != nil {
		return nil, err
	}
	return &apiTransport{client: client}, nil
}

func (t *apiTransport) RegisterDevice(ctx context.Context, deviceID string, publicKey []byte) error {
	if err := t.client.RegisterDevice(ctx, deviceID, publicKey); err != nil {
		return &StorageError{Op: "register device", Err: mapAPIError(err)}
	}
	return nil
}

func (t *apiTransport) Upload(ctx context.Context, record, deviceID string, env *Envelope) (string, error) {
	id, err := t.client.UploadEnvelope(ctx, record, deviceID, env)
	if err != nil {
		return "", &StorageError{Op: "upload", Err: mapAPIError(err)}
	}
	return id, nil
}

func (t *apiTransport) Retrieve(ctx context.Context, id string) (string, string, *Envelope, error) {
	got, err := t.client.RetrieveEnvelope(ctx, id)
	if err != nil {
		return "", "", nil, &StorageError{Op: "retrieve", Err: mapAPIError(err)}
	}
	return got.Record, got.DeviceID, got.Envelope, nil
}

// mapAPIError translates HTTP status codes into the package's sentinels so
// callers can use errors.Is without knowing about the wire protocol.
func mapAPIError(err error) error {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusNotFound:
			return ErrEnvelopeNotFound
		case http.StatusUnprocessableEntity:
			return ErrSignatureInvalid
		case http.StatusPreconditionFailed:
			return ErrDeviceNotRegistered
		}
	}
	return err
}
