package api

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/vaultbak/client-go/internal/envelope"
)

// RegisterDevice registers a device signing public key with the service.
func (c *Client) RegisterDevice(ctx context.Context, deviceID string, publicKey []byte) error {
	if deviceID == "" {
		return errors.New("device ID is required")
	}
	req := registerDeviceRequest{
		DeviceID:  deviceID,
		PublicKey: base64.RawURLEncoding.EncodeToString(publicKey),
	}
	return c.do(ctx, http.MethodPost, "/v1/devices", req, nil)
}

// UploadEnvelope stores a signed envelope for a logical record and returns
// the service-assigned envelope ID.
func (c *Client) UploadEnvelope(ctx context.Context, record, deviceID string, env *envelope.Envelope) (string, error) {
	req := uploadRequest{
		Record:   record,
		DeviceID: deviceID,
		Envelope: env,
	}
	var resp uploadResponse
	if err := c.do(ctx, http.MethodPost, "/v1/envelopes", req, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// RetrieveEnvelope fetches a stored envelope by ID. The returned fields are
// untrusted until the caller has verified signature and version.
func (c *Client) RetrieveEnvelope(ctx context.Context, id string) (*RetrievedEnvelope, error) {
	var resp retrieveResponse
	path := "/v1/envelopes/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	// The service is untrusted; a response without an envelope is rejected
	// here, not handed to the caller as a nil pointer.
	if resp.Envelope == nil {
		return nil, fmt.Errorf("retrieve %s: %w", id, envelope.ErrInvalidEnvelope)
	}
	return &RetrievedEnvelope{
		Record:   resp.Record,
		DeviceID: resp.DeviceID,
		Envelope: resp.Envelope,
	}, nil
}
