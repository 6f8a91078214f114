package api

import "github.com/vaultbak/client-go/internal/envelope"

// RetrievedEnvelope is a stored envelope together with the metadata the
// service records alongside it: the logical record it belongs to and the
// device whose public key it was verified against.
type RetrievedEnvelope struct {
	Record   string
	DeviceID string
	Envelope *envelope.Envelope
}

// registerDeviceRequest registers a device's signature verification key.
// The public key is the only key material that ever reaches the service.
type registerDeviceRequest struct {
	DeviceID  string `json:"deviceId"`
	PublicKey string `json:"publicKey"` // base64url
}

// uploadRequest stores a signed envelope for a logical record.
type uploadRequest struct {
	Record   string             `json:"record"`
	DeviceID string             `json:"deviceId"`
	Envelope *envelope.Envelope `json:"envelope"`
}

// uploadResponse returns the service-assigned envelope ID.
type uploadResponse struct {
	ID string `json:"id"`
}

// retrieveResponse returns a stored envelope. The envelope fields are opaque
// to the service; it echoes back exactly what was uploaded.
type retrieveResponse struct {
	Record   string             `json:"record"`
	DeviceID string             `json:"deviceId"`
	Envelope *envelope.Envelope `json:"envelope"`
}
