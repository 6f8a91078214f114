// Package envelope implements the self-describing unit of stored data:
// authenticated encryption under a purpose key, a classification-aware
// public passthrough, and the wire schema exchanged with the storage
// collaborator. Everything inside an envelope is opaque to any party that
// does not hold the purpose key; the signature field is the only part the
// storage side is expected to interpret.
package envelope

import (
	"encoding/base64"
	"encoding/json"
)

// Classification controls whether data is encrypted at all. Public data is
// deliberately stored in the clear; everything else is sealed.
type Classification string

const (
	ClassificationPublic       Classification = "public"
	ClassificationInternal     Classification = "internal"
	ClassificationConfidential Classification = "confidential"
	ClassificationRestricted   Classification = "restricted"
)

// ParseClassification validates a classification string.
func ParseClassification(s string) (Classification, error) {
	switch c := Classification(s); c {
	case ClassificationPublic, ClassificationInternal, ClassificationConfidential, ClassificationRestricted:
		return c, nil
	default:
		return "", ErrUnsupportedClassification
	}
}

// Encrypted reports whether data under this classification is sealed.
func (c Classification) Encrypted() bool {
	return c != ClassificationPublic
}

// Algorithm identifiers carried on the wire.
const (
	AlgorithmAESGCM = "AES-256-GCM"
	AlgorithmNone   = "none"
)

const (
	// KeySize is the AES-256 key size.
	KeySize = 32
	// NonceSize is the AES-GCM nonce size.
	NonceSize = 12
	// TagSize is the AES-GCM authentication tag size.
	TagSize = 16
)

// Envelope is the unit of stored data. Instances come from Codec.Encrypt or
// from the wire; the constructors keep classification and algorithm
// consistent, and Validate re-checks that pairing on anything that crossed
// the trust boundary.
type Envelope struct {
	// Ciphertext is the sealed payload, or the plaintext itself when
	// Algorithm is "none".
	Ciphertext []byte
	// Nonce is the 12-byte GCM nonce; empty for public envelopes.
	Nonce []byte
	// AuthTag is the 16-byte GCM tag; empty for public envelopes.
	AuthTag []byte
	// Classification is the policy tag the payload was sealed under.
	Classification Classification
	// Algorithm is AlgorithmAESGCM or AlgorithmNone.
	Algorithm string
	// Version is the monotonic version of the logical record.
	Version uint64
	// Signature is the device signature over SigningBytes; empty until the
	// envelope has been signed.
	Signature []byte
}

// NewPublic builds the passthrough envelope for public data. No cryptography
// is applied: this is an explicit policy decision, not an optimization.
func NewPublic(plaintext []byte, version uint64) *Envelope {
	return &Envelope{
		Ciphertext:     append([]byte(nil), plaintext...),
		Classification: ClassificationPublic,
		Algorithm:      AlgorithmNone,
		Version:        version,
	}
}

// newSealed builds an encrypted envelope. Only Codec.Encrypt calls it, which
// is what makes a sealed envelope with algorithm "none" unrepresentable.
func newSealed(ciphertext, nonce, tag []byte, class Classification, version uint64) *Envelope {
	return &Envelope{
		Ciphertext:     ciphertext,
		Nonce:          nonce,
		AuthTag:        tag,
		Classification: class,
		Algorithm:      AlgorithmAESGCM,
		Version:        version,
	}
}

// Validate checks the structural invariants of an envelope received from an
// untrusted party.
func (e *Envelope) Validate() error {
	if _, err := ParseClassification(string(e.Classification)); err != nil {
		return err
	}
	switch e.Algorithm {
	case AlgorithmNone:
		if e.Classification.Encrypted() {
			return ErrInvalidEnvelope
		}
		if len(e.Nonce) != 0 || len(e.AuthTag) != 0 {
			return ErrInvalidEnvelope
		}
	case AlgorithmAESGCM:
		if !e.Classification.Encrypted() {
			return ErrInvalidEnvelope
		}
		if len(e.Nonce) != NonceSize || len(e.AuthTag) != TagSize {
			return ErrInvalidEnvelope
		}
	default:
		return ErrUnsupportedAlgorithm
	}
	return nil
}

// Signed reports whether a signature is attached.
func (e *Envelope) Signed() bool {
	return len(e.Signature) > 0
}

// SigningBytes returns the bytes a device signs: ciphertext || nonce ||
// authTag. Nonce and tag are fixed-size for the sealed algorithm and empty
// for the public one, so the concatenation is unambiguous per algorithm.
func (e *Envelope) SigningBytes() []byte {
	out := make([]byte, 0, len(e.Ciphertext)+len(e.Nonce)+len(e.AuthTag))
	out = append(out, e.Ciphertext...)
	out = append(out, e.Nonce...)
	out = append(out, e.AuthTag...)
	return out
}

// Clone returns a deep copy.
func (e *Envelope) Clone() *Envelope {
	clone := *e
	clone.Ciphertext = append([]byte(nil), e.Ciphertext...)
	clone.Nonce = append([]byte(nil), e.Nonce...)
	clone.AuthTag = append([]byte(nil), e.AuthTag...)
	clone.Signature = append([]byte(nil), e.Signature...)
	return &clone
}

// wireEnvelope is the JSON schema: byte fields travel as URL-safe base64
// without padding.
type wireEnvelope struct {
	Ciphertext     string `json:"ciphertext"`
	Nonce          string `json:"nonce,omitempty"`
	AuthTag        string `json:"authTag,omitempty"`
	Classification string `json:"classification"`
	Algorithm      string `json:"algorithm"`
	Version        uint64 `json:"version"`
	Signature      string `json:"signature,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (e *Envelope) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireEnvelope{
		Ciphertext:     toBase64URL(e.Ciphertext),
		Nonce:          toBase64URL(e.Nonce),
		AuthTag:        toBase64URL(e.AuthTag),
		Classification: string(e.Classification),
		Algorithm:      e.Algorithm,
		Version:        e.Version,
		Signature:      toBase64URL(e.Signature),
	})
}

// UnmarshalJSON implements json.Unmarshaler and validates the decoded
// envelope.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var w wireEnvelope
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	ciphertext, err := fromBase64URL(w.Ciphertext)
	if err != nil {
		return ErrInvalidEnvelope
	}
	nonce, err := fromBase64URL(w.Nonce)
	if err != nil {
		return ErrInvalidEnvelope
	}
	tag, err := fromBase64URL(w.AuthTag)
	if err != nil {
		return ErrInvalidEnvelope
	}
	sig, err := fromBase64URL(w.Signature)
	if err != nil {
		return ErrInvalidEnvelope
	}

	decoded := Envelope{
		Ciphertext:     ciphertext,
		Nonce:          nonce,
		AuthTag:        tag,
		Classification: Classification(w.Classification),
		Algorithm:      w.Algorithm,
		Version:        w.Version,
		Signature:      sig,
	}
	if err := decoded.Validate(); err != nil {
		return err
	}
	*e = decoded
	return nil
}

// toBase64URL encodes bytes as URL-safe base64 without padding.
func toBase64URL(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// fromBase64URL decodes URL-safe base64, tolerating padding.
func fromBase64URL(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	data, err := base64.RawURLEncoding.DecodeString(s)
	if err == nil {
		return data, nil
	}
	return base64.URLEncoding.DecodeString(s)
}
