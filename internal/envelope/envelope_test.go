package envelope

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseClassification(t *testing.T) {
	for _, valid := range []string{"public", "internal", "confidential", "restricted"} {
		if _, err := ParseClassification(valid); err != nil {
			t.Errorf("ParseClassification(%q) error = %v", valid, err)
		}
	}
	for _, invalid := range []string{"", "Public", "secret", "top-secret"} {
		if _, err := ParseClassification(invalid); !errors.Is(err, ErrUnsupportedClassification) {
			t.Errorf("ParseClassification(%q) error = %v, want ErrUnsupportedClassification", invalid, err)
		}
	}
}

func TestClassification_Encrypted(t *testing.T) {
	if ClassificationPublic.Encrypted() {
		t.Error("public classification reports encrypted")
	}
	for _, c := range []Classification{ClassificationInternal, ClassificationConfidential, ClassificationRestricted} {
		if !c.Encrypted() {
			t.Errorf("%s classification reports unencrypted", c)
		}
	}
}

func TestEnvelope_JSONRoundTrip(t *testing.T) {
	codec := &Codec{}
	key := testKey(t)

	env, err := codec.Encrypt([]byte("payload"), key, ClassificationConfidential, 7)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	env.Signature = []byte("not-a-real-signature-but-64-bytes-long-padding-padding-padding!!")

	blob, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var restored Envelope
	if err := json.Unmarshal(blob, &restored); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if !bytes.Equal(restored.Ciphertext, env.Ciphertext) ||
		!bytes.Equal(restored.Nonce, env.Nonce) ||
		!bytes.Equal(restored.AuthTag, env.AuthTag) ||
		!bytes.Equal(restored.Signature, env.Signature) ||
		restored.Classification != env.Classification ||
		restored.Algorithm != env.Algorithm ||
		restored.Version != env.Version {
		t.Errorf("round trip mismatch: got %+v, want %+v", restored, env)
	}

	plaintext, err := codec.Decrypt(&restored, key)
	if err != nil {
		t.Fatalf("Decrypt() after JSON round trip error = %v", err)
	}
	if string(plaintext) != "payload" {
		t.Errorf("plaintext = %q, want %q", plaintext, "payload")
	}
}

func TestEnvelope_JSONOmitsUnsignedSignature(t *testing.T) {
	env := NewPublic([]byte("notes"), 1)

	blob, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if strings.Contains(string(blob), "signature") {
		t.Errorf("unsigned envelope serialized a signature field: %s", blob)
	}
	if strings.Contains(string(blob), "nonce") || strings.Contains(string(blob), "authTag") {
		t.Errorf("public envelope serialized nonce/tag fields: %s", blob)
	}
}

func TestEnvelope_UnmarshalRejectsMismatchedVariant(t *testing.T) {
	tests := []struct {
		name string
		json string
		want error
	}{
		{
			// Classification says sealed but algorithm says none.
			name: "confidential with algorithm none",
			json: `{"ciphertext":"cGxhaW4","classification":"confidential","algorithm":"none","version":1}`,
			want: ErrInvalidEnvelope,
		},
		{
			// Public data must not carry GCM fields.
			name: "public with algorithm AES-256-GCM",
			json: `{"ciphertext":"cGxhaW4","nonce":"AAAAAAAAAAAAAAAA","authTag":"AAAAAAAAAAAAAAAAAAAAAA","classification":"public","algorithm":"AES-256-GCM","version":1}`,
			want: ErrInvalidEnvelope,
		},
		{
			name: "unknown algorithm",
			json: `{"ciphertext":"cGxhaW4","classification":"public","algorithm":"ROT13","version":1}`,
			want: ErrUnsupportedAlgorithm,
		},
		{
			name: "unknown classification",
			json: `{"ciphertext":"cGxhaW4","classification":"secret","algorithm":"none","version":1}`,
			want: ErrUnsupportedClassification,
		},
		{
			name: "wrong nonce size",
			json: `{"ciphertext":"cGxhaW4","nonce":"AAAA","authTag":"AAAAAAAAAAAAAAAAAAAAAA","classification":"internal","algorithm":"AES-256-GCM","version":1}`,
			want: ErrInvalidEnvelope,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var env Envelope
			if err := json.Unmarshal([]byte(tt.json), &env); !errors.Is(err, tt.want) {
				t.Errorf("Unmarshal() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEnvelope_SigningBytes(t *testing.T) {
	env := &Envelope{
		Ciphertext:     []byte{1, 2, 3},
		Nonce:          []byte{4, 5},
		AuthTag:        []byte{6},
		Classification: ClassificationInternal,
		Algorithm:      AlgorithmAESGCM,
	}
	if !bytes.Equal(env.SigningBytes(), []byte{1, 2, 3, 4, 5, 6}) {
		t.Errorf("SigningBytes() = %v", env.SigningBytes())
	}

	public := NewPublic([]byte("plain"), 1)
	if !bytes.Equal(public.SigningBytes(), []byte("plain")) {
		t.Errorf("public SigningBytes() = %v", public.SigningBytes())
	}
}

func TestEnvelope_Clone(t *testing.T) {
	codec := &Codec{}
	env, err := codec.Encrypt([]byte("payload"), testKey(t), ClassificationInternal, 1)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	clone := env.Clone()
	clone.Ciphertext[0] ^= 0xff
	if env.Ciphertext[0] == clone.Ciphertext[0] {
		t.Error("Clone() shares ciphertext memory")
	}
}
