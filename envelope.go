package vaultbak

import (
	"github.com/vaultbak/client-go/internal/envelope"
	"github.com/vaultbak/client-go/internal/keys"
	"github.com/vaultbak/client-go/internal/shamir"
)

// Envelope is the unit of stored data exchanged with the storage service.
type Envelope = envelope.Envelope

// Classification controls whether data is encrypted at all.
type Classification = envelope.Classification

// Classification values. Public data is deliberately stored unencrypted;
// every other classification is sealed with AES-256-GCM.
const (
	ClassificationPublic       = envelope.ClassificationPublic
	ClassificationInternal     = envelope.ClassificationInternal
	ClassificationConfidential = envelope.ClassificationConfidential
	ClassificationRestricted   = envelope.ClassificationRestricted
)

// ParseClassification validates a classification string.
func ParseClassification(s string) (Classification, error) {
	return envelope.ParseClassification(s)
}

// WrappedKey is a password-wrapped key as persisted through the Keystore.
type WrappedKey = keys.WrappedKey

// Purpose tags for the keys derived below a device master key.
const (
	PurposeBackup   = keys.BackupKeyInfo
	PurposeMetadata = keys.MetadataKeyInfo
)

// CombineRecoveryShares reconstructs a user master key from recovery shares
// produced by Session.RecoveryShares. At least the threshold used at split
// time must be supplied.
func CombineRecoveryShares(shares [][]byte) ([]byte, error) {
	return shamir.Combine(shares)
}
