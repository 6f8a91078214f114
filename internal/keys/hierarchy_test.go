package keys

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"testing"
)

func TestGenerateMasterKey(t *testing.T) {
	a, err := GenerateMasterKey()
	if err != nil {
		t.Fatalf("GenerateMasterKey() error = %v", err)
	}
	if len(a) != KeySize {
		t.Errorf("key length = %d, want %d", len(a), KeySize)
	}

	b, err := GenerateMasterKey()
	if err != nil {
		t.Fatalf("GenerateMasterKey() error = %v", err)
	}
	if bytes.Equal(a, b) {
		t.Error("two generated master keys are identical")
	}
}

func TestHierarchy_MissingMasterKey(t *testing.T) {
	h := NewHierarchy()

	if _, err := h.Master(); !errors.Is(err, ErrMissingMasterKey) {
		t.Errorf("Master() error = %v, want ErrMissingMasterKey", err)
	}
	if _, err := h.DeviceKey([]byte("salt")); !errors.Is(err, ErrMissingMasterKey) {
		t.Errorf("DeviceKey() error = %v, want ErrMissingMasterKey", err)
	}
}

func TestHierarchy_DeviceKeyDeterministic(t *testing.T) {
	umk := bytes.Repeat([]byte{0x42}, KeySize)
	salt := sha256.Sum256([]byte("device-1"))

	h1 := NewHierarchy()
	if err := h1.SetMaster(umk); err != nil {
		t.Fatalf("SetMaster() error = %v", err)
	}
	h2 := NewHierarchy()
	if err := h2.SetMaster(umk); err != nil {
		t.Fatalf("SetMaster() error = %v", err)
	}

	dmk1, err := h1.DeviceKey(salt[:])
	if err != nil {
		t.Fatalf("DeviceKey() error = %v", err)
	}
	dmk2, err := h2.DeviceKey(salt[:])
	if err != nil {
		t.Fatalf("DeviceKey() error = %v", err)
	}
	if !bytes.Equal(dmk1, dmk2) {
		t.Error("same UMK and salt produced different device keys across sessions")
	}
	if len(dmk1) != KeySize {
		t.Errorf("device key length = %d, want %d", len(dmk1), KeySize)
	}
	if bytes.Equal(dmk1, umk) {
		t.Error("device key equals master key")
	}
}

func TestHierarchy_DeviceKeySaltSeparation(t *testing.T) {
	h := NewHierarchy()
	if err := h.Generate(); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	a, err := h.DeviceKey([]byte("device-a"))
	if err != nil {
		t.Fatalf("DeviceKey() error = %v", err)
	}
	b, err := h.DeviceKey([]byte("device-b"))
	if err != nil {
		t.Fatalf("DeviceKey() error = %v", err)
	}
	if bytes.Equal(a, b) {
		t.Error("different device salts produced the same device key")
	}
}

func TestHierarchy_SetMasterCopies(t *testing.T) {
	umk := bytes.Repeat([]byte{0x01}, KeySize)
	h := NewHierarchy()
	if err := h.SetMaster(umk); err != nil {
		t.Fatalf("SetMaster() error = %v", err)
	}

	umk[0] = 0xff
	got, err := h.Master()
	if err != nil {
		t.Fatalf("Master() error = %v", err)
	}
	if got[0] != 0x01 {
		t.Error("hierarchy shares memory with the caller's key slice")
	}
}

func TestHierarchy_SetMasterInvalidSize(t *testing.T) {
	h := NewHierarchy()
	if err := h.SetMaster(make([]byte, 16)); !errors.Is(err, ErrInvalidKeySize) {
		t.Errorf("SetMaster() error = %v, want ErrInvalidKeySize", err)
	}
}

func TestHierarchy_Zero(t *testing.T) {
	h := NewHierarchy()
	if err := h.Generate(); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	h.Zero()
	if _, err := h.Master(); !errors.Is(err, ErrMissingMasterKey) {
		t.Errorf("Master() after Zero() error = %v, want ErrMissingMasterKey", err)
	}
}

func TestPurposeKey_DomainSeparation(t *testing.T) {
	dmk := bytes.Repeat([]byte{0x07}, KeySize)

	backup, err := PurposeKey(dmk, BackupKeyInfo)
	if err != nil {
		t.Fatalf("PurposeKey() error = %v", err)
	}
	metadata, err := PurposeKey(dmk, MetadataKeyInfo)
	if err != nil {
		t.Fatalf("PurposeKey() error = %v", err)
	}

	if bytes.Equal(backup, metadata) {
		t.Error("backup and metadata keys are identical")
	}
	if bytes.Equal(backup, dmk) || bytes.Equal(metadata, dmk) {
		t.Error("purpose key equals its parent device key")
	}

	again, err := PurposeKey(dmk, BackupKeyInfo)
	if err != nil {
		t.Fatalf("PurposeKey() error = %v", err)
	}
	if !bytes.Equal(backup, again) {
		t.Error("purpose key derivation is not deterministic")
	}
}

func TestPurposeKey_InvalidSize(t *testing.T) {
	if _, err := PurposeKey([]byte("short"), BackupKeyInfo); !errors.Is(err, ErrInvalidKeySize) {
		t.Errorf("PurposeKey() error = %v, want ErrInvalidKeySize", err)
	}
}

func TestZero(t *testing.T) {
	b := []byte{1, 2, 3, 4}
	Zero(b)
	if !bytes.Equal(b, []byte{0, 0, 0, 0}) {
		t.Errorf("Zero() left %v", b)
	}
}
