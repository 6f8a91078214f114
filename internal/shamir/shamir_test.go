package shamir

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"
)

func TestSplitCombine_RoundTrip(t *testing.T) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		t.Fatal(err)
	}

	shares, err := Split(secret, 5, 3)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(shares) != 5 {
		t.Fatalf("len(shares) = %d, want 5", len(shares))
	}
	for i, share := range shares {
		if len(share) != len(secret)+1 {
			t.Errorf("share %d length = %d, want %d", i, len(share), len(secret)+1)
		}
		if bytes.Contains(share, secret) {
			t.Errorf("share %d contains the secret", i)
		}
	}

	// Every 3-subset reconstructs.
	subsets := [][]int{{0, 1, 2}, {0, 2, 4}, {1, 3, 4}, {2, 3, 4}}
	for _, subset := range subsets {
		picked := make([][]byte, 0, len(subset))
		for _, i := range subset {
			picked = append(picked, shares[i])
		}
		got, err := Combine(picked)
		if err != nil {
			t.Fatalf("Combine(%v) error = %v", subset, err)
		}
		if !bytes.Equal(got, secret) {
			t.Errorf("Combine(%v) = %x, want %x", subset, got, secret)
		}
	}

	// More than the threshold also works.
	got, err := Combine(shares)
	if err != nil {
		t.Fatalf("Combine(all) error = %v", err)
	}
	if !bytes.Equal(got, secret) {
		t.Error("Combine(all shares) did not reconstruct the secret")
	}
}

func TestCombine_BelowThreshold(t *testing.T) {
	secret := bytes.Repeat([]byte{0x5a}, 32)
	shares, err := Split(secret, 5, 3)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}

	got, err := Combine(shares[:2])
	if err != nil {
		t.Fatalf("Combine() error = %v", err)
	}
	if bytes.Equal(got, secret) {
		t.Error("two of three shares reconstructed the secret")
	}
}

func TestSplit_InvalidArguments(t *testing.T) {
	secret := []byte("secret")

	tests := []struct {
		name             string
		parts, threshold int
	}{
		{"threshold above parts", 3, 4},
		{"threshold below minimum", 5, 1},
		{"too many parts", 256, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Split(secret, tt.parts, tt.threshold); !errors.Is(err, ErrInvalidCount) {
				t.Errorf("Split() error = %v, want ErrInvalidCount", err)
			}
		})
	}

	if _, err := Split(nil, 5, 3); !errors.Is(err, ErrEmptySecret) {
		t.Errorf("Split(empty) error = %v, want ErrEmptySecret", err)
	}
}

func TestCombine_InvalidShares(t *testing.T) {
	secret := bytes.Repeat([]byte{0x01}, 16)
	shares, err := Split(secret, 3, 2)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}

	if _, err := Combine(shares[:1]); !errors.Is(err, ErrInvalidShares) {
		t.Errorf("single share error = %v, want ErrInvalidShares", err)
	}
	if _, err := Combine([][]byte{shares[0], shares[0]}); !errors.Is(err, ErrInvalidShares) {
		t.Errorf("duplicate shares error = %v, want ErrInvalidShares", err)
	}
	if _, err := Combine([][]byte{shares[0], shares[1][:4]}); !errors.Is(err, ErrInvalidShares) {
		t.Errorf("mismatched lengths error = %v, want ErrInvalidShares", err)
	}
}

func TestSplit_SharesDifferAcrossCalls(t *testing.T) {
	secret := bytes.Repeat([]byte{0x42}, 16)

	a, err := Split(secret, 3, 2)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	b, err := Split(secret, 3, 2)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if bytes.Equal(a[0], b[0]) {
		t.Error("two splits produced an identical share (no fresh randomness)")
	}
}
