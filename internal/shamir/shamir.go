// Package shamir implements Shamir secret sharing over GF(256), used to
// split the user master key into recovery shares. Each share is opaque to
// the storage collaborator; any threshold-sized subset reconstructs the
// secret and any smaller subset reveals nothing.
package shamir

import (
	"crypto/rand"
	"errors"
)

const (
	// MinShares is the smallest allowed threshold.
	MinShares = 2
	// MaxShares is the largest number of shares GF(256) supports with
	// distinct nonzero x-coordinates.
	MaxShares = 255
)

var (
	// ErrInvalidCount is returned when parts or threshold are out of range
	// or threshold exceeds parts.
	ErrInvalidCount = errors.New("shamir: invalid share count")

	// ErrEmptySecret is returned when splitting an empty secret.
	ErrEmptySecret = errors.New("shamir: secret must not be empty")

	// ErrInvalidShares is returned when combining shares that are missing,
	// mismatched in length, or duplicated.
	ErrInvalidShares = errors.New("shamir: invalid shares")
)

// Split divides secret into parts shares, any threshold of which reconstruct
// it. Each share is len(secret)+1 bytes: the share values followed by the
// share's x-coordinate.
func Split(secret []byte, parts, threshold int) ([][]byte, error) {
	if parts < threshold || parts > MaxShares || threshold < MinShares {
		return nil, ErrInvalidCount
	}
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	shares := make([][]byte, parts)
	for i := range shares {
		shares[i] = make([]byte, len(secret)+1)
		shares[i][len(secret)] = byte(i + 1) // nonzero x-coordinate
	}

	coefficients := make([]byte, threshold-1)
	for idx, b := range secret {
		// Random polynomial with p(0) = b.
		if _, err := rand.Read(coefficients); err != nil {
			return nil, err
		}
		for i := range shares {
			x := byte(i + 1)
			shares[i][idx] = evaluate(b, coefficients, x)
		}
	}

	return shares, nil
}

// Combine reconstructs the secret from at least a threshold of shares. With
// fewer than threshold shares it still returns bytes, but they are
// unrelated to the secret; the caller is responsible for supplying enough.
func Combine(shares [][]byte) ([]byte, error) {
	if len(shares) < MinShares {
		return nil, ErrInvalidShares
	}

	length := len(shares[0])
	if length < 2 {
		return nil, ErrInvalidShares
	}
	seen := make(map[byte]struct{}, len(shares))
	for _, share := range shares {
		if len(share) != length {
			return nil, ErrInvalidShares
		}
		x := share[length-1]
		if x == 0 {
			return nil, ErrInvalidShares
		}
		if _, dup := seen[x]; dup {
			return nil, ErrInvalidShares
		}
		seen[x] = struct{}{}
	}

	secret := make([]byte, length-1)
	xs := make([]byte, len(shares))
	ys := make([]byte, len(shares))
	for i, share := range shares {
		xs[i] = share[length-1]
	}
	for idx := range secret {
		for i, share := range shares {
			ys[i] = share[idx]
		}
		secret[idx] = interpolate(xs, ys)
	}
	return secret, nil
}

// evaluate computes p(x) by Horner's rule, where p has constant term
// intercept and the given higher-order coefficients.
func evaluate(intercept byte, coefficients []byte, x byte) byte {
	out := byte(0)
	for i := len(coefficients) - 1; i >= 0; i-- {
		out = mul(out, x) ^ coefficients[i]
	}
	return mul(out, x) ^ intercept
}

// interpolate evaluates the Lagrange interpolation of the points at x = 0.
func interpolate(xs, ys []byte) byte {
	out := byte(0)
	for i := range xs {
		basis := byte(1)
		for j := range xs {
			if i == j {
				continue
			}
			basis = mul(basis, div(xs[j], xs[i]^xs[j]))
		}
		out ^= mul(basis, ys[i])
	}
	return out
}

// mul multiplies in GF(2^8) with the AES reduction polynomial.
func mul(a, b byte) byte {
	var p byte
	for b > 0 {
		if b&1 == 1 {
			p ^= a
		}
		carry := a & 0x80
		a <<= 1
		if carry != 0 {
			a ^= 0x1b
		}
		b >>= 1
	}
	return p
}

// div divides in GF(2^8). Division by zero is a caller bug and never occurs
// with distinct x-coordinates.
func div(a, b byte) byte {
	if a == 0 {
		return 0
	}
	return mul(a, inverse(b))
}

// inverse computes the multiplicative inverse as b^254.
func inverse(b byte) byte {
	out := byte(1)
	for i := 0; i < 254; i++ {
		out = mul(out, b)
	}
	return out
}
