// Package hkdf implements the RFC 5869 extract-and-expand key derivation
// function over HMAC-SHA-256.
//
// Every key in the vaultbak hierarchy is specified in terms of the
// extract/expand composition, so the primitive is built directly from
// crypto/hmac rather than wrapped from a streaming reader. The functions are
// pure: identical inputs always yield identical output, and no state is kept
// between calls.
package hkdf

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
)

// HashSize is the output size of the underlying hash (SHA-256).
const HashSize = sha256.Size

// MaxOutputLength is the largest output Expand can produce per RFC 5869
// (255 blocks of the hash size).
const MaxOutputLength = 255 * HashSize

// ErrOutputLengthExceeded is returned when the requested output length
// exceeds MaxOutputLength.
var ErrOutputLengthExceeded = errors.New("hkdf: requested output length exceeds 255*32 bytes")

// Extract computes the pseudorandom key PRK = HMAC-SHA-256(salt, ikm).
// An empty salt is replaced by HashSize zero bytes, as RFC 5869 requires.
func Extract(salt, ikm []byte) []byte {
	if len(salt) == 0 {
		salt = make([]byte, HashSize)
	}
	mac := hmac.New(sha256.New, salt)
	mac.Write(ikm)
	return mac.Sum(nil)
}

// Expand derives length bytes of output keying material from a pseudorandom
// key and an optional info string:
//
//	T(i) = HMAC-SHA-256(prk, T(i-1) || info || byte(i))   i = 1..N
//
// concatenated and truncated to length.
func Expand(prk, info []byte, length int) ([]byte, error) {
	if length < 0 || length > MaxOutputLength {
		return nil, ErrOutputLengthExceeded
	}

	okm := make([]byte, 0, length)
	var block []byte
	for i := byte(1); len(okm) < length; i++ {
		mac := hmac.New(sha256.New, prk)
		mac.Write(block)
		mac.Write(info)
		mac.Write([]byte{i})
		block = mac.Sum(nil)
		okm = append(okm, block...)
	}
	return okm[:length], nil
}

// Derive composes Extract and Expand.
func Derive(salt, ikm, info []byte, length int) ([]byte, error) {
	return Expand(Extract(salt, ikm), info, length)
}
