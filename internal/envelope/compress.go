package envelope

import (
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Plaintext frame: a single flag byte followed by the body. The frame lives
// inside the AEAD, so the wire schema is unchanged and compression is
// invisible to the storage collaborator. Public envelopes are never framed.
const (
	frameRaw  byte = 0x00
	frameZstd byte = 0x01
)

const (
	// DefaultCompressionThreshold is the minimum plaintext size before
	// compression is attempted.
	DefaultCompressionThreshold = 1024

	// maxDecompressedSize caps the decompressed frame body (64MB) so a
	// malicious blob cannot expand into all available memory.
	maxDecompressedSize = 64 * 1024 * 1024
)

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
	zstdOnce    sync.Once
	zstdErr     error
)

func initZstd() (*zstd.Encoder, *zstd.Decoder, error) {
	zstdOnce.Do(func() {
		zstdEncoder, zstdErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if zstdErr != nil {
			return
		}
		zstdDecoder, zstdErr = zstd.NewReader(nil)
		if zstdErr != nil {
			zstdEncoder.Close()
			zstdEncoder = nil
		}
	})
	return zstdEncoder, zstdDecoder, zstdErr
}

// frame wraps plaintext in a flag-prefixed frame, compressing when the
// payload is large enough and compression actually shrinks it.
func (c *Codec) frame(plaintext []byte) ([]byte, error) {
	threshold := c.CompressionThreshold
	if threshold <= 0 {
		threshold = DefaultCompressionThreshold
	}

	if !c.CompressionDisabled && len(plaintext) >= threshold {
		encoder, _, err := initZstd()
		if err == nil {
			compressed := encoder.EncodeAll(plaintext, nil)
			if len(compressed) < len(plaintext) {
				out := make([]byte, 0, 1+len(compressed))
				out = append(out, frameZstd)
				return append(out, compressed...), nil
			}
		}
	}

	out := make([]byte, 0, 1+len(plaintext))
	out = append(out, frameRaw)
	return append(out, plaintext...), nil
}

// unframe restores the plaintext from a frame produced by frame.
func unframe(framed []byte) ([]byte, error) {
	if len(framed) == 0 {
		return nil, ErrDecompressionFailed
	}
	body := framed[1:]
	switch framed[0] {
	case frameRaw:
		return body, nil
	case frameZstd:
		_, decoder, err := initZstd()
		if err != nil {
			return nil, err
		}
		plaintext, err := decoder.DecodeAll(body, nil)
		if err != nil {
			return nil, ErrDecompressionFailed
		}
		if len(plaintext) > maxDecompressedSize {
			return nil, ErrDecompressionFailed
		}
		return plaintext, nil
	default:
		return nil, ErrDecompressionFailed
	}
}
