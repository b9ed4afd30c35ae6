/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package dataprotect

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

const (
	CompressionNone = "none"
	CompressionGzip = "gzip"
	CompressionZstd = "zstd"
)

// MaxDecompressedSize bounds the size of a decompressed record.
const MaxDecompressedSize = 16 << 20

var errTooLarge = fmt.Errorf("decompressed data exceeds %d bytes", MaxDecompressedSize)

// DataCompressor compresses records before they are sealed.
type DataCompressor interface {
	Name() string
	Compress(input []byte) ([]byte, error)
	Decompress(input []byte) ([]byte, error)
}

// NewCompressor returns the compressor for algo: none, gzip or zstd. An empty algo means none.
func NewCompressor(algo string) (DataCompressor, error) {
	switch strings.ToLower(algo) {
	case "", CompressionNone:
		return noCompression{}, nil
	case CompressionGzip:
		return gzipCompression{}, nil
	case CompressionZstd:
		return &zstdCompression{}, nil
	default:
		return nil, fmt.Errorf("unsupported compression %q", algo)
	}
}

type noCompression struct{}

func (noCompression) Name() string { return CompressionNone }

func (noCompression) Compress(input []byte) ([]byte, error) { return input, nil }

func (noCompression) Decompress(input []byte) ([]byte, error) { return input, nil }

type gzipCompression struct{}

func (gzipCompression) Name() string { return CompressionGzip }

func (gzipCompression) Compress(input []byte) ([]byte, error) {
	var buf bytes.Buffer

	w := gzip.NewWriter(&buf)

	if _, err := w.Write(input); err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}

	return buf.Bytes(), nil
}

func (gzipCompression) Decompress(input []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(input))
	if err != nil {
		return nil, fmt.Errorf("gunzip: %w", err)
	}

	defer r.Close() //nolint:errcheck

	out, err := io.ReadAll(io.LimitReader(r, MaxDecompressedSize+1))
	if err != nil {
		return nil, fmt.Errorf("gunzip: %w", err)
	}

	if len(out) > MaxDecompressedSize {
		return nil, errTooLarge
	}

	return out, nil
}

// zstdCompression shares one encoder and decoder; EncodeAll and DecodeAll are safe for concurrent use.
type zstdCompression struct {
	once    sync.Once
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	initErr error
}

func (z *zstdCompression) Name() string { return CompressionZstd }

func (z *zstdCompression) init() error {
	z.once.Do(func() {
		z.encoder, z.initErr = zstd.NewWriter(nil)
		if z.initErr != nil {
			return
		}

		z.decoder, z.initErr = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxDecompressedSize))
	})

	return z.initErr
}

func (z *zstdCompression) Compress(input []byte) ([]byte, error) {
	if err := z.init(); err != nil {
		return nil, fmt.Errorf("zstd: %w", err)
	}

	return z.encoder.EncodeAll(input, nil), nil
}

func (z *zstdCompression) Decompress(input []byte) ([]byte, error) {
	if err := z.init(); err != nil {
		return nil, fmt.Errorf("zstd: %w", err)
	}

	out, err := z.decoder.DecodeAll(input, nil)
	if err != nil {
		if errors.Is(err, zstd.ErrDecoderSizeExceeded) || errors.Is(err, zstd.ErrWindowSizeExceeded) {
			return nil, errTooLarge
		}

		return nil, fmt.Errorf("zstd: %w", err)
	}

	return out, nil
}
