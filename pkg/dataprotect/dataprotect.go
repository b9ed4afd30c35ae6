/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package dataprotect

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/gammazero/workerpool"
	"github.com/samber/lo"
)

const (
	defaultMaxChunkSize       = 64 * 1024
	defaultRoutinesPerRequest = 4
)

type keyWrapper interface {
	Wrap(dataKey []byte) ([]byte, error)
	Unwrap(wrapped []byte) ([]byte, error)
}

type dataCipher interface {
	GenerateKey() ([]byte, error)
	Seal(key, data, aad []byte) ([]byte, error)
	Open(key, data, aad []byte) ([]byte, error)
}

// Config configures a DataProtector.
type Config struct {
	KeyWrapper         keyWrapper
	Cipher             dataCipher
	Compressor         DataCompressor
	MaxChunkSize       int
	RoutinesPerRequest int
}

// DataProtector seals records with a per record data key wrapped by a key encryption key. Large
// records are split into chunks sealed in parallel.
type DataProtector struct {
	keyWrapper         keyWrapper
	cipher             dataCipher
	compressor         DataCompressor
	maxChunkSize       int
	routinesPerRequest int
}

// NewDataProtector returns a protector. Cipher defaults to AES-256-GCM and Compressor to none.
func NewDataProtector(cfg *Config) *DataProtector {
	p := &DataProtector{
		keyWrapper:         cfg.KeyWrapper,
		cipher:             cfg.Cipher,
		compressor:         cfg.Compressor,
		maxChunkSize:       cfg.MaxChunkSize,
		routinesPerRequest: cfg.RoutinesPerRequest,
	}

	if p.cipher == nil {
		p.cipher = NewAES(DefaultKeyLength)
	}

	if p.compressor == nil {
		p.compressor = noCompression{}
	}

	if p.maxChunkSize <= 0 {
		p.maxChunkSize = defaultMaxChunkSize
	}

	if p.routinesPerRequest < 1 {
		p.routinesPerRequest = defaultRoutinesPerRequest
	}

	return p
}

// Encrypt compresses and seals msg.
func (d *DataProtector) Encrypt(_ context.Context, msg []byte) (*EncryptedData, error) {
	compressed, err := d.compressor.Compress(msg)
	if err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}

	dataKey, err := d.cipher.GenerateKey()
	if err != nil {
		return nil, err
	}

	chunks := lo.Chunk(compressed, d.maxChunkSize)
	if len(chunks) == 0 {
		chunks = [][]byte{{}}
	}

	sealed, err := d.forEachChunk(chunks, func(i int, c []byte) ([]byte, error) {
		return d.cipher.Seal(dataKey, c, chunkAAD(i, len(chunks)))
	})
	if err != nil {
		return nil, fmt.Errorf("seal chunk: %w", err)
	}

	wrapped, err := d.keyWrapper.Wrap(dataKey)
	if err != nil {
		return nil, fmt.Errorf("wrap data key: %w", err)
	}

	return &EncryptedData{
		Chunks:       sealed,
		EncryptedKey: wrapped,
		Compression:  d.compressor.Name(),
	}, nil
}

// Decrypt opens and decompresses a record sealed by Encrypt.
func (d *DataProtector) Decrypt(_ context.Context, encryptedData *EncryptedData) ([]byte, error) {
	if len(encryptedData.Chunks) == 0 {
		return nil, errors.New("encrypted data has no chunks")
	}

	compressor, err := NewCompressor(encryptedData.Compression)
	if err != nil {
		return nil, err
	}

	dataKey, err := d.keyWrapper.Unwrap(encryptedData.EncryptedKey)
	if err != nil {
		return nil, err
	}

	total := len(encryptedData.Chunks)

	opened, err := d.forEachChunk(encryptedData.Chunks, func(i int, c []byte) ([]byte, error) {
		return d.cipher.Open(dataKey, c, chunkAAD(i, total))
	})
	if err != nil {
		return nil, fmt.Errorf("open chunk: %w", err)
	}

	var compressed []byte
	for _, c := range opened {
		compressed = append(compressed, c...)
	}

	msg, err := compressor.Decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}

	return msg, nil
}

func (d *DataProtector) forEachChunk(chunks [][]byte, fn func(i int, c []byte) ([]byte, error)) ([][]byte, error) {
	var (
		mu       sync.Mutex
		finalErr error
	)

	out := make([][]byte, len(chunks))
	pool := workerpool.New(d.routinesPerRequest)

	for i := range chunks {
		i := i

		pool.Submit(func() {
			res, err := fn(i, chunks[i])

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				if finalErr == nil {
					finalErr = err
				}

				return
			}

			out[i] = res
		})
	}

	pool.StopWait()

	if finalErr != nil {
		return nil, finalErr
	}

	return out, nil
}

// chunkAAD binds a chunk to its position and the chunk count.
func chunkAAD(i, total int) []byte {
	aad := make([]byte, 8) //nolint:gomnd
	binary.BigEndian.PutUint32(aad[:4], uint32(i))
	binary.BigEndian.PutUint32(aad[4:], uint32(total))

	return aad
}
