/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package dataprotect

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

const (
	keySizeDiv = 8

	// DefaultKeyLength is the data key length in bits.
	DefaultKeyLength = 256
)

// AES seals data with AES-GCM. The nonce is prepended to the ciphertext.
type AES struct {
	keyLength int
}

// NewAES returns an AES-GCM cipher producing keys of keyLength bits.
func NewAES(keyLength int) *AES {
	return &AES{keyLength: keyLength}
}

// GenerateKey returns a random key.
func (a *AES) GenerateKey() ([]byte, error) {
	key := make([]byte, a.keyLength/keySizeDiv)

	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("generate data key: %w", err)
	}

	return key, nil
}

// Seal encrypts data under key, authenticating aad.
func (a *AES) Seal(key, data, aad []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	return gcm.Seal(nonce, nonce, data, aad), nil
}

// Open decrypts data sealed by Seal.
func (a *AES) Open(key, data, aad []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if len(data) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("open ciphertext: %w", err)
	}

	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	return cipher.NewGCM(block)
}

// KeyWrapper wraps data keys with a key encryption key.
type KeyWrapper struct {
	kek    []byte
	cipher *AES
}

var wrapAAD = []byte("vp-verifier data key")

// NewKeyWrapper returns a wrapper for a 16, 24 or 32 byte key encryption key.
func NewKeyWrapper(kek []byte) (*KeyWrapper, error) {
	switch len(kek) {
	case 16, 24, 32: //nolint:gomnd
	default:
		return nil, fmt.Errorf("key encryption key must be 16, 24 or 32 bytes, got %d", len(kek))
	}

	return &KeyWrapper{kek: kek, cipher: NewAES(len(kek) * keySizeDiv)}, nil
}

// Wrap encrypts a data key.
func (w *KeyWrapper) Wrap(dataKey []byte) ([]byte, error) {
	return w.cipher.Seal(w.kek, dataKey, wrapAAD)
}

// Unwrap decrypts a wrapped data key.
func (w *KeyWrapper) Unwrap(wrapped []byte) ([]byte, error) {
	key, err := w.cipher.Open(w.kek, wrapped, wrapAAD)
	if err != nil {
		return nil, fmt.Errorf("unwrap data key: %w", err)
	}

	return key, nil
}
