/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package dataprotect seals stored session records with envelope encryption: every record gets
// a fresh data key, the data key is wrapped with a configured key encryption key, and the record
// is optionally compressed before it is encrypted.
package dataprotect

import "context"

// Protector seals and opens stored records.
type Protector interface {
	Encrypt(ctx context.Context, msg []byte) (*EncryptedData, error)
	Decrypt(ctx context.Context, encryptedData *EncryptedData) ([]byte, error)
}

// EncryptedData is a sealed record. Chunks are sealed in order; each chunk binds its position.
type EncryptedData struct {
	Chunks       [][]byte `json:"chunks"`
	EncryptedKey []byte   `json:"encrypted_key,omitempty"`
	Compression  string   `json:"compression,omitempty"`
}
