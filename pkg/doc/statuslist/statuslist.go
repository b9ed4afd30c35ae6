/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package statuslist decodes and encodes the compressed status arrays of the IETF Token Status
// List and the W3C Bitstring Status List.
package statuslist

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/multiformats/go-multibase"
)

const (
	bitsPerByte = 8
	bitOffset   = 7

	// maxDecodedSize caps the inflated list to keep a hostile list from exhausting memory.
	maxDecodedSize = 16 << 20
)

// ErrInvalidIndex is returned when a status index falls outside the list.
var ErrInvalidIndex = errors.New("status index is invalid")

// List is a packed array of fixed size status values.
type List struct {
	bits       []byte
	statusSize int
	// msbFirst selects the W3C bit order: the first status occupies the left-most bits.
	msbFirst bool
}

// Opt configures a new list.
type Opt func(*List)

// WithMSBFirst selects the W3C Bitstring Status List bit order.
func WithMSBFirst() Opt {
	return func(l *List) {
		l.msbFirst = true
	}
}

// New returns a zeroed list holding size statuses of statusSize bits each.
func New(size, statusSize int, opts ...Opt) (*List, error) {
	if err := checkStatusSize(statusSize); err != nil {
		return nil, err
	}

	if size <= 0 {
		return nil, fmt.Errorf("list size must be positive")
	}

	byteLen := (size*statusSize + bitsPerByte - 1) / bitsPerByte

	return newList(make([]byte, byteLen), statusSize, opts), nil
}

func newList(bits []byte, statusSize int, opts []Opt) *List {
	l := &List{bits: bits, statusSize: statusSize}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

func checkStatusSize(statusSize int) error {
	switch statusSize {
	case 1, 2, 4, 8:
		return nil
	default:
		return fmt.Errorf("unsupported status size %d", statusSize)
	}
}

// DecodeToken decodes the "lst" member of a Token Status List: base64url without padding over
// a zlib stream, statuses packed least significant bit first.
func DecodeToken(statusSize int, lst string) (*List, error) {
	if err := checkStatusSize(statusSize); err != nil {
		return nil, err
	}

	compressed, err := base64.RawURLEncoding.DecodeString(lst)
	if err != nil {
		return nil, fmt.Errorf("decode status list: %w", err)
	}

	r, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("inflate status list: %w", err)
	}

	bits, err := readAll(r)
	if err != nil {
		return nil, err
	}

	return newList(bits, statusSize, nil), nil
}

// DecodeBitstring decodes the "encodedList" member of a W3C Bitstring Status List: a multibase
// base64url string over a gzip stream, statuses packed most significant bit first.
func DecodeBitstring(statusSize int, encodedList string) (*List, error) {
	if err := checkStatusSize(statusSize); err != nil {
		return nil, err
	}

	var compressed []byte

	encoding, decoded, err := multibase.Decode(encodedList)
	if err == nil {
		if encoding != multibase.Base64url {
			return nil, fmt.Errorf("multibase encoding not supported: %d", encoding)
		}

		compressed = decoded
	} else {
		// StatusList2021 credentials carry the list without a multibase prefix.
		compressed, err = base64.RawURLEncoding.DecodeString(encodedList)
		if err != nil {
			return nil, fmt.Errorf("decode status list: %w", err)
		}
	}

	r, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("inflate status list: %w", err)
	}

	bits, err := readAll(r)
	if err != nil {
		return nil, err
	}

	return newList(bits, statusSize, []Opt{WithMSBFirst()}), nil
}

func readAll(r io.ReadCloser) ([]byte, error) {
	defer r.Close() //nolint:errcheck

	bits, err := io.ReadAll(io.LimitReader(r, maxDecodedSize+1))
	if err != nil {
		return nil, fmt.Errorf("inflate status list: %w", err)
	}

	if len(bits) > maxDecodedSize {
		return nil, fmt.Errorf("status list exceeds %d bytes", maxDecodedSize)
	}

	return bits, nil
}

// Len returns the number of statuses the list holds.
func (l *List) Len() int {
	return len(l.bits) * bitsPerByte / l.statusSize
}

// StatusSize returns the number of bits per status.
func (l *List) StatusSize() int {
	return l.statusSize
}

// Get returns the status at idx.
func (l *List) Get(idx int) (uint8, error) {
	if idx < 0 || idx >= l.Len() {
		return 0, ErrInvalidIndex
	}

	var value uint8

	for k := 0; k < l.statusSize; k++ {
		pos := idx*l.statusSize + k

		if l.msbFirst {
			value = value<<1 | (l.bits[pos/bitsPerByte]>>(bitOffset-pos%bitsPerByte))&1
		} else {
			value |= ((l.bits[pos/bitsPerByte] >> (pos % bitsPerByte)) & 1) << k
		}
	}

	return value, nil
}

// Set stores value at idx.
func (l *List) Set(idx int, value uint8) error {
	if idx < 0 || idx >= l.Len() {
		return ErrInvalidIndex
	}

	if l.statusSize < bitsPerByte && value>>l.statusSize != 0 {
		return fmt.Errorf("status value %d does not fit in %d bits", value, l.statusSize)
	}

	for k := 0; k < l.statusSize; k++ {
		pos := idx*l.statusSize + k

		var bit, shift uint8

		if l.msbFirst {
			bit = (value >> (l.statusSize - 1 - k)) & 1
			shift = uint8(bitOffset - pos%bitsPerByte)
		} else {
			bit = (value >> k) & 1
			shift = uint8(pos % bitsPerByte)
		}

		if bit == 1 {
			l.bits[pos/bitsPerByte] |= 1 << shift
		} else {
			l.bits[pos/bitsPerByte] &^= 1 << shift
		}
	}

	return nil
}

// EncodeToken returns the list as a Token Status List "lst" value.
func (l *List) EncodeToken() (string, error) {
	var buf bytes.Buffer

	w := zlib.NewWriter(&buf)

	if err := compress(w, l.bits); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(buf.Bytes()), nil
}

// EncodeBitstring returns the list as a W3C "encodedList" value.
func (l *List) EncodeBitstring() (string, error) {
	var buf bytes.Buffer

	w := gzip.NewWriter(&buf)

	if err := compress(w, l.bits); err != nil {
		return "", err
	}

	return multibase.Encode(multibase.Base64url, buf.Bytes())
}

func compress(w io.WriteCloser, bits []byte) error {
	if _, err := w.Write(bits); err != nil {
		return fmt.Errorf("compress status list: %w", err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("compress status list: %w", err)
	}

	return nil
}
