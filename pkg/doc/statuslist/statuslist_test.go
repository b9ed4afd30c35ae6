/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package statuslist

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"testing"

	"github.com/multiformats/go-multibase"
	"github.com/stretchr/testify/require"
)

func TestList_TokenBitOrder(t *testing.T) {
	t.Run("one bit", func(t *testing.T) {
		l := newList([]byte{0xB9, 0xA3}, 1, nil)
		require.Equal(t, 16, l.Len())

		expected := []uint8{1, 0, 0, 1, 1, 1, 0, 1, 1, 1, 0, 0, 0, 1, 0, 1}

		for i, want := range expected {
			got, err := l.Get(i)
			require.NoError(t, err)
			require.Equal(t, want, got, "index %d", i)
		}
	})

	t.Run("two bits", func(t *testing.T) {
		l := newList([]byte{0xC9, 0x44, 0xF9}, 2, nil)

		expected := []uint8{1, 2, 0, 3, 0, 1, 0, 1, 1, 2, 3, 3}

		for i, want := range expected {
			got, err := l.Get(i)
			require.NoError(t, err)
			require.Equal(t, want, got, "index %d", i)
		}
	})
}

func TestList_BitstringBitOrder(t *testing.T) {
	l := newList([]byte{0x80, 0x01}, 1, []Opt{WithMSBFirst()})

	v, err := l.Get(0)
	require.NoError(t, err)
	require.Equal(t, uint8(1), v)

	v, err = l.Get(15)
	require.NoError(t, err)
	require.Equal(t, uint8(1), v)

	v, err = l.Get(7)
	require.NoError(t, err)
	require.Equal(t, uint8(0), v)

	l = newList([]byte{0x60}, 2, []Opt{WithMSBFirst()})

	v, err = l.Get(0)
	require.NoError(t, err)
	require.Equal(t, uint8(1), v)

	v, err = l.Get(1)
	require.NoError(t, err)
	require.Equal(t, uint8(2), v)
}

func TestList_SetGet(t *testing.T) {
	for _, msb := range []bool{false, true} {
		var opts []Opt
		if msb {
			opts = append(opts, WithMSBFirst())
		}

		for _, size := range []int{1, 2, 4, 8} {
			l, err := New(100, size, opts...)
			require.NoError(t, err)
			require.GreaterOrEqual(t, l.Len(), 100)
			require.Equal(t, size, l.StatusSize())

			maxValue := uint8(1<<size - 1)

			require.NoError(t, l.Set(3, maxValue))
			require.NoError(t, l.Set(4, 1))

			v, err := l.Get(3)
			require.NoError(t, err)
			require.Equal(t, maxValue, v)

			v, err = l.Get(4)
			require.NoError(t, err)
			require.Equal(t, uint8(1), v)

			v, err = l.Get(5)
			require.NoError(t, err)
			require.Equal(t, uint8(0), v)

			require.NoError(t, l.Set(3, 0))

			v, err = l.Get(3)
			require.NoError(t, err)
			require.Equal(t, uint8(0), v)
		}
	}
}

func TestList_Errors(t *testing.T) {
	_, err := New(10, 3)
	require.ErrorContains(t, err, "unsupported status size 3")

	_, err = New(0, 1)
	require.ErrorContains(t, err, "list size must be positive")

	l, err := New(8, 2)
	require.NoError(t, err)

	_, err = l.Get(8)
	require.ErrorIs(t, err, ErrInvalidIndex)

	_, err = l.Get(-1)
	require.ErrorIs(t, err, ErrInvalidIndex)

	require.ErrorIs(t, l.Set(100, 1), ErrInvalidIndex)
	require.ErrorContains(t, l.Set(0, 4), "does not fit in 2 bits")
}

func TestDecodeToken(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		l, err := New(1000, 2)
		require.NoError(t, err)
		require.NoError(t, l.Set(777, 2))

		lst, err := l.EncodeToken()
		require.NoError(t, err)

		decoded, err := DecodeToken(2, lst)
		require.NoError(t, err)

		v, err := decoded.Get(777)
		require.NoError(t, err)
		require.Equal(t, uint8(2), v)
	})

	t.Run("invalid base64", func(t *testing.T) {
		_, err := DecodeToken(1, "!!!!")
		require.ErrorContains(t, err, "decode status list")
	})

	t.Run("not zlib", func(t *testing.T) {
		_, err := DecodeToken(1, base64.RawURLEncoding.EncodeToString([]byte("plain")))
		require.ErrorContains(t, err, "inflate status list")
	})

	t.Run("invalid status size", func(t *testing.T) {
		_, err := DecodeToken(5, "")
		require.ErrorContains(t, err, "unsupported status size")
	})
}

func TestDecodeBitstring(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		l, err := New(131072, 1, WithMSBFirst())
		require.NoError(t, err)
		require.NoError(t, l.Set(94567, 1))

		encoded, err := l.EncodeBitstring()
		require.NoError(t, err)
		require.Equal(t, byte('u'), encoded[0])

		decoded, err := DecodeBitstring(1, encoded)
		require.NoError(t, err)

		v, err := decoded.Get(94567)
		require.NoError(t, err)
		require.Equal(t, uint8(1), v)

		v, err = decoded.Get(94566)
		require.NoError(t, err)
		require.Equal(t, uint8(0), v)
	})

	t.Run("without multibase prefix", func(t *testing.T) {
		var buf bytes.Buffer

		w := gzip.NewWriter(&buf)
		_, err := w.Write([]byte{0x80})
		require.NoError(t, err)
		require.NoError(t, w.Close())

		decoded, err := DecodeBitstring(1, base64.RawURLEncoding.EncodeToString(buf.Bytes()))
		require.NoError(t, err)

		v, err := decoded.Get(0)
		require.NoError(t, err)
		require.Equal(t, uint8(1), v)
	})

	t.Run("unsupported multibase encoding", func(t *testing.T) {
		str, err := multibase.Encode(multibase.Base64pad, []byte("data"))
		require.NoError(t, err)

		_, err = DecodeBitstring(1, str)
		require.ErrorContains(t, err, "multibase encoding not supported")
	})

	t.Run("not gzip", func(t *testing.T) {
		str, err := multibase.Encode(multibase.Base64url, []byte("data"))
		require.NoError(t, err)

		_, err = DecodeBitstring(1, str)
		require.ErrorContains(t, err, "inflate status list")
	})
}
