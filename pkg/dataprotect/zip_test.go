/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package dataprotect_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustbloc/vp-verifier/pkg/dataprotect"
)

func TestCompressors(t *testing.T) {
	input := bytes.Repeat([]byte("compress me "), 64)

	for _, algo := range []string{"none", "GZIP", "zstd"} {
		t.Run(algo, func(t *testing.T) {
			c, err := dataprotect.NewCompressor(algo)
			require.NoError(t, err)

			compressed, err := c.Compress(input)
			require.NoError(t, err)

			if algo != "none" {
				assert.Less(t, len(compressed), len(input))
			}

			decompressed, err := c.Decompress(compressed)
			require.NoError(t, err)
			assert.Equal(t, input, decompressed)
		})
	}

	t.Run("unsupported", func(t *testing.T) {
		_, err := dataprotect.NewCompressor("lz4")
		assert.ErrorContains(t, err, "unsupported compression")
	})

	t.Run("invalid input", func(t *testing.T) {
		for _, algo := range []string{"gzip", "zstd"} {
			c, err := dataprotect.NewCompressor(algo)
			require.NoError(t, err)

			_, err = c.Decompress([]byte("not compressed"))
			assert.Error(t, err, algo)
		}
	})

	t.Run("decompression bomb", func(t *testing.T) {
		bomb := make([]byte, dataprotect.MaxDecompressedSize+1)

		for _, algo := range []string{"gzip", "zstd"} {
			c, err := dataprotect.NewCompressor(algo)
			require.NoError(t, err)

			compressed, err := c.Compress(bomb)
			require.NoError(t, err)

			_, err = c.Decompress(compressed)
			assert.Error(t, err, algo)
		}
	})

	t.Run("name", func(t *testing.T) {
		c, err := dataprotect.NewCompressor("")
		require.NoError(t, err)
		assert.Equal(t, dataprotect.CompressionNone, c.Name())
	})
}
