package hs_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/fivetwenty-io/hsclient/pkg/hs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkStream(t *testing.T) {
	t.Parallel()

	t.Run("hands out fixed size chunks", func(t *testing.T) {
		t.Parallel()

		data := bytes.Repeat([]byte{'x'}, 2*hs.ChunkSize+10)
		stream := hs.NewChunkStream(io.NopCloser(bytes.NewReader(data)), "application/zip", int64(len(data)))

		var sizes []int

		for {
			chunk, err := stream.Next()
			if errors.Is(err, io.EOF) {
				break
			}

			require.NoError(t, err)

			sizes = append(sizes, len(chunk))
		}

		assert.Equal(t, []int{hs.ChunkSize, hs.ChunkSize, 10}, sizes)
		require.NoError(t, stream.Close())
	})

	t.Run("empty body", func(t *testing.T) {
		t.Parallel()

		stream := hs.NewChunkStream(io.NopCloser(bytes.NewReader(nil)), "", -1)

		_, err := stream.Next()
		assert.Equal(t, io.EOF, err)
	})

	t.Run("copies to a writer", func(t *testing.T) {
		t.Parallel()

		data := bytes.Repeat([]byte("bag"), hs.ChunkSize)
		stream := hs.NewChunkStream(io.NopCloser(bytes.NewReader(data)), "application/zip", -1)

		var out bytes.Buffer

		n, err := io.Copy(&out, stream)
		require.NoError(t, err)
		assert.Equal(t, int64(len(data)), n)
		assert.Equal(t, data, out.Bytes())
	})
}
