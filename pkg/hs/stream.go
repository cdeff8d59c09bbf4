package hs

import (
	"errors"
	"fmt"
	"io"
)

// ChunkSize is the size of the chunks a ChunkStream hands out.
const ChunkSize = 100 * 1024

// ChunkStream is a finite stream of byte chunks read from a response body.
// It is also an io.ReadCloser. The caller must Close it.
type ChunkStream struct {
	body        io.ReadCloser
	buf         []byte
	ContentType string
	// ContentLength is -1 when the server did not announce it.
	ContentLength int64
}

// NewChunkStream wraps body.
func NewChunkStream(body io.ReadCloser, contentType string, contentLength int64) *ChunkStream {
	return &ChunkStream{
		body:          body,
		buf:           make([]byte, ChunkSize),
		ContentType:   contentType,
		ContentLength: contentLength,
	}
}

// Next returns the following chunk, at most ChunkSize bytes long, or io.EOF
// at the end of the stream. The returned slice is only valid until the next
// call.
func (s *ChunkStream) Next() ([]byte, error) {
	n, err := io.ReadFull(s.body, s.buf)
	if n > 0 {
		return s.buf[:n], nil
	}

	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return nil, io.EOF
	}

	return nil, fmt.Errorf("reading stream: %w", err)
}

// Read implements io.Reader.
func (s *ChunkStream) Read(p []byte) (int, error) {
	return s.body.Read(p)
}

// Close implements io.Closer.
func (s *ChunkStream) Close() error {
	return s.body.Close()
}

// WriteTo copies the stream chunk by chunk into w.
func (s *ChunkStream) WriteTo(w io.Writer) (int64, error) {
	var written int64

	for {
		chunk, err := s.Next()
		if errors.Is(err, io.EOF) {
			return written, nil
		}

		if err != nil {
			return written, err
		}

		n, err := w.Write(chunk)
		written += int64(n)

		if err != nil {
			return written, fmt.Errorf("writing chunk: %w", err)
		}
	}
}
