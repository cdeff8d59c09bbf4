package http

import (
	"bytes"
	"io"

	"github.com/hashicorp/go-retryablehttp"
)

// ProgressFunc receives the number of request body bytes handed to the
// connection so far and the total body size.
type ProgressFunc func(sent, total int64)

// progressReader counts the bytes read from a request body. Len keeps the
// content length known to retryablehttp.
type progressReader struct {
	reader   *bytes.Reader
	total    int64
	sent     int64
	progress ProgressFunc
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if n > 0 {
		r.sent += int64(n)
		r.progress(r.sent, r.total)
	}

	return n, err
}

func (r *progressReader) Len() int {
	return r.reader.Len()
}

// progressBody returns a body that restarts the count on every attempt.
func progressBody(body []byte, progress ProgressFunc) retryablehttp.ReaderFunc {
	return func() (io.Reader, error) {
		return &progressReader{
			reader:   bytes.NewReader(body),
			total:    int64(len(body)),
			progress: progress,
		}, nil
	}
}
