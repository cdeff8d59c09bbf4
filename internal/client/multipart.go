package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/fivetwenty-io/hsclient/internal/constants"
	"github.com/fivetwenty-io/hsclient/pkg/hs"
	"github.com/h2non/filetype"
	"github.com/spf13/afero"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// multipartForm builds a multipart/form-data body in memory. fields keeps
// the plain fields for error reports.
type multipartForm struct {
	buf    bytes.Buffer
	writer *multipart.Writer
	fields url.Values
	err    error
}

func newMultipartForm() *multipartForm {
	form := &multipartForm{fields: url.Values{}}
	form.writer = multipart.NewWriter(&form.buf)

	return form
}

func (f *multipartForm) addField(name, value string) {
	if f.err != nil {
		return
	}

	f.fields.Add(name, value)

	err := f.writer.WriteField(name, value)
	if err != nil {
		f.err = fmt.Errorf("writing form field %s: %w", name, err)
	}
}

func (f *multipartForm) addFields(name string, values []string) {
	for _, value := range values {
		f.addField(name, value)
	}
}

func (f *multipartForm) addJSONField(name string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding form field %s: %w", name, err)
	}

	f.addField(name, string(data))

	return nil
}

// addFile streams upload into the form under field. Local paths are opened
// through fs.
func (f *multipartForm) addFile(fs afero.Fs, field string, upload *hs.FileUpload) error {
	err := upload.Validate()
	if err != nil {
		return &hs.ArgumentError{Message: "file upload", Err: err}
	}

	reader, filename, closeFn, err := openUpload(fs, upload)
	if err != nil {
		return err
	}
	defer closeFn()

	head := make([]byte, constants.ZipSniffLength)

	n, err := io.ReadFull(reader, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return &hs.ArgumentError{Message: filename + " is not readable", Err: err}
	}

	head = head[:n]

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(filename)))
	header.Set("Content-Type", detectContentType(filename, head))

	part, err := f.writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("creating form file: %w", err)
	}

	_, err = io.Copy(part, io.MultiReader(bytes.NewReader(head), reader))
	if err != nil {
		return fmt.Errorf("writing file to form: %w", err)
	}

	return nil
}

func (f *multipartForm) finish() ([]byte, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}

	err := f.writer.Close()
	if err != nil {
		return nil, "", fmt.Errorf("closing multipart writer: %w", err)
	}

	return f.buf.Bytes(), f.writer.FormDataContentType(), nil
}

// openUpload resolves the reader and file name of an upload.
func openUpload(fs afero.Fs, upload *hs.FileUpload) (io.Reader, string, func(), error) {
	if upload.Reader != nil {
		return upload.Reader, upload.Filename, func() {}, nil
	}

	info, err := fs.Stat(upload.Path)
	if err != nil || !info.Mode().IsRegular() {
		return nil, "", nil, &hs.ArgumentError{Message: upload.Path + " is not a file or is not readable", Err: err}
	}

	file, err := fs.Open(upload.Path)
	if err != nil {
		return nil, "", nil, &hs.ArgumentError{Message: upload.Path + " is not a file or is not readable", Err: err}
	}

	filename := upload.Filename
	if filename == "" {
		filename = filepath.Base(upload.Path)
	}

	return file, filename, func() { _ = file.Close() }, nil
}

// detectContentType sniffs the magic bytes in head, then falls back to the
// file extension and finally to application/octet-stream.
func detectContentType(filename string, head []byte) string {
	kind, err := filetype.Match(head)
	if err == nil && kind != filetype.Unknown {
		return kind.MIME.Value
	}

	byExtension := mime.TypeByExtension(filepath.Ext(filename))
	if byExtension != "" {
		return byExtension
	}

	return constants.ContentTypeOctetStream
}
