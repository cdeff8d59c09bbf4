package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/fivetwenty-io/hsclient/internal/constants"
	"github.com/fivetwenty-io/hsclient/pkg/hs"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestFilesClient(t *testing.T) {
	t.Parallel()

	t.Run("lists files", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/hsapi/resource/abc/files/", r.URL.Path)
			writeJSON(t, w, http.StatusOK, map[string]interface{}{
				"count":    2,
				"next":     nil,
				"previous": nil,
				"results": []hs.ResourceFile{
					{FileName: "a.csv", Size: 4},
					{FileName: "b.tif", Size: 10},
				},
			})
		}))
		defer server.Close()

		files, err := NewTestClient(t, server).Files().List(context.Background(), "abc").All()
		require.NoError(t, err)
		require.Len(t, files, 2)
		assert.Equal(t, "b.tif", files[1].FileName)
	})

	t.Run("listing without pid fails", func(t *testing.T) {
		t.Parallel()

		client, err := New(context.Background(), &hs.Config{UseHTTPS: true})
		require.NoError(t, err)

		_, err = client.Files().List(context.Background(), "").All()
		require.ErrorIs(t, err, hs.ErrPIDRequired)
	})

	t.Run("adds a file from a reader into a folder", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/hsapi/resource/abc/files/", r.URL.Path)
			assert.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "data/raw", r.FormValue("folder"))

			file, header, err := r.FormFile("file")
			assert.NoError(t, err)

			if err == nil {
				defer file.Close()

				content, _ := io.ReadAll(file)
				assert.Equal(t, "notes.txt", header.Filename)
				assert.Equal(t, "hello", string(content))
			}

			writeJSON(t, w, http.StatusCreated, hs.FileAddResult{ResourceID: "abc", FileName: "notes.txt"})
		}))
		defer server.Close()

		result, err := NewTestClient(t, server).Files().Add(context.Background(), "abc", &hs.FileUpload{
			Reader:   strings.NewReader("hello"),
			Filename: "notes.txt",
			Folder:   "data/raw",
		})
		require.NoError(t, err)
		assert.Equal(t, "notes.txt", result.FileName)
	})

	t.Run("reports upload progress up to the body size", func(t *testing.T) {
		t.Parallel()

		var received atomic.Int64

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			assert.NoError(t, err)
			received.Store(int64(len(body)))

			writeJSON(t, w, http.StatusCreated, hs.FileAddResult{ResourceID: "abc", FileName: "big.bin"})
		}))
		defer server.Close()

		content := strings.Repeat("0123456789", 10_000)

		var (
			calls    atomic.Int64
			lastSent atomic.Int64
			total    atomic.Int64
		)

		_, err := NewTestClient(t, server).Files().Add(context.Background(), "abc", &hs.FileUpload{
			Reader:   strings.NewReader(content),
			Filename: "big.bin",
			Progress: func(sent, size int64) {
				calls.Add(1)
				lastSent.Store(sent)
				total.Store(size)
			},
		})
		require.NoError(t, err)

		assert.Positive(t, calls.Load())
		assert.Equal(t, received.Load(), total.Load())
		assert.Equal(t, total.Load(), lastSent.Load())
		assert.Greater(t, total.Load(), int64(len(content)))
	})

	t.Run("reader upload needs a filename", func(t *testing.T) {
		t.Parallel()

		client, err := New(context.Background(), &hs.Config{UseHTTPS: true})
		require.NoError(t, err)

		_, err = client.Files().Add(context.Background(), "abc", &hs.FileUpload{Reader: strings.NewReader("x")})
		require.Error(t, err)
		assert.True(t, hs.IsArgument(err))
	})

	t.Run("downloads a file from a folder", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/hsapi/resource/abc/files/data/my file.csv", r.URL.Path)
			w.Header().Set("Content-Type", "text/csv")
			_, _ = w.Write([]byte("x,y\n"))
		}))
		defer server.Close()

		client := NewTestClient(t, server)
		require.NoError(t, client.fs.MkdirAll("/out", constants.DownloadDirPerm))

		path, err := client.Files().Download(context.Background(), "abc", "data/my file.csv", "/out")
		require.NoError(t, err)
		assert.Equal(t, "/out/my file.csv", path)

		content, err := afero.ReadFile(client.fs, path)
		require.NoError(t, err)
		assert.Equal(t, "x,y\n", string(content))
	})

	t.Run("missing file names the file", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		_, err := NewTestClient(t, server).Files().Get(context.Background(), "abc", "gone.txt")

		var notFound *hs.NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "abc", notFound.PID)
		assert.Equal(t, "gone.txt", notFound.Filename)
	})

	t.Run("deletes a file", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "/hsapi/resource/abc/files/a.csv", r.URL.Path)
			writeJSON(t, w, http.StatusOK, map[string]string{"resource_id": "abc"})
		}))
		defer server.Close()

		id, err := NewTestClient(t, server).Files().Delete(context.Background(), "abc", "a.csv")
		require.NoError(t, err)
		assert.Equal(t, "abc", id)

		_, err = NewTestClient(t, server).Files().Delete(context.Background(), "abc", "")
		require.ErrorIs(t, err, hs.ErrFilenameRequired)
	})

	t.Run("deleting a file checks the returned id", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusOK, map[string]string{"resource_id": "other"})
		}))
		defer server.Close()

		_, err := NewTestClient(t, server).Files().Delete(context.Background(), "abc", "a.csv")
		require.ErrorIs(t, err, hs.ErrIDMismatch)
		assert.True(t, hs.IsGeneric(err))
	})

	t.Run("file metadata", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/hsapi/resource/abc/files/12/metadata/", r.URL.Path)

			if r.Method == http.MethodPut {
				body, _ := io.ReadAll(r.Body)
				assert.JSONEq(t, `{"title":"logical"}`, string(body))
				w.WriteHeader(http.StatusOK)

				return
			}

			writeJSON(t, w, http.StatusOK, map[string]any{"title": "old"})
		}))
		defer server.Close()

		files := NewTestClient(t, server).Files()

		metadata, err := files.GetMetadata(context.Background(), "abc", 12)
		require.NoError(t, err)
		assert.Equal(t, "old", metadata["title"])

		require.NoError(t, files.UpdateMetadata(context.Background(), "abc", 12, map[string]any{"title": "logical"}))
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestFoldersAndFunctions(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/hsapi/resource/abc/folders/data/raw/":
			switch r.Method {
			case http.MethodPut:
				w.WriteHeader(http.StatusCreated)
			case http.MethodDelete:
				w.WriteHeader(http.StatusOK)
			default:
				writeJSON(t, w, http.StatusOK, hs.FolderContents{
					ResourceID: "abc",
					Path:       "data/raw",
					Files:      []string{"a.csv"},
					Folders:    []string{"old"},
				})
			}
		case r.URL.Path == "/hsapi/resource/abc/functions/move-or-rename/":
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "data/a.csv", r.PostForm.Get("source_path"))
			assert.Equal(t, "data/b.csv", r.PostForm.Get("target_path"))
		case r.URL.Path == "/hsapi/resource/abc/functions/zip/":
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "data", r.PostForm.Get("input_coll_path"))
			assert.Equal(t, "data.zip", r.PostForm.Get("output_zip_file_name"))
			assert.Equal(t, "false", r.PostForm.Get("remove_original_after_zip"))
		case r.URL.Path == "/hsapi/resource/abc/functions/unzip/data.zip/":
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "true", r.PostForm.Get("remove_original_zip"))
		case r.URL.Path == "/hsapi/resource/abc/functions/set-file-type/data/x.nc/NetCDF/":
			w.WriteHeader(http.StatusCreated)
		case strings.HasPrefix(r.URL.Path, "/hsapi/resource/abc/folders/"):
			w.WriteHeader(http.StatusNotFound)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewTestClient(t, server)
	ctx := context.Background()

	require.NoError(t, client.Folders().Create(ctx, "abc", "data/raw"))

	contents, err := client.Folders().Contents(ctx, "abc", "/data/raw/")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.csv"}, contents.Files)

	require.NoError(t, client.Folders().Delete(ctx, "abc", "data/raw"))

	_, err = client.Folders().Contents(ctx, "abc", "missing")
	var notFound *hs.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.Filename)

	require.NoError(t, client.Functions().MoveOrRename(ctx, "abc", "data/a.csv", "data/b.csv"))
	require.NoError(t, client.Functions().Zip(ctx, "abc", &hs.ZipRequest{InputPath: "data", OutputFileName: "data.zip"}))
	require.NoError(t, client.Functions().Unzip(ctx, "abc", "data.zip", true))
	require.NoError(t, client.Functions().SetFileType(ctx, "abc", "data/x.nc", hs.AggregationNetCDF))

	err = client.Functions().Zip(ctx, "abc", &hs.ZipRequest{InputPath: "data"})
	assert.True(t, hs.IsArgument(err))

	err = client.Functions().SetFileType(ctx, "abc", "data/x.nc", hs.AggregationType("Spreadsheet"))
	require.ErrorIs(t, err, hs.ErrUnknownFileType)
}

func TestDetectContentType(t *testing.T) {
	t.Parallel()

	png := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}

	assert.Equal(t, "image/png", detectContentType("picture.bin", png))
	assert.Equal(t, "application/json", detectContentType("values.json", []byte(`{"a":1}`)))
	assert.Equal(t, constants.ContentTypeOctetStream, detectContentType("blob", []byte{1, 2, 3}))
}
