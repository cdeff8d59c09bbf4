package client

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fivetwenty-io/hsclient/internal/constants"
	"github.com/fivetwenty-io/hsclient/pkg/hs"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
)

// checkDestination verifies that dir exists, is a directory and accepts
// new files.
func checkDestination(fs afero.Fs, dir string) error {
	info, err := fs.Stat(dir)
	if err != nil || !info.IsDir() {
		return &hs.ArgumentError{Message: dir + " is not a directory", Err: hs.ErrNotADirectory}
	}

	checkFile, err := afero.TempFile(fs, dir, ".hs-write-check-*")
	if err != nil {
		return &hs.ArgumentError{
			Message: "you do not have write permissions to directory " + dir,
			Err:     hs.ErrDirectoryNotWrite,
		}
	}

	name := checkFile.Name()
	_ = checkFile.Close()
	_ = fs.Remove(name)

	return nil
}

// writeStream copies stream into path, replacing any existing file.
func writeStream(fs afero.Fs, path string, stream *hs.ChunkStream) error {
	file, err := fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, constants.DownloadFilePerm)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	_, err = stream.WriteTo(file)
	closeErr := file.Close()

	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	if closeErr != nil {
		return fmt.Errorf("closing %s: %w", path, closeErr)
	}

	return nil
}

// extractZip unpacks the archive at archivePath into dest. Entries that
// would land outside dest are refused.
func extractZip(fs afero.Fs, archivePath, dest string) error {
	archive, err := fs.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", archivePath, err)
	}
	defer archive.Close()

	info, err := archive.Stat()
	if err != nil {
		return fmt.Errorf("inspecting %s: %w", archivePath, err)
	}

	reader, err := zip.NewReader(archive, info.Size())
	if err != nil {
		return fmt.Errorf("reading zip %s: %w", archivePath, err)
	}

	err = fs.MkdirAll(dest, constants.DownloadDirPerm)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}

	for _, entry := range reader.File {
		err = extractEntry(fs, entry, dest)
		if err != nil {
			return err
		}
	}

	return nil
}

func extractEntry(fs afero.Fs, entry *zip.File, dest string) error {
	name := filepath.FromSlash(entry.Name)
	if filepath.IsAbs(name) || slices.Contains(strings.Split(entry.Name, "/"), "..") {
		return fmt.Errorf("%w: %s", hs.ErrZipEntryOutsideDir, entry.Name)
	}

	path := filepath.Join(dest, name)

	if entry.FileInfo().IsDir() {
		err := fs.MkdirAll(path, constants.DownloadDirPerm)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}

		return nil
	}

	err := fs.MkdirAll(filepath.Dir(path), constants.DownloadDirPerm)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}

	src, err := entry.Open()
	if err != nil {
		return fmt.Errorf("opening zip entry %s: %w", entry.Name, err)
	}
	defer src.Close()

	dst, err := fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, constants.DownloadFilePerm)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	_, err = io.Copy(dst, src)
	closeErr := dst.Close()

	if err != nil {
		return fmt.Errorf("extracting %s: %w", entry.Name, err)
	}

	if closeErr != nil {
		return fmt.Errorf("closing %s: %w", path, closeErr)
	}

	return nil
}

// storeBag writes the bag for pid below dest. With unzip the archive goes
// to a temporary directory, is extracted to dest/pid and the temporary
// directory is removed whatever happened. Extraction and cleanup failures
// are logged, not returned.
func storeBag(fs afero.Fs, logger hs.Logger, stream *hs.ChunkStream, pid, dest string, unzip bool) (string, error) {
	filename := pid + ".zip"

	if !unzip {
		path := filepath.Join(dest, filename)

		return path, writeStream(fs, path, stream)
	}

	tempDir, err := afero.TempDir(fs, "", "hs-bag-")
	if err != nil {
		return "", fmt.Errorf("creating temporary directory: %w", err)
	}

	archivePath := filepath.Join(tempDir, filename)
	extractDir := filepath.Join(dest, pid)

	var result *multierror.Error

	err = writeStream(fs, archivePath, stream)
	if err != nil {
		_ = fs.RemoveAll(tempDir)

		return "", err
	}

	err = extractZip(fs, archivePath, extractDir)
	if err != nil {
		result = multierror.Append(result, fmt.Errorf("unzipping bag to %s: %w", dest, err))
	}

	err = fs.RemoveAll(tempDir)
	if err != nil {
		result = multierror.Append(result, fmt.Errorf("removing %s: %w", tempDir, err))
	}

	if result.ErrorOrNil() != nil {
		logger.Warn("Bag extraction incomplete", map[string]interface{}{
			"pid":         pid,
			"destination": dest,
			"error":       result.Error(),
		})
	}

	return extractDir, nil
}
