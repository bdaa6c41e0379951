// Package fileutil provides the file access used by the pack builder:
// an afero filesystem, pooled buffered copies and atomic output.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

const defaultBufferSize = 64 * 1024

// bufferPool provides a pool of reusable byte slices for file I/O operations.
//
//nolint:gochecknoglobals
var bufferPool = sync.Pool{
	New: func() any {
		buf := make([]byte, defaultBufferSize)

		return &buf
	},
}

// ErrShortCopy is returned when a source yields fewer bytes than expected.
var ErrShortCopy = errors.New("source shorter than expected")

// NewOSFS returns the filesystem backed by the operating system.
func NewOSFS() afero.Fs {
	return afero.NewOsFs()
}

// CopyN copies exactly n bytes from src to dst through a pooled buffer.
func CopyN(dst io.Writer, src io.Reader, n int64) (int64, error) {
	bufp, _ := bufferPool.Get().(*[]byte) //nolint:errcheck // type is guaranteed by New
	defer bufferPool.Put(bufp)

	written, err := io.CopyBuffer(dst, io.LimitReader(src, n), *bufp)
	if err != nil {
		return written, err
	}

	if written != n {
		return written, fmt.Errorf("%w: copied %d of %d bytes", ErrShortCopy, written, n)
	}

	return written, nil
}

// WriteZeros writes n zero bytes to w.
func WriteZeros(w io.Writer, n int64) error {
	if n <= 0 {
		return nil
	}

	_, err := io.CopyN(w, zeroReader{}, n)

	return err
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	clear(p)

	return len(p), nil
}

// TempContext holds state for an atomic file write operation.
type TempContext struct {
	fs      afero.Fs
	TmpName string
	Target  string
}

// NewTempContext reserves a temporary file next to outPath.
// Caller must defer CleanupOnError.
func NewTempContext(fs afero.Fs, outPath string) (*TempContext, error) {
	tmpFile, err := afero.TempFile(fs, filepath.Dir(outPath), ".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("creating temporary file: %w", err)
	}

	name := tmpFile.Name()

	if err := tmpFile.Close(); err != nil {
		return nil, fmt.Errorf("closing temporary file: %w", err)
	}

	return &TempContext{fs: fs, TmpName: name, Target: outPath}, nil
}

// Commit renames the temporary file onto the target and returns its size.
func (tc *TempContext) Commit() (int64, error) {
	const ownerReadWrite = 0o644

	if err := tc.fs.Chmod(tc.TmpName, os.FileMode(ownerReadWrite)); err != nil {
		return 0, fmt.Errorf("setting file permissions: %w", err)
	}

	if err := tc.fs.Rename(tc.TmpName, tc.Target); err != nil {
		return 0, fmt.Errorf("renaming output file: %w", err)
	}

	info, err := tc.fs.Stat(tc.Target)
	if err != nil {
		return 0, fmt.Errorf("stat output %q: %w", tc.Target, err)
	}

	return info.Size(), nil
}

// CleanupOnError removes the temporary file if the write failed.
func (tc *TempContext) CleanupOnError(errp *error) {
	if *errp != nil {
		tc.fs.Remove(tc.TmpName) //nolint:errcheck,gosec // best-effort cleanup
	}
}
