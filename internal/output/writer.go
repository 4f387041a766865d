package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// OpenWriter returns a writer for a report destination. An empty path or "-"
// writes to stdout and Close leaves stdout open. Paths ending in .gz or .zst
// are compressed.
func OpenWriter(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("could not create %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("could not create report file: %w", err)
	}
	return wrapCompressed(f, path)
}

// NewWriter wraps w the way OpenWriter would wrap a file called name.
func NewWriter(w io.Writer, name string) (io.WriteCloser, error) {
	return wrapCompressed(nopCloser{w}, name)
}

func wrapCompressed(f io.WriteCloser, name string) (io.WriteCloser, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		gz, err := gzip.NewWriterLevel(f, gzip.BestCompression)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("could not initialize gzip writer: %w", err)
		}
		return &layeredWriter{Writer: gz, inner: gz, file: f}, nil
	case ".zst":
		zw, err := zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("could not initialize zstd writer: %w", err)
		}
		return &layeredWriter{Writer: zw, inner: zw, file: f}, nil
	default:
		return f, nil
	}
}

// layeredWriter closes the compressor before the file underneath it.
type layeredWriter struct {
	io.Writer
	inner io.Closer
	file  io.Closer
}

func (w *layeredWriter) Close() error {
	err := w.inner.Close()
	if cerr := w.file.Close(); err == nil {
		err = cerr
	}
	return err
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
