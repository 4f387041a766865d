package facts

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Digest identifies the current content of a fact source. A file digests to
// the blake2b-256 of its bytes; a C# source directory digests its .cs files'
// relative paths, sizes and modification times, so an unchanged tree keeps
// its digest without being read.
func Digest(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	h, _ := blake2b.New256(nil)
	if !info.IsDir() {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		if _, err := io.Copy(h, f); err != nil {
			return "", err
		}
		return hex.EncodeToString(h.Sum(nil)), nil
	}

	err = filepath.Walk(path, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if fi.IsDir() {
			if p != path && isSkippedDir(fi.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(p), ".cs") {
			return nil
		}
		rel, relErr := filepath.Rel(path, p)
		if relErr != nil {
			rel = p
		}
		fmt.Fprintf(h, "%s\x00%d\x00%d\n", filepath.ToSlash(rel), fi.Size(), fi.ModTime().UnixNano())
		return nil
	})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// isSkippedDir reports whether a source directory is left out of extraction.
func isSkippedDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "bin" || name == "obj"
}

// IsCacheable reports whether decoding format is costly enough to cache.
func IsCacheable(format Format) bool {
	return format == FormatSCIP || format == FormatCSharp
}
