package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrTooLarge is returned when an upload exceeds the configured size limit.
var ErrTooLarge = errors.New("upload exceeds size limit")

// BlobStore writes uploaded files into a single directory as {id}_{basename}.
type BlobStore struct {
	dir string
}

// NewBlobStore creates dir if needed.
func NewBlobStore(dir string) (*BlobStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &BlobStore{dir: dir}, nil
}

// Dir returns the uploads directory.
func (b *BlobStore) Dir() string {
	return b.dir
}

// Save copies at most maxBytes from r into the blob for id and filename. Only the base name of
// filename is used. A partial file is removed on error.
func (b *BlobStore) Save(id, filename string, r io.Reader, maxBytes int64) (path string, size int64, err error) {
	blobPath := filepath.Join(b.dir, id+"_"+SafeName(filename))
	f, err := os.OpenFile(blobPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0644)
	if err != nil {
		return "", 0, fmt.Errorf("create blob: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close blob: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(blobPath)
		}
	}()

	src := r
	if maxBytes > 0 {
		src = io.LimitReader(r, maxBytes+1)
	}
	size, err = io.Copy(f, src)
	if err != nil {
		return "", 0, fmt.Errorf("write blob: %w", err)
	}
	if maxBytes > 0 && size > maxBytes {
		return "", 0, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, maxBytes)
	}
	return blobPath, size, nil
}

// Find returns the blob path stored for id.
func (b *BlobStore) Find(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\*?[`) {
		return "", fmt.Errorf("%w: %s", ErrAssetNotFound, id)
	}
	matches, err := filepath.Glob(filepath.Join(b.dir, id+"_*"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: %s", ErrAssetNotFound, id)
	}
	return matches[0], nil
}

// SafeName returns the base name of filename with path separators and leading dots removed.
func SafeName(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	name = strings.TrimLeft(name, ".")
	if name == "" || name == "/" {
		return "upload"
	}
	return name
}
