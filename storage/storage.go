// Package storage keeps the photos attached to issue reports.
package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"citycompass/apperror"

	"github.com/google/uuid"
)

// URLPrefix is where saved files are served from.
const URLPrefix = "/uploads/"

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// BlobStore saves an uploaded file and returns the public URL it is served
// under.
type BlobStore interface {
	Save(fh *multipart.FileHeader) (string, error)
	Remove(url string) error
}

// DiskStore writes files into a single directory under random names.
type DiskStore struct {
	dir      string
	maxBytes int64
}

func NewDiskStore(dir string, maxBytes int64) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir, maxBytes: maxBytes}, nil
}

func (s *DiskStore) Dir() string { return s.dir }

func (s *DiskStore) Save(fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExtensions[ext] {
		return "", apperror.Validation("Only image files are allowed")
	}
	if fh.Size > s.maxBytes {
		return "", apperror.Validation("Image exceeds the %d MB limit", s.maxBytes/(1024*1024))
	}

	src, err := fh.Open()
	if err != nil {
		return "", apperror.Validation("unreadable upload")
	}
	defer src.Close()

	name := uuid.NewString() + ext
	full := filepath.Join(s.dir, name)
	dst, err := os.Create(full)
	if err != nil {
		return "", apperror.Storage("create upload", err)
	}

	// The header size is client supplied; enforce the cap on the bytes.
	n, err := io.Copy(dst, io.LimitReader(src, s.maxBytes+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(full)
		return "", apperror.Storage("write upload", err)
	}
	if n > s.maxBytes {
		_ = os.Remove(full)
		return "", apperror.Validation("Image exceeds the %d MB limit", s.maxBytes/(1024*1024))
	}
	return URLPrefix + name, nil
}

// Remove deletes a file previously returned by Save. Unknown URLs are
// ignored.
func (s *DiskStore) Remove(url string) error {
	if !strings.HasPrefix(url, URLPrefix) {
		return nil
	}
	name := path.Base(url)
	err := os.Remove(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
