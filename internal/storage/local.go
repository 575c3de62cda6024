// Package storage persists uploaded request photos on the local disk.
// Stored references are always relative paths under the uploads prefix,
// never absolute filesystem paths.
package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxImageBytes caps a single uploaded photo at 5 MiB.
const MaxImageBytes = 5 << 20

var (
	ErrTooLarge = errors.New("image exceeds the 5MB size limit")
	ErrNotImage = errors.New("uploaded file is not an image")
)

// extByMIME maps the sniffed content type to the stored extension.
// Types outside this table are rejected outright.
var extByMIME = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// LocalStore writes images under a single directory with generated
// filenames, so a client can never influence where a file lands.
type LocalStore struct {
	dir string
}

// NewLocalStore creates the upload directory if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Save validates and writes one multipart image, returning the
// relative reference (uploads/<name>) to store on the request row. The
// content type is sniffed from the first 512 bytes rather than trusted
// from the client; a declared Content-Type that contradicts the
// sniffed one is rejected.
func (s *LocalStore) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	if header.Size > MaxImageBytes {
		return "", ErrTooLarge
	}

	// ReadFull keeps the sniff deterministic: a reader that delivers
	// in small chunks must not truncate the sample.
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", fmt.Errorf("read head: %w", err)
	}
	head = head[:n]
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind: %w", err)
	}

	sniffed := http.DetectContentType(head)
	ext, ok := extByMIME[sniffed]
	if !ok {
		return "", ErrNotImage
	}
	if declared := header.Header.Get("Content-Type"); declared != "" {
		if base, _, found := strings.Cut(declared, ";"); found {
			declared = base
		}
		declared = strings.TrimSpace(declared)
		if declared != sniffed {
			return "", ErrNotImage
		}
	}

	name := uuid.New().String() + ext
	full := filepath.Join(s.dir, name)
	dst, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}

	// LimitReader guards against a header lying about its size.
	written, err := io.Copy(dst, io.LimitReader(file, MaxImageBytes+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err == nil && written > MaxImageBytes {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(full)
		if errors.Is(err, ErrTooLarge) {
			return "", err
		}
		return "", fmt.Errorf("write image file: %w", err)
	}

	return path.Join("uploads", name), nil
}

// Remove deletes a previously saved image by its relative reference.
// Used to back out an upload when the database insert fails, so no row
// ever references a file and no file outlives a failed row.
func (s *LocalStore) Remove(rel string) error {
	name := path.Base(rel)
	if name == "." || name == "/" || name == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
