// Package filestore keeps uploaded images on local disk.
//
// Writes are two-phase: Stage writes the bytes under a staging directory, and Promote moves
// them into place once the database row that references them has been committed. Discard
// drops a staged file after a failed transaction, so a rolled back request leaves nothing
// behind in the served directory.
package filestore

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const stagingDir = ".staging"

type Store struct {
	root string
}

// Upload is a file received from a client.
type Upload struct {
	Filename string
	Open     func() (io.ReadCloser, error)
}

func FromFileHeader(fh *multipart.FileHeader) Upload {
	return Upload{
		Filename: fh.Filename,
		Open:     func() (io.ReadCloser, error) { return fh.Open() },
	}
}

func FromBytes(filename string, data []byte) Upload {
	return Upload{
		Filename: filename,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// New creates root and its staging directory when missing.
func New(root string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(root, stagingDir), 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &Store{root: root}, nil
}

// Stage writes the upload under a generated unique name and returns that name.
func (s *Store) Stage(u Upload) (string, error) {
	src, err := u.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %s: %w", u.Filename, err)
	}
	defer src.Close()

	name := uuid.NewString() + strings.ToLower(filepath.Ext(u.Filename))
	dst, err := os.Create(s.stagedPath(name))
	if err != nil {
		return "", fmt.Errorf("create staged file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(s.stagedPath(name))
		return "", fmt.Errorf("write staged file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(s.stagedPath(name))
		return "", fmt.Errorf("close staged file: %w", err)
	}
	return name, nil
}

// Promote moves a staged file into the served directory.
func (s *Store) Promote(name string) error {
	return os.Rename(s.stagedPath(name), s.path(name))
}

// Discard removes staged files. Missing files are ignored.
func (s *Store) Discard(names ...string) {
	for _, name := range names {
		_ = os.Remove(s.stagedPath(name))
	}
}

// Remove deletes a promoted file. A file that is already gone is not an error.
func (s *Store) Remove(name string) error {
	if name == "" {
		return nil
	}
	if err := os.Remove(s.path(name)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *Store) Exists(name string) bool {
	_, err := os.Stat(s.path(name))
	return err == nil
}

// DataURI returns the file as a base64 data URI, or "" when it cannot be read.
func (s *Store) DataURI(name string) string {
	if name == "" {
		return ""
	}
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return ""
	}
	return "data:" + http.DetectContentType(data) + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func (s *Store) path(name string) string {
	return filepath.Join(s.root, filepath.Base(name))
}

func (s *Store) stagedPath(name string) string {
	return filepath.Join(s.root, stagingDir, filepath.Base(name))
}
