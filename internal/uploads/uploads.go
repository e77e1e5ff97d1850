// Package uploads stores user images on local disk and serves them under /uploads/.
package uploads

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

const PublicPrefix = "/uploads/"

var (
	ErrUnsupportedType = errors.New("only jpg, jpeg, png, gif and webp images are accepted")
	ErrTooLarge        = errors.New("file is too large")
)

var allowedExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

type Store struct {
	dir      string
	maxBytes int64
}

func NewStore(dir string, maxBytes int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir, maxBytes: maxBytes}, nil
}

func (s *Store) Dir() string { return s.dir }

// Save writes the uploaded image under a fresh name and returns its public path.
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExt[ext] {
		return "", ErrUnsupportedType
	}
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return "", ErrTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	head := make([]byte, 512)
	n, _ := io.ReadFull(src, head)
	if !strings.HasPrefix(http.DetectContentType(head[:n]), "image/") {
		return "", ErrUnsupportedType
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	name := uuid.NewString() + ext
	dst, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	var r io.Reader = src
	if s.maxBytes > 0 {
		r = io.LimitReader(src, s.maxBytes+1)
	}
	written, err := io.Copy(dst, r)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err == nil && s.maxBytes > 0 && written > s.maxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(filepath.Join(s.dir, name))
		if errors.Is(err, ErrTooLarge) {
			return "", err
		}
		return "", fmt.Errorf("write file: %w", err)
	}
	return PublicPrefix + name, nil
}

// Remove deletes a file previously returned by Save. Paths outside /uploads/ and
// files that are already gone are ignored.
func (s *Store) Remove(publicPath string) error {
	if !strings.HasPrefix(publicPath, PublicPrefix) {
		return nil
	}
	name := path.Base(publicPath)
	if name == "." || name == "/" || name == ".." {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Handler serves stored files; mount it under PublicPrefix.
func (s *Store) Handler() http.Handler {
	return http.StripPrefix(PublicPrefix, http.FileServer(http.Dir(s.dir)))
}
