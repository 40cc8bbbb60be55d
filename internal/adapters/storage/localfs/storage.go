// Package localfs keeps uploaded images on local disk and serves them under
// a URL prefix.
package localfs

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
)

const URLPrefix = "/uploads/"

type Storage struct {
	dir     string
	baseURL string
}

// New returns a Storage rooted at dir. baseURL, when set, is prepended to
// the returned paths.
func New(dir, baseURL string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, pkgerrors.Wrap(err, "create upload dir")
	}
	return &Storage{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *Storage) Dir() string { return s.dir }

func (s *Storage) SaveImage(_ context.Context, filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", pkgerrors.Wrap(err, "write image")
	}
	return s.baseURL + URLPrefix + name, nil
}
