// Package blobstore stores uploaded files and hands back a URL that can be
// fetched later.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("blob not found")

// LocalStore writes blobs below Root and serves them from BaseURL.
type LocalStore struct {
	Root    string
	BaseURL string
}

func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStore{Root: root, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Save copies r into a new blob and returns its public URL. The original
// file name only contributes its extension.
func (s *LocalStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	key := uuid.New().String() + strings.ToLower(filepath.Ext(filename))

	f, err := os.Create(filepath.Join(s.Root, key))
	if err != nil {
		return "", fmt.Errorf("failed to create blob: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, readerWithContext(ctx, r)); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write blob: %w", err)
	}

	return s.BaseURL + "/" + key, nil
}

// LocalPath resolves a URL returned by Save to the file on disk.
func (s *LocalStore) LocalPath(url string) (string, error) {
	if !strings.HasPrefix(url, s.BaseURL+"/") {
		return "", ErrNotFound
	}
	return s.Path(strings.TrimPrefix(url, s.BaseURL+"/"))
}

// Path resolves a blob key (the last URL segment) to the file on disk.
func (s *LocalStore) Path(key string) (string, error) {
	if key == "" || key != filepath.Base(key) {
		return "", ErrNotFound
	}

	path := filepath.Join(s.Root, key)
	if _, err := os.Stat(path); err != nil {
		return "", ErrNotFound
	}
	return path, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return &ctxReader{ctx: ctx, r: r}
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
