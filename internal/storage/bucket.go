// Package storage is the public media bucket.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/spf13/afero"
)

var (
	ErrInvalidPath  = errors.New("invalid object path")
	ErrObjectAbsent = errors.New("object not found")
)

type Bucket struct {
	fs      afero.Fs
	baseURL string
}

// NewBucket serves objects from fsys. Use afero.NewBasePathFs to root it at
// a directory.
func NewBucket(fsys afero.Fs, baseURL string) *Bucket {
	return &Bucket{
		fs:      fsys,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func NewDiskBucket(dir, baseURL string) *Bucket {
	return NewBucket(afero.NewBasePathFs(afero.NewOsFs(), dir), baseURL)
}

func clean(p string) (string, error) {
	if strings.Contains(p, "..") {
		return "", ErrInvalidPath
	}
	p = path.Clean("/" + strings.TrimSpace(p))
	if p == "/" {
		return "", ErrInvalidPath
	}
	return strings.TrimPrefix(p, "/"), nil
}

// Put overwrites the object at p.
func (b *Bucket) Put(p string, data []byte) (string, error) {
	key, err := clean(p)
	if err != nil {
		return "", err
	}

	if err = b.fs.MkdirAll(path.Dir(key), 0o755); err != nil {
		return "", fmt.Errorf("b.fs.MkdirAll -> %w", err)
	}
	if err = afero.WriteFile(b.fs, key, data, 0o644); err != nil {
		return "", fmt.Errorf("afero.WriteFile -> %w", err)
	}

	return key, nil
}

func (b *Bucket) Get(p string) ([]byte, error) {
	key, err := clean(p)
	if err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(b.fs, key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrObjectAbsent
		}
		return nil, fmt.Errorf("afero.ReadFile -> %w", err)
	}

	return data, nil
}

func (b *Bucket) PublicURL(key string) string {
	return b.baseURL + "/" + key
}
