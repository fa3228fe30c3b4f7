package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// URLPrefix is the path the disk store's files are served under
const URLPrefix = "/uploads/"

// DiskImageStore writes images into a directory served at /uploads/
type DiskImageStore struct {
	fs  afero.Fs
	dir string
}

// NewDiskImageStore stores images under dir on the OS filesystem
func NewDiskImageStore(dir string) (*DiskImageStore, error) {
	return NewDiskImageStoreFs(afero.NewOsFs(), dir)
}

// NewDiskImageStoreFs stores images under dir on an arbitrary filesystem
func NewDiskImageStoreFs(fs afero.Fs, dir string) (*DiskImageStore, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &DiskImageStore{fs: fs, dir: dir}, nil
}

// Fs exposes the backing filesystem, rooted at the uploads directory,
// so it can be served over HTTP
func (s *DiskImageStore) Fs() afero.Fs {
	return afero.NewBasePathFs(s.fs, s.dir)
}

// Handler serves stored images under URLPrefix. Directories are reported as
// missing so the uploads folder cannot be listed.
func (s *DiskImageStore) Handler() http.Handler {
	files := noDirFileSystem{afero.NewHttpFs(s.Fs())}
	return http.StripPrefix(URLPrefix, http.FileServer(files))
}

type noDirFileSystem struct {
	http.FileSystem
}

func (fs noDirFileSystem) Open(name string) (http.File, error) {
	f, err := fs.FileSystem.Open(name)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}

func (s *DiskImageStore) Save(ctx context.Context, name string, contentType string, r io.Reader, size int64) (string, error) {
	name = path.Base(name)

	f, err := s.fs.OpenFile(path.Join(s.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = s.fs.Remove(path.Join(s.dir, name))
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close image file: %w", err)
	}

	return URLPrefix + name, nil
}

func (s *DiskImageStore) Delete(ctx context.Context, url string) error {
	if !strings.HasPrefix(url, URLPrefix) {
		return nil
	}

	err := s.fs.Remove(path.Join(s.dir, path.Base(url)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image file: %w", err)
	}
	return nil
}
