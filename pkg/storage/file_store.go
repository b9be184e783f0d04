package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"epaperadmin/pkg/domain"
)

// FileStore keeps clip images and the watermark file on local disk
// under a base directory. Paths handed to it are relative to the base;
// traversal outside the base is rejected.
type FileStore struct {
	basePath string
}

// NewFileStore creates the base directory if missing.
func NewFileStore(basePath string) (*FileStore, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, errors.New("storage base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileStore{basePath: basePath}, nil
}

// Save writes a file at the relative path, creating parent directories.
func (f *FileStore) Save(relPath string, r io.Reader) error {
	target, err := f.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return domain.FileSystem(relPath, err)
	}
	out, err := os.Create(target)
	if err != nil {
		return domain.FileSystem(relPath, err)
	}
	defer out.Close()
	if _, err := io.Copy(out, r); err != nil {
		return domain.FileSystem(relPath, err)
	}
	return nil
}

// Exists reports whether the relative path is present.
func (f *FileStore) Exists(relPath string) bool {
	target, err := f.resolve(relPath)
	if err != nil {
		return false
	}
	_, err = os.Stat(target)
	return err == nil
}

// Delete removes the file at the relative path. A missing file is not
// an error; clip rows routinely outlive their files.
func (f *FileStore) Delete(relPath string) error {
	target, err := f.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return domain.FileSystem(relPath, err)
	}
	return nil
}

func (f *FileStore) resolve(relPath string) (string, error) {
	relPath = strings.TrimSpace(relPath)
	if relPath == "" {
		return "", domain.FileSystem(relPath, errors.New("empty path"))
	}
	cleaned := filepath.Clean(relPath)
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(os.PathSeparator)) {
		return "", domain.FileSystem(relPath, errors.New("path escapes storage root"))
	}
	return filepath.Join(f.basePath, cleaned), nil
}
