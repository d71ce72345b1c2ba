package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// LocalProvider implements Provider for a folder on disk
type LocalProvider struct {
	basePath string
}

// NewLocalProvider creates a provider rooted at basePath
func NewLocalProvider(basePath string) (*LocalProvider, error) {
	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get absolute path")
	}
	return &LocalProvider{basePath: absPath}, nil
}

// Root returns the absolute base folder.
func (p *LocalProvider) Root() string {
	return p.basePath
}

// ListFiles lists entries under dir, skipping hidden files and folders
func (p *LocalProvider) ListFiles(ctx context.Context, dir string, recursive bool) ([]FileInfo, error) {
	fullPath := filepath.Join(p.basePath, dir)
	var files []FileInfo

	err := filepath.Walk(fullPath, func(filePath string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		relPath, err := filepath.Rel(p.basePath, filePath)
		if err != nil {
			return errors.Wrap(err, "failed to get relative path")
		}
		if filePath == fullPath {
			return nil
		}
		if isHidden(info.Name()) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		files = append(files, FileInfo{
			ID:      filePath,
			Name:    info.Name(),
			Path:    filepath.ToSlash(relPath),
			Size:    info.Size(),
			ModTime: info.ModTime(),
			IsDir:   info.IsDir(),
		})

		if !recursive && info.IsDir() {
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to walk directory")
	}
	return files, nil
}

// OpenFile opens a file for reading
func (p *LocalProvider) OpenFile(ctx context.Context, id string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	return f, nil
}

// CreateFile creates dir/name below the base folder, making parent folders
// as needed
func (p *LocalProvider) CreateFile(ctx context.Context, dir, name string) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	target := filepath.Join(p.basePath, dir)
	if err := os.MkdirAll(target, 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create output directory")
	}
	f, err := os.Create(filepath.Join(target, filepath.Base(name)))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create file")
	}
	return f, nil
}

// Remove deletes dir/name below the base folder. A missing file is not an
// error.
func (p *LocalProvider) Remove(ctx context.Context, dir, name string) error {
	err := os.Remove(filepath.Join(p.basePath, dir, filepath.Base(name)))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove file")
	}
	return nil
}

// Name returns the provider name
func (p *LocalProvider) Name() string {
	return "local"
}

// Close is a no-op for local storage
func (p *LocalProvider) Close() error {
	return nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

var _ Provider = (*LocalProvider)(nil)
