// Package storage abstracts the folders images are read from and written to.
package storage

import (
	"context"
	"io"
	"path"
	"sort"
	"time"

	"github.com/pkg/errors"
)

// FileInfo represents a file from any storage provider
type FileInfo struct {
	ID       string    // Provider-specific ID (for local: absolute path)
	Name     string    // File name
	Path     string    // Path relative to the provider root
	Size     int64     // File size in bytes
	ModTime  time.Time // Last modified time
	IsDir    bool      // Is directory
	MimeType string    // MIME type (if available)
}

// Provider is a folder-like place holding images.
type Provider interface {
	// ListFiles lists the entries of dir (optionally recursive)
	ListFiles(ctx context.Context, dir string, recursive bool) ([]FileInfo, error)

	// OpenFile opens a file for reading by ID
	OpenFile(ctx context.Context, id string) (io.ReadCloser, error)

	// CreateFile creates (or replaces) dir/name for writing. The file is only
	// complete once Close returns nil.
	CreateFile(ctx context.Context, dir, name string) (io.WriteCloser, error)

	// Name returns the provider name
	Name() string

	// Close cleans up provider resources
	Close() error
}

// CloudConfig holds cloud provider configuration
type CloudConfig struct {
	GoogleDrive *GoogleDriveConfig `json:"google_drive,omitempty"`
}

// GoogleDriveConfig holds Google Drive configuration
type GoogleDriveConfig struct {
	Enabled         bool   `json:"enabled"`
	CredentialsFile string `json:"credentials_file,omitempty"`
	TokenFile       string `json:"token_file,omitempty"`
}

// ProviderType represents the type of storage provider
type ProviderType string

const (
	ProviderLocal       ProviderType = "local"
	ProviderGoogleDrive ProviderType = "google-drive"
)

// New builds a provider. root is the base folder for local storage and is
// ignored by Google Drive, whose paths start at My Drive.
func New(ctx context.Context, kind ProviderType, root string, cfg CloudConfig) (Provider, error) {
	switch kind {
	case "", ProviderLocal:
		return NewLocalProvider(root)
	case ProviderGoogleDrive:
		gd := cfg.GoogleDrive
		if gd == nil || !gd.Enabled {
			return nil, errors.New("google drive is not enabled in the config file")
		}
		return NewGoogleDriveProvider(ctx, gd.CredentialsFile, gd.TokenFile)
	}
	return nil, errors.Errorf("unknown storage provider %q", kind)
}

// Files lists the regular files directly in dir that keep reports true,
// sorted by path.
func Files(ctx context.Context, p Provider, dir string, keep func(name string) bool) ([]FileInfo, error) {
	all, err := p.ListFiles(ctx, dir, false)
	if err != nil {
		return nil, err
	}
	var out []FileInfo
	for _, f := range all {
		if f.IsDir || (keep != nil && !keep(f.Name)) {
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// WriteFile stores data produced by write as dir/name.
func WriteFile(ctx context.Context, p Provider, dir, name string, write func(io.Writer) error) error {
	w, err := p.CreateFile(ctx, dir, name)
	if err != nil {
		return err
	}
	if err := write(w); err != nil {
		discard(ctx, p, w, dir, name, err)
		return err
	}
	return errors.Wrapf(w.Close(), "write %s", path.Join(dir, name))
}

// discard closes a file whose write failed so no partial output is left
// behind. Uploads are aborted; local files are removed.
func discard(ctx context.Context, p Provider, w io.WriteCloser, dir, name string, cause error) {
	if a, ok := w.(interface{ CloseWithError(error) error }); ok {
		a.CloseWithError(cause)
		return
	}
	w.Close()
	if r, ok := p.(interface {
		Remove(ctx context.Context, dir, name string) error
	}); ok {
		r.Remove(ctx, dir, name)
	}
}
