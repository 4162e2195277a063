// Package local provides a blob store backed by a directory on local disk.
package local

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/docgate/internal/core/domain"
	"github.com/custodia-labs/docgate/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.BlobStore = (*Store)(nil)

const (
	tempDirName = ".tmp"
	dirMode     = 0o755
	fileMode    = 0o644
)

// Store keeps each blob as a plain file named after its filename.
// Writes land in a hidden temp directory first and are renamed into place,
// so a blob is either fully present or absent.
type Store struct {
	root string
}

// New creates a Store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(abs, tempDirName), dirMode); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{root: abs}, nil
}

// Root returns the absolute upload directory.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) path(name string) string {
	return filepath.Join(s.root, name)
}

// List returns regular, non-hidden file names in the upload directory, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("scan upload dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Exists reports whether a blob file is present.
func (s *Store) Exists(_ context.Context, name string) (bool, error) {
	if err := domain.ValidateFilename(name); err != nil {
		return false, err
	}
	info, err := os.Stat(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// Write streams r into a temp file, hashing as it goes, then renames it
// over name. The temp file is removed on any failure, including ctx
// cancellation.
func (s *Store) Write(ctx context.Context, name string, r io.Reader) (info domain.BlobInfo, err error) {
	if err := domain.ValidateFilename(name); err != nil {
		return domain.BlobInfo{}, err
	}

	tempDir := filepath.Join(s.root, tempDirName)
	if err := os.MkdirAll(tempDir, dirMode); err != nil {
		return domain.BlobInfo{}, fmt.Errorf("create upload dir: %w", err)
	}

	tmp, err := os.CreateTemp(tempDir, "upload-*")
	if err != nil {
		return domain.BlobInfo{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(tmp, h), &ctxReader{ctx: ctx, r: r})
	if err != nil {
		return domain.BlobInfo{}, fmt.Errorf("write blob %q: %w", name, err)
	}
	if err = tmp.Sync(); err != nil {
		return domain.BlobInfo{}, fmt.Errorf("sync blob %q: %w", name, err)
	}
	if err = tmp.Close(); err != nil {
		return domain.BlobInfo{}, fmt.Errorf("close blob %q: %w", name, err)
	}
	if err = os.Chmod(tmpPath, fileMode); err != nil {
		return domain.BlobInfo{}, fmt.Errorf("chmod blob %q: %w", name, err)
	}
	if err = os.Rename(tmpPath, s.path(name)); err != nil {
		return domain.BlobInfo{}, fmt.Errorf("commit blob %q: %w", name, err)
	}

	return domain.BlobInfo{
		Name:   name,
		Size:   n,
		SHA256: hex.EncodeToString(h.Sum(nil)),
	}, nil
}

// ReadStream opens the blob file. The returned reader is an *os.File and
// supports seeking.
func (s *Store) ReadStream(_ context.Context, name string) (io.ReadCloser, error) {
	if err := domain.ValidateFilename(name); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("blob %q: %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("open blob %q: %w", name, err)
	}
	return f, nil
}

// Delete removes the blob file.
func (s *Store) Delete(_ context.Context, name string) error {
	if err := domain.ValidateFilename(name); err != nil {
		return err
	}
	err := os.Remove(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("blob %q: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete blob %q: %w", name, err)
	}
	return nil
}

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
