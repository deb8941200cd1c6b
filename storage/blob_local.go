package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalBlobStore keeps blobs under root/<container>/<name> on disk. URLs are
// file:// URLs; it serves development setups and tests.
type LocalBlobStore struct {
	root string
}

func NewLocalBlobStore(root string) (*LocalBlobStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve blob root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &LocalBlobStore{root: abs}, nil
}

func (s *LocalBlobStore) path(container, name string) (string, error) {
	if _, err := cleanName(container); err != nil || strings.Contains(container, "/") {
		return "", fmt.Errorf("%w: container %q", ErrInvalidPath, container)
	}
	name, err := cleanName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, container, filepath.FromSlash(name)), nil
}

func (s *LocalBlobStore) Upload(_ context.Context, container, name string, r io.Reader) error {
	p, err := s.path(container, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create blob dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return fmt.Errorf("create blob: %w", err)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write blob %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write blob %s: %w", name, err)
	}
	return os.Rename(tmp.Name(), p)
}

func (s *LocalBlobStore) Download(_ context.Context, container, name string) ([]byte, error) {
	p, err := s.path(container, name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s/%s", ErrBlobNotFound, container, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", name, err)
	}
	return data, nil
}

func (s *LocalBlobStore) List(_ context.Context, container, prefix string) ([]BlobInfo, error) {
	base := filepath.Join(s.root, container)
	var out []BlobInfo
	err := filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".upload-") {
			return nil
		}
		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if !strings.HasPrefix(name, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		out = append(out, BlobInfo{Name: name, LastModified: info.ModTime().UTC(), Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s/%s: %w", container, prefix, err)
	}
	return out, nil
}

func (s *LocalBlobStore) Delete(_ context.Context, container, name string) error {
	p, err := s.path(container, name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s/%s", ErrBlobNotFound, container, name)
		}
		return fmt.Errorf("delete blob %s: %w", name, err)
	}
	return nil
}

func (s *LocalBlobStore) Move(_ context.Context, container, from, to string) error {
	src, err := s.path(container, from)
	if err != nil {
		return err
	}
	dst, err := s.path(container, to)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create blob dir: %w", err)
	}
	if err := os.Rename(src, dst); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s/%s", ErrBlobNotFound, container, from)
		}
		return fmt.Errorf("move blob %s: %w", from, err)
	}
	return nil
}

func (s *LocalBlobStore) UploadURL(_ context.Context, container, name string, _ time.Duration) (string, error) {
	return s.fileURL(container, name)
}

func (s *LocalBlobStore) ReadURL(_ context.Context, container, name string, _ time.Duration) (string, error) {
	return s.fileURL(container, name)
}

func (s *LocalBlobStore) fileURL(container, name string) (string, error) {
	p, err := s.path(container, name)
	if err != nil {
		return "", err
	}
	return "file://" + filepath.ToSlash(p), nil
}
