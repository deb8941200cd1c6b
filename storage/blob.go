package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"
)

// BlobInfo describes one stored blob.
type BlobInfo struct {
	Name         string
	LastModified time.Time
	Size         int64
}

// BlobStore is the object storage behind the raw (bronze) and curated (silver)
// zones. Names are slash separated keys inside a container.
type BlobStore interface {
	Upload(ctx context.Context, container, name string, r io.Reader) error
	Download(ctx context.Context, container, name string) ([]byte, error)
	List(ctx context.Context, container, prefix string) ([]BlobInfo, error)
	Delete(ctx context.Context, container, name string) error
	Move(ctx context.Context, container, from, to string) error
	// UploadURL returns a short lived URL a browser can PUT the blob to.
	UploadURL(ctx context.Context, container, name string, ttl time.Duration) (string, error)
	// ReadURL returns a short lived URL to download the blob.
	ReadURL(ctx context.Context, container, name string, ttl time.Duration) (string, error)
}

// UploadJSON stores v as indented JSON.
func UploadJSON(ctx context.Context, s BlobStore, container, name string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return s.Upload(ctx, container, name, bytes.NewReader(data))
}

// DownloadJSON reads a JSON blob into v.
func DownloadJSON(ctx context.Context, s BlobStore, container, name string, v any) error {
	data, err := s.Download(ctx, container, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// Latest returns the most recently modified blob under prefix, ties broken by
// name.
func Latest(blobs []BlobInfo) (BlobInfo, bool) {
	if len(blobs) == 0 {
		return BlobInfo{}, false
	}
	sorted := append([]BlobInfo(nil), blobs...)
	sortByModified(sorted)
	return sorted[len(sorted)-1], true
}

func sortByModified(blobs []BlobInfo) {
	sort.SliceStable(blobs, func(i, j int) bool {
		if !blobs[i].LastModified.Equal(blobs[j].LastModified) {
			return blobs[i].LastModified.Before(blobs[j].LastModified)
		}
		return blobs[i].Name < blobs[j].Name
	})
}

// BaseName returns the last path element of a blob name.
func BaseName(name string) string {
	return path.Base(name)
}

// cleanName rejects names that would escape the container.
func cleanName(name string) (string, error) {
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, name)
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." || part == "." {
			return "", fmt.Errorf("%w: %q", ErrInvalidPath, name)
		}
	}
	return name, nil
}
