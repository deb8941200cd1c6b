package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrInvalidFileName = errors.New("invalid file name")
	ErrFileTooLarge    = errors.New("file size exceeds the allowed limit")
	ErrOutsideBase     = errors.New("path escapes base directory")
)

// AllowedFile reports whether filename carries one of the given extensions,
// compared case-insensitively and without the dot.
func AllowedFile(filename string, extensions ...string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return false
	}
	for _, e := range extensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// SafeFilename keeps the base name and replaces anything but letters, digits,
// dot, dash and underscore with an underscore. Leading dots are dropped.
func SafeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.TrimLeft(b.String(), ".")
	if out == "" || out == "_" {
		return ""
	}
	return out
}

// UploadFileToDirectory stores a multipart file under uploadDir as
// "<unix>-<safe name>" and returns the stored path.
func UploadFileToDirectory(file *multipart.FileHeader, uploadDir string, maxSize int64) (string, error) {
	filename := SafeFilename(file.Filename)
	if filename == "" {
		return "", ErrInvalidFileName
	}
	if maxSize > 0 && file.Size > maxSize {
		return "", ErrFileTooLarge
	}
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("unable to create directory %s: %w", uploadDir, err)
	}

	dstPath := filepath.Join(uploadDir, fmt.Sprintf("%d-%s", time.Now().Unix(), filename))

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("unable to create the file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("unable to save the file: %w", err)
	}
	return dstPath, nil
}

// HashReader returns the hex sha256 of everything read from r.
func HashReader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// FileHash returns the hex sha256 of a file on disk.
func FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return HashReader(f)
}

// ResolveWithin joins name onto base and refuses any result outside base.
func ResolveWithin(base, name string) (string, error) {
	clean := filepath.Clean(name)
	if name == "" || clean != name || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
		return "", ErrOutsideBase
	}
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", err
	}
	full := filepath.Join(absBase, clean)
	if !strings.HasPrefix(full, absBase+string(os.PathSeparator)) {
		return "", ErrOutsideBase
	}
	return full, nil
}

func FileExists(filePath string) bool {
	info, err := os.Stat(filePath)
	return err == nil && !info.IsDir()
}

// RemoveOlderThan deletes regular files under dir last modified before
// now-maxAge and returns how many were removed. A missing dir is not an error.
func RemoveOlderThan(dir string, maxAge time.Duration, now time.Time) (int, error) {
	cutoff := now.Add(-maxAge)
	removed := 0
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(p); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}
