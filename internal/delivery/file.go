// Package delivery saves exported artifacts for the user.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// maxSuffix bounds how many numbered names are tried before giving up.
const maxSuffix = 1000

// FileDeliverer writes artifacts into a directory. An existing file is never
// overwritten; a numbered name is chosen instead.
type FileDeliverer struct {
	Dir string
}

// NewFileDeliverer creates a FileDeliverer for dir. An empty dir resolves
// to the user's Downloads folder, or the working directory if there is none.
func NewFileDeliverer(dir string) *FileDeliverer {
	if dir == "" {
		dir = DefaultDir()
	}
	return &FileDeliverer{Dir: dir}
}

// DefaultDir returns ~/Downloads when it exists, otherwise ".".
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	dl := filepath.Join(home, "Downloads")
	if info, err := os.Stat(dl); err == nil && info.IsDir() {
		return dl
	}
	return "."
}

// Deliver writes data to a temp file in Dir and renames it to a free name
// derived from suggested. The temp file is removed on every path.
func (d *FileDeliverer) Deliver(ctx context.Context, data []byte, suggested string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := filepath.Base(suggested)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "", fmt.Errorf("invalid file name %q", suggested)
	}

	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}

	tmp, err := os.CreateTemp(d.Dir, ".ignite-export-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return "", fmt.Errorf("chmod: %w", err)
	}

	target, err := d.freePath(name)
	if err != nil {
		return "", err
	}
	// Link fails if target appeared since freePath; rename would clobber it.
	if err := os.Link(tmpPath, target); err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("%s was created concurrently", target)
		}
		if err := os.Rename(tmpPath, target); err != nil {
			return "", fmt.Errorf("rename: %w", err)
		}
	}
	return target, nil
}

// freePath returns Dir/name, or Dir/base (n).ext for the first n not taken.
func (d *FileDeliverer) freePath(name string) (string, error) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	candidate := filepath.Join(d.Dir, name)
	for n := 1; n <= maxSuffix; n++ {
		if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
		candidate = filepath.Join(d.Dir, fmt.Sprintf("%s (%d)%s", base, n, ext))
	}
	return "", fmt.Errorf("no free file name for %q in %s", name, d.Dir)
}
