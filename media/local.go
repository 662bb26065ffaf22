package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalHost writes files under Dir; the router serves Dir at BaseURL.
type LocalHost struct {
	dir     string
	baseURL string
}

func NewLocalHost(dir, baseURL string) (*LocalHost, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &LocalHost{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (h *LocalHost) Name() string { return "local" }

func (h *LocalHost) Dir() string { return h.dir }

func (h *LocalHost) Upload(ctx context.Context, f File, key string) (Asset, error) {
	if err := ctx.Err(); err != nil {
		return Asset{}, err
	}
	name := key + f.Extension()
	full, err := h.path(name)
	if err != nil {
		return Asset{}, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return Asset{}, err
	}
	if err := os.WriteFile(full, f.Data, 0o644); err != nil {
		return Asset{}, fmt.Errorf("write %s: %w", name, err)
	}
	return Asset{URL: h.baseURL + "/" + name, PublicID: name, Kind: f.Kind()}, nil
}

func (h *LocalHost) Delete(ctx context.Context, a Asset) error {
	full, err := h.path(a.PublicID)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// path keeps names inside dir.
func (h *LocalHost) path(name string) (string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(name))
	if clean == string(filepath.Separator) {
		return "", fmt.Errorf("invalid media name %q", name)
	}
	return filepath.Join(h.dir, clean), nil
}
