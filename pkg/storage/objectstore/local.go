package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"sort"
)

// localClient keeps objects as plain files in one directory, the layout a static
// file server expects.
type localClient struct {
	dir  string
	base string
}

func newLocalClient(cfg Config) (Client, error) {
	if cfg.LocalDir == "" {
		return nil, errors.New("local object store requires a directory")
	}
	if err := os.MkdirAll(cfg.LocalDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &localClient{dir: cfg.LocalDir, base: cfg.PublicBaseURL}, nil
}

func (l *localClient) Put(ctx context.Context, key string, reader io.Reader, size int64, metadata map[string]string) error {
	if !ValidKey(key) {
		return ErrInvalidKey
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	path := filepath.Join(l.dir, key)
	tmp, err := os.CreateTemp(l.dir, ".partial-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	written, err := io.Copy(tmp, reader)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if size >= 0 && written != size {
		return fmt.Errorf("write %s: short write %d of %d bytes", key, written, size)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("commit %s: %w", key, err)
	}
	return nil
}

func (l *localClient) Open(ctx context.Context, key string) (io.ReadCloser, Object, error) {
	if !ValidKey(key) {
		return nil, Object{}, ErrInvalidKey
	}
	f, err := os.Open(filepath.Join(l.dir, key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, Object{}, ErrNotFound
		}
		return nil, Object{}, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, Object{}, err
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, Object{}, ErrNotFound
	}
	return f, l.describe(info), nil
}

func (l *localClient) List(ctx context.Context) ([]Object, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("read upload dir: %w", err)
	}
	out := make([]Object, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !ValidKey(entry.Name()) || entry.Name()[0] == '.' {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		out = append(out, l.describe(info))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (l *localClient) Remove(ctx context.Context, key string) error {
	if !ValidKey(key) {
		return ErrInvalidKey
	}
	err := os.Remove(filepath.Join(l.dir, key))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	return err
}

func (l *localClient) URL(key string) string {
	return publicURL(l.base, key)
}

func (l *localClient) BaseURL() string {
	return l.base
}

func (l *localClient) Close() error {
	return nil
}

func (l *localClient) describe(info fs.FileInfo) Object {
	return Object{
		Key:         info.Name(),
		Size:        info.Size(),
		ContentType: mime.TypeByExtension(filepath.Ext(info.Name())),
		Modified:    info.ModTime(),
	}
}
