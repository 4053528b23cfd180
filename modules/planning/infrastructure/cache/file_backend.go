package cache

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	pkgerrors "github.com/pkg/errors"
)

const fileExt = ".json"

// FileBackend keeps one <key>.json file per entry under Dir. The file modification
// time is the entry's storedAt; there is no separate metadata.
type FileBackend struct {
	dir string
}

func NewFileBackend(dir string) (*FileBackend, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, invalidConfig("cache dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, pkgerrors.Wrap(err, "create cache dir")
	}
	return &FileBackend{dir: dir}, nil
}

func (f *FileBackend) Dir() string {
	return f.dir
}

func (f *FileBackend) path(key string) string {
	return filepath.Join(f.dir, key+fileExt)
}

func (f *FileBackend) Load(_ context.Context, key string) (Entry, error) {
	if !validKey(key) {
		return Entry{}, ErrInvalidKey
	}
	p := f.path(key)
	st, err := os.Stat(p)
	if errors.Is(err, os.ErrNotExist) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, pkgerrors.Wrap(err, "stat cache file")
	}
	payload, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, pkgerrors.Wrap(err, "read cache file")
	}
	return Entry{Key: key, Payload: payload, StoredAt: st.ModTime()}, nil
}

func (f *FileBackend) Store(_ context.Context, entry Entry) error {
	if !validKey(entry.Key) {
		return ErrInvalidKey
	}
	p := f.path(entry.Key)
	if err := atomic.WriteFile(p, bytes.NewReader(entry.Payload)); err != nil {
		return pkgerrors.Wrap(err, "write cache file")
	}
	if !entry.StoredAt.IsZero() {
		if err := os.Chtimes(p, entry.StoredAt, entry.StoredAt); err != nil {
			return pkgerrors.Wrap(err, "stamp cache file")
		}
	}
	return nil
}

func (f *FileBackend) Delete(_ context.Context, key string) error {
	if !validKey(key) {
		return ErrInvalidKey
	}
	if err := os.Remove(f.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return pkgerrors.Wrap(err, "remove cache file")
	}
	return nil
}

func (f *FileBackend) DeleteAll(ctx context.Context) (int, error) {
	infos, err := f.List(ctx)
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, info := range infos {
		if err := f.Delete(ctx, info.Key); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

func (f *FileBackend) List(_ context.Context) ([]Info, error) {
	dirEntries, err := os.ReadDir(f.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "list cache dir")
	}
	out := make([]Info, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		key := strings.TrimSuffix(name, fileExt)
		if !validKey(key) {
			continue
		}
		st, err := de.Info()
		if err != nil {
			// removed concurrently
			continue
		}
		out = append(out, Info{Key: key, Size: st.Size(), StoredAt: st.ModTime()})
	}
	return out, nil
}
