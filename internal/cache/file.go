package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileCache keeps one file per key under Dir. Expiry is stored in a sidecar
// "<key>.expires" file holding an RFC 3339 timestamp.
type FileCache struct {
	Dir string
}

var _ Cache = (*FileCache)(nil)

func NewFileCache(dir string) *FileCache {
	return &FileCache{Dir: dir}
}

func (fc *FileCache) path(key string) string {
	return filepath.Join(fc.Dir, filepath.FromSlash(key))
}

func (fc *FileCache) expired(key string) bool {
	raw, err := os.ReadFile(fc.path(key) + ".expires")
	if err != nil {
		return false
	}
	var expires time.Time
	if err := json.Unmarshal(raw, &expires); err != nil {
		return false
	}
	return time.Now().After(expires)
}

func (fc *FileCache) Get(_ context.Context, key string) (io.ReadCloser, error) {
	if fc.expired(key) {
		return nil, ErrNotFound
	}
	f, err := os.Open(fc.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func (fc *FileCache) Exists(_ context.Context, key string) (bool, error) {
	if fc.expired(key) {
		return false, nil
	}
	_, err := os.Stat(fc.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (fc *FileCache) Put(_ context.Context, key, value string, opts PutOptions) error {
	if strings.Contains(key, "..") {
		return fmt.Errorf("invalid cache key %q", key)
	}
	filePath := fc.path(key)
	// Create parent directories if they don't exist
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(filePath, []byte(value), 0644); err != nil {
		return err
	}
	if opts.TTL <= 0 {
		err := os.Remove(filePath + ".expires")
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
	expires, err := json.Marshal(time.Now().Add(opts.TTL))
	if err != nil {
		return err
	}
	return os.WriteFile(filePath+".expires", expires, 0644)
}
