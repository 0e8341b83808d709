package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// File is a Store persisted as a single JSON object on disk. Every write
// rewrites the whole file through a temp file and rename, so a crash leaves
// either the old or the new contents.
type File struct {
	path string

	mu   sync.RWMutex
	data map[string]string
}

// OpenFile loads the store at path, creating parent directories as needed. A
// missing file is an empty store.
func OpenFile(path string) (*File, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, storageErr("open", errors.New("store path is empty"))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, storageErr("create store dir", err)
	}

	f := &File{path: path, data: map[string]string{}}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return f, nil
		}
		return nil, storageErr("read store", err)
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return f, nil
	}
	if err := json.Unmarshal(raw, &f.data); err != nil {
		return nil, storageErr("decode store", err)
	}
	if f.data == nil {
		f.data = map[string]string{}
	}
	return f, nil
}

// Path returns the backing file path.
func (f *File) Path() string { return f.path }

func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := maps.Clone(f.data)
	next[key] = value
	if err := f.flush(next); err != nil {
		return err
	}
	f.data = next
	return nil
}

func (f *File) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.data[key]; !ok {
		return nil
	}
	next := maps.Clone(f.data)
	delete(next, key)
	if err := f.flush(next); err != nil {
		return err
	}
	f.data = next
	return nil
}

func (f *File) Close() error { return nil }

func (f *File) flush(data map[string]string) error {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return storageErr("encode store", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".store-*.json")
	if err != nil {
		return storageErr("create temp file", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(bytes); err != nil {
		_ = tmp.Close()
		return storageErr("write store", err)
	}
	if err := tmp.Close(); err != nil {
		return storageErr("close temp file", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return storageErr(fmt.Sprintf("replace %s", filepath.Base(f.path)), err)
	}
	return nil
}
