package storage

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const fileExt = ".json"

// FileKV stores each key as its own file under a directory
type FileKV struct {
	rootPath string
}

// NewFileKV creates a file-backed store rooted at dir, creating it if needed
func NewFileKV(dir string) (*FileKV, error) {
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(homeDir, ".pocket-madlibs", "answers")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create answers directory %s: %w", dir, err)
	}

	return &FileKV{rootPath: dir}, nil
}

// Dir returns the directory holding the records
func (f *FileKV) Dir() string {
	return f.rootPath
}

// path maps a key to a file name; keys are escaped so any template id is safe
func (f *FileKV) path(key string) string {
	return filepath.Join(f.rootPath, url.PathEscape(key)+fileExt)
}

func (f *FileKV) Get(key string) (string, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return string(data), true, nil
}

// Set writes through a temp file and rename so a crash never leaves a
// half-written record behind
func (f *FileKV) Set(key, value string) error {
	tmp, err := os.CreateTemp(f.rootPath, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", key, err)
	}

	if err := os.Rename(tmpName, f.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

func (f *FileKV) Delete(key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Keys returns the stored keys with the given prefix, sorted
func (f *FileKV) Keys(prefix string) ([]string, error) {
	entries, err := os.ReadDir(f.rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", f.rootPath, err)
	}

	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, fileExt) || strings.HasPrefix(name, ".tmp-") {
			continue
		}
		key, err := url.PathUnescape(strings.TrimSuffix(name, fileExt))
		if err != nil {
			continue
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
