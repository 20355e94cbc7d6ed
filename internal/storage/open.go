package storage

import (
	"fmt"
	"path/filepath"
)

// Backend names accepted by Open
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open returns the configured backend rooted at dataDir and a function that
// releases it.
func Open(backend, dataDir string) (KV, func() error, error) {
	noop := func() error { return nil }

	switch backend {
	case "", BackendFile:
		kv, err := NewFileKV(filepath.Join(dataDir, "answers"))
		if err != nil {
			return nil, nil, err
		}
		return kv, noop, nil
	case BackendSQLite:
		kv, err := NewSQLiteKV(filepath.Join(dataDir, "madlibs.db"))
		if err != nil {
			return nil, nil, err
		}
		return kv, kv.Close, nil
	case BackendMemory:
		return NewMemoryKV(), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q (want file, sqlite or memory)", backend)
	}
}
