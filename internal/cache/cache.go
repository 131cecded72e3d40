// Package cache is a small content-addressed file cache under the user's
// home directory. The Soufflé bridge uses it to skip re-running the engine
// when the generated program text has not changed.
package cache

import (
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/minio/highwayhash"
	"github.com/vmihailenco/msgpack/v5"
)

// hashKey is fixed: cache keys need to be stable, not secret.
var hashKey = make([]byte, 32)

// Dir returns the cache directory path, creating it if needed.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".tactscan", "cache")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// Key computes a stable cache key from the given parts.
func Key(parts ...string) string {
	h, _ := highwayhash.New(hashKey)
	for _, p := range parts {
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Load decodes the cached value for key into v.
func Load(key string, v any) bool {
	dir, err := Dir()
	if err != nil {
		return false
	}
	b, err := os.ReadFile(filepath.Join(dir, key))
	if err != nil {
		return false
	}
	return msgpack.Unmarshal(b, v) == nil
}

// Store encodes v and writes it under key.
func Store(key string, v any) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	b, err := msgpack.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, key), b, 0o644)
}
