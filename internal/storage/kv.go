// Package storage provides the local key/value storage that backs the task
// list, preferences and the cached user session.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Keys used by the application.
const (
	KeyTasks    = "tasks"
	KeyDarkMode = "darkMode"
	KeyUser     = "apperUser"
)

// ErrNotFound is returned by Get when a key has no value.
var ErrNotFound = errors.New("key not found")

// KV is a minimal persistent key/value store.
type KV interface {
	// Get returns the value stored under key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases underlying resources.
	Close() error
}

// GetJSON decodes the JSON value stored under key into v.
// It returns false if the key is absent.
func GetJSON(ctx context.Context, kv KV, key string, v any) (bool, error) {
	data, err := kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores v under key as JSON.
func SetJSON(ctx context.Context, kv KV, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return kv.Set(ctx, key, data)
}

// DarkMode returns the stored dark mode preference (false when unset).
func DarkMode(ctx context.Context, kv KV) (bool, error) {
	var on bool
	if _, err := GetJSON(ctx, kv, KeyDarkMode, &on); err != nil {
		return false, err
	}
	return on, nil
}

// SetDarkMode stores the dark mode preference.
func SetDarkMode(ctx context.Context, kv KV, on bool) error {
	return SetJSON(ctx, kv, KeyDarkMode, on)
}
