package store

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned by Get when the key is absent.
	ErrNotFound = errors.New("key not found")
	// ErrPersistenceUnavailable is returned when the backing store cannot be read or written.
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
)

// Store is durable key/value storage.
type Store interface {
	// Get returns the value for key or ErrNotFound.
	Get(key string) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(key string) error
	// Keys returns all keys with the given prefix in lexical order.
	Keys(prefix string) ([]string, error)
}

// Key layout
const (
	Namespace     = "wm:"
	WindowPrefix  = Namespace + "window:"
	SessionPrefix = Namespace + "session:"
	KeyOpenSet    = Namespace + "openSet"
	KeyActive     = Namespace + "active"
	KeyZCounter   = Namespace + "zCounter"
)

// WindowKey returns the key of the geometry record for an app id.
func WindowKey(appID string) string {
	return WindowPrefix + appID
}

// SessionKey returns the key of a saved workspace.
func SessionKey(sessionID string) string {
	return SessionPrefix + sessionID
}

// TrimPrefix strips prefix from key, reporting whether it was present.
func TrimPrefix(key, prefix string) (string, bool) {
	if !strings.HasPrefix(key, prefix) {
		return "", false
	}
	return key[len(prefix):], true
}

// Copy writes every key of src into dst.
func Copy(dst, src Store) (int, error) {
	keys, err := src.Keys("")
	if err != nil {
		return 0, err
	}
	for i, key := range keys {
		value, err := src.Get(key)
		if err != nil {
			return i, err
		}
		if err := dst.Set(key, value); err != nil {
			return i, err
		}
	}
	return len(keys), nil
}
