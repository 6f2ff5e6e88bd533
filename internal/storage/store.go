package storage

import (
	"errors"
	"fmt"
	"regexp"
)

// Keys used by the application
const (
	KeyAttendanceHistory = "attendanceHistory"
	KeyCustomOptions     = "customOptions"
)

// ErrNotFound is returned by Get when the key holds no value
var ErrNotFound = errors.New("storage: key not found")

var validKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Store is a whole-blob key/value store
type Store interface {
	// Get returns the blob stored under key, or ErrNotFound
	Get(key string) ([]byte, error)

	// Set replaces the blob stored under key
	Set(key string, value []byte) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(key string) error
}

func checkKey(key string) error {
	if !validKey.MatchString(key) {
		return fmt.Errorf("storage: invalid key %q", key)
	}
	return nil
}
