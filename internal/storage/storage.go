// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("not found")

// Storage is a key-value slot per session (a Telegram chat, or the local CLI user).
type Storage interface {
	GetValue(ctx context.Context, sessionID int64, key string) (string, error)
	PutValue(ctx context.Context, sessionID int64, key, value string) error
	DeleteValue(ctx context.Context, sessionID int64, key string) error

	Close() error
}
