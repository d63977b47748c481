package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=book

// Storage defines the contract for the key-value medium the collection is persisted to.
type Storage interface {
	// Read returns the value stored under key. found is false when the key was never written.
	Read(ctx context.Context, key string) (value string, found bool, err error)
	// Write replaces the value stored under key.
	Write(ctx context.Context, key, value string) error
	Close() error
}

// Logger is satisfied by *slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
