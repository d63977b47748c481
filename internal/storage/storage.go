// Package storage provides the key-value media the book collection is
// persisted to. Every backend stores opaque string values under string keys
// and overwrites on write.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown storage backend")

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
)

// Backend is a key-value medium.
type Backend interface {
	Read(ctx context.Context, key string) (string, bool, error)
	Write(ctx context.Context, key, value string) error
	Close() error
}

// Pinger is implemented by backends that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config selects and configures a backend.
type Config struct {
	Backend     string
	DataDir     string
	DatabaseDSN string
	RedisAddr   string
	RedisPrefix string
	MongoURI    string
	MongoDB     string
	Timeout     time.Duration
}

// Open creates the backend named by cfg.Backend.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	switch cfg.Backend {
	case BackendMemory:
		return NewMemory(), nil
	case BackendFile, "":
		f, err := NewFile(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		return f, nil
	case BackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("creating postgres pool: %w", err)
		}
		pg := NewPostgres(pool, timeout)
		if err := pg.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("pinging postgres: %w", err)
		}
		logger.Info("storage connected", "backend", BackendPostgres)
		return pg, nil
	case BackendRedis:
		r := NewRedis(cfg.RedisAddr, cfg.RedisPrefix)
		if err := r.Ping(ctx); err != nil {
			_ = r.Close()
			return nil, fmt.Errorf("pinging redis: %w", err)
		}
		logger.Info("storage connected", "backend", BackendRedis, "addr", cfg.RedisAddr)
		return r, nil
	case BackendMongo:
		m, err := NewMongo(ctx, cfg.MongoURI, cfg.MongoDB, timeout)
		if err != nil {
			return nil, err
		}
		logger.Info("storage connected", "backend", BackendMongo, "database", cfg.MongoDB)
		return m, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
