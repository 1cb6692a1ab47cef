// Package kv defines the key/value namespace the record store persists into
// and the backends that implement it.
//
// Values are opaque strings. The record store writes JSON arrays, the session
// service writes scalars. A key that was never set, or that was removed, is
// reported with ok == false and a nil error.
package kv

import (
	"context"
	"fmt"
	"time"
)

// Store is a synchronous string key/value namespace.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// Pinger is implemented by backends that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Drivers accepted by Open
const (
	DriverMemory   = "memory"
	DriverBolt     = "bolt"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

type Config struct {
	Driver string
	// Path is the bolt file path
	Path   string
	Bucket string
	// DSN is used by the sql drivers
	DSN   string
	Table string
	Redis RedisConfig
}

type RedisConfig struct {
	URL          string
	Prefix       string
	MaxRetries   int
	RetryBackoff time.Duration
	PoolSize     int
	MinIdleConns int
}

// Open builds the backend named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", DriverMemory:
		return NewMemoryStore(), nil
	case DriverBolt:
		return NewBoltStore(cfg.Path, cfg.Bucket)
	case DriverRedis:
		return NewRedisStore(ctx, cfg.Redis)
	case DriverPostgres, DriverSQLite:
		return NewSQLStore(ctx, cfg.Driver, cfg.DSN, cfg.Table)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
