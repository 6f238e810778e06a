// Package store persists operator state (tariff overrides, theme, install
// prompt dismissal) in a small string-keyed store.
package store

import (
	"context"
	"fmt"

	"github.com/iwvelando/rental-quote/pkg/constants"
)

// KV is a string-keyed store. Get reports found=false for missing keys.
type KV interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend string
	Path    string
	Redis   RedisOptions
}

// Open builds the configured backend. An empty backend means the file
// backend.
func Open(ctx context.Context, opts Options) (KV, error) {
	switch opts.Backend {
	case "", constants.StorageBackendFile:
		path := opts.Path
		if path == "" {
			path = constants.DefaultStatePath
		}
		return NewFileKV(path), nil
	case constants.StorageBackendRedis:
		client, err := DialRedis(ctx, opts.Redis)
		if err != nil {
			return nil, err
		}
		return NewRedisKV(client, opts.Redis.KeyPrefix), nil
	case constants.StorageBackendMemory:
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", opts.Backend)
	}
}
