package cli

import (
	"fmt"
	"path/filepath"

	"github.com/aretw0/cinegraph/internal/config"
	"github.com/aretw0/cinegraph/pkg/adapters/file"
	"github.com/aretw0/cinegraph/pkg/adapters/memory"
	"github.com/aretw0/cinegraph/pkg/adapters/redis"
	"github.com/aretw0/cinegraph/pkg/adapters/sqlite"
	"github.com/aretw0/cinegraph/pkg/persistence/middleware"
	"github.com/aretw0/cinegraph/pkg/ports"
	"github.com/aretw0/cinegraph/pkg/session"
)

// Backend is a configured checkpoint store plus what the session manager needs to share it.
type Backend struct {
	Store          ports.CheckpointStore
	SessionOptions []session.Option
	Kind           string

	closers []func() error
}

// Close releases database and network connections.
func (b *Backend) Close() error {
	var first error
	for _, c := range b.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// NewBackend builds the store selected by cfg.Store. Relative paths are
// resolved against dir. An encryption key wraps the store in AES-GCM sealing.
func NewBackend(cfg *config.Config, dir string) (*Backend, error) {
	b := &Backend{Kind: cfg.Store.Kind}

	switch cfg.Store.Kind {
	case config.StoreMemory:
		b.Store = memory.NewStore()

	case config.StoreFile:
		b.Store = file.New(resolve(dir, cfg.Store.Path, filepath.Join(".cinegraph", "checkpoints")))

	case config.StoreSQLite:
		s, err := sqlite.New(resolve(dir, cfg.Store.Path, filepath.Join(".cinegraph", "checkpoints.db")))
		if err != nil {
			return nil, err
		}
		b.Store = s
		b.closers = append(b.closers, s.Close)

	case config.StoreRedis:
		ttl, err := cfg.StoreTTL()
		if err != nil {
			return nil, err
		}
		s, err := redis.New(cfg.Store.RedisURL, redis.WithPrefix(cfg.Store.Prefix), redis.WithTTL(ttl))
		if err != nil {
			return nil, err
		}
		b.Store = s
		b.closers = append(b.closers, s.Close)
		// Several processes may share the redis store: serialize turns across them.
		b.SessionOptions = append(b.SessionOptions, session.WithLocker(redis.NewLocker(s.Client(), s.Prefix())))

	default:
		return nil, fmt.Errorf("unknown store kind %q", cfg.Store.Kind)
	}

	if cfg.Store.SaveAttempts > 1 {
		delay, err := cfg.SaveRetryDelay()
		if err != nil {
			b.Close()
			return nil, err
		}
		b.SessionOptions = append(b.SessionOptions, session.WithSaveAttempts(cfg.Store.SaveAttempts, delay))
	}

	if cfg.Store.EncryptionKey != "" {
		key, err := middleware.ParseKey(cfg.Store.EncryptionKey)
		if err != nil {
			b.Close()
			return nil, err
		}
		mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			b.Close()
			return nil, err
		}
		b.Store = middleware.Chain(b.Store, mw)
	}
	return b, nil
}

func resolve(dir, path, fallback string) string {
	if path == "" {
		path = fallback
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
