package cli

import (
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/aretw0/turtle"
	"github.com/aretw0/turtle/internal/adapters/file"
	"github.com/aretw0/turtle/internal/config"
	"github.com/aretw0/turtle/internal/logging"
	"github.com/aretw0/turtle/pkg/adapters/memory"
	"github.com/aretw0/turtle/pkg/adapters/redis"
	"github.com/aretw0/turtle/pkg/observability"
	"github.com/aretw0/turtle/pkg/persistence/middleware"
	"github.com/aretw0/turtle/pkg/ports"
	"github.com/aretw0/turtle/pkg/session"
)

// Backend bundles the session store selected by the config and, for redis
// with locking enabled, the distributed locker.
type Backend struct {
	Store  ports.SessionStore
	Locker ports.DistributedLocker
	close  func() error
}

// Close releases the store connection, if any.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// OpenBackend creates the store described by cfg, sealing records when an
// encryption key is configured.
func OpenBackend(cfg config.Config) (*Backend, error) {
	b, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Store.EncryptionKey == "" {
		return b, nil
	}

	enc, err := encryptionConfig(cfg.Store)
	if err != nil {
		b.Close()
		return nil, err
	}
	mw, err := middleware.NewEncryptionMiddleware(enc)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	b.Store = mw(b.Store)
	return b, nil
}

func encryptionConfig(sc config.StoreConfig) (middleware.EncryptionConfig, error) {
	var enc middleware.EncryptionConfig
	key, err := base64.StdEncoding.DecodeString(sc.EncryptionKey)
	if err != nil {
		return enc, fmt.Errorf("%w: encryption key is not base64: %v", config.ErrInvalidConfig, err)
	}
	enc.ActiveKey = key
	for i, k := range sc.FallbackKeys {
		key, err := base64.StdEncoding.DecodeString(k)
		if err != nil {
			return enc, fmt.Errorf("%w: fallback key %d is not base64: %v", config.ErrInvalidConfig, i, err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, key)
	}
	return enc, nil
}

func openStore(cfg config.Config) (*Backend, error) {
	switch cfg.Store.Driver {
	case config.StoreMemory:
		return &Backend{Store: memory.NewStore()}, nil
	case config.StoreFile:
		return &Backend{Store: file.New(cfg.Store.Dir)}, nil
	case config.StoreRedis:
		rc := cfg.Store.Redis
		var opts []redis.Option
		if rc.Prefix != "" {
			opts = append(opts, redis.WithPrefix(rc.Prefix))
		}
		if rc.TTL > 0 {
			opts = append(opts, redis.WithTTL(rc.TTL.Std()))
		}
		store := redis.New(rc.Addr, rc.Password, rc.DB, opts...)
		b := &Backend{Store: store, close: store.Close}
		if rc.Lock {
			b.Locker = redis.NewLocker(store.Client(), rc.Prefix+"lock:")
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: unknown store driver %q", config.ErrInvalidConfig, cfg.Store.Driver)
	}
}

// NewManager creates the session manager for the backend. New sessions use
// the configured canvas.
func NewManager(cfg config.Config, b *Backend, logger *slog.Logger, metrics *observability.Metrics) *session.Manager {
	opts := []session.Option{
		session.WithLogger(logger),
		session.WithEngineOptions(
			turtle.WithCanvas(cfg.Canvas.Width, cfg.Canvas.Height, cfg.Canvas.Fixed),
			turtle.WithMetrics(metrics),
		),
	}
	if b.Locker != nil {
		opts = append(opts, session.WithLocker(b.Locker), session.WithLockTTL(cfg.Store.Redis.LockTTL.Std()))
	}
	return session.NewManager(b.Store, opts...)
}

// NewRegistry returns a registry with the turtle collectors plus the Go and
// process collectors.
func NewRegistry() (*prometheus.Registry, *observability.Metrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, observability.NewMetrics(reg)
}

// NewLogger builds the CLI logger from the configured level.
func NewLogger(cfg config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}
