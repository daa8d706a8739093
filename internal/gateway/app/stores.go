package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	cache "spacedesk/internal/cache/workspace"
	"spacedesk/internal/gateway/config"
	workspacerepo "spacedesk/internal/gateway/repository/workspace"
)

type gatewayStores struct {
	workspace workspacerepo.Store
	backend   string
	closers   []io.Closer
}

func (s *gatewayStores) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// initStores picks the snapshot origin in priority order postgres, s3, disk,
// memory and fronts it with the LRU cache.
func initStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*gatewayStores, error) {
	stores := &gatewayStores{}
	origin, err := chooseOrigin(ctx, cfg, stores)
	if err != nil {
		return nil, err
	}
	logger.Info("workspace store",
		zap.String("backend", stores.backend),
		zap.Duration("cache_ttl", cfg.Cache.TTL),
		zap.Int("cache_max_entries", cfg.Cache.MaxEntries),
	)
	stores.workspace = cache.NewCachedStore(origin, cache.CacheConfig{
		TTL:        cfg.Cache.TTL,
		MaxEntries: cfg.Cache.MaxEntries,
	})
	return stores, nil
}

func chooseOrigin(ctx context.Context, cfg *config.Config, stores *gatewayStores) (workspacerepo.Store, error) {
	if dsn := strings.TrimSpace(cfg.DatabaseURL); dsn != "" {
		db, err := workspacerepo.OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open db: %w", err)
		}
		pg := workspacerepo.NewPostgresStore(db)
		stores.backend = "postgres"
		stores.closers = append(stores.closers, pg)
		return pg, nil
	}
	if cfg.Snapshot.CanUseS3() {
		s3Store, err := workspacerepo.NewS3Store(workspacerepo.S3Config{
			Endpoint:  cfg.Snapshot.Endpoint,
			Region:    cfg.Snapshot.Region,
			AccessKey: cfg.Snapshot.AccessKey,
			SecretKey: cfg.Snapshot.SecretKey,
			Bucket:    cfg.Snapshot.Bucket,
			UseSSL:    cfg.Snapshot.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize snapshot s3 store: %w", err)
		}
		stores.backend = "s3:" + cfg.Snapshot.Bucket
		return s3Store, nil
	}
	if path := strings.TrimSpace(cfg.StorePath); path != "" {
		stores.backend = "disk:" + path
		return cache.NewDiskStore(path), nil
	}
	stores.backend = "in-memory"
	return cache.NewMemoryStore(), nil
}
