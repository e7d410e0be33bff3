package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/gfc-explorer/internal/hpi"
	"github.com/sells-group/gfc-explorer/internal/observability"
	"github.com/sells-group/gfc-explorer/internal/refdata"
)

// appEnv bundles the store and the aggregation engine shared by every
// command that queries HPI data.
type appEnv struct {
	Store   refdata.Store
	Engine  *hpi.Engine
	Metrics *observability.Metrics
}

func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEngine opens the configured store, loads the reference datasets, and
// builds the aggregation engine on top.
func initEngine(ctx context.Context, metrics *observability.Metrics) (*appEnv, error) {
	if err := cfg.Validate("load"); err != nil {
		return nil, err
	}

	store, err := refdata.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, err
	}

	counts, err := refdata.Load(ctx, store, refdata.LoadOptions{
		DataDir:      cfg.Data.Dir,
		NullSentinel: cfg.Data.NullSentinel,
		Concurrency:  cfg.Data.Concurrency,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	metrics.SetRowsLoaded(counts)
	zap.L().Info("reference store ready", zap.Int("tables", len(counts)))

	engine := hpi.New(store, hpi.Options{
		CacheTTL:        cfg.Cache.TTL(),
		CacheMaxEntries: cfg.Cache.MaxEntries,
		Metrics:         metrics,
	})

	return &appEnv{Store: store, Engine: engine, Metrics: metrics}, nil
}

// contextWithTimeout returns a background context bounded by secs seconds,
// defaulting to 10 when secs is unset.
func contextWithTimeout(secs int) (context.Context, context.CancelFunc) {
	if secs <= 0 {
		secs = 10
	}
	return context.WithTimeout(context.Background(), time.Duration(secs)*time.Second)
}
