package refdata

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// LoadOptions configures the startup load.
type LoadOptions struct {
	DataDir      string
	NullSentinel string // default "."
	Concurrency  int    // parallel file decodes (default 4)
}

// Load reads the seven reference tables from disk into the store and returns
// the row count per table. Any missing or malformed source file fails the
// whole load; the store is not left partially populated for the caller to
// serve from.
func Load(ctx context.Context, store Store, opts LoadOptions) (map[string]int64, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}

	manifest, err := LoadManifest(opts.DataDir)
	if err != nil {
		return nil, err
	}
	sentinel := manifest.Sentinel(opts.NullSentinel)

	log := zap.L().With(zap.String("component", "refdata.loader"))

	if err := store.Migrate(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	var mu sync.Mutex
	counts := make(map[string]int64, len(Tables))

	for _, spec := range Tables {
		g.Go(func() error {
			path := manifest.FileFor(opts.DataDir, spec)
			decode, ok := decoders[spec.Name]
			if !ok {
				return eris.Errorf("refdata: no decoder for table %s", spec.Name)
			}

			f, err := os.Open(path)
			if err != nil {
				return eris.Wrapf(err, "refdata: open source for %s", spec.Name)
			}
			defer f.Close() //nolint:errcheck

			rows, err := decode(f, sentinel)
			if err != nil {
				return err
			}

			n, err := store.InsertRows(gCtx, spec.Name, spec.Columns, rows)
			if err != nil {
				return err
			}

			mu.Lock()
			counts[spec.Name] = n
			mu.Unlock()

			log.Info("table loaded",
				zap.String("table", spec.Name),
				zap.Int64("rows", n),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Info("reference data loaded",
		zap.Int("tables", len(Tables)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return counts, nil
}
