package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/gfc-explorer/internal/fetcher"
	"github.com/sells-group/gfc-explorer/internal/refdata"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the source datasets named in sources.yaml",
	Long:  "Downloads every dataset with a url entry in the sources manifest into the data directory. Existing files are skipped unless --force is set.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("fetch"); err != nil {
			return err
		}

		manifest, err := refdata.LoadManifest(cfg.Data.Dir)
		if err != nil {
			return err
		}

		type job struct {
			name string
			url  string
			dest string
		}
		var jobs []job
		for _, spec := range refdata.Tables {
			url := manifest.URLFor(spec.Name)
			if url == "" {
				continue
			}
			jobs = append(jobs, job{spec.Name, url, manifest.FileFor(cfg.Data.Dir, spec)})
		}
		if b := manifest.Boundaries; b.URL != "" && b.File != "" {
			jobs = append(jobs, job{"boundaries", b.URL, filepath.Join(cfg.Data.Dir, b.File)})
		}

		if len(jobs) == 0 {
			return eris.New("fetch: no url entries in sources.yaml")
		}
		if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
			return eris.Wrap(err, "fetch: create data dir")
		}

		force, _ := cmd.Flags().GetBool("force")
		opts := fetcher.Options{
			UserAgent:  cfg.Fetch.UserAgent,
			TimeoutSec: cfg.Fetch.TimeoutSecs,
			MaxRetries: cfg.Fetch.MaxRetries,
		}

		var mu sync.Mutex
		var fetched, skipped int

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(3)
		for _, j := range jobs {
			g.Go(func() error {
				if !force {
					if _, err := os.Stat(j.dest); err == nil {
						zap.L().Info("already present, skipping", zap.String("dataset", j.name))
						mu.Lock()
						skipped++
						mu.Unlock()
						return nil
					}
				}

				f, err := fetcher.ForURL(j.url, opts)
				if err != nil {
					return err
				}
				n, err := f.DownloadToFile(gctx, j.url, j.dest)
				if err != nil {
					return eris.Wrapf(err, "fetch: %s", j.name)
				}
				zap.L().Info("dataset fetched",
					zap.String("dataset", j.name),
					zap.String("path", j.dest),
					zap.Int64("bytes", n),
				)
				mu.Lock()
				fetched++
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "Fetched %d datasets (%d already present).\n", fetched, skipped)
		return nil
	},
}

func init() {
	fetchCmd.Flags().Bool("force", false, "re-download datasets that already exist")
	rootCmd.AddCommand(fetchCmd)
}
