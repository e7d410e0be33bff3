package main

import (
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/gfc-explorer/internal/geo"
	"github.com/sells-group/gfc-explorer/internal/observability"
	"github.com/sells-group/gfc-explorer/internal/refdata"
	"github.com/sells-group/gfc-explorer/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics := observability.NewMetrics(reg)

		env, err := initEngine(ctx, metrics)
		if err != nil {
			return err
		}
		defer env.Close()

		counties, err := loadCounties()
		if err != nil {
			return err
		}

		srvr := server.New(env.Engine, counties, server.Options{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			RateLimitRPS:   cfg.Server.RateLimitRPS,
			RateLimitBurst: cfg.Server.RateLimitBurst,
			SessionTTL:     cfg.Server.SessionTTL(),
			MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		})
		srvr.StartSessionEviction(ctx)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           srvr.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := contextWithTimeout(cfg.Server.ShutdownTimeout)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// loadCounties loads the boundary dataset named by the sources manifest.
// Returns nil when none is configured; the boundaries endpoint then serves
// empty collections.
func loadCounties() (*geo.CountySet, error) {
	manifest, err := refdata.LoadManifest(cfg.Data.Dir)
	if err != nil {
		return nil, err
	}
	if manifest.Boundaries.File == "" {
		zap.L().Warn("no boundary dataset configured, choropleth disabled")
		return nil, nil
	}

	path := filepath.Join(cfg.Data.Dir, manifest.Boundaries.File)
	counties, err := geo.LoadCounties(path, manifest.Boundaries.Format)
	if err != nil {
		return nil, err
	}
	zap.L().Info("county boundaries loaded", zap.Int("counties", counties.Len()))
	return counties, nil
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
