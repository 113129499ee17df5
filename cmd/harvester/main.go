// cmd/harvester/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tamzrod/probe-harvester/internal/config"
	"github.com/tamzrod/probe-harvester/internal/db"
	"github.com/tamzrod/probe-harvester/internal/harvester"
	"github.com/tamzrod/probe-harvester/internal/logging"
	"github.com/tamzrod/probe-harvester/internal/metrics"
	"github.com/tamzrod/probe-harvester/internal/store"
	"github.com/tamzrod/probe-harvester/internal/store/sqlite"
	"github.com/tamzrod/probe-harvester/internal/writer"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal().Msg("usage: harvester <config.yaml>")
	}

	cfgPath := os.Args[1]

	// --------------------
	// Load + normalize + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	config.Normalize(cfg)

	if err := config.Validate(cfg); err != nil {
		log.Fatal().Err(err).Msg("config validation failed")
	}

	hc := cfg.Harvester

	logger := logging.New("harvester", logging.Config{
		Level: hc.Log.Level,
		JSON:  hc.Log.JSON,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Storage
	// --------------------

	sqlDB, err := db.Open(ctx, db.Config{Path: hc.Storage.DBPath})
	if err != nil {
		logger.Fatal().Err(err).Str("db_path", hc.Storage.DBPath).Msg("database open failed")
	}
	defer sqlDB.Close()

	dbWriter := db.NewWorker(sqlDB)
	defer dbWriter.Close()

	sinks := store.Multi{sqlite.New(sqlDB, dbWriter)}

	// ---- status mirror (optional) ----
	if hc.Mirror != nil {
		mirror, closeMirror, err := writer.Build(*hc.Mirror, logger)
		if err != nil {
			logger.Fatal().Err(err).Str("endpoint", hc.Mirror.Endpoint).Msg("mirror build failed")
		}
		defer closeMirror()

		// boot-time identity assert
		if err := mirror.Assert(ctx); err != nil {
			logger.Warn().Err(err).Msg("mirror assert failed on start")
		}
		// mirror is secondary: its failures never reach the session
		mlog := logger.With().Str("sink", "mirror").Logger()
		sinks = append(sinks, store.BestEffort{
			Sink: mirror,
			OnError: func(op string, err error) {
				metrics.RecordSinkError("mirror")
				mlog.Warn().Err(err).Str("op", op).Msg("mirror write failed")
			},
		})
	}

	// --------------------
	// Metrics (optional)
	// --------------------

	metrics.RegisterMetrics()

	if hc.Metrics.Addr != "" {
		srv := &http.Server{
			Addr:              hc.Metrics.Addr,
			Handler:           metricsMux(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info().Str("addr", srv.Addr).Msg("metrics listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("metrics server failed")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	// --------------------
	// Harvester
	// --------------------

	h, err := harvester.Build(hc, sinks, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("path", hc.Device.Path).Msg("harvester build failed")
	}

	if err := h.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("harvester exited")
	}

	logger.Info().Msg("shutdown complete")
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	return mux
}
