package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"smartexpense/internal/cache"
	"smartexpense/internal/cli"
	apphttp "smartexpense/internal/http"
	applog "smartexpense/internal/log"
	"smartexpense/internal/services"
	"smartexpense/internal/store"
)

const cacheSweepInterval = time.Minute

func main() {
	cli.LoadEnvFile()

	cfg := cli.MustLoadConfig(cli.SetupLogger(nil))
	logger := cli.SetupLogger(cfg)

	// Validate has already checked the zone
	loc, _ := cfg.Location()

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	slot, err := cli.OpenSlot(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to open storage", applog.FieldError, err, applog.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}

	st := store.New(slot.Slot, store.WithLogger(logger), store.WithLocation(loc))
	st.Initialize(ctx)

	reports := services.NewReportCache(cfg.ReportCacheSize, cfg.ReportCacheTTL)
	caches := cache.NewManager(logger)
	caches.Register(reports.LRU())

	svc := services.NewExpenseService(st,
		services.WithLocation(loc),
		services.WithLogger(logger),
		services.WithReportCache(reports),
	)

	srv := apphttp.NewServer(svc, apphttp.Options{
		Addr:              ":" + cfg.Port,
		Logger:            logger,
		RequestsPerMinute: cfg.RateLimitRPM,
		ReportCache:       reports,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting smartexpense server",
			"port", cfg.Port,
			applog.FieldBackend, cfg.DataBackend,
			applog.FieldCount, st.Snapshot().Len())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return caches.Run(gctx, cacheSweepInterval)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", applog.FieldOperation, applog.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		// flushes the latest snapshot before the slot goes away
		if err := st.Close(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		if slot.Cleanup != nil {
			if err := slot.Cleanup(); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
