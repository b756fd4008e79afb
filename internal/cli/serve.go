package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lazypower/neurodose/internal/alerts"
	"github.com/lazypower/neurodose/internal/engine"
	"github.com/lazypower/neurodose/internal/ledger"
	"github.com/lazypower/neurodose/internal/logging"
	"github.com/lazypower/neurodose/internal/metrics"
	"github.com/lazypower/neurodose/internal/schedule"
	"github.com/lazypower/neurodose/internal/server"
	"github.com/lazypower/neurodose/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server and threshold monitor",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Mode)
	if err != nil {
		return err
	}
	defer logger.Sync()

	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	eng := engine.New(cat)
	history, err := db.LoadLedger()
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	if err := eng.CheckLedger(history); err != nil {
		return fmt.Errorf("dose history does not match the catalog: %w", err)
	}
	doses := ledger.NewStore(history)

	sleep, err := cfg.SleepSchedule()
	if err != nil {
		return err
	}
	collector := metrics.NewCollector("neurodose")
	notifier := alerts.New(eng, doses, store.Settings{DB: db, DefaultSleep: sleep},
		alerts.WithFeedSize(cfg.Monitor.FeedSize),
		alerts.WithMetrics(collector),
		alerts.WithLogger(logger.Named("monitor")),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Monitor.Enabled {
		runner := schedule.NewRunner(notifier.Task(cfg.Monitor.Interval))
		runner.Start(ctx)
		defer runner.Stop()
	}

	srv := server.New(db, eng, doses, VersionString(),
		server.WithNotifier(notifier),
		server.WithLogger(logger.Named("http")),
		server.WithMetrics(collector),
		server.WithCORS(cfg.Server.CORSOrigins),
		server.WithDefaultSleep(sleep),
	)
	addr := cfg.ListenAddr()

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("neurodose serving",
			zap.String("addr", addr),
			zap.String("db", db.Path),
			zap.Ints("migrated", db.Migrated),
			zap.Int("compounds", cat.Len()),
			zap.Int("doses", history.Len()),
			zap.Bool("monitor", cfg.Monitor.Enabled),
			zap.Duration("interval", cfg.Monitor.Interval),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
