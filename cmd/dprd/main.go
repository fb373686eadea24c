// Command dprd runs the local stand-in for the DPR backend.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sitemaster/dpr/internal/db"
	"github.com/sitemaster/dpr/internal/devserver"
	"github.com/sitemaster/dpr/internal/log"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := devserver.LoadConfig()
	log.Init(os.Stderr, cfg.LogLevel)

	database, err := db.OpenDB(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	if cfg.SeedPath != "" {
		seed, err := devserver.LoadSeedFile(cfg.SeedPath)
		if err != nil {
			return err
		}
		n, err := devserver.Seed(context.Background(), db.NewSQLiteUnitOfWork(database), seed)
		if err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
		log.Info().Int("inserted", n).Str("path", cfg.SeedPath).Msg("seed applied")
	}

	srv := devserver.New(cfg, database)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
