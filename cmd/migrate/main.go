package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/regwatch-hq/regwatch-summarizer/internal/app"
	"github.com/regwatch-hq/regwatch-summarizer/internal/config"
	"github.com/regwatch-hq/regwatch-summarizer/internal/logger"
	"github.com/regwatch-hq/regwatch-summarizer/internal/store"
	"github.com/regwatch-hq/regwatch-summarizer/pkg/sources"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "migrate failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	log.InfoObj("migration starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srcReg := sources.DefaultRegistry()
	if cfg.SourcesFile != "" {
		srcReg, err = sources.LoadRegistry(cfg.SourcesFile)
		if err != nil {
			return fmt.Errorf("load sources registry: %w", err)
		}
	}

	src, err := store.NewStore("csv", store.Options{
		DataDir: cfg.DataDir,
		Sources: srcReg,
		Logger:  log,
	})
	if err != nil {
		return fmt.Errorf("init source store: %w", err)
	}
	defer src.Close()

	dst, err := store.NewStore("bbolt", store.Options{
		Path:        cfg.BBoltPath,
		OptionLimit: cfg.DocOptionLimit,
		Logger:      log,
	})
	if err != nil {
		return fmt.Errorf("init destination store: %w", err)
	}
	defer dst.Close()

	countries := make([]string, 0, len(srcReg.All()))
	for _, s := range srcReg.All() {
		countries = append(countries, s.Country)
	}

	migrator := app.NewMigrator(src, dst, log)
	results, err := migrator.MigrateAll(ctx, countries)
	for _, r := range results {
		fmt.Printf("%s: %d records, %d migrated, %d failed\n", r.Country, r.Total, r.Migrated, r.Failed)
	}
	if err != nil {
		return fmt.Errorf("migration run: %w", err)
	}

	return nil
}
