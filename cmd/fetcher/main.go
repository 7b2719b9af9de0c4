package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/LJTian/NewsHub/internal/collector"
	"github.com/LJTian/NewsHub/internal/config"
	"github.com/LJTian/NewsHub/internal/logging"
	"github.com/LJTian/NewsHub/internal/processor"
	"github.com/LJTian/NewsHub/internal/scheduler"
	"github.com/LJTian/NewsHub/internal/storage"
)

// 常驻采集进程：启动后立即采集一轮，之后按 FETCH_INTERVAL_MINUTES 周期采集
func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogJSON)

	store, err := storage.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init store failed")
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sources, err := config.LoadSources(cfg.SourcesFile)
	if err != nil {
		log.Fatal().Err(err).Msg("load sources failed")
	}
	created, err := store.EnsureSources(ctx, sources)
	if err != nil {
		log.Fatal().Err(err).Msg("ensure sources failed")
	}
	log.Info().Int("configured", len(sources)).Int("created", created).Msg("sources ready")

	s := scheduler.New(
		store,
		collector.NewRegistry(collector.OptionsFromConfig(cfg)),
		processor.NewGateway(store),
		scheduler.Options{
			Interval:      cfg.FetchInterval,
			MaxPerSource:  cfg.MaxArticlesPerSource,
			CourtesyDelay: cfg.CourtesyDelay,
			Concurrency:   cfg.FetchConcurrency,
		},
	)
	s.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	cancel()
	s.Stop()
}
