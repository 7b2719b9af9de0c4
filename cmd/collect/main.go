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

// 一个仅执行一次采集任务的命令行入口：适合手动触发采集
func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogJSON)

	store, err := storage.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init store failed")
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 与 cmd/fetcher 保持一致
	sources, err := config.LoadSources(cfg.SourcesFile)
	if err != nil {
		log.Fatal().Err(err).Msg("load sources failed")
	}
	if _, err := store.EnsureSources(ctx, sources); err != nil {
		log.Fatal().Err(err).Msg("ensure sources failed")
	}

	s := scheduler.New(
		store,
		collector.NewRegistry(collector.OptionsFromConfig(cfg)),
		processor.NewGateway(store),
		scheduler.Options{
			MaxPerSource:  cfg.MaxArticlesPerSource,
			CourtesyDelay: cfg.CourtesyDelay,
			Concurrency:   cfg.FetchConcurrency,
		},
	)

	// 只执行一轮采集任务后退出
	report := s.RunOnce(ctx)
	if err := report.WriteTable(os.Stdout); err != nil {
		log.Warn().Err(err).Msg("print report failed")
	}
	failed := 0
	for _, r := range report.Sources {
		if r.Err != nil {
			failed++
		}
	}
	log.Info().
		Int("sources", len(report.Sources)).
		Int("failed", failed).
		Int("saved", report.Saved()).
		Msg("collect finished")
}
