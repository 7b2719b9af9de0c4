package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/LJTian/NewsHub/internal/collector"
	"github.com/LJTian/NewsHub/internal/logging"
	"github.com/LJTian/NewsHub/internal/model"
	"github.com/LJTian/NewsHub/internal/processor"
)

// SourceLister 每轮开始时读取启用的来源
type SourceLister interface {
	ListActiveSources(ctx context.Context) ([]model.Source, error)
}

type Options struct {
	Interval      time.Duration
	MaxPerSource  int
	CourtesyDelay time.Duration
	Concurrency   int // <=1 表示逐个来源顺序抓取
}

// SourceReport 单个来源在一轮中的结果
type SourceReport struct {
	SourceID uuid.UUID
	Source   string
	Kind     model.SourceKind
	Fetched  int
	Result   processor.Result
	Err      error
	Skipped  bool // 没有对应的 Fetcher（例如 api）
}

// CycleReport 一轮采集的汇总
type CycleReport struct {
	Started  time.Time
	Finished time.Time
	Sources  []SourceReport
}

// Saved 本轮新增文章总数
func (r CycleReport) Saved() int {
	n := 0
	for _, s := range r.Sources {
		n += s.Result.Saved
	}
	return n
}

type Scheduler struct {
	cron     *cron.Cron
	job      cron.Job
	sources  SourceLister
	registry *collector.Registry
	gateway  *processor.Gateway
	opts     Options
	log      zerolog.Logger

	ctx     context.Context
	startWG sync.WaitGroup
}

func New(sources SourceLister, registry *collector.Registry, gateway *processor.Gateway, opts Options) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = 30 * time.Minute
	}
	l := logging.Component("scheduler")
	cl := cron.PrintfLogger(logging.CronLogger{L: l})

	s := &Scheduler{
		cron:     cron.New(cron.WithLogger(cl)),
		sources:  sources,
		registry: registry,
		gateway:  gateway,
		opts:     opts,
		log:      l,
		ctx:      context.Background(),
	}

	// 上一轮还没结束时跳过本次触发，保证同一时刻只有一轮在跑
	s.job = cron.NewChain(cron.SkipIfStillRunning(cl), cron.Recover(cl)).Then(cron.FuncJob(func() {
		s.RunOnce(s.ctx)
	}))
	s.cron.Schedule(cron.Every(opts.Interval), s.job)
	return s
}

// Start 立即执行首轮采集，之后每隔 Interval 执行一次
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx = ctx
	s.log.Info().Dur("interval", s.opts.Interval).Msg("scheduler started")

	s.startWG.Add(1)
	go func() {
		defer s.startWG.Done()
		s.job.Run()
	}()
	s.cron.Start()
}

// Stop 停止定时触发并等待正在运行的一轮结束
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.startWG.Wait()
	s.log.Info().Msg("scheduler stopped")
}

// RunOnce 同步执行一轮采集；单个来源失败不影响其它来源
func (s *Scheduler) RunOnce(ctx context.Context) CycleReport {
	report := CycleReport{Started: time.Now().UTC()}
	s.log.Info().Msg("start collect cycle")

	sources, err := s.sources.ListActiveSources(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("list active sources failed")
		report.Finished = time.Now().UTC()
		return report
	}

	report.Sources = make([]SourceReport, len(sources))
	if s.opts.Concurrency > 1 {
		var g errgroup.Group
		g.SetLimit(s.opts.Concurrency)
		for i := range sources {
			i := i
			g.Go(func() error {
				report.Sources[i] = s.runSource(ctx, sources[i])
				s.courtesyWait(ctx)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range sources {
			if ctx.Err() != nil {
				break
			}
			if i > 0 {
				s.courtesyWait(ctx)
			}
			report.Sources[i] = s.runSource(ctx, sources[i])
		}
	}

	report.Finished = time.Now().UTC()
	s.log.Info().
		Int("sources", len(sources)).
		Int("saved", report.Saved()).
		Dur("took", report.Finished.Sub(report.Started)).
		Msg("collect cycle done")
	return report
}

func (s *Scheduler) runSource(ctx context.Context, src model.Source) SourceReport {
	rep := SourceReport{SourceID: src.ID, Source: src.Name, Kind: src.Kind}
	if ctx.Err() != nil {
		rep.Err = ctx.Err()
		return rep
	}

	fetcher := s.registry.For(src.Kind)
	if fetcher == nil {
		s.log.Warn().Str("source", src.Name).Str("kind", string(src.Kind)).Msg("no fetcher for source kind, skipped")
		rep.Skipped = true
		return rep
	}

	candidates, err := fetcher.Fetch(ctx, src)
	if err != nil {
		rep.Err = err
		ev := s.log.Warn()
		switch {
		case errors.Is(err, collector.ErrConfig):
			ev = s.log.Error()
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			ev = s.log.Info()
		}
		ev.Err(err).Str("source", src.Name).Str("fetcher", fetcher.Name()).Msg("fetch failed")
		return rep
	}
	rep.Fetched = len(candidates)

	if len(candidates) == 0 {
		s.log.Info().Str("source", src.Name).Msg("fetch got 0 items")
	}
	rep.Result = s.gateway.Ingest(ctx, src, candidates, s.opts.MaxPerSource)
	return rep
}

// courtesyWait 来源之间的礼貌间隔，ctx 取消时立即返回
func (s *Scheduler) courtesyWait(ctx context.Context) {
	if s.opts.CourtesyDelay <= 0 {
		return
	}
	t := time.NewTimer(s.opts.CourtesyDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
