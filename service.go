package fairsim

import (
	"context"
	"errors"
	"log/slog"

	"github.com/viant/afs"
	"github.com/viant/fairsim/internal/clock"
	"github.com/viant/fairsim/internal/idgen"
	"github.com/viant/fairsim/internal/logger"
	"github.com/viant/fairsim/model/memory"
	"github.com/viant/fairsim/model/process"
	"github.com/viant/fairsim/progress"
	"github.com/viant/fairsim/service/dao"
	"github.com/viant/fairsim/service/dao/record"
	"github.com/viant/fairsim/service/engine"
	"github.com/viant/fairsim/service/loader"
	"github.com/viant/fairsim/service/scheduler"
	"github.com/viant/fairsim/tracing"
)

// Version is reported to the tracing backend.
const Version = "0.1.0"

// Service runs simulations described by a Config.
type Service struct {
	config   *Config
	fs       afs.Service
	logger   *slog.Logger
	random   engine.Random
	records  dao.Service[int, process.Record]
	listener func(progress.Progress)
	// tracingErr is the outcome of WithTracingExporter.
	tracingErr error
}

// New validates cfg and creates a simulator.
func New(cfg *Config, options ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Service{config: cfg}
	for _, option := range options {
		option(s)
	}
	s.ensureBaseSetup()
	return s, nil
}

func (s *Service) ensureBaseSetup() {
	if s.fs == nil {
		s.fs = afs.New()
	}
	if s.logger == nil {
		s.logger = logger.Build(s.config.LogLevel)
	}
	if s.random == nil && s.config.Seed != 0 {
		s.random = engine.NewRandom(s.config.Seed)
	}
	if s.tracingErr != nil {
		s.logger.Warn("failed to initialise tracing exporter", logger.ErrAttr(s.tracingErr))
	}
	if name := s.config.Tracing.ServiceName; name != "" {
		if err := tracing.Init(name, Version, s.config.Tracing.OutputFile); err != nil {
			s.logger.Warn("failed to initialise tracing", logger.ErrAttr(err))
		}
	}
}

// Run loads every configured program and simulates until all processes have
// terminated or ctx is done. The report is returned in both cases; the error
// is the context error of an interrupted run.
func (s *Service) Run(ctx context.Context) (report *Report, err error) {
	runID := idgen.New()
	tracker := progress.New(runID, s.listener)
	ctx = progress.WithTracker(ctx, tracker)
	ctx, span := tracing.StartSpan(ctx, "fairsim.run")
	span.WithAttributes(map[string]string{"run.id": runID})
	defer func() { tracing.EndSpan(span, err) }()

	records := s.records
	if records == nil {
		if records, err = s.newRecordDAO(ctx); err != nil {
			return nil, err
		}
	}
	mem := memory.New()
	sched := scheduler.New()
	log := s.logger.With(slog.String("run", runID))

	ld := loader.New(mem, sched,
		loader.WithFs(s.fs),
		loader.WithLogger(log),
		loader.WithConcurrency(s.config.LoadConcurrency))
	sources := make([]*loader.Source, 0, len(s.config.Files))
	for _, f := range s.config.Files {
		sources = append(sources, &loader.Source{URL: f.Path, GroupID: f.Group})
	}
	report = &Report{RunID: runID, StartedAt: tracker.StartedAt}
	_, loadErrors := ld.LoadAll(ctx, sources, loader.Defaults{
		Weight:   s.config.DefaultWeight,
		Priority: s.config.DefaultPriority,
	})
	for _, loadErr := range loadErrors {
		report.LoadErrors = append(report.LoadErrors, loadErr.Error())
	}

	engineOptions := []engine.Option{
		engine.WithConfig(s.config.Engine),
		engine.WithLogger(log),
		engine.WithRecordDAO(records),
		engine.WithProgress(tracker),
	}
	if s.random != nil {
		engineOptions = append(engineOptions, engine.WithRandom(s.random))
	}
	eng, err := engine.New(sched, mem, engineOptions...)
	if err != nil {
		return nil, err
	}
	if err = eng.Run(ctx); err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		report.Interrupted = true
	}

	report.FinishedAt = clock.Now()
	log.Info("run finished",
		slog.Int("ticks", eng.Ticks()),
		slog.Duration("elapsed", clock.Since(report.StartedAt)),
		slog.Bool("interrupted", report.Interrupted))
	report.Ticks = eng.Ticks()
	report.Stats = newStats(tracker.Snapshot())
	report.Groups = newGroupUsage(sched.Groups())
	// ctx may already be cancelled here.
	if report.Records, err = records.List(context.WithoutCancel(ctx)); err != nil {
		return nil, err
	}
	if report.Interrupted {
		err = ctx.Err()
	}
	return report, err
}

func (s *Service) newRecordDAO(ctx context.Context) (dao.Service[int, process.Record], error) {
	if s.config.RecordsURL == "" {
		return record.New(), nil
	}
	return record.NewFs(ctx, s.fs, s.config.RecordsURL)
}
