package loader

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/viant/afs"
	"github.com/viant/fairsim/internal/logger"
	"github.com/viant/fairsim/model/memory"
	"github.com/viant/fairsim/model/process"
	"github.com/viant/fairsim/model/program"
	"github.com/viant/fairsim/progress"
	"github.com/viant/fairsim/service/scheduler"
	"github.com/viant/fairsim/tracing"
	"golang.org/x/sync/errgroup"
)

// Source identifies a program image and the group it is scheduled in.
type Source struct {
	URL     string
	GroupID int
}

// Defaults are the scheduling inputs given to every loaded process.
type Defaults struct {
	Weight   float64
	Priority int
}

// Service loads programs.
type Service struct {
	fs          afs.Service
	memory      *memory.Memory
	scheduler   *scheduler.Service
	logger      *slog.Logger
	concurrency int
	nextID      int
}

// New creates a loader writing into mem and registering with sched.
func New(mem *memory.Memory, sched *scheduler.Service, options ...Option) *Service {
	s := &Service{memory: mem, scheduler: sched, concurrency: 1}
	for _, opt := range options {
		opt(s)
	}
	if s.fs == nil {
		s.fs = afs.New()
	}
	if s.logger == nil {
		s.logger = logger.Discard()
	}
	if s.concurrency <= 0 {
		s.concurrency = 1
	}
	return s
}

// Load reads, places and registers a single program.
func (s *Service) Load(ctx context.Context, source *Source, defaults Defaults) (*process.Descriptor, error) {
	prog, err := s.read(ctx, source)
	if err == nil {
		return s.register(ctx, source, prog, defaults)
	}
	s.reportFailure(ctx, source, err)
	return nil, err
}

// LoadAll reads every source in parallel, then places the decoded programs in
// source order so memory layout and process ids follow load order. Failed
// sources are skipped; their errors are returned alongside the descriptors.
func (s *Service) LoadAll(ctx context.Context, sources []*Source, defaults Defaults) ([]*process.Descriptor, []error) {
	ctx, span := tracing.StartSpan(ctx, "loader.loadAll")
	span.WithInt("program.count", len(sources))

	programs := make([]*program.Program, len(sources))
	readErrors := make([]error, len(sources))
	group := errgroup.Group{}
	group.SetLimit(s.concurrency)
	for i := range sources {
		i := i
		group.Go(func() error {
			programs[i], readErrors[i] = s.read(ctx, sources[i])
			return nil
		})
	}
	_ = group.Wait()

	var descriptors []*process.Descriptor
	var errs []error
	for i, source := range sources {
		if err := readErrors[i]; err != nil {
			s.reportFailure(ctx, source, err)
			errs = append(errs, err)
			continue
		}
		d, err := s.register(ctx, source, programs[i], defaults)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		descriptors = append(descriptors, d)
	}
	span.WithInt("program.loaded", len(descriptors))
	tracing.EndSpan(span, nil)
	return descriptors, errs
}

func (s *Service) read(ctx context.Context, source *Source) (*program.Program, error) {
	data, err := s.fs.DownloadWithURL(ctx, source.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load program %s: %w", source.URL, err)
	}
	prog, err := program.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load program %s: %w", source.URL, err)
	}
	return prog, nil
}

func (s *Service) register(ctx context.Context, source *Source, prog *program.Program, defaults Defaults) (*process.Descriptor, error) {
	_, span := tracing.StartSpan(ctx, "loader.register")
	span.WithAttributes(map[string]string{"program.url": source.URL})
	base, err := s.memory.Allocate(prog.Words)
	if err != nil {
		err = fmt.Errorf("failed to load program %s: %w", source.URL, err)
		tracing.EndSpan(span, err)
		s.reportFailure(ctx, source, err)
		return nil, err
	}
	d := process.New(s.nextID, source.GroupID, base, prog.Len(), defaults.Weight, defaults.Priority)
	s.nextID++
	s.scheduler.AddProcess(d)
	span.WithInt("process.id", d.ID).WithInt("process.base", base)
	tracing.EndSpan(span, nil)

	progress.UpdateCtx(ctx, progress.Delta{Loaded: 1})
	s.logger.Info("program loaded",
		slog.String("url", source.URL),
		slog.Int("process", d.ID),
		slog.Int("group", d.GroupID),
		slog.Int("base", d.BaseAddress),
		slog.Int("size", d.AddressSize),
	)
	return d, nil
}

func (s *Service) reportFailure(ctx context.Context, source *Source, err error) {
	progress.UpdateCtx(ctx, progress.Delta{LoadFailed: 1})
	s.logger.Error("error loading program", slog.String("url", source.URL), logger.ErrAttr(err))
}
