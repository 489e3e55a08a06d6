package fairsim

import (
	"log/slog"

	"github.com/viant/afs"
	"github.com/viant/fairsim/model/process"
	"github.com/viant/fairsim/progress"
	"github.com/viant/fairsim/service/dao"
	"github.com/viant/fairsim/service/engine"
	"github.com/viant/fairsim/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customises the simulator.
type Option func(s *Service)

// WithRandom sets the random source, overriding Config.Seed.
func WithRandom(random engine.Random) Option {
	return func(s *Service) {
		s.random = random
	}
}

// WithLogger sets the logger shared by every component, overriding Config.LogLevel.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithFs sets the file system programs are read from.
func WithFs(fs afs.Service) Option {
	return func(s *Service) {
		s.fs = fs
	}
}

// WithRecordDAO sets the store receiving accounting records of terminated processes.
func WithRecordDAO(records dao.Service[int, process.Record]) Option {
	return func(s *Service) {
		s.records = records
	}
}

// WithProgressListener registers a callback invoked on every statistics change.
func WithProgressListener(listener func(progress.Progress)) Option {
	return func(s *Service) {
		s.listener = listener
	}
}

// WithTracingExporter exports spans to a custom exporter instead of the one
// configured by Config.Tracing. The first successful initialisation wins.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		s.tracingErr = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
