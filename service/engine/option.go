package engine

import (
	"log/slog"

	"github.com/viant/fairsim/model/process"
	"github.com/viant/fairsim/progress"
	"github.com/viant/fairsim/service/dao"
)

// Option customises the engine.
type Option func(*Service)

// WithConfig sets the timing configuration.
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithRandom sets the random source.
func WithRandom(random Random) Option {
	return func(s *Service) {
		s.random = random
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithRecordDAO sets the store receiving accounting records of terminated processes.
func WithRecordDAO(records dao.Service[int, process.Record]) Option {
	return func(s *Service) {
		s.records = records
	}
}

// WithProgress sets the statistics tracker.
func WithProgress(tracker *progress.Progress) Option {
	return func(s *Service) {
		s.tracker = tracker
	}
}
