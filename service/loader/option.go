package loader

import (
	"log/slog"

	"github.com/viant/afs"
)

// Option customises the loader.
type Option func(*Service)

// WithFs sets the file system used to read programs.
func WithFs(fs afs.Service) Option {
	return func(s *Service) {
		s.fs = fs
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithConcurrency sets how many programs are read and decoded in parallel.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		s.concurrency = n
	}
}
