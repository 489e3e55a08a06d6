package fairsim

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/viant/afs"
	"github.com/viant/fairsim/service/engine"
	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidConfig is returned when the configuration cannot start a run.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrInvalidFileToken is returned for a program argument not in path:group form.
	ErrInvalidFileToken = errors.New("invalid file token")
)

// Config is a serialisable representation of a simulation run. It can be
// populated from JSON, YAML or TOML.
type Config struct {
	// DefaultWeight is the weight given to every loaded process.
	DefaultWeight float64 `json:"defaultWeight" yaml:"defaultWeight" toml:"defaultWeight"`
	// DefaultPriority is the base priority given to every loaded process.
	DefaultPriority int `json:"defaultPriority" yaml:"defaultPriority" toml:"defaultPriority"`
	// Files lists the program images in load order.
	Files  []*File        `json:"files" yaml:"files" toml:"files"`
	Engine engine.Config `json:"engine" yaml:"engine" toml:"engine"`
	// Seed seeds the random source; 0 seeds from the clock.
	Seed            int64   `json:"seed,omitempty" yaml:"seed,omitempty" toml:"seed,omitempty"`
	LoadConcurrency int     `json:"loadConcurrency,omitempty" yaml:"loadConcurrency,omitempty" toml:"loadConcurrency,omitempty"`
	LogLevel        string  `json:"logLevel,omitempty" yaml:"logLevel,omitempty" toml:"logLevel,omitempty"`
	// RecordsURL keeps accounting records as JSON documents under this
	// location instead of in memory.
	RecordsURL string  `json:"recordsURL,omitempty" yaml:"recordsURL,omitempty" toml:"recordsURL,omitempty"`
	Tracing    Tracing `json:"tracing" yaml:"tracing" toml:"tracing"`
}

// File is a program image with the group its process is scheduled in.
type File struct {
	Path  string `json:"path" yaml:"path" toml:"path"`
	Group int    `json:"group" yaml:"group" toml:"group"`
}

// Tracing enables the stdout span exporter when ServiceName is set.
type Tracing struct {
	ServiceName string `json:"serviceName,omitempty" yaml:"serviceName,omitempty" toml:"serviceName,omitempty"`
	// OutputFile receives spans; empty means stdout.
	OutputFile string `json:"outputFile,omitempty" yaml:"outputFile,omitempty" toml:"outputFile,omitempty"`
}

// DefaultConfig returns a Config with the default engine timing. Files,
// weight and priority are left for the caller.
func DefaultConfig() *Config {
	return &Config{
		Engine:          engine.DefaultConfig(),
		LoadConcurrency: 4,
		LogLevel:        "info",
	}
}

// Validate returns an error describing the first invalid setting or nil.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config was nil", ErrInvalidConfig)
	}
	if len(c.Files) == 0 {
		return fmt.Errorf("%w: at least one program file is required", ErrInvalidConfig)
	}
	for i, f := range c.Files {
		if f == nil || f.Path == "" {
			return fmt.Errorf("%w: files[%d].path was empty", ErrInvalidConfig, i)
		}
	}
	if c.LoadConcurrency < 0 {
		return fmt.Errorf("%w: loadConcurrency must be >= 0", ErrInvalidConfig)
	}
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ParseFileToken parses a "path:group" program argument. The last colon
// separates the group so paths may contain colons.
func ParseFileToken(token string) (*File, error) {
	idx := strings.LastIndex(token, ":")
	if idx <= 0 || idx == len(token)-1 {
		return nil, fmt.Errorf("%w %q: expected path:group", ErrInvalidFileToken, token)
	}
	group, err := strconv.Atoi(token[idx+1:])
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidFileToken, token, err)
	}
	return &File{Path: token[:idx], Group: group}, nil
}

// LoadConfig reads a YAML (.yaml, .yml) or TOML (.toml) config from URL on
// top of DefaultConfig. The result is not validated.
func LoadConfig(ctx context.Context, fs afs.Service, URL string) (*Config, error) {
	if fs == nil {
		fs = afs.New()
	}
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", URL, err)
	}
	cfg := DefaultConfig()
	switch strings.ToLower(path.Ext(URL)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported config format %s", ErrInvalidConfig, URL)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", URL, err)
	}
	return cfg, nil
}
