// fairsim runs programs on a simulated CPU under a fair-share scheduler.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/fairsim"
	"github.com/viant/fairsim/internal/logger"
	"github.com/viant/fairsim/tracing"
)

// fileList collects repeated -f flags.
type fileList []string

func (f *fileList) String() string { return strings.Join(*f, ",") }

func (f *fileList) Set(value string) error {
	*f = append(*f, value)
	return nil
}

type options struct {
	configURL string
	report    string
	verbose   bool
}

func main() {
	cfg, opts, err := parseArgs(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, cfg, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *fairsim.Config, opts *options) (err error) {
	srv, err := fairsim.New(cfg, fairsim.WithLogger(logger.Build(cfg.LogLevel)))
	if err != nil {
		return err
	}
	defer func() {
		if shutdownErr := tracing.Shutdown(context.WithoutCancel(ctx)); err == nil {
			err = shutdownErr
		}
	}()
	report, runErr := srv.Run(ctx)
	if report == nil {
		return runErr
	}
	renderSummary(os.Stdout, report)
	if opts.report != "" {
		if err := report.Save(ctx, afs.New(), opts.report); err != nil {
			return err
		}
	}
	return runErr
}

// parseArgs builds the run config from a config file, flags and positional
// file:group tokens. Flags override values read from the config file.
func parseArgs(args []string) (*fairsim.Config, *options, error) {
	flags := flag.NewFlagSet("fairsim", flag.ContinueOnError)
	weight := flags.Float64("w", 0, "Weight of every process (required without -c)")
	priority := flags.Int("p", 0, "Base priority of every process (required without -c)")
	var files fileList
	flags.Var(&files, "f", "Program file as path:group (repeatable)")
	opts := &options{}
	flags.StringVar(&opts.configURL, "c", "", "YAML or TOML config file")
	seed := flags.Int64("seed", 0, "Random seed (0 seeds from the clock)")
	timer := flags.Int("timer", 0, "Cycles between timer interrupts")
	traceFile := flags.String("trace", "", "Write spans to file ('-' for stdout)")
	flags.StringVar(&opts.report, "o", "", "Write the JSON run report to this URL")
	records := flags.String("records", "", "Keep process accounting records under this location")
	flags.BoolVar(&opts.verbose, "v", false, "Verbose (debug) logging")
	flags.Usage = func() {
		out := flags.Output()
		fmt.Fprintf(out, "Usage: fairsim -w weight -p priority [options] file:group...\n\n")
		fmt.Fprintf(out, "Options:\n")
		flags.PrintDefaults()
		fmt.Fprintf(out, "\nExamples:\n")
		fmt.Fprintf(out, "  fairsim -w 0 -p 0 a.txt:1 b.txt:2\n")
		fmt.Fprintf(out, "  fairsim -c run.yaml -seed 7 -o report.json\n")
	}
	if err := flags.Parse(args); err != nil {
		return nil, nil, err
	}

	set := map[string]bool{}
	flags.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg := fairsim.DefaultConfig()
	if opts.configURL != "" {
		var err error
		if cfg, err = fairsim.LoadConfig(context.Background(), afs.New(), opts.configURL); err != nil {
			return nil, nil, err
		}
	} else {
		var missing []string
		for _, name := range []string{"w", "p"} {
			if !set[name] {
				missing = append(missing, "-"+name)
			}
		}
		if len(missing) > 0 {
			return nil, nil, fmt.Errorf("%w: missing %s", fairsim.ErrInvalidConfig, strings.Join(missing, ", "))
		}
	}
	if set["w"] {
		cfg.DefaultWeight = *weight
	}
	if set["p"] {
		cfg.DefaultPriority = *priority
	}
	if set["seed"] {
		cfg.Seed = *seed
	}
	if set["timer"] {
		cfg.Engine.TimerInterval = *timer
	}
	if *records != "" {
		cfg.RecordsURL = *records
	}
	if opts.verbose {
		cfg.LogLevel = "debug"
	}
	if *traceFile != "" {
		cfg.Tracing.ServiceName = "fairsim"
		if *traceFile != "-" {
			cfg.Tracing.OutputFile = *traceFile
		}
	}
	for _, token := range append([]string(files), flags.Args()...) {
		f, err := fairsim.ParseFileToken(token)
		if err != nil {
			return nil, nil, err
		}
		cfg.Files = append(cfg.Files, f)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, opts, nil
}
