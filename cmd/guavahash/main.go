package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/igorcoding/guavahash"
	"github.com/igorcoding/guavahash/internal/config"
	"github.com/igorcoding/guavahash/internal/fixture"
	"github.com/igorcoding/guavahash/internal/remap"
)

const usage = `Usage: guavahash [-config file] [-log-level level] <command> [flags]

Commands:
  assign -state N -buckets N    Print the bucket for a state
  verify [fixture files...]     Check fixture tables against Guava
  remap [-keys N] [-from N] [-to N] [-seed N]
                                Measure keys moved per added bucket
`

var (
	errFailed = errors.New("check failed")
	errUsage  = errors.New("usage")
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("guavahash", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() { fmt.Fprint(stderr, usage) }

	configPath := flags.String("config", "", "YAML config file")
	logLevel := flags.String("log-level", "", "Log level: debug, info, warn, error")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
			return 1
		}
		cfg = loaded
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	level, err := cfg.Level()
	if err != nil {
		fmt.Fprintf(stderr, "Invalid log level: %v\n", err)
		return 2
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if flags.NArg() == 0 {
		flags.Usage()
		return 2
	}

	command, rest := flags.Arg(0), flags.Args()[1:]
	switch command {
	case "assign":
		err = runAssign(rest, stdout, stderr)
	case "verify":
		err = runVerify(ctx, cfg, rest, logger)
	case "remap":
		err = runRemap(ctx, cfg, rest, stdout, stderr, logger)
	case "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		flags.Usage()
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errUsage):
		return 2
	default:
		if !errors.Is(err, errFailed) {
			logger.Error("Command failed", "command", command, "err", err)
		}
		return 1
	}
}

func runAssign(args []string, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("assign", flag.ContinueOnError)
	flags.SetOutput(stderr)
	state := flags.Int64("state", 0, "64-bit state (key)")
	buckets := flags.Int("buckets", 0, "Number of buckets (int32)")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}
	if *buckets < math.MinInt32 || *buckets > math.MaxInt32 {
		fmt.Fprintf(stderr, "buckets %d does not fit in int32\n", *buckets)
		return errUsage
	}

	fmt.Fprintln(stdout, guavahash.Guava(*state, int32(*buckets)))
	return nil
}

func runVerify(ctx context.Context, cfg *config.Config, args []string, logger *slog.Logger) error {
	paths := args
	if len(paths) == 0 {
		paths = cfg.Fixtures
	}
	if len(paths) == 0 {
		logger.Error("No fixture files to verify")
		return errUsage
	}

	var total, failed int
	for _, path := range paths {
		cases, err := fixture.Load(path)
		if err != nil {
			return err
		}

		mismatches, err := fixture.Verify(ctx, cases, guavahash.Guava, cfg.Workers)
		if err != nil {
			return fmt.Errorf("verify %s: %w", path, err)
		}
		for _, m := range mismatches {
			logger.Error("Mismatch",
				"file", path,
				"row", m.Index,
				"state", m.State,
				"buckets", m.Buckets,
				"expected", m.Expected,
				"got", m.Got,
			)
		}

		logger.Info("Verified fixture file", "file", path, "cases", len(cases), "mismatches", len(mismatches))
		total += len(cases)
		failed += len(mismatches)
	}

	if failed > 0 {
		logger.Error("Verification failed", "cases", total, "mismatches", failed)
		return errFailed
	}
	logger.Info("Verification passed", "files", len(paths), "cases", total)
	return nil
}

func runRemap(ctx context.Context, cfg *config.Config, args []string, stdout, stderr io.Writer, logger *slog.Logger) error {
	flags := flag.NewFlagSet("remap", flag.ContinueOnError)
	flags.SetOutput(stderr)
	keys := flags.Int("keys", cfg.Remap.Keys, "Number of sample keys")
	seed := flags.Uint64("seed", cfg.Remap.Seed, "Sample key seed")
	from := flags.Int("from", int(cfg.Remap.From), "First bucket count")
	to := flags.Int("to", int(cfg.Remap.To), "Last bucket count")
	tolerance := flags.Float64("tolerance", cfg.Remap.Tolerance, "Allowed deviation from the ideal fraction")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}

	if *from < 1 || *from > math.MaxInt32 || *to < 1 || *to > math.MaxInt32 {
		fmt.Fprintln(stderr, "bucket counts must be in [1, 2147483647]")
		return errUsage
	}
	study := *cfg
	study.Remap = config.Remap{Keys: *keys, Seed: *seed, From: int32(*from), To: int32(*to), Tolerance: *tolerance}
	if err := study.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return errUsage
	}

	logger.Debug("Running remap study", "keys", *keys, "seed", *seed, "from", *from, "to", *to)

	steps, err := remap.Run(ctx, remap.Keys(*keys, *seed), study.Remap.From, study.Remap.To, guavahash.Guava, cfg.Workers)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "from\tto\tmoved\tfraction\tideal\tstray\t")
	var outliers int
	for _, s := range steps {
		fmt.Fprintf(w, "%d\t%d\t%d\t%.5f\t%.5f\t%d\t\n", s.From, s.To, s.Moved, s.Fraction(), s.Ideal(), s.Stray)
		if s.Stray > 0 || s.Deviation() > *tolerance {
			outliers++
			logger.Warn("Remap step outside tolerance", "step", s.String(), "stray", s.Stray)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if outliers > 0 {
		return errFailed
	}
	return nil
}
