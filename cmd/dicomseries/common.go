package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/mrsinham/dicomseries/internal/config"
	"github.com/mrsinham/dicomseries/internal/sr"
)

// defaultConfigFile is read when -config is not given. It may be absent.
const defaultConfigFile = "dicomseries.yaml"

// commonFlags are shared by every command.
type commonFlags struct {
	configFile    string
	registry      string
	keepFirstLine bool
	logLevel      string
}

func newFlagSet(name, usage string, stderr io.Writer) (*flag.FlagSet, *commonFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "\nUsage:")
		fmt.Fprintf(stderr, "  dicomseries %s %s\n", name, usage)
		fmt.Fprintln(stderr, "\nOptions:")
		fs.PrintDefaults()
	}

	common := &commonFlags{}
	fs.StringVar(&common.configFile, "config", defaultConfigFile, "Load configuration from YAML file")
	fs.StringVar(&common.registry, "registry", "", "Segmented property registry file")
	fs.BoolVar(&common.keepFirstLine, "keep-first-line", false, "Read the first registry line as a row instead of a header")
	fs.StringVar(&common.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	return fs, common
}

// parseFlags parses args, then loads the configuration and applies the flags
// that were set explicitly over it.
func parseFlags(fs *flag.FlagSet, common *commonFlags, args []string) (*config.Config, error) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, err
		}
		return nil, errUsage
	}

	cfg, err := config.Load(common.configFile)
	if err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "registry":
			cfg.Registry.Path = common.registry
		case "keep-first-line":
			cfg.Registry.OmitFirstLine = !common.keepFirstLine
		case "log-level":
			cfg.LogLevel = common.logLevel
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger returns a text logger on w at the configured level.
func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

// loadRegistry reads the configured registry. It fails when no registry is
// configured.
func loadRegistry(cfg *config.Config, logger *slog.Logger) (*sr.Registry, error) {
	if cfg.Registry.Path == "" {
		return nil, fmt.Errorf("no segmented property registry: use -registry or set registry.path")
	}
	registry := sr.NewRegistry()
	if err := registry.ReadFile(cfg.Registry.Path, cfg.Registry.OmitFirstLine, logger); err != nil {
		return nil, err
	}
	return registry, nil
}

// warningCounter counts the records of level Warn and above passing through
// it, whether or not the wrapped handler prints them.
type warningCounter struct {
	slog.Handler
	count *atomic.Int64
}

func newWarningCounter(h slog.Handler) *warningCounter {
	return &warningCounter{Handler: h, count: new(atomic.Int64)}
}

func (w *warningCounter) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= slog.LevelWarn || w.Handler.Enabled(ctx, level)
}

func (w *warningCounter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelWarn {
		w.count.Add(1)
	}
	if !w.Handler.Enabled(ctx, r.Level) {
		return nil
	}
	return w.Handler.Handle(ctx, r)
}

func (w *warningCounter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &warningCounter{Handler: w.Handler.WithAttrs(attrs), count: w.count}
}

func (w *warningCounter) WithGroup(name string) slog.Handler {
	return &warningCounter{Handler: w.Handler.WithGroup(name), count: w.count}
}

// Warnings returns the number of records counted so far.
func (w *warningCounter) Warnings() int64 {
	return w.count.Load()
}
