package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/mrsinham/dicomseries/internal/dicom"
	"github.com/mrsinham/dicomseries/internal/sr"
)

func runGenerate(args []string, stdout, stderr io.Writer) error {
	fs, common := newFlagSet("generate", "-output <DIR> [options]", stderr)
	outputDir := fs.String("output", "dicom_series", "Output directory")
	numSeries := fs.Int("series", 1, "Number of series")
	instances := fs.Int("instances", 10, "Number of instances per series")
	totalSize := fs.String("size", "", "Total size of the image instances (e.g. '5MB'); smallest frames if empty")
	seed := fs.Uint64("seed", 0, "Seed for reproducible UIDs and names (auto-generated if not specified)")
	modality := fs.String("modality", "CT", "Imaging modality: CT or MR")
	workers := fs.Int("workers", 0, fmt.Sprintf("Number of parallel workers (default: %d = CPU cores)", runtime.NumCPU()))
	segments := fs.String("segments", "", "Comma-separated structure types written in one SEG instance per series")
	noIndex := fs.Bool("no-dicomdir", false, "Do not write a DICOMDIR index")

	cfg, err := parseFlags(fs, common, args)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, stderr)
	if err != nil {
		return err
	}

	opts := dicom.GeneratorOptions{
		OutputDir: *outputDir,
		NumSeries: *numSeries,
		Instances: *instances,
		TotalSize: *totalSize,
		Seed:      *seed,
		Modality:  strings.ToUpper(*modality),
		Workers:   *workers,
		Logger:    logger,
	}
	if !isSet(fs, "seed") {
		opts.Seed = uint64(time.Now().UnixNano())
	}

	if *segments != "" {
		var registry *sr.Registry
		if registry, err = loadRegistry(cfg, logger); err != nil {
			return err
		}
		for _, s := range strings.Split(*segments, ",") {
			if s = strings.TrimSpace(s); s != "" {
				opts.Segments = append(opts.Segments, s)
			}
		}
		opts.Registry = registry
	}

	total := opts.NumSeries * opts.Instances
	opts.Progress = func(done, all int) {
		if done%10 == 0 || done == all {
			fmt.Fprintf(stdout, "  Progress: %d/%d (%.0f%%)\n", done, all, float64(done)/float64(all)*100)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Fprintln(stdout, "dicomseries")
	fmt.Fprintln(stdout, "===========")
	fmt.Fprintf(stdout, "Generating %d series of %d %s instances (seed %d)\n", opts.NumSeries, opts.Instances, opts.Modality, opts.Seed)

	files, err := dicom.GenerateSeries(ctx, opts)
	if err != nil {
		return fmt.Errorf("generate series: %w", err)
	}
	if !*noIndex {
		if err := dicom.WriteDirectoryIndex(opts.OutputDir, files); err != nil {
			return err
		}
	}

	var size uint64
	for _, f := range files {
		if info, err := os.Stat(filepath.Join(opts.OutputDir, f.Path)); err == nil {
			size += uint64(info.Size())
		}
	}
	fmt.Fprintf(stdout, "\n✓ %d DICOM files (%d images) written to %s/ (%s)\n",
		len(files), total, opts.OutputDir, humanize.Bytes(size))
	return nil
}
