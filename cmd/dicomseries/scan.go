package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/mrsinham/dicomseries/internal/dicom"
	"github.com/mrsinham/dicomseries/internal/series"
	"github.com/mrsinham/dicomseries/internal/sr"
)

func runScan(args []string, stdout, stderr io.Writer) error {
	fs, common := newFlagSet("scan", "[options] <DIR>", stderr)
	var tags []string
	fs.Func("tag", "Record a series level DICOM tag for each series (repeatable)", func(s string) error {
		tags = append(tags, s)
		return nil
	})
	firstInstance := fs.Int("first-instance-number", 0, "Number of the first instance of a series: 0 or 1")

	cfg, err := parseFlags(fs, common, args)
	if err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "Error: scan needs exactly one directory")
		fs.Usage()
		return errUsage
	}
	if isSet(fs, "tag") {
		cfg.Scan.ComputedTags = tags
	}
	if isSet(fs, "first-instance-number") {
		cfg.Scan.FirstInstanceNumber = *firstInstance
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg, stderr)
	if err != nil {
		return err
	}
	computed, err := cfg.ComputedTags()
	if err != nil {
		return err
	}

	var registry *sr.Registry
	if cfg.Registry.Path != "" {
		if registry, err = loadRegistry(cfg, logger); err != nil {
			return err
		}
	}

	reader := dicom.NewReader(logger, computed...)
	reader.SetFirstInstanceNumber(cfg.Scan.FirstInstanceNumber)
	found, err := reader.ReadDirectory(fs.Arg(0))
	if err != nil {
		return err
	}

	if len(found) == 0 {
		fmt.Fprintf(stdout, "No series found in %s\n", fs.Arg(0))
		return nil
	}
	fmt.Fprintf(stdout, "%d series found in %s\n", len(found), fs.Arg(0))
	for i, s := range found {
		fmt.Fprintln(stdout)
		printSeries(stdout, i+1, len(found), s)
		if registry != nil && slices.Contains(s.SOPClassUIDs(), dicom.SegmentationStorage) {
			printSegments(stdout, s, registry, logger)
		}
	}
	return nil
}

func printSeries(w io.Writer, n, total int, s *series.DicomSeries) {
	fmt.Fprintf(w, "Series %d/%d: %s\n", n, total, s.InstanceUID)
	fmt.Fprintf(w, "  Modality:     %s\n", s.Modality)
	fmt.Fprintf(w, "  Number:       %d\n", s.Number)
	if s.Description != "" {
		fmt.Fprintf(w, "  Description:  %s\n", s.Description)
	}
	if s.Patient != nil {
		fmt.Fprintf(w, "  Patient:      %s (%s)\n", s.Patient.Name, s.Patient.ID)
	}
	if s.Study != nil {
		fmt.Fprintf(w, "  Study:        %s\n", s.Study.InstanceUID)
	}

	report := dicom.Summarize(s)
	state := "complete"
	if !s.IsComplete() {
		state = "incomplete"
	}
	fmt.Fprintf(w, "  Instances:    %d/%d (%s)\n", report.Available, report.Expected, state)
	if len(report.Missing) > 0 {
		numbers := make([]string, len(report.Missing))
		for i, index := range report.Missing {
			numbers[i] = fmt.Sprint(index + uint64(s.FirstInstanceNumber()))
		}
		fmt.Fprintf(w, "  Missing:      %s\n", strings.Join(numbers, ", "))
	}
	fmt.Fprintf(w, "  SOP classes:  %s\n", strings.Join(slices.Sorted(slices.Values(s.SOPClassUIDs())), ", "))
	fmt.Fprintf(w, "  Size:         %s (mean %s, stddev %s)\n",
		humanize.Bytes(uint64(report.TotalBytes)),
		humanize.Bytes(uint64(report.MeanSize)),
		humanize.Bytes(uint64(report.StdDevSize)))

	values := s.ComputedTagValues()
	for _, name := range slices.Sorted(maps.Keys(values)) {
		fmt.Fprintf(w, "  %-13s %s\n", name+":", values[name])
	}
}

// printSegments lists the structure types of the segments of every instance
// of s. Instances are parsed from their buffers.
func printSegments(w io.Writer, s *series.DicomSeries, registry *sr.Registry, logger *slog.Logger) {
	records := s.DicomContainer()
	for _, index := range slices.Sorted(maps.Keys(records)) {
		ds, err := dicom.ParseInstance(records[index])
		if err != nil {
			logger.Warn("Unable to parse segmentation instance", "path", records[index].Path(), "error", err)
			continue
		}
		for i, item := range dicom.SegmentItems(ds.Elements) {
			structureType := dicom.StructureTypeFromSegment(registry, item)
			if structureType == "" {
				structureType = fmt.Sprintf("%s (not in registry)", dicom.SegmentLabel(item))
			}
			fmt.Fprintf(w, "  Segment %d:    %s\n", i+1, structureType)
		}
	}
}

func isSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
