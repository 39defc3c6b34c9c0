package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mrsinham/dicomseries/cmd/dicomseries/wizard"
	"github.com/mrsinham/dicomseries/internal/sr"
)

var fieldLabels = [5]string{
	sr.PropertyType:            "Property type",
	sr.PropertyCategory:        "Property category",
	sr.PropertyTypeModifiers:   "Type modifiers",
	sr.AnatomicRegion:          "Anatomic region",
	sr.AnatomicRegionModifiers: "Region modifiers",
}

func runLookup(args []string, stdout, stderr io.Writer) error {
	fs, common := newFlagSet("lookup", "-registry <FILE> <STRUCTURE>", stderr)
	cfg, err := parseFlags(fs, common, args)
	if err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "Error: lookup needs exactly one structure type")
		fs.Usage()
		return errUsage
	}

	logger, err := newLogger(cfg, stderr)
	if err != nil {
		return err
	}
	registry, err := loadRegistry(cfg, logger)
	if err != nil {
		return err
	}

	structureType := fs.Arg(0)
	if !registry.HasEntry(structureType) {
		return fmt.Errorf("structure type %q not found in %s", structureType, cfg.Registry.Path)
	}
	printEntry(stdout, structureType, registry.Entry(structureType))
	return nil
}

func printEntry(w io.Writer, structureType string, entry sr.Entry) {
	fmt.Fprintf(w, "%s\n", structureType)
	for pos, label := range fieldLabels {
		fmt.Fprintf(w, "  %-18s %s\n", label+":", entry[pos])
		for _, attr := range entry.CodedAttributes(pos) {
			fmt.Fprintf(w, "    %-10s %-6s %s\n", attr.CodeValue, attr.CodingSchemeDesignator, attr.CodeMeaning)
		}
	}
}

func runReverse(args []string, stdout, stderr io.Writer) error {
	fs, common := newFlagSet("reverse", "-registry <FILE> [-type ..] [-category ..] [-type-modifiers ..] [-region ..] [-region-modifiers ..] [-i]", stderr)
	var entry sr.Entry
	fs.StringVar(&entry[sr.PropertyType], "type", "", "Segmented property type, e.g. '(T-62000;SRT;Liver)'")
	fs.StringVar(&entry[sr.PropertyCategory], "category", "", "Segmented property category")
	fs.StringVar(&entry[sr.PropertyTypeModifiers], "type-modifiers", "", "Segmented property type modifiers")
	fs.StringVar(&entry[sr.AnatomicRegion], "region", "", "Anatomic region")
	fs.StringVar(&entry[sr.AnatomicRegionModifiers], "region-modifiers", "", "Anatomic region modifiers")
	interactive := fs.Bool("i", false, "Fill the coded attributes in an interactive form")

	cfg, err := parseFlags(fs, common, args)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, stderr)
	if err != nil {
		return err
	}
	registry, err := loadRegistry(cfg, logger)
	if err != nil {
		return err
	}

	if *interactive {
		if entry, err = wizard.RunReverse(entry); err != nil {
			return err
		}
	}
	if pos := entry.Validate(); pos >= 0 {
		return fmt.Errorf("invalid %s %q", strings.ToLower(fieldLabels[pos]), entry[pos])
	}

	structureType := registry.StructureType(
		entry[sr.PropertyType],
		entry[sr.PropertyCategory],
		entry[sr.PropertyTypeModifiers],
		entry[sr.AnatomicRegion],
		entry[sr.AnatomicRegionModifiers],
	)
	if structureType == "" {
		return fmt.Errorf("no structure type matches these coded attributes")
	}
	fmt.Fprintln(stdout, structureType)
	return nil
}

func runValidate(args []string, stdout, stderr io.Writer) error {
	fs, common := newFlagSet("validate", "-registry <FILE> [-strict] [-o <FILE>]", stderr)
	strict := fs.Bool("strict", false, "Fail when a row is rejected")
	output := fs.String("o", "", "Write the normalized registry to this file")

	cfg, err := parseFlags(fs, common, args)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, stderr)
	if err != nil {
		return err
	}
	counter := newWarningCounter(logger.Handler())
	registry, err := loadRegistry(cfg, slog.New(counter))
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%s: %d structure types, %d warnings\n",
		cfg.Registry.Path, registry.Count(), counter.Warnings())

	if *output != "" {
		if err := writeRegistry(registry, *output); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Normalized registry written to %s\n", *output)
	}

	if *strict && counter.Warnings() > 0 {
		return fmt.Errorf("registry %s has %d warnings", cfg.Registry.Path, counter.Warnings())
	}
	return nil
}

func writeRegistry(registry *sr.Registry, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create registry file: %w", err)
	}
	if _, err := registry.WriteTo(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write registry file: %w", err)
	}
	return f.Close()
}

func runBrowse(args []string, stdout, stderr io.Writer) error {
	fs, common := newFlagSet("browse", "-registry <FILE>", stderr)
	cfg, err := parseFlags(fs, common, args)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, stderr)
	if err != nil {
		return err
	}
	registry, err := loadRegistry(cfg, logger)
	if err != nil {
		return err
	}
	if registry.Empty() {
		return fmt.Errorf("registry %s has no entry", cfg.Registry.Path)
	}

	selected, err := wizard.RunBrowser(registry)
	if err != nil {
		return err
	}
	if selected != "" {
		printEntry(stdout, selected, registry.Entry(selected))
	}
	return nil
}
