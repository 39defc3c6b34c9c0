package sr

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	dserrors "github.com/mrsinham/dicomseries/internal/errors"
)

// Positions of the coded fields inside an Entry.
const (
	PropertyType = iota
	PropertyCategory
	PropertyTypeModifiers
	AnatomicRegion
	AnatomicRegionModifiers
)

// Delimiter separates the fields of a registry row.
const Delimiter = "|"

// Header is the first line written by Registry.WriteTo.
const Header = "StructureType|PropertyType|PropertyCategory|PropertyTypeModifiers|AnatomicRegion|AnatomicRegionModifiers"

// fieldCount is the structure type plus the five entry fields.
const fieldCount = 6

// Entry holds the coded fields of a structure type, indexed by PropertyType,
// PropertyCategory, PropertyTypeModifiers, AnatomicRegion and
// AnatomicRegionModifiers.
type Entry [5]string

// multiValued tells which entry positions accept several triplets.
var multiValued = [5]bool{PropertyTypeModifiers: true, AnatomicRegionModifiers: true}

// fieldNames is used in log messages.
var fieldNames = [5]string{
	"property type",
	"property category",
	"property type modifiers",
	"anatomic region",
	"anatomic region modifiers",
}

// AllowsMultiple reports whether the entry field at pos accepts several
// triplets.
func AllowsMultiple(pos int) bool {
	return multiValued[pos]
}

// FieldName returns the name of the entry field at pos.
func FieldName(pos int) string {
	return fieldNames[pos]
}

// CodedAttributes parses the field at position pos.
func (e Entry) CodedAttributes(pos int) []CodedAttribute {
	return ParseCodedAttributes(e[pos])
}

// Validate normalizes every field in place and returns the position of the
// first invalid one, or -1.
func (e *Entry) Validate() int {
	normalized := *e
	for i := range normalized {
		if !CheckAndFormatEntry(&normalized[i], multiValued[i]) {
			return i
		}
	}
	*e = normalized
	return -1
}

// Registry maps structure type labels to their coded entries.
//
// Registry does no locking.
type Registry struct {
	entries map[string]Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]Entry),
	}
}

// ReadFile loads the registry file at path. See Read.
func (r *Registry) ReadFile(path string, omitFirstLine bool, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := os.Open(path)
	if err != nil {
		logger.Error("Unable to open segmented property registry", "path", path, "error", err)
		return fmt.Errorf("open registry: %w", err)
	}
	defer func() { _ = f.Close() }()

	return r.Read(f, omitFirstLine, logger.With("path", path))
}

// Read loads registry rows from src into r. Rows extend the registry: a
// structure type already present is replaced. Call Clear first to reload from
// scratch.
//
// Each row is StructureType|PropertyType|PropertyCategory|PropertyTypeModifiers|
// AnatomicRegion|AnatomicRegionModifiers. Rows with the wrong number of fields,
// an empty structure type or an invalid coded field are logged and skipped.
// When omitFirstLine is set the first line is discarded. Only a read error of
// src fails the whole load.
func (r *Registry) Read(src io.Reader, omitFirstLine bool, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	if r.entries == nil {
		r.entries = make(map[string]Entry)
	}

	bomless := transform.NewReader(src, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := bufio.NewReader(bomless)

	lineNum := 0
	loaded := 0
	for {
		text, readErr := reader.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			logger.Error("Unable to read segmented property registry", "line", lineNum+1, "error", readErr)
			return fmt.Errorf("read registry: %w", readErr)
		}
		if readErr == io.EOF && text == "" {
			break
		}
		lineNum++
		if lineNum == 1 && omitFirstLine {
			continue
		}

		line := strings.TrimRight(text, "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}

		structureType, entry, err := parseRow(lineNum, line)
		if err != nil {
			logger.Warn("Skipping segmented property registry row", "error", err)
			continue
		}

		if _, exists := r.entries[structureType]; exists {
			logger.Warn("Duplicate structure type in segmented property registry, keeping the last one",
				"line", lineNum,
				"structure_type", structureType)
		}
		r.entries[structureType] = entry
		loaded++
	}

	logger.Debug("Segmented property registry loaded", "rows", loaded, "entries", len(r.entries))
	return nil
}

// parseRow splits and validates one registry line.
func parseRow(lineNum int, line string) (string, Entry, error) {
	fields := strings.Split(line, Delimiter)
	if len(fields) != fieldCount {
		return "", Entry{}, dserrors.NewRowError(lineNum, "expected %d fields, got %d", fieldCount, len(fields))
	}

	structureType := strings.TrimSpace(fields[0])
	if structureType == "" {
		return "", Entry{}, dserrors.NewRowError(lineNum, "empty structure type")
	}

	var entry Entry
	copy(entry[:], fields[1:])
	if pos := entry.Validate(); pos >= 0 {
		return "", Entry{}, dserrors.NewRowError(lineNum, "invalid %s %q for structure %q",
			fieldNames[pos], strings.TrimSpace(entry[pos]), structureType)
	}
	return structureType, entry, nil
}

// Empty reports whether the registry has no entry.
func (r *Registry) Empty() bool {
	return len(r.entries) == 0
}

// Count returns the number of entries.
func (r *Registry) Count() int {
	return len(r.entries)
}

// Clear removes every entry.
func (r *Registry) Clear() {
	clear(r.entries)
}

// HasEntry reports whether structureType has an entry.
func (r *Registry) HasEntry(structureType string) bool {
	_, ok := r.entries[structureType]
	return ok
}

// Entry returns the entry of structureType, or an all-empty Entry.
func (r *Registry) Entry(structureType string) Entry {
	return r.entries[structureType]
}

// Set validates entry and stores it under structureType.
func (r *Registry) Set(structureType string, entry Entry) error {
	if structureType == "" || strings.Contains(structureType, Delimiter) {
		return fmt.Errorf("invalid structure type %q", structureType)
	}
	if pos := entry.Validate(); pos >= 0 {
		return fmt.Errorf("invalid %s %q", fieldNames[pos], entry[pos])
	}
	if r.entries == nil {
		r.entries = make(map[string]Entry)
	}
	r.entries[structureType] = entry
	return nil
}

// PropertyType returns the property type of structureType, "" if unknown.
func (r *Registry) PropertyType(structureType string) string {
	return r.entries[structureType][PropertyType]
}

// PropertyCategory returns the property category of structureType, "" if unknown.
func (r *Registry) PropertyCategory(structureType string) string {
	return r.entries[structureType][PropertyCategory]
}

// PropertyTypeModifiers returns the property type modifiers of structureType,
// "" if unknown.
func (r *Registry) PropertyTypeModifiers(structureType string) string {
	return r.entries[structureType][PropertyTypeModifiers]
}

// AnatomicRegion returns the anatomic region of structureType, "" if unknown.
func (r *Registry) AnatomicRegion(structureType string) string {
	return r.entries[structureType][AnatomicRegion]
}

// AnatomicRegionModifiers returns the anatomic region modifiers of
// structureType, "" if unknown.
func (r *Registry) AnatomicRegionModifiers(structureType string) string {
	return r.entries[structureType][AnatomicRegionModifiers]
}

// StructureType returns the structure type whose entry equals the five given
// fields, or "" if none does. Structure types are scanned in ascending order,
// so the smallest matching label wins when several share an entry.
func (r *Registry) StructureType(propertyType, propertyCategory, propertyTypeModifiers,
	anatomicRegion, anatomicRegionModifiers string) string {
	want := Entry{propertyType, propertyCategory, propertyTypeModifiers, anatomicRegion, anatomicRegionModifiers}
	for _, key := range r.StructureTypes() {
		if r.entries[key] == want {
			return key
		}
	}
	return ""
}

// StructureTypes returns every structure type in ascending order.
func (r *Registry) StructureTypes() []string {
	return slices.Sorted(maps.Keys(r.entries))
}

// WriteTo writes a header line followed by one row per entry, in ascending
// structure type order. The output can be read back with omitFirstLine set.
func (r *Registry) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var written int64

	n, err := fmt.Fprintln(bw, Header)
	written += int64(n)
	if err != nil {
		return written, err
	}

	for _, key := range r.StructureTypes() {
		entry := r.entries[key]
		fields := append([]string{key}, entry[:]...)
		n, err := fmt.Fprintln(bw, strings.Join(fields, Delimiter))
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, bw.Flush()
}
