// Package util resolves the DICOM tags a series reader can record as computed
// values.
package util

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom/pkg/tag"
)

// TagScope is the DICOM level at which a tag value is expected to be constant.
type TagScope int

const (
	// ScopePatient tags are shared by every series of a patient.
	ScopePatient TagScope = iota
	// ScopeStudy tags are shared by every series of a study.
	ScopeStudy
	// ScopeSeries tags are constant within a series.
	ScopeSeries
	// ScopeInstance tags may vary from one instance to the next.
	ScopeInstance
)

// String returns the string representation of a TagScope.
func (s TagScope) String() string {
	switch s {
	case ScopePatient:
		return "Patient"
	case ScopeStudy:
		return "Study"
	case ScopeSeries:
		return "Series"
	case ScopeInstance:
		return "Instance"
	default:
		return "Unknown"
	}
}

// TagInfo describes a tag that can be computed for a series.
type TagInfo struct {
	Name  string
	Tag   tag.Tag
	Scope TagScope
}

// Computable reports whether a single value can stand for the whole series.
func (i TagInfo) Computable() bool {
	return i.Scope <= ScopeSeries
}

// tagRegistry maps lowercase tag names to their TagInfo.
var tagRegistry = map[string]TagInfo{
	// Patient
	"patientname":      {Name: "PatientName", Tag: tag.PatientName, Scope: ScopePatient},
	"patientid":        {Name: "PatientID", Tag: tag.PatientID, Scope: ScopePatient},
	"patientbirthdate": {Name: "PatientBirthDate", Tag: tag.PatientBirthDate, Scope: ScopePatient},
	"patientsex":       {Name: "PatientSex", Tag: tag.PatientSex, Scope: ScopePatient},

	// Study
	"studyinstanceuid":       {Name: "StudyInstanceUID", Tag: tag.StudyInstanceUID, Scope: ScopeStudy},
	"studydescription":       {Name: "StudyDescription", Tag: tag.StudyDescription, Scope: ScopeStudy},
	"institutionname":        {Name: "InstitutionName", Tag: tag.InstitutionName, Scope: ScopeStudy},
	"referringphysicianname": {Name: "ReferringPhysicianName", Tag: tag.ReferringPhysicianName, Scope: ScopeStudy},
	"accessionnumber":        {Name: "AccessionNumber", Tag: tag.AccessionNumber, Scope: ScopeStudy},

	// Series
	"seriesinstanceuid":       {Name: "SeriesInstanceUID", Tag: tag.SeriesInstanceUID, Scope: ScopeSeries},
	"seriesdescription":       {Name: "SeriesDescription", Tag: tag.SeriesDescription, Scope: ScopeSeries},
	"modality":                {Name: "Modality", Tag: tag.Modality, Scope: ScopeSeries},
	"protocolname":            {Name: "ProtocolName", Tag: tag.ProtocolName, Scope: ScopeSeries},
	"bodypartexamined":        {Name: "BodyPartExamined", Tag: tag.BodyPartExamined, Scope: ScopeSeries},
	"manufacturer":            {Name: "Manufacturer", Tag: tag.Manufacturer, Scope: ScopeSeries},
	"manufacturermodelname":   {Name: "ManufacturerModelName", Tag: tag.ManufacturerModelName, Scope: ScopeSeries},
	"slicethickness":          {Name: "SliceThickness", Tag: tag.SliceThickness, Scope: ScopeSeries},
	"spacingbetweenslices":    {Name: "SpacingBetweenSlices", Tag: tag.SpacingBetweenSlices, Scope: ScopeSeries},
	"pixelspacing":            {Name: "PixelSpacing", Tag: tag.PixelSpacing, Scope: ScopeSeries},
	"frameofreferenceuid":     {Name: "FrameOfReferenceUID", Tag: tag.FrameOfReferenceUID, Scope: ScopeSeries},
	"imageorientationpatient": {Name: "ImageOrientationPatient", Tag: tag.ImageOrientationPatient, Scope: ScopeSeries},

	// Instance
	"sopinstanceuid":       {Name: "SOPInstanceUID", Tag: tag.SOPInstanceUID, Scope: ScopeInstance},
	"instancenumber":       {Name: "InstanceNumber", Tag: tag.InstanceNumber, Scope: ScopeInstance},
	"imagepositionpatient": {Name: "ImagePositionPatient", Tag: tag.ImagePositionPatient, Scope: ScopeInstance},
	"slicelocation":        {Name: "SliceLocation", Tag: tag.SliceLocation, Scope: ScopeInstance},
	"windowcenter":         {Name: "WindowCenter", Tag: tag.WindowCenter, Scope: ScopeInstance},
	"windowwidth":          {Name: "WindowWidth", Tag: tag.WindowWidth, Scope: ScopeInstance},
}

// GetTagByName returns TagInfo for a tag keyword or an 8-digit hexadecimal
// "GGGGEEEE" code.
//
// Keywords of the table above are matched case-insensitively. Other keywords
// and codes are resolved through the DICOM dictionary and get ScopeInstance.
// Unknown names yield an error that suggests the closest known keyword.
func GetTagByName(name string) (TagInfo, error) {
	trimmed := strings.TrimSpace(name)
	normalizedName := strings.ToLower(trimmed)

	if info, ok := tagRegistry[normalizedName]; ok {
		return info, nil
	}

	if t, ok := parseTagCode(trimmed); ok {
		if dict, err := tag.Find(t); err == nil {
			return TagInfo{Name: dict.Name, Tag: t, Scope: ScopeInstance}, nil
		}
		return TagInfo{Name: t.String(), Tag: t, Scope: ScopeInstance}, nil
	}

	if trimmed != "" {
		if dict, err := tag.FindByName(trimmed); err == nil {
			return TagInfo{Name: dict.Name, Tag: dict.Tag, Scope: ScopeInstance}, nil
		}
	}

	suggestion := findClosestTagName(normalizedName)
	if suggestion != "" {
		return TagInfo{}, fmt.Errorf("unknown tag %q, did you mean %q?", name, suggestion)
	}

	return TagInfo{}, fmt.Errorf("unknown tag %q", name)
}

// ComputableTag is GetTagByName restricted to tags constant within a series.
func ComputableTag(name string) (TagInfo, error) {
	info, err := GetTagByName(name)
	if err != nil {
		return TagInfo{}, err
	}
	if !info.Computable() {
		return TagInfo{}, fmt.Errorf("tag %s has %s scope and varies within a series", info.Name, info.Scope)
	}
	return info, nil
}

// parseTagCode parses "GGGGEEEE" or "(GGGG,EEEE)".
func parseTagCode(s string) (tag.Tag, bool) {
	s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	s = strings.ReplaceAll(s, ",", "")
	if len(s) != 8 {
		return tag.Tag{}, false
	}
	group, err := strconv.ParseUint(s[:4], 16, 16)
	if err != nil {
		return tag.Tag{}, false
	}
	element, err := strconv.ParseUint(s[4:], 16, 16)
	if err != nil {
		return tag.Tag{}, false
	}
	return tag.Tag{Group: uint16(group), Element: uint16(element)}, true
}

// findClosestTagName finds the closest matching tag name using Levenshtein distance.
// Returns empty string if no close match is found (distance > 5).
func findClosestTagName(input string) string {
	const maxDistance = 5
	bestDistance := maxDistance + 1
	var bestMatch string

	for key, info := range tagRegistry {
		distance := levenshteinDistance(input, key)
		if distance < bestDistance || (distance == bestDistance && info.Name < bestMatch) {
			bestDistance = distance
			bestMatch = info.Name
		}
	}

	if bestDistance <= maxDistance {
		return bestMatch
	}
	return ""
}

// levenshteinDistance is the number of single-character edits turning a into b.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
