// Package sr translates segmentation structure labels to the coded attributes
// used by DICOM Structured Reporting, and back.
package sr

import (
	"regexp"
	"strings"
)

// CodedAttribute is a DICOM code triplet.
type CodedAttribute struct {
	CodeValue              string
	CodingSchemeDesignator string
	CodeMeaning            string
}

// String returns the triplet in registry form: (CodeValue;Designator;Meaning).
func (c CodedAttribute) String() string {
	return "(" + c.CodeValue + ";" + c.CodingSchemeDesignator + ";" + c.CodeMeaning + ")"
}

// tripletPattern matches one parenthesized group with three sub-fields that
// contain neither semicolons nor parentheses.
var tripletPattern = regexp.MustCompile(`\(([^;()]*);([^;()]*);([^;()]*)\)`)

// ParseCodedAttributes extracts every (CodeValue;Designator;Meaning) group of
// text, in order. Sub-fields are trimmed. Malformed groups are ignored.
func ParseCodedAttributes(text string) []CodedAttribute {
	matches := tripletPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	attrs := make([]CodedAttribute, 0, len(matches))
	for _, m := range matches {
		attr := CodedAttribute{
			CodeValue:              strings.TrimSpace(m[1]),
			CodingSchemeDesignator: strings.TrimSpace(m[2]),
			CodeMeaning:            strings.TrimSpace(m[3]),
		}
		if attr.CodeValue == "" || attr.CodingSchemeDesignator == "" || attr.CodeMeaning == "" {
			continue
		}
		attrs = append(attrs, attr)
	}
	return attrs
}

// FormatCodedAttributes concatenates attrs in registry form with no separator.
func FormatCodedAttributes(attrs []CodedAttribute) string {
	var sb strings.Builder
	for _, a := range attrs {
		sb.WriteString(a.String())
	}
	return sb.String()
}

// CheckAndFormatEntry validates a coded field and normalizes it in place.
//
// An empty (or blank) field is valid and becomes "". Otherwise the field must
// be one or more well-formed triplets separated by nothing but whitespace,
// each sub-field non-empty. When allowMultiple is false exactly one triplet
// is accepted. On failure entry is left untouched.
func CheckAndFormatEntry(entry *string, allowMultiple bool) bool {
	text := strings.TrimSpace(*entry)
	if text == "" {
		*entry = ""
		return true
	}

	locs := tripletPattern.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return false
	}
	if !allowMultiple && len(locs) > 1 {
		return false
	}

	attrs := make([]CodedAttribute, 0, len(locs))
	prev := 0
	for _, loc := range locs {
		if strings.TrimSpace(text[prev:loc[0]]) != "" {
			return false
		}
		prev = loc[1]

		attr := CodedAttribute{
			CodeValue:              strings.TrimSpace(text[loc[2]:loc[3]]),
			CodingSchemeDesignator: strings.TrimSpace(text[loc[4]:loc[5]]),
			CodeMeaning:            strings.TrimSpace(text[loc[6]:loc[7]]),
		}
		if attr.CodeValue == "" || attr.CodingSchemeDesignator == "" || attr.CodeMeaning == "" {
			return false
		}
		attrs = append(attrs, attr)
	}
	if strings.TrimSpace(text[prev:]) != "" {
		return false
	}

	*entry = FormatCodedAttributes(attrs)
	return true
}
