package wizard

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/mrsinham/dicomseries/cmd/dicomseries/wizard/help"
	"github.com/mrsinham/dicomseries/internal/sr"
)

// NewReverseForm returns a form editing the five coded fields of entry in
// place. Each field is checked with the registry grammar.
func NewReverseForm(entry *sr.Entry) *huh.Form {
	fields := make([]huh.Field, 0, len(help.Fields))
	for pos, name := range help.Fields {
		placeholder := "(CodeValue;Scheme;Meaning)"
		if sr.AllowsMultiple(pos) {
			placeholder += "..."
		}
		fields = append(fields, huh.NewInput().
			Key(name).
			Title(help.Texts[name].Title).
			Description(help.Texts[name].Description).
			Placeholder(placeholder).
			Value(&entry[pos]).
			Validate(validateCodedField(sr.AllowsMultiple(pos))))
	}

	return huh.NewForm(huh.NewGroup(fields...)).WithShowHelp(true).WithShowErrors(true)
}

func validateCodedField(allowMultiple bool) func(string) error {
	return func(s string) error {
		if sr.CheckAndFormatEntry(&s, allowMultiple) {
			return nil
		}
		if allowMultiple {
			return fmt.Errorf("expected groups like (T-62000;SRT;Liver)")
		}
		return fmt.Errorf("expected a single group like (T-62000;SRT;Liver)")
	}
}

// RunReverse asks for the coded fields of a reverse lookup, starting from
// initial.
func RunReverse(initial sr.Entry) (sr.Entry, error) {
	entry := initial
	if err := NewReverseForm(&entry).Run(); err != nil {
		return sr.Entry{}, fmt.Errorf("reverse lookup form: %w", err)
	}
	return entry, nil
}
