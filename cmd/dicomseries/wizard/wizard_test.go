package wizard

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mrsinham/dicomseries/cmd/dicomseries/wizard/components"
	"github.com/mrsinham/dicomseries/internal/sr"
)

const testRegistry = `StructureType|PropertyType|PropertyCategory|PropertyTypeModifiers|AnatomicRegion|AnatomicRegionModifiers
Liver|(T-62000;SRT;Liver)|(M-01000;SRT;Morphologically Altered Structure)||(T-62000;SRT;Liver)|
Left_Kidney|(T-71000;SRT;Kidney)|(T-D000A;SRT;Anatomical Structure)|(G-A101;SRT;Left)|(T-71000;SRT;Kidney)|(G-A101;SRT;Left)
Right_Kidney|(T-71000;SRT;Kidney)|(T-D000A;SRT;Anatomical Structure)|(G-A100;SRT;Right)|(T-71000;SRT;Kidney)|(G-A100;SRT;Right)
Skin|(T-01000;SRT;Skin)|(T-D000A;SRT;Anatomical Structure)|||
`

func newTestBrowser(t *testing.T) *Browser {
	t.Helper()
	reg := sr.NewRegistry()
	if err := reg.Read(strings.NewReader(testRegistry), true, nil); err != nil {
		t.Fatalf("Read registry: %v", err)
	}
	return NewBrowser(reg)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(b *Browser, msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = b.Update(msg)
	}
	return cmd
}

func TestBrowser_Navigation(t *testing.T) {
	b := newTestBrowser(t)

	// Structure types are sorted: Left_Kidney, Liver, Right_Kidney, Skin.
	if got := b.visible[b.cursor]; got != "Left_Kidney" {
		t.Fatalf("initial cursor on %q, want Left_Kidney", got)
	}

	send(b, runes("j"), tea.KeyMsg{Type: tea.KeyDown})
	if got := b.visible[b.cursor]; got != "Right_Kidney" {
		t.Errorf("cursor on %q after two downs, want Right_Kidney", got)
	}

	send(b, runes("j"), runes("j"), runes("j"))
	if got := b.visible[b.cursor]; got != "Skin" {
		t.Errorf("cursor should stop on the last row, got %q", got)
	}

	send(b, tea.KeyMsg{Type: tea.KeyUp})
	if got := b.visible[b.cursor]; got != "Right_Kidney" {
		t.Errorf("cursor on %q after up, want Right_Kidney", got)
	}
}

func TestBrowser_Select(t *testing.T) {
	b := newTestBrowser(t)

	cmd := send(b, runes("j"), tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should quit the program")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("enter should return tea.Quit")
	}
	if got := b.Selected(); got != "Liver" {
		t.Errorf("Selected() = %q, want Liver", got)
	}
}

func TestBrowser_Quit(t *testing.T) {
	b := newTestBrowser(t)

	cmd := send(b, runes("q"))
	if cmd == nil {
		t.Fatal("q should quit the program")
	}
	if b.Selected() != "" {
		t.Errorf("Selected() = %q after quit, want empty", b.Selected())
	}
}

func TestBrowser_Filter(t *testing.T) {
	b := newTestBrowser(t)

	send(b, runes("/"))
	if !b.filtering {
		t.Fatal("/ should start filtering")
	}
	send(b, runes("k"), runes("I"), runes("d"))
	if len(b.visible) != 2 {
		t.Fatalf("visible = %v, want both kidneys", b.visible)
	}

	// Keys go to the filter while it is focused.
	send(b, runes("q"))
	if len(b.visible) != 0 {
		t.Errorf("visible = %v, want no match for \"kIdq\"", b.visible)
	}
	if !strings.Contains(b.View(), "No match") {
		t.Error("view should report an empty list")
	}

	send(b, tea.KeyMsg{Type: tea.KeyBackspace}, tea.KeyMsg{Type: tea.KeyEnter})
	if b.filtering {
		t.Error("enter should leave the filter")
	}
	send(b, runes("j"), tea.KeyMsg{Type: tea.KeyEnter})
	if got := b.Selected(); got != "Right_Kidney" {
		t.Errorf("Selected() = %q, want Right_Kidney", got)
	}
}

func TestBrowser_View(t *testing.T) {
	b := newTestBrowser(t)
	send(b, tea.WindowSizeMsg{Width: 120, Height: 40})

	view := b.View()
	for _, want := range []string{"4 of 4 structure types", "Left_Kidney", "Skin", "Kidney", "Left", "/ filter"} {
		if !strings.Contains(view, want) {
			t.Errorf("view does not contain %q:\n%s", want, view)
		}
	}
}

func TestEntryPanel_View(t *testing.T) {
	panel := components.NewEntryPanel()
	if !strings.Contains(panel.View(), "No structure type selected") {
		t.Error("an empty panel should say so")
	}

	panel.SetEntry("Liver", sr.Entry{"(T-62000;SRT;Liver)", "(M-01000;SRT;Morphologically Altered Structure)", "", "(T-62000;SRT;Liver)", ""})
	view := panel.View()
	for _, want := range []string{"Liver", "T-62000", "PROPERTY CATEGORY", "(none)"} {
		if !strings.Contains(view, want) {
			t.Errorf("panel does not contain %q:\n%s", want, view)
		}
	}
}

func TestValidateCodedField(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		multiple bool
		wantErr  bool
	}{
		{"empty", "", false, false},
		{"blank", "   ", false, false},
		{"single", "(T-62000;SRT;Liver)", false, false},
		{"padded", "  ( T-62000 ; SRT ; Liver )  ", false, false},
		{"two in single field", "(G-A101;SRT;Left)(G-A105;SRT;Anterior)", false, true},
		{"two in multiple field", "(G-A101;SRT;Left) (G-A105;SRT;Anterior)", true, false},
		{"missing meaning", "(T-62000;SRT;)", false, true},
		{"garbage around", "x(T-62000;SRT;Liver)", true, true},
		{"no parentheses", "T-62000;SRT;Liver", false, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validateCodedField(tc.multiple)(tc.input)
			if (err != nil) != tc.wantErr {
				t.Errorf("validateCodedField(%v)(%q) error = %v, wantErr %v", tc.multiple, tc.input, err, tc.wantErr)
			}
		})
	}
}

func TestNewReverseForm(t *testing.T) {
	entry := sr.Entry{"(T-62000;SRT;Liver)"}
	form := NewReverseForm(&entry)
	if form == nil {
		t.Fatal("NewReverseForm returned nil")
	}
	if entry[sr.PropertyType] != "(T-62000;SRT;Liver)" {
		t.Errorf("building the form changed the entry: %v", entry)
	}
}
