// Package dicom reads DICOM files into series and encodes segment
// identification sequences. It is built on github.com/suyashkumar/dicom.
package dicom

import (
	"cmp"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/mrsinham/dicomseries/internal/buffer"
)

// Well-known UIDs.
const (
	// ExplicitVRLittleEndian is the transfer syntax of every written instance.
	ExplicitVRLittleEndian = "1.2.840.10008.1.2.1"
	// MediaStorageDirectoryStorage is the SOP class of DICOMDIR files.
	MediaStorageDirectoryStorage = "1.2.840.10008.1.3.10"
	// ImplementationClassUID identifies this implementation in written files.
	ImplementationClassUID = "1.2.826.0.1.3680043.8.498"
)

// mustNewElement creates a DICOM element and panics on error.
// Only used with values whose type is known to match the tag.
func mustNewElement(t tag.Tag, value any) *dicom.Element {
	elem, err := dicom.NewElement(t, value)
	if err != nil {
		panic(fmt.Sprintf("failed to create element %v: %v", t, err))
	}
	return elem
}

// writeDatasetToFile writes a DICOM dataset to a file
func writeDatasetToFile(filename string, ds dicom.Dataset, opts ...dicom.WriteOption) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	return dicom.Write(f, ds, opts...)
}

// ParseInstance parses the content of buf, skipping pixel data. File buffers
// are streamed from disk without being loaded into buf.
func ParseInstance(buf *buffer.Buffer) (dicom.Dataset, error) {
	rc, err := buf.Open()
	if err != nil {
		return dicom.Dataset{}, err
	}
	defer func() { _ = rc.Close() }()

	ds, err := dicom.Parse(rc, buf.Size(), nil, dicom.SkipPixelData())
	if err != nil {
		return dicom.Dataset{}, fmt.Errorf("parse instance: %w", err)
	}
	return ds, nil
}

// stringValues returns the values of element t, trimmed of DICOM padding.
// Non-string values are rendered with their default formatting.
func stringValues(elements []*dicom.Element, t tag.Tag) []string {
	elem := findElement(elements, t)
	if elem == nil || elem.Value == nil {
		return nil
	}

	raw, ok := elem.Value.GetValue().([]string)
	if !ok {
		raw = []string{strings.Trim(elem.Value.String(), " []")}
	}

	values := make([]string, len(raw))
	for i, v := range raw {
		values[i] = strings.TrimRight(v, " \x00")
	}
	return values
}

// stringValue returns the first value of element t, or "".
func stringValue(elements []*dicom.Element, t tag.Tag) string {
	values := stringValues(elements, t)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// findElement returns the first element with tag t, or nil.
func findElement(elements []*dicom.Element, t tag.Tag) *dicom.Element {
	for _, elem := range elements {
		if elem.Tag == t {
			return elem
		}
	}
	return nil
}

// sequenceItems returns the items of sequence element t.
func sequenceItems(elements []*dicom.Element, t tag.Tag) [][]*dicom.Element {
	elem := findElement(elements, t)
	if elem == nil || elem.Value == nil {
		return nil
	}
	seq, ok := elem.Value.GetValue().([]*dicom.SequenceItemValue)
	if !ok {
		return nil
	}

	items := make([][]*dicom.Element, 0, len(seq))
	for _, item := range seq {
		if children, ok := item.GetValue().([]*dicom.Element); ok {
			items = append(items, children)
		}
	}
	return items
}

// sortElements orders elements by tag, as a dataset is encoded.
func sortElements(elements []*dicom.Element) {
	slices.SortStableFunc(elements, func(a, b *dicom.Element) int {
		return cmp.Or(cmp.Compare(a.Tag.Group, b.Tag.Group), cmp.Compare(a.Tag.Element, b.Tag.Element))
	})
}
