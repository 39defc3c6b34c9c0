package dicom

import (
	"fmt"
	"log/slog"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/mrsinham/dicomseries/internal/sr"
)

// Segment identification attributes.
var (
	tagSegmentSequence                           = tag.Tag{Group: 0x0062, Element: 0x0002}
	tagSegmentLabel                              = tag.Tag{Group: 0x0062, Element: 0x0005}
	tagSegmentedPropertyCategoryCodeSequence     = tag.Tag{Group: 0x0062, Element: 0x0003}
	tagSegmentedPropertyTypeCodeSequence         = tag.Tag{Group: 0x0062, Element: 0x000F}
	tagSegmentedPropertyTypeModifierCodeSequence = tag.Tag{Group: 0x0062, Element: 0x0011}
	tagAnatomicRegionSequence                    = tag.Tag{Group: 0x0008, Element: 0x2218}
	tagAnatomicRegionModifierSequence            = tag.Tag{Group: 0x0008, Element: 0x2220}

	tagCodeValue              = tag.Tag{Group: 0x0008, Element: 0x0100}
	tagCodingSchemeDesignator = tag.Tag{Group: 0x0008, Element: 0x0102}
	tagCodeMeaning            = tag.Tag{Group: 0x0008, Element: 0x0104}
)

// SegmentIdentification returns the coded elements of a segment item for
// structureType: its label, the property category and type (type modifiers
// nested in the type item) and the anatomic region (region modifiers nested
// in the region item). Empty registry fields produce no element.
//
// When the registry has no entry for structureType a warning is logged and
// only the label is returned.
func SegmentIdentification(registry *sr.Registry, structureType string, logger *slog.Logger) ([]*dicom.Element, error) {
	if logger == nil {
		logger = slog.Default()
	}

	label, err := dicom.NewElement(tagSegmentLabel, []string{structureType})
	if err != nil {
		return nil, fmt.Errorf("segment label: %w", err)
	}
	elements := []*dicom.Element{label}

	if !registry.HasEntry(structureType) {
		logger.Warn("No segmented property registry entry for structure type", "structure_type", structureType)
		return elements, nil
	}
	entry := registry.Entry(structureType)

	category, err := codeSequence(tagSegmentedPropertyCategoryCodeSequence, entry.CodedAttributes(sr.PropertyCategory), nil)
	if err != nil {
		return nil, err
	}
	typeModifiers, err := codeSequence(tagSegmentedPropertyTypeModifierCodeSequence, entry.CodedAttributes(sr.PropertyTypeModifiers), nil)
	if err != nil {
		return nil, err
	}
	propertyType, err := codeSequence(tagSegmentedPropertyTypeCodeSequence, entry.CodedAttributes(sr.PropertyType), typeModifiers)
	if err != nil {
		return nil, err
	}
	regionModifiers, err := codeSequence(tagAnatomicRegionModifierSequence, entry.CodedAttributes(sr.AnatomicRegionModifiers), nil)
	if err != nil {
		return nil, err
	}
	region, err := codeSequence(tagAnatomicRegionSequence, entry.CodedAttributes(sr.AnatomicRegion), regionModifiers)
	if err != nil {
		return nil, err
	}

	for _, elem := range []*dicom.Element{region, category, propertyType} {
		if elem != nil {
			elements = append(elements, elem)
		}
	}
	sortElements(elements)
	return elements, nil
}

// codeSequence builds sequence t with one item per attribute. nested, when
// not nil, is added to the first item. No attribute yields a nil element.
func codeSequence(t tag.Tag, attrs []sr.CodedAttribute, nested *dicom.Element) (*dicom.Element, error) {
	if len(attrs) == 0 {
		return nil, nil
	}

	items := make([][]*dicom.Element, 0, len(attrs))
	for i, attr := range attrs {
		item, err := codeItem(attr)
		if err != nil {
			return nil, err
		}
		if i == 0 && nested != nil {
			item = append(item, nested)
		}
		items = append(items, item)
	}

	seq, err := dicom.NewElement(t, items)
	if err != nil {
		return nil, fmt.Errorf("sequence %v: %w", t, err)
	}
	return seq, nil
}

func codeItem(attr sr.CodedAttribute) ([]*dicom.Element, error) {
	values := []struct {
		t     tag.Tag
		value string
	}{
		{tagCodeValue, attr.CodeValue},
		{tagCodingSchemeDesignator, attr.CodingSchemeDesignator},
		{tagCodeMeaning, attr.CodeMeaning},
	}

	item := make([]*dicom.Element, 0, len(values))
	for _, v := range values {
		elem, err := dicom.NewElement(v.t, []string{v.value})
		if err != nil {
			return nil, fmt.Errorf("code item %s: %w", attr, err)
		}
		item = append(item, elem)
	}
	return item, nil
}

// DecodeSegmentIdentification reads the coded sequences of a segment item
// back into registry form.
func DecodeSegmentIdentification(elements []*dicom.Element) sr.Entry {
	var entry sr.Entry

	typeItems := sequenceItems(elements, tagSegmentedPropertyTypeCodeSequence)
	entry[sr.PropertyType] = decodeCodes(typeItems)
	entry[sr.PropertyCategory] = decodeCodes(sequenceItems(elements, tagSegmentedPropertyCategoryCodeSequence))
	entry[sr.PropertyTypeModifiers] = decodeNested(typeItems, tagSegmentedPropertyTypeModifierCodeSequence)

	regionItems := sequenceItems(elements, tagAnatomicRegionSequence)
	entry[sr.AnatomicRegion] = decodeCodes(regionItems)
	entry[sr.AnatomicRegionModifiers] = decodeNested(regionItems, tagAnatomicRegionModifierSequence)

	return entry
}

// StructureTypeFromSegment returns the structure type whose registry entry
// matches the coded sequences of a segment item, or "" if none does.
func StructureTypeFromSegment(registry *sr.Registry, elements []*dicom.Element) string {
	entry := DecodeSegmentIdentification(elements)
	return registry.StructureType(
		entry[sr.PropertyType],
		entry[sr.PropertyCategory],
		entry[sr.PropertyTypeModifiers],
		entry[sr.AnatomicRegion],
		entry[sr.AnatomicRegionModifiers],
	)
}

// SegmentLabel returns the Segment Label of a segment item.
func SegmentLabel(elements []*dicom.Element) string {
	return stringValue(elements, tagSegmentLabel)
}

// SegmentItems returns the items of the Segment Sequence of elements.
func SegmentItems(elements []*dicom.Element) [][]*dicom.Element {
	return sequenceItems(elements, tagSegmentSequence)
}

// NewSegmentSequence wraps segment items into a Segment Sequence element.
func NewSegmentSequence(items [][]*dicom.Element) (*dicom.Element, error) {
	seq, err := dicom.NewElement(tagSegmentSequence, items)
	if err != nil {
		return nil, fmt.Errorf("segment sequence: %w", err)
	}
	return seq, nil
}

func decodeCodes(items [][]*dicom.Element) string {
	attrs := make([]sr.CodedAttribute, 0, len(items))
	for _, item := range items {
		attrs = append(attrs, sr.CodedAttribute{
			CodeValue:              stringValue(item, tagCodeValue),
			CodingSchemeDesignator: stringValue(item, tagCodingSchemeDesignator),
			CodeMeaning:            stringValue(item, tagCodeMeaning),
		})
	}
	return sr.FormatCodedAttributes(attrs)
}

func decodeNested(items [][]*dicom.Element, t tag.Tag) string {
	var nested [][]*dicom.Element
	for _, item := range items {
		nested = append(nested, sequenceItems(item, t)...)
	}
	return decodeCodes(nested)
}
