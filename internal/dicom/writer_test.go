package dicom

import (
	"path/filepath"
	"slices"
	"testing"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/frame"
	"github.com/suyashkumar/dicom/pkg/tag"
)

func TestWriteInstance_RequiresUIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.dcm")
	if err := WriteInstance(path, InstanceInfo{SOPClassUID: CTImageStorage}); err == nil {
		t.Error("WriteInstance should require a SOP Instance UID")
	}
	if err := WriteInstance(path, InstanceInfo{SOPInstanceUID: "1.2.3"}); err == nil {
		t.Error("WriteInstance should require a SOP Class UID")
	}
}

func TestNewInstanceDataset_OmitsEmptyAttributes(t *testing.T) {
	ds := NewInstanceDataset(InstanceInfo{SOPClassUID: CTImageStorage, SOPInstanceUID: "1.2.3"})

	for _, absent := range []tag.Tag{tag.PatientID, tag.SeriesNumber, tag.InstanceNumber, tag.PixelData} {
		if findElement(ds.Elements, absent) != nil {
			t.Errorf("element %v should be omitted", absent)
		}
	}
	if got := stringValue(ds.Elements, tag.TransferSyntaxUID); got != ExplicitVRLittleEndian {
		t.Errorf("transfer syntax = %q", got)
	}
	if !slices.IsSortedFunc(ds.Elements, func(a, b *dicom.Element) int {
		if a.Tag.Group != b.Tag.Group {
			return int(a.Tag.Group) - int(b.Tag.Group)
		}
		return int(a.Tag.Element) - int(b.Tag.Element)
	}) {
		t.Error("elements should be sorted by tag")
	}
}

func TestWriteInstance_PixelData(t *testing.T) {
	info := baseInstance("1.2.3.1")
	info.InstanceNumber = 7
	info.Rows = 32
	info.Columns = 64
	info.Label = "7"
	path := writeInstance(t, t.TempDir(), "img.dcm", info)

	ds, err := dicom.ParseFile(path, nil)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if got := stringValue(ds.Elements, tag.InstanceNumber); got != "7" {
		t.Errorf("InstanceNumber = %q", got)
	}
	if got := stringValue(ds.Elements, tag.Rows); got != "32" {
		t.Errorf("Rows = %q", got)
	}

	elem := findElement(ds.Elements, tag.PixelData)
	if elem == nil {
		t.Fatal("PixelData missing")
	}
	info2, ok := elem.Value.GetValue().(dicom.PixelDataInfo)
	if !ok || len(info2.Frames) != 1 {
		t.Fatalf("unexpected pixel data value %T", elem.Value.GetValue())
	}
	if info2.Frames[0].Encapsulated {
		t.Error("pixel data should be native")
	}
}

func TestDrawLabel(t *testing.T) {
	const width, height = 40, 20

	blank := frame.NewNativeFrame[uint8](8, height, width, width*height, 1)
	drawLabel(blank, width, height, "")
	if slices.ContainsFunc(blank.RawData, func(v uint8) bool { return v != 0 }) {
		t.Error("an empty label should leave the frame untouched")
	}

	labeled := frame.NewNativeFrame[uint8](8, height, width, width*height, 1)
	drawLabel(labeled, width, height, "12")
	if !slices.ContainsFunc(labeled.RawData, func(v uint8) bool { return v > 128 }) {
		t.Error("the label should be drawn in bright pixels")
	}
	// Corners stay outside the centered label.
	if labeled.RawData[0] != 0 || labeled.RawData[len(labeled.RawData)-1] != 0 {
		t.Error("corners should stay black")
	}
}
