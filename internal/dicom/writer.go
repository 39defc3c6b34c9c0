package dicom

import (
	"fmt"
	"strconv"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/frame"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// InstanceInfo describes a minimal DICOM instance.
type InstanceInfo struct {
	SOPClassUID    string
	SOPInstanceUID string
	InstanceNumber int

	PatientID        string
	PatientName      string
	PatientBirthDate string
	PatientSex       string

	StudyInstanceUID       string
	StudyDate              string
	StudyTime              string
	StudyDescription       string
	ReferringPhysicianName string
	PatientAge             string

	SeriesInstanceUID    string
	SeriesNumber         int
	Modality             string
	SeriesDate           string
	SeriesTime           string
	SeriesDescription    string
	PerformingPhysicians []string

	InstitutionName string

	// Rows and Columns, when both positive, add an 8-bit MONOCHROME2 frame
	// showing Label.
	Rows    int
	Columns int
	Label   string

	// Extra elements are written as is.
	Extra []*dicom.Element
}

// NewInstanceDataset builds the dataset of info, file meta elements included.
// Empty optional attributes are omitted.
func NewInstanceDataset(info InstanceInfo) dicom.Dataset {
	elements := []*dicom.Element{
		mustNewElement(tag.FileMetaInformationVersion, []byte{0x00, 0x01}),
		mustNewElement(tag.MediaStorageSOPClassUID, []string{info.SOPClassUID}),
		mustNewElement(tag.MediaStorageSOPInstanceUID, []string{info.SOPInstanceUID}),
		mustNewElement(tag.TransferSyntaxUID, []string{ExplicitVRLittleEndian}),
		mustNewElement(tag.ImplementationClassUID, []string{ImplementationClassUID}),
		mustNewElement(tag.SOPClassUID, []string{info.SOPClassUID}),
		mustNewElement(tag.SOPInstanceUID, []string{info.SOPInstanceUID}),
	}

	optional := []struct {
		t     tag.Tag
		value string
	}{
		{tag.PatientID, info.PatientID},
		{tag.PatientName, info.PatientName},
		{tag.PatientBirthDate, info.PatientBirthDate},
		{tag.PatientSex, info.PatientSex},
		{tag.StudyInstanceUID, info.StudyInstanceUID},
		{tag.StudyDate, info.StudyDate},
		{tag.StudyTime, info.StudyTime},
		{tag.StudyDescription, info.StudyDescription},
		{tag.ReferringPhysicianName, info.ReferringPhysicianName},
		{tag.PatientAge, info.PatientAge},
		{tag.SeriesInstanceUID, info.SeriesInstanceUID},
		{tag.Modality, info.Modality},
		{tag.SeriesDate, info.SeriesDate},
		{tag.SeriesTime, info.SeriesTime},
		{tag.SeriesDescription, info.SeriesDescription},
		{tag.InstitutionName, info.InstitutionName},
	}
	for _, o := range optional {
		if o.value != "" {
			elements = append(elements, mustNewElement(o.t, []string{o.value}))
		}
	}

	if info.SeriesNumber != 0 {
		elements = append(elements, mustNewElement(tag.SeriesNumber, []string{strconv.Itoa(info.SeriesNumber)}))
	}
	if info.InstanceNumber != 0 {
		elements = append(elements, mustNewElement(tag.InstanceNumber, []string{strconv.Itoa(info.InstanceNumber)}))
	}
	if len(info.PerformingPhysicians) > 0 {
		elements = append(elements, mustNewElement(tag.PerformingPhysicianName, info.PerformingPhysicians))
	}

	if info.Rows > 0 && info.Columns > 0 {
		elements = append(elements, pixelElements(info.Rows, info.Columns, info.Label)...)
	}

	elements = append(elements, info.Extra...)
	sortElements(elements)

	return dicom.Dataset{Elements: elements}
}

// WriteInstance writes info as a Part 10 file at path.
func WriteInstance(path string, info InstanceInfo) error {
	if info.SOPClassUID == "" || info.SOPInstanceUID == "" {
		return fmt.Errorf("write instance %s: SOP class and instance UIDs are required", path)
	}
	if err := writeDatasetToFile(path, NewInstanceDataset(info)); err != nil {
		return fmt.Errorf("write instance %s: %w", path, err)
	}
	return nil
}

// pixelElements returns the image pixel module of a rows x columns 8-bit
// frame showing label.
func pixelElements(rows, columns int, label string) []*dicom.Element {
	nativeFrame := frame.NewNativeFrame[uint8](8, rows, columns, rows*columns, 1)
	drawLabel(nativeFrame, columns, rows, label)

	pixelData := dicom.PixelDataInfo{
		Frames: []*frame.Frame{
			{
				Encapsulated: false,
				NativeData:   nativeFrame,
			},
		},
	}

	return []*dicom.Element{
		mustNewElement(tag.SamplesPerPixel, []int{1}),
		mustNewElement(tag.PhotometricInterpretation, []string{"MONOCHROME2"}),
		mustNewElement(tag.Rows, []int{rows}),
		mustNewElement(tag.Columns, []int{columns}),
		mustNewElement(tag.BitsAllocated, []int{8}),
		mustNewElement(tag.BitsStored, []int{8}),
		mustNewElement(tag.HighBit, []int{7}),
		mustNewElement(tag.PixelRepresentation, []int{0}),
		mustNewElement(tag.PixelData, pixelData),
	}
}
