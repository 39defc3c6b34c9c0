package dicom

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/mrsinham/dicomseries/internal/util"
)

// DirectoryIndexName is the file name of the index written by
// WriteDirectoryIndex.
const DirectoryIndexName = "DICOMDIR"

// WriteDirectoryIndex writes a DICOMDIR under dir listing files with one
// PATIENT, STUDY and SERIES record per distinct value, in order of first
// appearance. Record offsets are left at zero.
func WriteDirectoryIndex(dir string, files []GeneratedFile) error {
	if len(files) == 0 {
		return fmt.Errorf("no files to index")
	}

	var records [][]*dicom.Element
	seen := make(map[string]bool)
	for _, f := range files {
		if !seen["patient/"+f.PatientID] {
			seen["patient/"+f.PatientID] = true
			records = append(records, directoryRecord("PATIENT",
				mustNewElement(tag.PatientID, []string{f.PatientID}),
				mustNewElement(tag.PatientName, []string{f.PatientName}),
			))
		}
		if !seen["study/"+f.StudyUID] {
			seen["study/"+f.StudyUID] = true
			records = append(records, directoryRecord("STUDY",
				mustNewElement(tag.StudyInstanceUID, []string{f.StudyUID}),
			))
		}
		if !seen["series/"+f.SeriesUID] {
			seen["series/"+f.SeriesUID] = true
			records = append(records, directoryRecord("SERIES",
				mustNewElement(tag.Modality, []string{f.Modality}),
				mustNewElement(tag.SeriesInstanceUID, []string{f.SeriesUID}),
				mustNewElement(tag.SeriesNumber, []string{strconv.Itoa(f.SeriesNumber)}),
			))
		}

		recordType := "IMAGE"
		if f.SOPClassUID == SegmentationStorage {
			recordType = "SEGMENTATION"
		}
		records = append(records, directoryRecord(recordType,
			mustNewElement(tag.ReferencedFileID, strings.Split(filepath.ToSlash(f.Path), "/")),
			mustNewElement(tag.ReferencedSOPClassUIDInFile, []string{f.SOPClassUID}),
			mustNewElement(tag.ReferencedSOPInstanceUIDInFile, []string{f.SOPInstanceUID}),
			mustNewElement(tag.ReferencedTransferSyntaxUIDInFile, []string{ExplicitVRLittleEndian}),
			mustNewElement(tag.InstanceNumber, []string{strconv.Itoa(f.InstanceNumber)}),
		))
	}

	sequence, err := dicom.NewElement(tag.DirectoryRecordSequence, records)
	if err != nil {
		return fmt.Errorf("create directory record sequence: %w", err)
	}

	filesetID := strings.ToUpper(filepath.Base(dir))
	if len(filesetID) > 16 {
		filesetID = filesetID[:16]
	}
	elements := []*dicom.Element{
		mustNewElement(tag.FileMetaInformationVersion, []byte{0x00, 0x01}),
		mustNewElement(tag.MediaStorageSOPClassUID, []string{MediaStorageDirectoryStorage}),
		mustNewElement(tag.MediaStorageSOPInstanceUID, []string{util.DeterministicUID("dicomdir/" + files[0].StudyUID)}),
		mustNewElement(tag.TransferSyntaxUID, []string{ExplicitVRLittleEndian}),
		mustNewElement(tag.ImplementationClassUID, []string{ImplementationClassUID}),
		mustNewElement(tag.FileSetID, []string{filesetID}),
		mustNewElement(tag.OffsetOfTheFirstDirectoryRecordOfTheRootDirectoryEntity, []int{0}),
		mustNewElement(tag.OffsetOfTheLastDirectoryRecordOfTheRootDirectoryEntity, []int{0}),
		mustNewElement(tag.FileSetConsistencyFlag, []int{0}),
		sequence,
	}

	if err := writeDatasetToFile(filepath.Join(dir, DirectoryIndexName), dicom.Dataset{Elements: elements}); err != nil {
		return fmt.Errorf("write DICOMDIR: %w", err)
	}
	return nil
}

func directoryRecord(recordType string, elements ...*dicom.Element) []*dicom.Element {
	record := []*dicom.Element{
		mustNewElement(tag.OffsetOfTheNextDirectoryRecord, []int{0}),
		mustNewElement(tag.RecordInUseFlag, []int{0xFFFF}),
		mustNewElement(tag.OffsetOfReferencedLowerLevelDirectoryEntity, []int{0}),
		mustNewElement(tag.DirectoryRecordType, []string{recordType}),
	}
	record = append(record, elements...)
	sortElements(record)
	return record
}
