package dicom

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

const (
	studyUID        = "1.2.826.0.1.3680043.8.498.100"
	seriesUIDCT     = "1.2.826.0.1.3680043.8.498.101"
	seriesUIDMR     = "1.2.826.0.1.3680043.8.498.102"
	testPatientID   = "PID-0001"
	testInstitution = "Hopital Test"
)

// baseInstance returns a CT instance of seriesUIDCT.
func baseInstance(sopInstanceUID string) InstanceInfo {
	return InstanceInfo{
		SOPClassUID:            CTImageStorage,
		SOPInstanceUID:         sopInstanceUID,
		PatientID:              testPatientID,
		PatientName:            "DOE^JANE",
		PatientBirthDate:       "19800101",
		PatientSex:             "F",
		StudyInstanceUID:       studyUID,
		StudyDate:              "20240315",
		StudyTime:              "101500",
		StudyDescription:       "ABDOMEN",
		ReferringPhysicianName: "HOUSE^GREGORY",
		PatientAge:             "044Y",
		SeriesInstanceUID:      seriesUIDCT,
		SeriesNumber:           3,
		Modality:               "CT",
		SeriesDate:             "20240315",
		SeriesTime:             "102000",
		SeriesDescription:      "Portal venous",
		PerformingPhysicians:   []string{"WHO^JOHN", "WATSON^JOHN"},
		InstitutionName:        testInstitution,
	}
}

// writeInstance writes info under dir and returns its path.
func writeInstance(t *testing.T, dir, name string, info InstanceInfo) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := WriteInstance(path, info); err != nil {
		t.Fatalf("WriteInstance(%s) failed: %v", name, err)
	}
	return path
}

// writeFile writes raw content under dir and returns its path.
func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// newTestLogger returns a logger writing text records to buf.
func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
