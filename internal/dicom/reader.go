package dicom

import (
	"cmp"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/mrsinham/dicomseries/internal/series"
	"github.com/mrsinham/dicomseries/internal/util"
)

// Reader groups DICOM files into series.
type Reader struct {
	logger              *slog.Logger
	computedTags        []util.TagInfo
	firstInstanceNumber int
}

// NewReader creates a Reader. Values of computedTags are read from the first
// instance of each series into its computed tag values. A nil logger uses
// slog.Default().
func NewReader(logger *slog.Logger, computedTags ...util.TagInfo) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{
		logger:       logger,
		computedTags: computedTags,
	}
}

// SetFirstInstanceNumber sets the first instance number recorded on every
// series read.
func (r *Reader) SetFirstInstanceNumber(n int) {
	r.firstInstanceNumber = n
}

// ReadDirectory reads every regular file below dir. See ReadFiles.
func (r *Reader) ReadDirectory(dir string) ([]*series.DicomSeries, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	r.logger.Debug("Found files", "dir", dir, "count", len(paths))
	return r.ReadFiles(paths), nil
}

// firstInstance keeps the dataset a series is filled from.
type firstInstance struct {
	series   *series.DicomSeries
	elements []*dicom.Element
}

// ReadFiles parses paths, ordered by file name, and groups them by Series
// Instance UID. Instances are numbered from 0 in that order within each
// series.
//
// Unreadable files, DICOMDIR files, files without a Series Instance UID and
// repeated SOP Instance UIDs are logged and skipped. Series are returned in the
// order their first file was met.
func (r *Reader) ReadFiles(paths []string) []*series.DicomSeries {
	sorted := slices.Clone(paths)
	slices.SortFunc(sorted, func(a, b string) int {
		return cmp.Or(cmp.Compare(filepath.Base(a), filepath.Base(b)), cmp.Compare(a, b))
	})

	seenInstances := make(map[string]string)
	bySeriesUID := make(map[string]*firstInstance)
	var ordered []*firstInstance

	for _, path := range sorted {
		ds, err := dicom.ParseFile(path, nil, dicom.SkipPixelData())
		if err != nil {
			r.logger.Warn("Skipping unreadable file", "path", path, "error", err)
			continue
		}

		if isDICOMDIR(ds.Elements) {
			r.logger.Info("Skipping DICOMDIR file", "path", path)
			continue
		}

		seriesUID := stringValue(ds.Elements, tag.SeriesInstanceUID)
		if seriesUID == "" {
			r.logger.Warn("Skipping file without Series Instance UID", "path", path)
			continue
		}

		sopInstanceUID := stringValue(ds.Elements, tag.SOPInstanceUID)
		if sopInstanceUID != "" {
			if previous, dup := seenInstances[sopInstanceUID]; dup {
				r.logger.Warn("Skipping duplicated SOP instance",
					"path", path,
					"sop_instance_uid", sopInstanceUID,
					"first_path", previous)
				continue
			}
		}

		entry, ok := bySeriesUID[seriesUID]
		if !ok {
			entry = &firstInstance{series: series.New(), elements: ds.Elements}
			bySeriesUID[seriesUID] = entry
			ordered = append(ordered, entry)
		}

		s := entry.series
		if err := s.AddDicomPath(uint64(s.NumAvailableInstances()), path); err != nil {
			r.logger.Warn("Skipping file", "path", path, "error", err)
			continue
		}
		if sopInstanceUID != "" {
			seenInstances[sopInstanceUID] = path
		}
		if sopClassUID := stringValue(ds.Elements, tag.SOPClassUID); sopClassUID != "" {
			s.AddSOPClassUID(sopClassUID)
		}
	}

	f := newFiller(r.logger)
	result := make([]*series.DicomSeries, 0, len(ordered))
	for _, entry := range ordered {
		s := entry.series
		s.SetNumInstances(s.NumAvailableInstances())
		s.SetFirstInstanceNumber(r.firstInstanceNumber)
		f.fill(s, entry.elements)
		r.computeTags(s, entry.elements)
		result = append(result, s)

		r.logger.Debug("Series read",
			"series_instance_uid", s.InstanceUID,
			"instances", s.NumInstances(),
			"sop_classes", len(s.SOPClassUIDs()))
	}
	return result
}

// computeTags records the configured tags found in elements.
func (r *Reader) computeTags(s *series.DicomSeries, elements []*dicom.Element) {
	for _, info := range r.computedTags {
		values := stringValues(elements, info.Tag)
		if values == nil {
			r.logger.Debug("Computed tag not found", "tag", info.Name, "series_instance_uid", s.InstanceUID)
			continue
		}
		s.AddComputedTagValue(info.Name, strings.Join(values, `\`))
	}
}

// isDICOMDIR reports whether elements belong to a DICOMDIR file.
func isDICOMDIR(elements []*dicom.Element) bool {
	return stringValue(elements, tag.MediaStorageSOPClassUID) == MediaStorageDirectoryStorage ||
		stringValue(elements, tag.SOPClassUID) == MediaStorageDirectoryStorage
}

// filler builds the patient, study and equipment of each series. Series
// sharing a Patient ID, Study Instance UID or Institution Name receive deep
// copies of the object built for the first of them.
type filler struct {
	logger     *slog.Logger
	patients   map[string]*series.Patient
	studies    map[string]*series.Study
	equipments map[string]*series.Equipment
}

func newFiller(logger *slog.Logger) *filler {
	return &filler{
		logger:     logger,
		patients:   make(map[string]*series.Patient),
		studies:    make(map[string]*series.Study),
		equipments: make(map[string]*series.Equipment),
	}
}

func (f *filler) fill(s *series.DicomSeries, elements []*dicom.Element) {
	s.InstanceUID = stringValue(elements, tag.SeriesInstanceUID)
	s.Modality = stringValue(elements, tag.Modality)
	s.Date = stringValue(elements, tag.SeriesDate)
	s.Time = stringValue(elements, tag.SeriesTime)
	s.Description = stringValue(elements, tag.SeriesDescription)
	s.PerformingPhysicians = stringValues(elements, tag.PerformingPhysicianName)
	if number := stringValue(elements, tag.SeriesNumber); number != "" {
		n, err := strconv.Atoi(strings.TrimSpace(number))
		if err != nil {
			f.logger.Warn("Invalid Series Number", "series_instance_uid", s.InstanceUID, "value", number)
		} else {
			s.Number = n
		}
	}

	s.Patient = shared(f, f.patients, stringValue(elements, tag.PatientID), func() *series.Patient {
		return &series.Patient{
			ID:        stringValue(elements, tag.PatientID),
			Name:      stringValue(elements, tag.PatientName),
			BirthDate: stringValue(elements, tag.PatientBirthDate),
			Sex:       stringValue(elements, tag.PatientSex),
		}
	})
	s.Study = shared(f, f.studies, stringValue(elements, tag.StudyInstanceUID), func() *series.Study {
		return &series.Study{
			InstanceUID:            stringValue(elements, tag.StudyInstanceUID),
			Date:                   stringValue(elements, tag.StudyDate),
			Time:                   stringValue(elements, tag.StudyTime),
			ReferringPhysicianName: stringValue(elements, tag.ReferringPhysicianName),
			Description:            stringValue(elements, tag.StudyDescription),
			PatientAge:             stringValue(elements, tag.PatientAge),
		}
	})
	s.Equipment = shared(f, f.equipments, stringValue(elements, tag.InstitutionName), func() *series.Equipment {
		return &series.Equipment{InstitutionName: stringValue(elements, tag.InstitutionName)}
	})
}

// shared returns a new object built by build the first time key is met, and a
// deep copy of that object afterwards.
func shared[T any, PT interface {
	*T
	series.Object
}](f *filler, known map[string]PT, key string, build func() PT) PT {
	first, ok := known[key]
	if !ok {
		obj := build()
		known[key] = obj
		return obj
	}

	dup, err := series.DeepCopyOf[T](first, nil)
	if err != nil {
		f.logger.Warn("Unable to copy shared object", "key", key, "error", err)
		return build()
	}
	return dup
}
