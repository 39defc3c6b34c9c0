package series

import (
	"maps"
	"slices"

	"github.com/mrsinham/dicomseries/internal/buffer"
	dserrors "github.com/mrsinham/dicomseries/internal/errors"
)

// DicomSeries is a series stored as raw DICOM instances. Instances are
// registered as they become available; NumInstances is the expected total.
//
// A DicomSeries does no locking: concurrent writers must be serialized by the
// caller.
type DicomSeries struct {
	Series

	numberOfInstances   int
	container           *buffer.Store
	sopClassUIDs        map[string]struct{}
	computedTagValues   map[string]string
	firstInstanceNumber int
}

// New creates an empty DicomSeries.
func New() *DicomSeries {
	return &DicomSeries{
		container:         buffer.NewStore(),
		sopClassUIDs:      make(map[string]struct{}),
		computedTagValues: make(map[string]string),
	}
}

// AddDicomPath registers the file at path as instance index.
func (s *DicomSeries) AddDicomPath(index uint64, path string) error {
	return s.container.RegisterFile(index, path)
}

// AddBinary registers an in-memory payload as instance index. The series
// takes ownership of data.
func (s *DicomSeries) AddBinary(index uint64, data []byte) {
	s.container.RegisterBuffer(index, data)
}

// IsInstanceAvailable reports whether instance index is registered.
func (s *DicomSeries) IsInstanceAvailable(index uint64) bool {
	return s.container.IsAvailable(index)
}

// Instance returns the shared buffer of instance index.
func (s *DicomSeries) Instance(index uint64) (*buffer.Buffer, bool) {
	return s.container.Get(index)
}

// InstanceBytes returns the content of instance index, reading it from disk
// on first access.
func (s *DicomSeries) InstanceBytes(index uint64) ([]byte, error) {
	return s.container.Bytes(index)
}

// NumAvailableInstances returns how many instances are registered.
func (s *DicomSeries) NumAvailableInstances() int {
	return s.container.Len()
}

// IsComplete reports whether every index in [0, NumInstances) is registered.
func (s *DicomSeries) IsComplete() bool {
	for index := range uint64(max(s.numberOfInstances, 0)) {
		if !s.container.IsAvailable(index) {
			return false
		}
	}
	return true
}

// NumInstances returns the expected number of instances.
func (s *DicomSeries) NumInstances() int {
	return s.numberOfInstances
}

// SetNumInstances sets the expected number of instances.
func (s *DicomSeries) SetNumInstances(n int) {
	s.numberOfInstances = n
}

// DicomContainer returns the index to buffer mapping. The map is a copy; the
// buffers are shared with the series.
func (s *DicomSeries) DicomContainer() map[uint64]*buffer.Buffer {
	return s.container.Records()
}

// SetDicomContainer replaces every registered instance.
func (s *DicomSeries) SetDicomContainer(records map[uint64]*buffer.Buffer) {
	store := buffer.NewStore()
	for index, buf := range records {
		store.RegisterShared(index, buf)
	}
	s.container = store
}

// ClearDicomContainer removes every registered instance.
func (s *DicomSeries) ClearDicomContainer() {
	s.container.Clear()
}

// AddSOPClassUID adds uid to the SOP classes of the series. Adding a known
// uid is a no-op.
func (s *DicomSeries) AddSOPClassUID(uid string) {
	s.sopClassUIDs[uid] = struct{}{}
}

// SOPClassUIDs returns the SOP class UIDs in ascending order.
func (s *DicomSeries) SOPClassUIDs() []string {
	return slices.Sorted(maps.Keys(s.sopClassUIDs))
}

// SetSOPClassUIDs replaces the SOP class UID set.
func (s *DicomSeries) SetSOPClassUIDs(uids []string) {
	set := make(map[string]struct{}, len(uids))
	for _, uid := range uids {
		set[uid] = struct{}{}
	}
	s.sopClassUIDs = set
}

// AddComputedTagValue stores value for tagName, replacing any previous value.
func (s *DicomSeries) AddComputedTagValue(tagName, value string) {
	s.computedTagValues[tagName] = value
}

// HasComputedValues reports whether a value is stored for tagName.
func (s *DicomSeries) HasComputedValues(tagName string) bool {
	_, ok := s.computedTagValues[tagName]
	return ok
}

// ComputedTagValue returns the value stored for tagName.
func (s *DicomSeries) ComputedTagValue(tagName string) (string, bool) {
	v, ok := s.computedTagValues[tagName]
	return v, ok
}

// ComputedTagValues returns a copy of the computed tag values.
func (s *DicomSeries) ComputedTagValues() map[string]string {
	return maps.Clone(s.computedTagValues)
}

// SetComputedTagValues replaces the computed tag values.
func (s *DicomSeries) SetComputedTagValues(values map[string]string) {
	s.computedTagValues = maps.Clone(values)
	if s.computedTagValues == nil {
		s.computedTagValues = make(map[string]string)
	}
}

// FirstInstanceNumber returns the number of the first instance (0 or 1).
func (s *DicomSeries) FirstInstanceNumber() int {
	return s.firstInstanceNumber
}

// SetFirstInstanceNumber sets the number of the first instance.
func (s *DicomSeries) SetFirstInstanceNumber(n int) {
	s.firstInstanceNumber = n
}

// ShallowCopy implements Object. Metadata is copied by value and the instance
// buffers are shared: a byte changed through one series is seen by the other.
func (s *DicomSeries) ShallowCopy(source Object) error {
	src, err := sourceAs[DicomSeries]("shallow copy", source)
	if err != nil {
		return err
	}

	s.Series.copyFrom(&src.Series)
	s.copyMetadata(src)
	s.SetDicomContainer(src.container.Records())
	return nil
}

// DeepCopy implements Object. Every non-empty instance is duplicated into a
// new memory buffer, so the copy is independent from source. On error the
// receiver is left unchanged.
func (s *DicomSeries) DeepCopy(source Object, cache CopyCache) error {
	src, err := sourceAs[DicomSeries]("deep copy", source)
	if err != nil {
		return err
	}
	if cache == nil {
		cache = CopyCache{}
	}

	store := buffer.NewStore()
	for index, buf := range src.container.Records() {
		if buf.Size() == 0 {
			continue
		}
		dup, err := buf.Clone()
		if err != nil {
			return dserrors.NewInstanceError(index, buf.Path(), err)
		}
		store.RegisterShared(index, dup)
	}

	var base Series
	if err := base.deepCopyFrom(&src.Series, cache); err != nil {
		return err
	}

	s.Series = base
	s.copyMetadata(src)
	s.container = store
	cache.register(source, s)
	return nil
}

func (s *DicomSeries) copyMetadata(src *DicomSeries) {
	s.numberOfInstances = src.numberOfInstances
	s.sopClassUIDs = maps.Clone(src.sopClassUIDs)
	s.computedTagValues = maps.Clone(src.computedTagValues)
	s.firstInstanceNumber = src.firstInstanceNumber
}

// Equal reports whether both series hold the same metadata and byte-identical
// instances.
func (s *DicomSeries) Equal(other *DicomSeries) bool {
	if other == nil {
		return false
	}
	return s.Series.Equal(&other.Series) &&
		s.numberOfInstances == other.numberOfInstances &&
		s.firstInstanceNumber == other.firstInstanceNumber &&
		maps.Equal(s.sopClassUIDs, other.sopClassUIDs) &&
		maps.Equal(s.computedTagValues, other.computedTagValues) &&
		s.container.Equal(other.container)
}
