package series

import (
	"slices"
)

// Patient holds the patient module of a series.
type Patient struct {
	ID        string
	Name      string
	BirthDate string
	Sex       string
}

// ShallowCopy implements Object.
func (p *Patient) ShallowCopy(source Object) error {
	src, err := sourceAs[Patient]("shallow copy", source)
	if err != nil {
		return err
	}
	*p = *src
	return nil
}

// DeepCopy implements Object.
func (p *Patient) DeepCopy(source Object, cache CopyCache) error {
	src, err := sourceAs[Patient]("deep copy", source)
	if err != nil {
		return err
	}
	cache.register(source, p)
	*p = *src
	return nil
}

// Study holds the general study module of a series.
type Study struct {
	InstanceUID            string
	Date                   string
	Time                   string
	ReferringPhysicianName string
	Description            string
	PatientAge             string
}

// ShallowCopy implements Object.
func (s *Study) ShallowCopy(source Object) error {
	src, err := sourceAs[Study]("shallow copy", source)
	if err != nil {
		return err
	}
	*s = *src
	return nil
}

// DeepCopy implements Object.
func (s *Study) DeepCopy(source Object, cache CopyCache) error {
	src, err := sourceAs[Study]("deep copy", source)
	if err != nil {
		return err
	}
	cache.register(source, s)
	*s = *src
	return nil
}

// Equipment holds the general equipment module of a series.
type Equipment struct {
	InstitutionName string
}

// ShallowCopy implements Object.
func (e *Equipment) ShallowCopy(source Object) error {
	src, err := sourceAs[Equipment]("shallow copy", source)
	if err != nil {
		return err
	}
	*e = *src
	return nil
}

// DeepCopy implements Object.
func (e *Equipment) DeepCopy(source Object, cache CopyCache) error {
	src, err := sourceAs[Equipment]("deep copy", source)
	if err != nil {
		return err
	}
	cache.register(source, e)
	*e = *src
	return nil
}

// Series is the state common to every kind of series: identification,
// description and the objects it belongs to.
type Series struct {
	InstanceUID          string
	Number               int
	Modality             string
	Date                 string
	Time                 string
	Description          string
	PerformingPhysicians []string

	Patient   *Patient
	Study     *Study
	Equipment *Equipment
}

// ShallowCopy implements Object. Patient, study and equipment are shared.
func (s *Series) ShallowCopy(source Object) error {
	src, err := sourceAs[Series]("shallow copy", source)
	if err != nil {
		return err
	}
	s.copyFrom(src)
	return nil
}

// DeepCopy implements Object.
func (s *Series) DeepCopy(source Object, cache CopyCache) error {
	src, err := sourceAs[Series]("deep copy", source)
	if err != nil {
		return err
	}
	if cache == nil {
		cache = CopyCache{}
	}
	cache.register(source, s)
	return s.deepCopyFrom(src, cache)
}

func (s *Series) copyFrom(src *Series) {
	*s = *src
	s.PerformingPhysicians = slices.Clone(src.PerformingPhysicians)
}

func (s *Series) deepCopyFrom(src *Series, cache CopyCache) error {
	patient, err := DeepCopyOf(src.Patient, cache)
	if err != nil {
		return err
	}
	study, err := DeepCopyOf(src.Study, cache)
	if err != nil {
		return err
	}
	equipment, err := DeepCopyOf(src.Equipment, cache)
	if err != nil {
		return err
	}

	s.copyFrom(src)
	s.Patient = patient
	s.Study = study
	s.Equipment = equipment
	return nil
}

// Equal reports whether both series carry the same values. Sub-objects are
// compared by value, not identity.
func (s *Series) Equal(other *Series) bool {
	return s.InstanceUID == other.InstanceUID &&
		s.Number == other.Number &&
		s.Modality == other.Modality &&
		s.Date == other.Date &&
		s.Time == other.Time &&
		s.Description == other.Description &&
		slices.Equal(s.PerformingPhysicians, other.PerformingPhysicians) &&
		equalPtr(s.Patient, other.Patient) &&
		equalPtr(s.Study, other.Study) &&
		equalPtr(s.Equipment, other.Equipment)
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
