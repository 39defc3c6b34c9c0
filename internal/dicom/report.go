package dicom

import (
	"gonum.org/v1/gonum/stat"

	"github.com/mrsinham/dicomseries/internal/series"
)

// Report summarizes the instances of a series.
type Report struct {
	Available  int
	Expected   int
	Missing    []uint64
	TotalBytes int64
	MeanSize   float64
	StdDevSize float64
}

// Summarize builds the Report of s. Sizes come from the buffer records and do
// not load file contents. Missing lists the indices below the expected count
// that have no instance.
func Summarize(s *series.DicomSeries) Report {
	records := s.DicomContainer()
	report := Report{
		Available: len(records),
		Expected:  s.NumInstances(),
	}

	sizes := make([]float64, 0, len(records))
	for _, buf := range records {
		sizes = append(sizes, float64(buf.Size()))
		report.TotalBytes += buf.Size()
	}
	if len(sizes) > 0 {
		report.MeanSize = stat.Mean(sizes, nil)
	}
	if len(sizes) > 1 {
		report.StdDevSize = stat.StdDev(sizes, nil)
	}

	for index := range uint64(max(report.Expected, 0)) {
		if _, ok := records[index]; !ok {
			report.Missing = append(report.Missing, index)
		}
	}
	return report
}
