package dicom

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/suyashkumar/dicom"

	"github.com/mrsinham/dicomseries/internal/sr"
	"github.com/mrsinham/dicomseries/internal/util"
)

// Storage SOP classes written by the generator.
const (
	CTImageStorage      = "1.2.840.10008.5.1.4.1.1.2"
	MRImageStorage      = "1.2.840.10008.5.1.4.1.1.4"
	SegmentationStorage = "1.2.840.10008.5.1.4.1.1.66.4"
)

// instanceOverhead estimates the bytes of an instance outside its pixel data.
const instanceOverhead = 1024

// Frame side bounds, in pixels.
const (
	minFrameSide = 16
	maxFrameSide = 2048
)

// GeneratorOptions configures GenerateSeries.
type GeneratorOptions struct {
	OutputDir string
	NumSeries int
	Instances int
	// TotalSize is a human readable size for all image instances ("2MB").
	// Empty gives minimum sized frames.
	TotalSize string
	Seed      uint64
	Modality  string
	Workers   int

	// Segments are structure types of Registry. When set, every series gets
	// a companion SEG instance carrying one segment per structure type.
	Registry *sr.Registry
	Segments []string

	Logger   *slog.Logger
	Progress func(done, total int)
}

// GeneratedFile describes a written instance.
type GeneratedFile struct {
	Path           string
	PatientID      string
	PatientName    string
	StudyUID       string
	SeriesUID      string
	SeriesNumber   int
	Modality       string
	SOPClassUID    string
	SOPInstanceUID string
	InstanceNumber int
}

// FrameSide returns the side of the square 8-bit frames that make numImages
// instances fit in totalBytes. The side is a multiple of 8 within
// [minFrameSide, maxFrameSide].
func FrameSide(totalBytes uint64, numImages int) (int, error) {
	if numImages <= 0 {
		return 0, fmt.Errorf("number of images must be > 0")
	}
	perImage := totalBytes / uint64(numImages)
	if perImage <= instanceOverhead+minFrameSide*minFrameSide {
		return 0, fmt.Errorf("total size %s too small for %d images (need at least %s)",
			humanize.Bytes(totalBytes), numImages,
			humanize.Bytes(uint64(numImages)*(instanceOverhead+minFrameSide*minFrameSide+1)))
	}

	side := int(math.Sqrt(float64(perImage - instanceOverhead)))
	side -= side % 8
	return min(max(side, minFrameSide), maxFrameSide), nil
}

type instanceTask struct {
	path string
	info InstanceInfo
}

// GenerateSeries writes a synthetic study of opts.NumSeries series under
// opts.OutputDir and returns the written files, ordered by series then
// instance number. UIDs derive from opts.Seed, so the same options produce
// the same UIDs.
func GenerateSeries(ctx context.Context, opts GeneratorOptions) ([]GeneratedFile, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.NumSeries <= 0 {
		return nil, fmt.Errorf("number of series must be > 0")
	}
	if opts.Instances <= 0 {
		return nil, fmt.Errorf("number of instances must be > 0")
	}

	sopClassUID, err := imageStorageClass(opts.Modality)
	if err != nil {
		return nil, err
	}

	side := minFrameSide
	if opts.TotalSize != "" {
		totalBytes, err := humanize.ParseBytes(opts.TotalSize)
		if err != nil {
			return nil, fmt.Errorf("invalid total size %q: %w", opts.TotalSize, err)
		}
		if side, err = FrameSide(totalBytes, opts.NumSeries*opts.Instances); err != nil {
			return nil, err
		}
	}

	if len(opts.Segments) > 0 && opts.Registry == nil {
		return nil, fmt.Errorf("segments require a segmented property registry")
	}

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	rng := rand.New(rand.NewPCG(opts.Seed, 0))
	seed := strconv.FormatUint(opts.Seed, 10)
	now := time.Now()

	sex := "F"
	if rng.IntN(2) == 0 {
		sex = "M"
	}
	birth := now.AddDate(-20-rng.IntN(60), -rng.IntN(12), -rng.IntN(28))
	base := InstanceInfo{
		PatientID:              fmt.Sprintf("PID%06d", rng.IntN(1_000_000)),
		PatientName:            util.PatientName(rng, sex),
		PatientBirthDate:       birth.Format("20060102"),
		PatientSex:             sex,
		PatientAge:             fmt.Sprintf("%03dY", now.Year()-birth.Year()),
		StudyInstanceUID:       util.DeterministicUID(seed + "/study"),
		StudyDate:              now.Format("20060102"),
		StudyTime:              now.Format("150405"),
		StudyDescription:       "SYNTHETIC " + opts.Modality,
		ReferringPhysicianName: util.PatientName(rng, "M"),
		Modality:               opts.Modality,
		SeriesDate:             now.Format("20060102"),
		SeriesTime:             now.Format("150405"),
		InstitutionName:        "DICOMSERIES",
	}

	var tasks []instanceTask
	for s := 1; s <= opts.NumSeries; s++ {
		dir := fmt.Sprintf("SE%03d", s)
		if err := os.MkdirAll(filepath.Join(opts.OutputDir, dir), 0o755); err != nil {
			return nil, fmt.Errorf("create series directory: %w", err)
		}

		seriesInfo := base
		seriesInfo.SOPClassUID = sopClassUID
		seriesInfo.SeriesInstanceUID = util.DeterministicUID(fmt.Sprintf("%s/series/%d", seed, s))
		seriesInfo.SeriesNumber = s
		seriesInfo.SeriesDescription = fmt.Sprintf("Series %d", s)
		seriesInfo.Rows = side
		seriesInfo.Columns = side

		for i := 1; i <= opts.Instances; i++ {
			info := seriesInfo
			info.SOPInstanceUID = util.DeterministicUID(fmt.Sprintf("%s/series/%d/instance/%d", seed, s, i))
			info.InstanceNumber = i
			info.Label = fmt.Sprintf("%d/%d", i, opts.Instances)
			tasks = append(tasks, instanceTask{
				path: filepath.Join(dir, fmt.Sprintf("IM%05d.dcm", i)),
				info: info,
			})
		}

		if len(opts.Segments) > 0 {
			segments, err := segmentSequence(opts.Registry, opts.Segments, logger)
			if err != nil {
				return nil, err
			}
			segDir := fmt.Sprintf("SG%03d", s)
			if err := os.MkdirAll(filepath.Join(opts.OutputDir, segDir), 0o755); err != nil {
				return nil, fmt.Errorf("create segmentation directory: %w", err)
			}
			info := base
			info.SOPClassUID = SegmentationStorage
			info.SOPInstanceUID = util.DeterministicUID(fmt.Sprintf("%s/segmentation/%d", seed, s))
			info.SeriesInstanceUID = util.DeterministicUID(fmt.Sprintf("%s/segmentation/%d/series", seed, s))
			info.SeriesNumber = 100 + s
			info.SeriesDescription = fmt.Sprintf("Segmentation of series %d", s)
			info.Modality = "SEG"
			info.InstanceNumber = 1
			info.Extra = []*dicom.Element{segments}
			tasks = append(tasks, instanceTask{
				path: filepath.Join(segDir, "SEG00001.dcm"),
				info: info,
			})
		}
	}

	if err := writeTasks(ctx, opts, logger, tasks); err != nil {
		return nil, err
	}

	files := make([]GeneratedFile, len(tasks))
	for i, task := range tasks {
		files[i] = GeneratedFile{
			Path:           task.path,
			PatientID:      task.info.PatientID,
			PatientName:    task.info.PatientName,
			StudyUID:       task.info.StudyInstanceUID,
			SeriesUID:      task.info.SeriesInstanceUID,
			SeriesNumber:   task.info.SeriesNumber,
			Modality:       task.info.Modality,
			SOPClassUID:    task.info.SOPClassUID,
			SOPInstanceUID: task.info.SOPInstanceUID,
			InstanceNumber: task.info.InstanceNumber,
		}
	}

	logger.Info("Series generated",
		"output_dir", opts.OutputDir,
		"series", opts.NumSeries,
		"files", len(files),
		"frame_side", side)
	return files, nil
}

// segmentSequence builds a Segment Sequence with one item per structure type.
func segmentSequence(registry *sr.Registry, structureTypes []string, logger *slog.Logger) (*dicom.Element, error) {
	items := make([][]*dicom.Element, 0, len(structureTypes))
	for _, structureType := range structureTypes {
		item, err := SegmentIdentification(registry, structureType, logger)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return NewSegmentSequence(items)
}

// writeTasks writes tasks with a pool of opts.Workers goroutines and returns
// the first error.
func writeTasks(ctx context.Context, opts GeneratorOptions, logger *slog.Logger, tasks []instanceTask) error {
	numWorkers := opts.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	numWorkers = min(numWorkers, len(tasks))
	logger.Debug("Writing instances", "count", len(tasks), "workers", numWorkers)

	taskChan := make(chan instanceTask, len(tasks))
	errChan := make(chan error, len(tasks))

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskChan {
				if err := ctx.Err(); err != nil {
					errChan <- err
					continue
				}
				errChan <- WriteInstance(filepath.Join(opts.OutputDir, task.path), task.info)
			}
		}()
	}

	for _, task := range tasks {
		taskChan <- task
	}
	close(taskChan)

	go func() {
		wg.Wait()
		close(errChan)
	}()

	completed := 0
	var firstErr error
	for err := range errChan {
		if err != nil && firstErr == nil {
			firstErr = err
		}
		completed++
		if opts.Progress != nil {
			opts.Progress(completed, len(tasks))
		}
	}
	return firstErr
}

func imageStorageClass(modality string) (string, error) {
	switch modality {
	case "CT":
		return CTImageStorage, nil
	case "MR":
		return MRImageStorage, nil
	default:
		return "", fmt.Errorf("unsupported modality %q (want CT or MR)", modality)
	}
}
