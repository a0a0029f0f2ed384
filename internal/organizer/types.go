package organizer

import (
	"path/filepath"
	"strings"
	"time"

	"photoorg/internal/services"
)

// DefaultUnprocessedDir is the fallback folder name for files whose content
// is not a recognized image.
const DefaultUnprocessedDir = "Unprocessed"

// Disposition is the final classification of one source file.
type Disposition string

const (
	DispositionOrganized        Disposition = "organized"
	DispositionSkippedNoDate    Disposition = "skipped_no_date"
	DispositionSkippedMalformed Disposition = "skipped_malformed"
	DispositionFailed           Disposition = "failed"
)

// Dispositions lists every disposition in display order.
func Dispositions() []Disposition {
	return []Disposition{
		DispositionOrganized,
		DispositionSkippedNoDate,
		DispositionSkippedMalformed,
		DispositionFailed,
	}
}

// SourceFile is one regular file found in the source directory.
type SourceFile struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// Settings configures a single run.
type Settings struct {
	SourcePath     string
	TargetPath     string
	Overwrite      bool
	UnprocessedDir string
}

// Validate checks that the settings describe a usable run.
func (s Settings) Validate() error {
	source := strings.TrimSpace(s.SourcePath)
	target := strings.TrimSpace(s.TargetPath)
	if source == "" {
		return services.Wrap(services.ErrValidation, "organize", "validate settings", "source path is required", nil)
	}
	if target == "" {
		return services.Wrap(services.ErrValidation, "organize", "validate settings", "target path is required", nil)
	}
	if samePath(source, target) {
		return services.Wrap(services.ErrValidation, "organize", "validate settings", "target path must differ from source path", nil)
	}
	name := strings.TrimSpace(s.UnprocessedDir)
	if name != "" && (name != filepath.Base(name) || name == "." || name == "..") {
		return services.Wrap(services.ErrValidation, "organize", "validate settings", "unprocessed directory must be a single folder name", nil)
	}
	return nil
}

// UnprocessedPath returns the absolute fallback folder for malformed files.
func (s Settings) UnprocessedPath() string {
	name := strings.TrimSpace(s.UnprocessedDir)
	if name == "" {
		name = DefaultUnprocessedDir
	}
	return filepath.Join(s.TargetPath, name)
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

// Result tallies a run. Total always equals Processed + Skip; Failed is the
// part of Skip caused by I/O failures.
type Result struct {
	Total     int `json:"total"`
	Processed int `json:"processed"`
	Skip      int `json:"skip"`
	Failed    int `json:"failed"`
}

// Consistent reports whether the counters agree with each other.
func (r Result) Consistent() bool {
	return r.Total == r.Processed+r.Skip && r.Failed <= r.Skip
}

func (r *Result) record(d Disposition) {
	r.Total++
	switch d {
	case DispositionOrganized:
		r.Processed++
	case DispositionFailed:
		r.Skip++
		r.Failed++
	default:
		r.Skip++
	}
}

// Outcome is the tagged per-file result.
type Outcome struct {
	File        SourceFile
	Disposition Disposition
	// Year is the capture year; zero unless the file was dated.
	Year int
	// Destination is the copy path, empty when nothing was written.
	Destination string
	// Reason is a short machine-friendly explanation of the disposition.
	Reason string
	Err    error
}

// Progress observes each file once its disposition is final. The Result is a
// snapshot of the tally including that file.
type Progress func(Outcome, Result)
