package history

import "time"

// Run is one recorded organize run.
type Run struct {
	ID           string    `json:"id"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	SourcePath   string    `json:"source_path"`
	TargetPath   string    `json:"target_path"`
	Overwrite    bool      `json:"overwrite"`
	Total        int       `json:"total"`
	Processed    int       `json:"processed"`
	Skip         int       `json:"skip"`
	Failed       int       `json:"failed"`
	ErrorMessage string    `json:"error,omitempty"`
}

// Duration returns how long the run took.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// File is the recorded disposition of one source file within a run.
type File struct {
	Seq          int    `json:"seq"`
	Name         string `json:"name"`
	Disposition  string `json:"disposition"`
	Year         int    `json:"year,omitempty"`
	Destination  string `json:"destination,omitempty"`
	Reason       string `json:"reason,omitempty"`
	ErrorMessage string `json:"error,omitempty"`
}
