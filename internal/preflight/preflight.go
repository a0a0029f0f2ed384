package preflight

import (
	"strings"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	// Advisory marks checks whose failure is reported but does not block the run.
	Advisory bool
	Detail   string
}

// Inputs describes the paths and sizes of a pending organize run.
type Inputs struct {
	SourceDir string
	TargetDir string
	// StateDir is checked when non-empty.
	StateDir string
	// RequiredBytes is the total size of the files about to be copied.
	RequiredBytes int64
}

// RunAll executes every applicable check.
func RunAll(in Inputs) []Result {
	results := []Result{
		CheckSourceAccess("Source directory", in.SourceDir),
		CheckTargetAccess("Target directory", in.TargetDir),
	}
	if strings.TrimSpace(in.StateDir) != "" {
		results = append(results, CheckDirectoryAccess("State directory", in.StateDir))
	}
	results = append(results, CheckFreeSpace("Target free space", in.TargetDir, in.RequiredBytes))
	return results
}

// Blocking returns the failed checks that must stop the run.
func Blocking(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Advisory {
			failed = append(failed, r)
		}
	}
	return failed
}
