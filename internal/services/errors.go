package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformedMetadata = errors.New("malformed metadata")
	ErrIO                = errors.New("i/o error")
	ErrDestinationExists = errors.New("destination exists")
	ErrSourceNotFound    = errors.New("source not found")
	ErrValidation        = errors.New("validation error")
	ErrConfiguration     = errors.New("configuration error")
	ErrIncomplete        = errors.New("run incomplete")
	ErrLocked            = errors.New("target locked")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ExitCode maps a run error to the process exit status the CLI reports.
// Partial runs and per-file failures share code 1; setup failures use 2 so
// scripts can tell "nothing happened" apart from "some files failed".
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrIncomplete):
		return 1
	default:
		return 2
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
