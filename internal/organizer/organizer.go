package organizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"photoorg/internal/fileutil"
	"photoorg/internal/logging"
	"photoorg/internal/metadata"
	"photoorg/internal/services"
)

const stageName = "organize"

// MetadataResolver extracts capture dates from files.
type MetadataResolver interface {
	Resolve(path string) (metadata.Resolution, error)
}

// Organizer copies photos into a year-partitioned target tree.
type Organizer struct {
	resolver MetadataResolver
	logger   *slog.Logger
}

// New constructs an organizer. A nil resolver uses metadata.NewResolver.
func New(resolver MetadataResolver, logger *slog.Logger) *Organizer {
	if resolver == nil {
		resolver = metadata.NewResolver()
	}
	return &Organizer{
		resolver: resolver,
		logger:   logging.NewComponentLogger(logger, "organizer"),
	}
}

// Run lists the source directory and organizes every file in it. A missing
// source fails before anything is created under the target.
func (o *Organizer) Run(ctx context.Context, settings Settings, progress Progress) (Result, error) {
	if err := settings.Validate(); err != nil {
		return Result{}, err
	}
	files, err := ListSources(settings.SourcePath)
	if err != nil {
		return Result{}, err
	}
	return o.Organize(ctx, settings, files, progress)
}

// Organize processes files sequentially in the given order. Once processing
// starts every file is classified; per-file failures are counted and returned
// together as an error matching services.ErrIncomplete.
func (o *Organizer) Organize(ctx context.Context, settings Settings, files []SourceFile, progress Progress) (Result, error) {
	if err := settings.Validate(); err != nil {
		return Result{}, err
	}
	ctx = services.WithStage(ctx, stageName)
	logger := logging.WithContext(ctx, o.logger)

	if err := o.prepareTarget(settings); err != nil {
		return Result{}, err
	}

	logger.Info(
		"organize started",
		logging.String("source", settings.SourcePath),
		logging.String("target", settings.TargetPath),
		logging.Bool("overwrite", settings.Overwrite),
		logging.Int("files", len(files)),
	)

	var result Result
	var failures []error
	for _, file := range files {
		outcome := o.process(ctx, settings, file)
		result.record(outcome.Disposition)
		if outcome.Disposition == DispositionFailed {
			failures = append(failures, outcome.Err)
		}
		if progress != nil {
			progress(outcome, result)
		}
	}

	logger.Info(
		"organize finished",
		logging.Int("total", result.Total),
		logging.Int("processed", result.Processed),
		logging.Int("skip", result.Skip),
		logging.Int("failed", result.Failed),
	)

	if len(failures) > 0 {
		return result, fmt.Errorf("%w: %d of %d files failed: %w",
			services.ErrIncomplete, len(failures), result.Total, errors.Join(failures...))
	}
	return result, nil
}

// prepareTarget creates the target root and the fallback folder up front so a
// read-only or missing target fails the run before any file is touched.
func (o *Organizer) prepareTarget(settings Settings) error {
	if err := os.MkdirAll(settings.TargetPath, 0o755); err != nil {
		return services.Wrap(services.ErrIO, stageName, "create target", settings.TargetPath, err)
	}
	if err := os.MkdirAll(settings.UnprocessedPath(), 0o755); err != nil {
		return services.Wrap(services.ErrIO, stageName, "create unprocessed dir", settings.UnprocessedPath(), err)
	}
	return nil
}

func (o *Organizer) process(ctx context.Context, settings Settings, file SourceFile) Outcome {
	ctx = services.WithSourceFile(ctx, file.Name)
	logger := logging.WithContext(ctx, o.logger)

	resolution, err := o.resolver.Resolve(file.Path)
	var outcome Outcome
	switch {
	case err == nil && resolution.HasDate():
		outcome = o.organizeDated(settings, file, resolution.Year())
	case err == nil:
		outcome = Outcome{File: file, Disposition: DispositionSkippedNoDate, Reason: "no capture date"}
	case errors.Is(err, services.ErrMalformedMetadata):
		outcome = o.copyUnprocessed(settings, file)
	default:
		outcome = Outcome{File: file, Disposition: DispositionFailed, Reason: "metadata read failed", Err: err}
	}

	attrs := logging.DecisionAttrs("photo_routing", string(outcome.Disposition), outcome.Reason)
	if outcome.Year != 0 {
		attrs = append(attrs, logging.Int("year", outcome.Year))
	}
	if outcome.Destination != "" {
		attrs = append(attrs, logging.String("destination", outcome.Destination))
	}
	if outcome.Err != nil {
		attrs = append(attrs, logging.Error(outcome.Err))
		logger.Warn("photo not organized", logging.Args(attrs...)...)
	} else {
		logger.Debug("photo routed", logging.Args(attrs...)...)
	}
	return outcome
}

func (o *Organizer) organizeDated(settings Settings, file SourceFile, year int) Outcome {
	outcome := Outcome{File: file, Year: year}
	dir := filepath.Join(settings.TargetPath, yearDir(year))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		outcome.Disposition = DispositionFailed
		outcome.Reason = failureReason("create year dir failed", err)
		outcome.Err = services.Wrap(services.ErrIO, stageName, "create year dir", file.Name, err)
		return outcome
	}
	dst := filepath.Join(dir, file.Name)
	if err := o.copy(settings, file, dst); err != nil {
		outcome.Disposition = DispositionFailed
		outcome.Reason = failureReason("copy failed", err)
		outcome.Err = err
		return outcome
	}
	outcome.Disposition = DispositionOrganized
	outcome.Destination = dst
	outcome.Reason = "capture date found"
	return outcome
}

func (o *Organizer) copyUnprocessed(settings Settings, file SourceFile) Outcome {
	outcome := Outcome{File: file}
	dst := filepath.Join(settings.UnprocessedPath(), file.Name)
	if err := o.copy(settings, file, dst); err != nil {
		outcome.Disposition = DispositionFailed
		outcome.Reason = failureReason("fallback copy failed", err)
		outcome.Err = err
		return outcome
	}
	outcome.Disposition = DispositionSkippedMalformed
	outcome.Destination = dst
	outcome.Reason = "unrecognized image format"
	return outcome
}

func (o *Organizer) copy(settings Settings, file SourceFile, dst string) error {
	// A source already sitting at its destination needs no copy.
	if fileutil.SameFile(file.Path, dst) {
		if !settings.Overwrite {
			return services.Wrap(services.ErrDestinationExists, stageName, "copy", dst, nil)
		}
		return nil
	}
	err := fileutil.CopyFile(file.Path, dst, fileutil.CopyOptions{
		Overwrite:       settings.Overwrite,
		PreserveModTime: true,
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, services.ErrDestinationExists):
		return services.Wrap(services.ErrDestinationExists, stageName, "copy", file.Name, err)
	default:
		return services.Wrap(services.ErrIO, stageName, "copy", file.Name, err)
	}
}

func yearDir(year int) string {
	return fmt.Sprintf("%04d", year)
}
