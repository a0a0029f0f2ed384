package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"photoorg/internal/config"
	"photoorg/internal/history"
	"photoorg/internal/logging"
	"photoorg/internal/organizer"
	"photoorg/internal/preflight"
	"photoorg/internal/runlock"
	"photoorg/internal/services"
)

type organizeOptions struct {
	overwrite  bool
	jsonOutput bool
	noProgress bool
}

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	var opts organizeOptions

	cmd := &cobra.Command{
		Use:   "organize [source] [target]",
		Short: "Copy photos into year folders based on their capture date",
		Long: `Scan the top level of the source directory and copy every photo with an
EXIF capture date into <target>/<year>/. Files that are not images are copied
into <target>/Unprocessed/. Images without a capture date are left alone.

Paths default to organize.source_dir and organize.target_dir from the config.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			overwrite := cfg.Organize.Overwrite
			if cmd.Flags().Changed("overwrite") {
				overwrite = opts.overwrite
			}
			settings, err := resolveSettings(cfg, args, overwrite)
			if err != nil {
				return err
			}
			logger, closeLog, err := ctx.newLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() {
				_ = closeLog()
			}()
			return runOrganize(cmd, cfg, logger, settings, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.overwrite, "overwrite", true, "Replace files that already exist in the target (defaults to organize.overwrite)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print the run summary as JSON")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "Disable the progress bar")
	return cmd
}

// resolveSettings merges positional arguments over configured defaults.
func resolveSettings(cfg *config.Config, args []string, overwrite bool) (organizer.Settings, error) {
	source := cfg.Organize.SourceDir
	target := cfg.Organize.TargetDir
	if len(args) > 0 {
		source = args[0]
	}
	if len(args) > 1 {
		target = args[1]
	}

	var err error
	if source, err = config.ExpandPath(strings.TrimSpace(source)); err != nil {
		return organizer.Settings{}, services.Wrap(services.ErrValidation, "organize", "resolve source", "", err)
	}
	if target, err = config.ExpandPath(strings.TrimSpace(target)); err != nil {
		return organizer.Settings{}, services.Wrap(services.ErrValidation, "organize", "resolve target", "", err)
	}
	if source == "" {
		return organizer.Settings{}, services.Wrap(services.ErrValidation, "organize", "resolve source",
			"source directory is required; pass it as an argument or set organize.source_dir", nil)
	}
	if target == "" {
		return organizer.Settings{}, services.Wrap(services.ErrValidation, "organize", "resolve target",
			"target directory is required; pass it as an argument or set organize.target_dir", nil)
	}

	settings := organizer.Settings{
		SourcePath:     source,
		TargetPath:     target,
		Overwrite:      overwrite,
		UnprocessedDir: cfg.Organize.UnprocessedDir,
	}
	if err := settings.Validate(); err != nil {
		return organizer.Settings{}, err
	}
	return settings, nil
}

type runReport struct {
	runID    string
	started  time.Time
	finished time.Time
	settings organizer.Settings
	result   organizer.Result
	outcomes []organizer.Outcome
}

func runOrganize(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, settings organizer.Settings, opts organizeOptions) error {
	runID := uuid.NewString()
	runCtx := services.WithRunID(cmd.Context(), runID)
	logger = logging.WithContext(runCtx, logging.NewComponentLogger(logger, "cli"))

	files, err := organizer.ListSources(settings.SourcePath)
	if err != nil {
		return err
	}

	lock, err := runlock.Acquire(cfg.LockDir(), settings.TargetPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("run lock release failed", logging.Error(err))
		}
	}()
	logger.Debug("run lock acquired", logging.String("lock_path", lock.Path()), logging.String("target", lock.Target()))

	if err := checkPreflight(logger, cfg, settings, files); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	renderer := newProgressRenderer(out, logger, len(files), !opts.noProgress && !opts.jsonOutput)
	org := organizer.New(nil, logger)

	report := runReport{runID: runID, started: time.Now(), settings: settings}
	result, outcomes, runErr := executeRun(runCtx, org, settings, files, renderer)
	report.finished = time.Now()
	report.result = result
	report.outcomes = outcomes
	logger.Info("organize run finished",
		logging.Int("total", result.Total),
		logging.Int("processed", result.Processed),
		logging.Int("skip", result.Skip),
		logging.Int("failed", result.Failed),
		logging.Duration("elapsed", report.finished.Sub(report.started)),
	)

	recordHistory(runCtx, logger, cfg, report, runErr)

	if opts.jsonOutput {
		if err := writeJSON(out, newRunSummary(report, runErr)); err != nil {
			return err
		}
	} else {
		renderRunSummary(out, report)
	}
	return runErr
}

// executeRun drives the organizer and the progress renderer concurrently; the
// organizer publishes outcomes on a channel the renderer drains in order.
func executeRun(ctx context.Context, org *organizer.Organizer, settings organizer.Settings, files []organizer.SourceFile, renderer progressRenderer) (organizer.Result, []organizer.Outcome, error) {
	events := make(chan organizer.Outcome, 16)
	outcomes := make([]organizer.Outcome, 0, len(files))
	var result organizer.Result

	var g errgroup.Group
	g.Go(func() error {
		defer close(events)
		var err error
		result, err = org.Organize(ctx, settings, files, func(o organizer.Outcome, _ organizer.Result) {
			events <- o
		})
		return err
	})
	g.Go(func() error {
		defer renderer.Finish()
		for o := range events {
			outcomes = append(outcomes, o)
			renderer.Observe(o)
		}
		return nil
	})
	err := g.Wait()
	return result, outcomes, err
}

func checkPreflight(logger *slog.Logger, cfg *config.Config, settings organizer.Settings, files []organizer.SourceFile) error {
	required := organizer.TotalSize(files)
	logger.Debug("running preflight checks", logging.Int("files", len(files)), logging.Int64("required_bytes", required))
	results := preflight.RunAll(preflight.Inputs{
		SourceDir:     settings.SourcePath,
		TargetDir:     settings.TargetPath,
		StateDir:      cfg.Paths.StateDir,
		RequiredBytes: required,
	})
	for _, r := range results {
		switch {
		case r.Passed:
			logger.Debug("preflight check passed", logging.String("check", r.Name), logging.String("detail", r.Detail))
		case r.Advisory:
			logger.Warn("preflight check failed", logging.String("check", r.Name), logging.String("detail", r.Detail))
		default:
			logger.Error("preflight check failed", logging.String("check", r.Name), logging.String("detail", r.Detail))
		}
	}
	blocking := preflight.Blocking(results)
	if len(blocking) == 0 {
		return nil
	}
	details := make([]string, 0, len(blocking))
	for _, r := range blocking {
		details = append(details, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	return services.Wrap(services.ErrConfiguration, "preflight", "check", strings.Join(details, "; "), nil)
}

func recordHistory(ctx context.Context, logger *slog.Logger, cfg *config.Config, report runReport, runErr error) {
	if !cfg.History.Enabled {
		return
	}
	store, err := history.Open(cfg)
	if err != nil {
		logger.Warn("run history unavailable", logging.Error(err))
		return
	}
	defer store.Close()

	run := history.Run{
		ID:         report.runID,
		StartedAt:  report.started,
		FinishedAt: report.finished,
		SourcePath: report.settings.SourcePath,
		TargetPath: report.settings.TargetPath,
		Overwrite:  report.settings.Overwrite,
		Total:      report.result.Total,
		Processed:  report.result.Processed,
		Skip:       report.result.Skip,
		Failed:     report.result.Failed,
	}
	if runErr != nil {
		run.ErrorMessage = summarizeRunError(report.result)
	}
	files := make([]history.File, 0, len(report.outcomes))
	for _, o := range report.outcomes {
		f := history.File{
			Name:        o.File.Name,
			Disposition: string(o.Disposition),
			Year:        o.Year,
			Destination: o.Destination,
			Reason:      o.Reason,
		}
		if o.Err != nil {
			f.ErrorMessage = o.Err.Error()
		}
		files = append(files, f)
	}
	if err := store.RecordRun(ctx, run, files); err != nil {
		logger.Warn("failed to record run history", logging.Error(err))
		return
	}
	if removed, err := store.Prune(ctx, cfg.History.KeepRuns); err != nil {
		logger.Warn("failed to prune run history", logging.Error(err))
	} else if removed > 0 {
		logger.Debug("pruned run history", logging.Int("removed", removed))
	}
}

func summarizeRunError(result organizer.Result) string {
	return fmt.Sprintf("%d of %d files failed", result.Failed, result.Total)
}

type fileFailure struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

type runSummary struct {
	RunID     string           `json:"run_id"`
	Source    string           `json:"source"`
	Target    string           `json:"target"`
	Overwrite bool             `json:"overwrite"`
	Result    organizer.Result `json:"result"`
	Years     map[string]int   `json:"years,omitempty"`
	Failures  []fileFailure    `json:"failures,omitempty"`
	Duration  string           `json:"duration"`
	Error     string           `json:"error,omitempty"`
}

func newRunSummary(report runReport, runErr error) runSummary {
	summary := runSummary{
		RunID:     report.runID,
		Source:    report.settings.SourcePath,
		Target:    report.settings.TargetPath,
		Overwrite: report.settings.Overwrite,
		Result:    report.result,
		Duration:  report.finished.Sub(report.started).Round(time.Millisecond).String(),
	}
	if years := yearCounts(report.outcomes); len(years) > 0 {
		summary.Years = make(map[string]int, len(years))
		for year, count := range years {
			summary.Years[strconv.Itoa(year)] = count
		}
	}
	for _, o := range report.outcomes {
		if o.Disposition == organizer.DispositionFailed && o.Err != nil {
			summary.Failures = append(summary.Failures, fileFailure{Name: o.File.Name, Error: o.Err.Error()})
		}
	}
	if runErr != nil {
		summary.Error = runErr.Error()
	}
	return summary
}

func yearCounts(outcomes []organizer.Outcome) map[int]int {
	years := make(map[int]int)
	for _, o := range outcomes {
		if o.Disposition == organizer.DispositionOrganized {
			years[o.Year]++
		}
	}
	return years
}

func renderRunSummary(out io.Writer, report runReport) {
	r := report.result
	fmt.Fprintf(out, "Run %s: %s -> %s\n", report.runID, report.settings.SourcePath, report.settings.TargetPath)
	rows := [][]string{
		{"Total", strconv.Itoa(r.Total), ""},
		{"Processed", strconv.Itoa(r.Processed), shareBar(r.Processed, r.Total)},
		{"Skip", strconv.Itoa(r.Skip), shareBar(r.Skip, r.Total)},
		{"Failed", strconv.Itoa(r.Failed), shareBar(r.Failed, r.Total)},
	}
	fmt.Fprintln(out, renderTable([]string{"Files", "Count", "Share"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft}))

	if years := yearCounts(report.outcomes); len(years) > 0 {
		keys := make([]int, 0, len(years))
		for year := range years {
			keys = append(keys, year)
		}
		sort.Ints(keys)
		yearRows := make([][]string, 0, len(keys))
		for _, year := range keys {
			yearRows = append(yearRows, []string{strconv.Itoa(year), strconv.Itoa(years[year])})
		}
		fmt.Fprintln(out, renderTable([]string{"Year", "Photos"}, yearRows, []columnAlignment{alignLeft, alignRight}))
	}

	var failures [][]string
	for _, o := range report.outcomes {
		if o.Disposition == organizer.DispositionFailed {
			failures = append(failures, []string{o.File.Name, o.Reason})
		}
	}
	if len(failures) > 0 {
		fmt.Fprintln(out, renderTable([]string{"Failed file", "Reason"}, failures, nil))
	}
}

