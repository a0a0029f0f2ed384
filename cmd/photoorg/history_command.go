package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"photoorg/internal/history"
	"photoorg/internal/organizer"
	"photoorg/internal/services"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded organize runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, ok, err := openHistory(cmd, ctx)
			if err != nil || !ok {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOutput {
				if runs == nil {
					runs = []history.Run{}
				}
				return writeJSON(out, runs)
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					shortID(run.ID),
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
					run.Duration().Round(time.Millisecond).String(),
					strconv.Itoa(run.Total),
					strconv.Itoa(run.Processed),
					strconv.Itoa(run.Skip),
					strconv.Itoa(run.Failed),
					run.TargetPath,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Started", "Duration", "Total", "Processed", "Skip", "Failed", "Target"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print runs as JSON")

	cmd.AddCommand(newHistoryShowCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show per-file outcomes of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, ok, err := openHistory(cmd, ctx)
			if err != nil || !ok {
				return err
			}
			defer store.Close()

			run, err := store.GetRun(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, history.ErrNotFound) {
					return services.Wrap(services.ErrValidation, "history", "show", "", err)
				}
				return err
			}
			files, err := store.Files(cmd.Context(), run.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				if files == nil {
					files = []history.File{}
				}
				return writeJSON(out, struct {
					Run   history.Run    `json:"run"`
					Files []history.File `json:"files"`
				}{Run: run, Files: files})
			}

			fmt.Fprintf(out, "Run:        %s\n", run.ID)
			fmt.Fprintf(out, "Started:    %s\n", run.StartedAt.Local().Format(time.RFC3339))
			fmt.Fprintf(out, "Source:     %s\n", run.SourcePath)
			fmt.Fprintf(out, "Target:     %s\n", run.TargetPath)
			fmt.Fprintf(out, "Overwrite:  %s\n", yesNo(run.Overwrite))
			fmt.Fprintf(out, "Result:     total=%d processed=%d skip=%d failed=%d\n", run.Total, run.Processed, run.Skip, run.Failed)
			if run.ErrorMessage != "" {
				fmt.Fprintf(out, "Error:      %s\n", run.ErrorMessage)
			}
			if len(files) == 0 {
				return nil
			}

			rows := make([][]string, 0, len(files))
			for _, f := range files {
				year := ""
				if f.Year != 0 {
					year = strconv.Itoa(f.Year)
				}
				detail := f.Destination
				if detail == "" {
					detail = f.Reason
				}
				if f.ErrorMessage != "" {
					detail = f.ErrorMessage
				}
				rows = append(rows, []string{strconv.Itoa(f.Seq), f.Name, dispositionLabel(f.Disposition), year, detail})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "File", "Disposition", "Year", "Detail"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
			))
			fmt.Fprintln(out, renderTable(
				[]string{"Disposition", "Files", "Share"},
				dispositionRows(files),
				[]columnAlignment{alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run as JSON")
	return cmd
}

// dispositionRows counts files per disposition, listing every disposition
// even when none of the run's files ended there.
func dispositionRows(files []history.File) [][]string {
	counts := make(map[string]int, len(files))
	for _, f := range files {
		counts[f.Disposition]++
	}
	dispositions := organizer.Dispositions()
	rows := make([][]string, 0, len(dispositions))
	for _, d := range dispositions {
		n := counts[string(d)]
		rows = append(rows, []string{dispositionLabel(string(d)), strconv.Itoa(n), shareBar(n, len(files))})
	}
	return rows
}

// openHistory opens the history store. ok is false when history is disabled.
func openHistory(cmd *cobra.Command, ctx *commandContext) (*history.Store, bool, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, false, err
	}
	if !cfg.History.Enabled {
		fmt.Fprintln(cmd.OutOrStdout(), "Run history is disabled (history.enabled = false)")
		return nil, false, nil
	}
	store, err := history.Open(cfg)
	if err != nil {
		return nil, false, services.Wrap(services.ErrConfiguration, "history", "open", cfg.HistoryPath(), err)
	}
	return store, true, nil
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
