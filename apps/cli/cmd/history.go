package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/domspec/packages/core/runner"
	"github.com/abdul-hamid-achik/domspec/packages/history"
)

// historyRecorder is a formatter that stores results when flushed.
type historyRecorder struct {
	ctx      context.Context
	location string
	runID    string
	results  []*runner.RunResult
}

func newHistoryRecorder(ctx context.Context, location string) *historyRecorder {
	return &historyRecorder{ctx: ctx, location: location, runID: uuid.NewString()}
}

func (h *historyRecorder) FormatResult(result *runner.RunResult) {
	h.results = append(h.results, result)
}

func (h *historyRecorder) FormatError(error) {}

func (h *historyRecorder) FormatHeader(string) {}

func (h *historyRecorder) Flush(time.Duration) error {
	if len(h.results) == 0 {
		return nil
	}
	store, err := history.Open(h.ctx, h.location)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Record(h.ctx, h.runID, time.Now(), h.results)
}

var (
	historyDBFlag    string
	historyCheckFlag string
	historyLimitFlag int
	historyStatsFlag bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded check results",
	Long: `Show results recorded with 'domspec run --history'. By default the latest
results are listed; --stats aggregates them per check and marks flaky ones.

Examples:
  domspec history --db .domspec/history.db
  domspec history --check "submit starts disabled" --limit 5
  domspec history --stats`,
	RunE: historyCommand,
}

func init() {
	historyCmd.Flags().StringVar(&historyDBFlag, "db", getEnvString("DOMSPEC_HISTORY", ".domspec/history.db"), "History database (env: DOMSPEC_HISTORY)")
	historyCmd.Flags().StringVar(&historyCheckFlag, "check", "", "Only show results of this check")
	historyCmd.Flags().IntVar(&historyLimitFlag, "limit", 20, "Number of results to show")
	historyCmd.Flags().BoolVar(&historyStatsFlag, "stats", false, "Aggregate results per check")
}

func historyCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := history.Open(ctx, historyDBFlag)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}
	defer store.Close()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	if historyStatsFlag {
		stats, err := store.Stats(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "CHECK\tFILE\tRUNS\tFAILED\tMEAN\tFLAKY")
		for _, st := range stats {
			flaky := ""
			if st.Flaky() {
				flaky = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%.0f%%\t%s\t%s\n",
				st.Check, st.File, st.Runs, st.FailureRate()*100, st.Mean.Round(time.Microsecond), flaky)
		}
		return nil
	}

	entries, err := store.Recent(ctx, historyCheckFlag, historyLimitFlag)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "TIME\tCHECK\tFILE\tRESULT\tDURATION")
	for _, e := range entries {
		status := "pass"
		switch {
		case e.Skipped:
			status = "skip"
		case !e.Passed:
			status = "fail"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.At.Local().Format(time.DateTime), e.Check, e.File, status, e.Duration.Round(time.Microsecond))
	}
	return nil
}
