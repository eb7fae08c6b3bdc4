package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pulsarlab/pulsetime/recording"
)

var runsCmd = &cobra.Command{
	Use:   "runs [database]",
	Short: "List or replay recorded runs from a SQLite database.",
	Args:  cobra.ExactArgs(1),
	Run:   runRuns,
}

func init() {
	runsCmd.Flags().String("run", "", "replay this run instead of listing")
	runsCmd.Flags().Int("limit", 0, "cap the number of replayed rows, 0 for all")

	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) {
	runID, _ := cmd.Flags().GetString("run")
	limit, _ := cmd.Flags().GetInt("limit")

	reader := openRunDatabase(args[0])
	defer reader.Close()

	var err error
	if runID == "" {
		err = listRuns(os.Stdout, reader)
	} else {
		err = replayRun(os.Stdout, reader, runID, limit)
	}
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// openRunDatabase opens a recorded database, given the same path the
// recorder was given (without the .sqlite3 extension), with the run tables
// mapped for querying.
func openRunDatabase(path string) recording.Reader {
	r := recording.NewReader(path + ".sqlite3")
	r.MapTable(recording.PhaseTable, recording.PhaseRow{})
	r.MapTable(recording.ParamTable, recording.ParamRow{})
	return r
}

// listRuns prints one line per recorded run: its identifier and the number
// of observations it holds.
func listRuns(w io.Writer, r recording.Reader) error {
	rows, _, err := r.Query(context.Background(),
		recording.PhaseTable, recording.QueryParams{})
	if err != nil {
		return err
	}

	counts := make(map[string]int)
	for _, row := range rows {
		counts[row.(*recording.PhaseRow).Run]++
	}

	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		fmt.Fprintf(w, "%s %d\n", id, counts[id])
	}

	return nil
}

// replayRun prints one run's parameter table as comments followed by its
// phases in TOA order, in the same format the design command prints them.
func replayRun(w io.Writer, r recording.Reader, runID string, limit int) error {
	params, _, err := r.Query(context.Background(),
		recording.ParamTable, recording.QueryParams{
			Where:   "Run = ?",
			Args:    []any{runID},
			OrderBy: "Name",
		})
	if err != nil {
		return err
	}
	for _, p := range params {
		row := p.(*recording.ParamRow)
		fmt.Fprintf(w, "# %s %.17g %s\n", row.Name, row.Value, row.Unit)
	}

	phases, total, err := r.Query(context.Background(),
		recording.PhaseTable, recording.QueryParams{
			Where:   "Run = ?",
			Args:    []any{runID},
			OrderBy: "TOA",
			Limit:   limit,
		})
	if err != nil {
		return err
	}
	if total == 0 {
		return fmt.Errorf("no run %s in the database", runID)
	}

	for _, p := range phases {
		row := p.(*recording.PhaseRow)
		fmt.Fprintf(w, "%.10f %d %.10f\n", row.TOA, row.TurnInt, row.TurnFrac)
	}

	return nil
}
