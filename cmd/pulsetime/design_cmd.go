package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/pulsarlab/pulsetime/recording"
	"github.com/pulsarlab/pulsetime/timing"
	"github.com/pulsarlab/pulsetime/toa"
)

var designCmd = &cobra.Command{
	Use:   "design [parfile]",
	Short: "Evaluate phases and the design matrix over a uniform TOA grid.",
	Args:  cobra.ExactArgs(1),
	Run:   runDesign,
}

func init() {
	designCmd.Flags().Float64("start", 55000, "first observation, MJD")
	designCmd.Flags().Float64("end", 56000, "last observation, MJD")
	designCmd.Flags().Int("ntoa", 100, "number of observations")
	designCmd.Flags().String("obs", "GBT", "observatory code")
	designCmd.Flags().Float64("freq", 1400, "observing frequency, MHz")
	designCmd.Flags().Bool("frozen", false, "include frozen parameters")
	designCmd.Flags().String("record", "",
		"record the run to this SQLite database "+
			"(default $PULSETIME_DB, empty disables)")

	rootCmd.AddCommand(designCmd)
}

func runDesign(cmd *cobra.Command, args []string) {
	start, _ := cmd.Flags().GetFloat64("start")
	end, _ := cmd.Flags().GetFloat64("end")
	ntoa, _ := cmd.Flags().GetInt("ntoa")
	obs, _ := cmd.Flags().GetString("obs")
	freq, _ := cmd.Flags().GetFloat64("freq")
	frozen, _ := cmd.Flags().GetBool("frozen")

	if ntoa < 2 {
		log.Fatalf("Error: at least 2 observations are required")
	}

	m := buildModel(args[0])
	toas := uniformGrid(start, end, ntoa, obs, freq)

	release := m.Use()
	defer release()

	phase := m.Phase(toas)

	d, err := m.DesignMatrix(toas, timing.DesignMatrixOptions{
		IncludeFrozen: frozen,
		IncludeOffset: true,
	})
	if err != nil {
		log.Fatalf("Error building design matrix: %v", err)
	}

	rows, cols := d.Dims()
	fmt.Printf("# Pulsar: %s\n", m.PSR().Value())
	fmt.Printf("# Design matrix: %d x %d\n", rows, cols)
	fmt.Print("# Columns:")
	for i, name := range d.Names {
		fmt.Printf(" %s[%s]", name, d.Units[i])
	}
	fmt.Println()

	reported := phase.Reported()
	for i, t := range toas {
		fmt.Printf("%.10f %d %.10f\n",
			t.Time.Float(), reported.Int[i], reported.Frac[i])
	}

	recordRun(cmd, m, toas, phase, d)
}

func recordRun(
	cmd *cobra.Command,
	m *timing.Model,
	toas []toa.TOA,
	phase timing.Phase,
	d *timing.DesignMatrix,
) {
	dbPath, _ := cmd.Flags().GetString("record")
	if dbPath == "" {
		dbPath = os.Getenv("PULSETIME_DB")
	}
	if dbPath == "" {
		return
	}

	rec := recording.NewRecorder(dbPath)
	defer rec.Close()

	run := recording.NewRun(rec)
	run.RecordParams(m)
	run.RecordPhases(toas, phase)
	run.RecordDesignMatrix(d)

	fmt.Printf("# Recorded run %s to %s.sqlite3\n", run.ID(), dbPath)
}

// uniformGrid builds n evenly spaced observations between two MJDs.
func uniformGrid(start, end float64, n int, obs string, freqMHz float64) []toa.TOA {
	step := (end - start) / float64(n-1)

	toas := make([]toa.TOA, n)
	for i := range toas {
		toas[i] = toa.TOA{
			Time: toa.MJDFromFloat(start + float64(i)*step),
			Obs:  obs,
			Freq: toa.Freq(freqMHz) * toa.MHz,
		}
	}
	return toas
}
