package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/pulsarlab/pulsetime/components/spindown"
	"github.com/pulsarlab/pulsetime/timing"
)

var modelCmd = &cobra.Command{
	Use:   "model [parfile]",
	Short: "Parse a model file and print the composed model.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		m := buildModel(args[0])

		fmt.Printf("# Pulsar: %s\n", m.PSR().Value())
		fmt.Print("# Components:")
		for _, c := range m.Components() {
			fmt.Printf(" %s", c.Name())
		}
		fmt.Println()

		fmt.Print(m.AsParFile())
	},
}

func init() {
	rootCmd.AddCommand(modelCmd)
}

// buildModel composes a model from the candidate component list and the
// model file at path.
func buildModel(path string) *timing.Model {
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("Error opening model file: %v", err)
	}
	defer f.Close()

	m, err := timing.MakeModelBuilder().
		WithComponents(spindown.New()).
		Build(f)
	if err != nil {
		log.Fatalf("Error building model: %v", err)
	}

	return m
}
