// Pulsetime is the command-line front end of the timing-model engine: it
// parses pulsar model files, evaluates phases and design matrices over
// observation grids, and serves the model inspector.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pulsetime",
	Short: "Evaluate pulsar timing models.",
	Long: `Pulsetime composes a timing model from a pulsar model file and ` +
		`evaluates it: predicted phases, derivative design matrices, and a ` +
		`live HTTP inspector for long runs.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Optional; flags still override anything a .env file sets.
		_ = godotenv.Load()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
