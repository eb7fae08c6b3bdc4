package main

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pulsarlab/pulsetime/monitoring"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [parfile...]",
	Short: "Serve the HTTP inspector for one or more models.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		port, _ := cmd.Flags().GetInt("port")
		useBrowser, _ := cmd.Flags().GetBool("browser")

		monitor := monitoring.NewMonitor()
		if port != 0 {
			monitor = monitor.WithPortNumber(port)
		}
		if useBrowser {
			monitor = monitor.WithBrowser()
		}

		for _, path := range args {
			m := buildModel(path)

			name := m.PSR().Value()
			if name == "" {
				name = strings.TrimSuffix(
					filepath.Base(path), filepath.Ext(path))
			}

			monitor.RegisterModel(name, m)
		}

		monitor.StartServer()

		select {}
	},
}

func init() {
	inspectCmd.Flags().Int("port", 0, "port to listen on (0 picks one)")
	inspectCmd.Flags().Bool("browser", false, "open the inspector in a browser")

	rootCmd.AddCommand(inspectCmd)
}
