package cmd

import "github.com/spf13/cobra"

// serveCmd runs the persistent service: control loop, webservice and
// telemetry. Identical to invoking the root command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the controller service",
	RunE:  run,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
