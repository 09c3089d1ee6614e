// Package configcmd prints the effective configuration.
package configcmd

import (
	"rbc2mm/cmd/root"

	"github.com/spf13/cobra"
)

// Cmd represents the config command
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML (the API key is never shown)",
	Run: func(cmd *cobra.Command, args []string) {
		out, err := root.GetConfig().ToYAML()
		if err != nil {
			root.GetLogrusAdapter().Fatalf("Error rendering configuration: %v", err)
		}
		_, _ = cmd.OutOrStdout().Write(out)
	},
}
