package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var portCmd = &cobra.Command{
	Use:   "port <files...>",
	Short: "Migrate legacy markup to current syntax (not yet implemented)",
	Long: `port is registered as a documented subcommand so its eventual
interactive migration behavior has a stable CLI surface, but the
migration helper itself is not yet implemented.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		return fmt.Errorf("port is not yet implemented")
	},
}

func init() {
	rootCmd.AddCommand(portCmd)
}
