// Package cli wires the cobra command tree.
package cli

import (
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "carta",
		Short: "carta - wine list generator for Airtable-backed catalogs",
		Long: `carta fetches a venue's wine catalog from Airtable, normalizes and
sorts it, assembles the printable wine-list document and can publish the
rendered artifact back to the base as an attachment.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newPublishCmd())

	return rootCmd
}
