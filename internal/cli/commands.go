package cli

import (
	"github.com/spf13/cobra"
)

type GenerateOptions struct {
	VenueID string
	View    string
	Output  string
}

func newGenerateCmd() *cobra.Command {
	opts := &GenerateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Build the wine-list document for a venue",
		RunE: func(c *cobra.Command, args []string) error {
			return runGenerate(c.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.VenueID, "venue", "v", "", "Venue record id")
	cmd.Flags().StringVar(&opts.View, "view", "", "Airtable view to fetch wines from")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Output path for the serialized document")
	cmd.MarkFlagRequired("venue")

	return cmd
}

type PublishOptions struct {
	Table    string
	VenueID  string
	Date     string
	Field    string
	Source   string
	Filename string
}

func newPublishCmd() *cobra.Command {
	opts := &PublishOptions{}

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Attach a rendered artifact to a new record in the base",
		RunE: func(c *cobra.Command, args []string) error {
			return runPublish(c.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Table, "table", "t", "Pubblicazioni", "Target table")
	cmd.Flags().StringVarP(&opts.VenueID, "venue", "v", "", "Venue record id to link")
	cmd.Flags().StringVar(&opts.Date, "date", "", "Publication date (YYYY-MM-DD, defaults to today)")
	cmd.Flags().StringVar(&opts.Field, "field", "Documento", "Attachment field name or id")
	cmd.Flags().StringVarP(&opts.Source, "file", "f", "", "Local path or http(s) URL of the artifact")
	cmd.Flags().StringVar(&opts.Filename, "filename", "", "Override the attachment filename")
	cmd.MarkFlagRequired("venue")
	cmd.MarkFlagRequired("file")

	return cmd
}
