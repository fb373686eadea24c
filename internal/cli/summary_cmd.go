package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sitemaster/dpr/internal/cli/formatter"
)

func newSummaryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Count work items per status",
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := app.Records.Summary(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSummary(summary))
			return nil
		},
	}
}
