package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sitemaster/dpr/internal/cli/formatter"
)

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a work item with its quantities and activity feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := app.Records.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatRecordDetail(view, app.now()))
			return nil
		},
	}
}
