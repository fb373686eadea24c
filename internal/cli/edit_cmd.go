package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sitemaster/dpr/internal/cli/formatter"
	"github.com/sitemaster/dpr/internal/service"
)

var errNotInteractive = errors.New("dpr edit needs an interactive terminal; use 'dpr update' instead")

func newEditCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id>",
		Short: "Open the interactive status editor for a work item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return errNotInteractive
			}
			ctx := cmd.Context()
			editor, err := app.Records.OpenEditor(ctx, args[0], service.WithAuthor(app.Author))
			if err != nil {
				return err
			}
			m, err := newEditModel(ctx, editor, app.now)
			if err != nil {
				return err
			}
			if err := app.RunProgram(m, cmd.OutOrStdout()); err != nil {
				return err
			}
			if m.failed != nil {
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatNotice(m.failed))
			}
			return nil
		},
	}
}
