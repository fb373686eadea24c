package cli

import (
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/sitemaster/dpr/internal/service"
)

// App holds what the commands need: the record service and the terminal.
type App struct {
	Records service.RecordService
	// Author is shown on comments posted from this client.
	Author string

	Now           func() time.Time
	IsInteractive func() bool
	// RunProgram runs a full-screen model. Tests replace it.
	RunProgram func(m *editModel, out io.Writer) error
}

func (a *App) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "dpr" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "dpr",
		Short:         "Daily progress reports for site work items",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newListCmd(app),
		newShowCmd(app),
		newSummaryCmd(app),
		newUpdateCmd(app),
		newEditCmd(app),
	)

	if app.RunProgram == nil {
		app.RunProgram = runProgram
	}
	return root
}

// Execute runs the root command and prints any error to stderr.
func Execute(app *App) int {
	root := NewRootCmd(app)
	if err := root.Execute(); err != nil {
		root.PrintErrln(errorLine(err))
		return 1
	}
	return 0
}
