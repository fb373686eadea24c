package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/sitemaster/dpr/internal/cli/formatter"
	"github.com/sitemaster/dpr/internal/domain"
	"github.com/sitemaster/dpr/internal/reconcile"
	"github.com/sitemaster/dpr/internal/service"
)

// updateInput is what the update command collects from flags or prompts.
type updateInput struct {
	Status   string
	Quantity string
	Note     string
}

func newUpdateCmd(app *App) *cobra.Command {
	var (
		in     updateInput
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Submit a status change, today's quantity or a note",
		Long: `Submit a status change for a work item.

Today's quantity is capped at what is still pending and is only sent with
status "in progress". A failed submission is reported as a warning and the
command still succeeds unless --strict is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			editor, err := app.Records.OpenEditor(ctx, args[0], service.WithAuthor(app.Author))
			if err != nil {
				return err
			}
			defer editor.Close()
			if err := editor.Open(); err != nil {
				return err
			}

			noFlags := !cmd.Flags().Changed("status") && !cmd.Flags().Changed("quantity") && !cmd.Flags().Changed("note")
			if noFlags && app.interactive() {
				if err := promptUpdate(editor, &in).Run(); err != nil {
					return err
				}
			}

			return runUpdate(ctx, cmd.OutOrStdout(), app, editor, in, strict)
		},
	}

	cmd.Flags().StringVar(&in.Status, "status", "", "New status: in progress, idle, work stopped")
	cmd.Flags().StringVarP(&in.Quantity, "quantity", "q", "", "Quantity completed today")
	cmd.Flags().StringVarP(&in.Note, "note", "n", "", "Remarks for this update")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when the backend rejects the update")

	return cmd
}

func runUpdate(ctx context.Context, out io.Writer, app *App, editor *service.StatusEditor, in updateInput, strict bool) error {
	if in.Status != "" {
		s, err := domain.ParseSubmittableStatus(in.Status)
		if err != nil {
			return err
		}
		if err := editor.SetStatus(s); err != nil {
			return err
		}
	}
	if in.Quantity != "" {
		shown, err := editor.SetQuantityInput(in.Quantity)
		if err != nil {
			return err
		}
		switch typed := reconcile.ParseQuantity(in.Quantity); {
		case shown == "":
			fmt.Fprintf(out, "%s\n", formatter.Dim(fmt.Sprintf("Ignored quantity %q: not a non-negative number.", in.Quantity)))
		case reconcile.ParseQuantity(shown) < typed:
			fmt.Fprintf(out, "%s\n", formatter.Dim(fmt.Sprintf("Quantity capped to %s (pending).", shown)))
		}
	}
	if err := editor.SetNote(in.Note); err != nil {
		return err
	}

	var stop func()
	if app.interactive() {
		stop = formatter.StartSpinner(out, "Submitting…")
	}
	err := editor.Commit(ctx)
	if stop != nil {
		stop()
	}

	var submitErr *service.SubmitError
	switch {
	case errors.As(err, &submitErr):
		fmt.Fprint(out, formatter.FormatNotice(submitErr))
		if strict {
			return submitErr
		}
		return nil
	case err != nil:
		return err
	}

	feed := editor.Feed()
	fmt.Fprintf(out, "%s %s\n", formatter.StyleGreen.Render("✔ Saved."), formatter.StatusPill(editor.Current()))
	fmt.Fprint(out, formatter.FormatFeed(feed[len(feed)-1:], app.now()))
	return nil
}

// promptUpdate asks for the status, today's quantity and a note. The
// quantity field shows the pending cap.
func promptUpdate(editor *service.StatusEditor, in *updateInput) *huh.Form {
	current := editor.Current()
	options := make([]huh.Option[string], 0, len(domain.SubmittableStatuses()))
	for _, s := range domain.SubmittableStatuses() {
		options = append(options, huh.NewOption(s.Label(), string(s)))
	}
	in.Status = string(domain.StatusInProgress)
	if current.Submittable() {
		in.Status = string(current)
	}

	quantityHelp := "Only sent with status IN PROGRESS."
	if pending := editor.Progress().Pending; pending != nil {
		quantityHelp = fmt.Sprintf("Up to %s pending. %s", reconcile.FormatQuantity(max(*pending, 0)), quantityHelp)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Status").
				Description("Currently "+current.Label()).
				Options(options...).
				Value(&in.Status),
			huh.NewInput().
				Title("Today's quantity").
				Description(quantityHelp).
				Placeholder("0").
				Value(&in.Quantity),
			huh.NewText().
				Title("Remarks").
				Value(&in.Note),
		),
	).WithTheme(dprHuhTheme()).WithShowHelp(false)
}
