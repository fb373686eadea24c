package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sitemaster/dpr/internal/cli/formatter"
	"github.com/sitemaster/dpr/internal/domain"
	"github.com/sitemaster/dpr/internal/service"
)

func newListCmd(app *App) *cobra.Command {
	var (
		filter service.ListFilter
		status string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List work items with their status and progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := parseStatusFilter(status)
			if err != nil {
				return err
			}
			filter.Status = s

			views, err := app.Records.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatRecordList(views))
			return nil
		},
	}

	addFilterFlags(cmd.Flags(), &filter, &status)
	return cmd
}

func addFilterFlags(fs *pflag.FlagSet, filter *service.ListFilter, status *string) {
	fs.IntVar(&filter.Page, "page", 1, "Page number")
	fs.IntVar(&filter.Limit, "limit", 0, "Items per page (default from DPR_PAGE_SIZE)")
	fs.StringVarP(&filter.Search, "search", "s", "", "Match activity name or project code")
	fs.StringVar(&filter.ProjectID, "project", "", "Only items of this project id")
	fs.StringVar(status, "status", "all", "all, pending, in progress, idle, work stopped, completed")
}

// parseStatusFilter maps a filter chip to a canonical status. "all" and
// blank mean no filter.
func parseStatusFilter(raw string) (domain.Status, error) {
	if strings.TrimSpace(raw) == "" || strings.EqualFold(strings.TrimSpace(raw), "all") {
		return "", nil
	}
	s, ok := domain.LookupStatus(raw)
	if !ok {
		return "", fmt.Errorf("unknown status filter %q", raw)
	}
	return s, nil
}
