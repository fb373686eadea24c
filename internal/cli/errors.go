package cli

import (
	"errors"
	"fmt"

	"github.com/sitemaster/dpr/internal/api"
	"github.com/sitemaster/dpr/internal/cli/formatter"
	"github.com/sitemaster/dpr/internal/domain"
	"github.com/sitemaster/dpr/internal/service"
)

// errorLine renders err for the terminal, with a hint for the failures a
// field user can act on.
func errorLine(err error) string {
	msg := formatter.StyleRed.Render("Error: " + err.Error())
	if hint := errorHint(err); hint != "" {
		msg += "\n" + formatter.Dim(hint)
	}
	return msg
}

func errorHint(err error) string {
	switch {
	case errors.Is(err, api.ErrUnavailable):
		return "The DPR backend could not be reached. Check DPR_API_URL or start dprd."
	case errors.Is(err, api.ErrTimeout):
		return "The backend did not answer in time. Raise DPR_TIMEOUT_MS or try again."
	case errors.Is(err, api.ErrNotFound):
		return "No work item has that id. Run 'dpr list' to find it."
	case errors.Is(err, service.ErrNoChanges):
		return "Pass --status, --quantity or --note."
	case errors.Is(err, domain.ErrStatusNotSubmittable):
		return fmt.Sprintf("Choose one of: %s.", submittableList())
	default:
		return ""
	}
}

func submittableList() string {
	out := ""
	for i, s := range domain.SubmittableStatuses() {
		if i > 0 {
			out += ", "
		}
		out += string(s)
	}
	return out
}
