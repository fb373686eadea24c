package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sitemaster/dpr/internal/cli/formatter"
	"github.com/sitemaster/dpr/internal/domain"
	"github.com/sitemaster/dpr/internal/reconcile"
	"github.com/sitemaster/dpr/internal/service"
)

type editField int

const (
	fieldStatus editField = iota
	fieldQuantity
	fieldNote
	fieldCount
)

const feedTail = 6

// submitDoneMsg carries the result of a submission sent off the UI goroutine.
type submitDoneMsg struct {
	err error
}

type editKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Left   key.Binding
	Right  key.Binding
	Submit key.Binding
	Quit   key.Binding
}

func defaultEditKeys() editKeyMap {
	return editKeyMap{
		Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous")),
		Left:   key.NewBinding(key.WithKeys("left"), key.WithHelp("←/→", "status")),
		Right:  key.NewBinding(key.WithKeys("right")),
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		Quit:   key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "close")),
	}
}

// editModel is the full-screen status editor. It owns no draft state of
// its own; every change goes through the StatusEditor.
type editModel struct {
	ctx    context.Context
	editor *service.StatusEditor
	now    func() time.Time
	keys   editKeyMap

	focus     editField
	statuses  []domain.Status
	statusIdx int
	quantity  textinput.Model
	note      textinput.Model

	flash string
	// failed is the last submission failure. Reopening the editor clears
	// its notice, so the model keeps its own copy.
	failed   error
	quitting bool
}

func newEditModel(ctx context.Context, editor *service.StatusEditor, now func() time.Time) (*editModel, error) {
	if err := editor.Open(); err != nil {
		return nil, err
	}

	q := textinput.New()
	q.Prompt = ""
	q.Placeholder = "0"
	q.CharLimit = 12

	n := textinput.New()
	n.Prompt = ""
	n.Placeholder = "Remarks"
	n.CharLimit = 500

	m := &editModel{
		ctx:      ctx,
		editor:   editor,
		now:      now,
		keys:     defaultEditKeys(),
		statuses: domain.SubmittableStatuses(),
		quantity: q,
		note:     n,
	}
	m.syncStatus()
	return m, nil
}

// syncStatus points the status selector at the draft status. When the
// current status cannot be submitted the selector rests on the first
// option, which submit adopts.
func (m *editModel) syncStatus() {
	m.statusIdx = 0
	next := m.editor.Draft().NextStatus
	for i, s := range m.statuses {
		if s == next {
			m.statusIdx = i
		}
	}
}

func (m *editModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *editModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case submitDoneMsg:
		return m, m.finishSubmit(msg.err)
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *editModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		m.editor.Close()
		m.quitting = true
		return tea.Quit
	}
	if m.editor.State() == service.EditorSubmitting {
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	case key.Matches(msg, m.keys.Next):
		m.setFocus((m.focus + 1) % fieldCount)
		return nil
	case key.Matches(msg, m.keys.Prev):
		m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		return nil
	case m.focus == fieldStatus && key.Matches(msg, m.keys.Left, m.keys.Right):
		step := 1
		if key.Matches(msg, m.keys.Left) {
			step = len(m.statuses) - 1
		}
		m.statusIdx = (m.statusIdx + step) % len(m.statuses)
		if err := m.editor.SetStatus(m.statuses[m.statusIdx]); err != nil {
			m.flash = err.Error()
		}
		return nil
	}

	var cmd tea.Cmd
	switch m.focus {
	case fieldQuantity:
		m.quantity, cmd = m.quantity.Update(msg)
		shown, err := m.editor.SetQuantityInput(m.quantity.Value())
		if err == nil && shown != m.quantity.Value() {
			m.quantity.SetValue(shown)
			m.quantity.CursorEnd()
		}
	case fieldNote:
		m.note, cmd = m.note.Update(msg)
		_ = m.editor.SetNote(m.note.Value())
	}
	return cmd
}

func (m *editModel) setFocus(f editField) {
	m.focus = f
	m.quantity.Blur()
	m.note.Blur()
	switch f {
	case fieldQuantity:
		m.quantity.Focus()
	case fieldNote:
		m.note.Focus()
	}
}

// submit prepares the draft on the UI goroutine and sends it from a Cmd.
func (m *editModel) submit() tea.Cmd {
	if m.editor.State() == service.EditorEditing && !m.editor.Draft().NextStatus.Submittable() {
		if err := m.editor.SetStatus(m.statuses[m.statusIdx]); err != nil {
			m.flash = err.Error()
			return nil
		}
	}
	sub, err := m.editor.Prepare()
	if err != nil {
		m.flash = err.Error()
		return nil
	}
	m.flash = ""
	m.failed = nil
	editor, ctx := m.editor, m.ctx
	return func() tea.Msg {
		return submitDoneMsg{err: editor.Send(ctx, sub)}
	}
}

// finishSubmit reopens the editor for the next update.
func (m *editModel) finishSubmit(err error) tea.Cmd {
	if m.quitting {
		return nil
	}
	var submitErr *service.SubmitError
	switch {
	case errors.As(err, &submitErr):
		m.failed = submitErr
	case err != nil:
		m.flash = err.Error()
	default:
		m.flash = "Saved."
	}

	if openErr := m.editor.Open(); openErr != nil {
		m.flash = openErr.Error()
		return nil
	}
	m.quantity.SetValue("")
	m.note.SetValue("")
	m.syncStatus()
	return nil
}

func (m *editModel) View() string {
	if m.quitting {
		return ""
	}
	rec := m.editor.Record()
	var b strings.Builder

	b.WriteString(formatter.Bold(rec.DisplayTitle()) + "  " + formatter.StatusPill(m.editor.Current()) + "\n")
	b.WriteString(formatter.Dim(domain.CoalesceStr(strings.TrimSpace(rec.ProjectCode+" "+rec.ProjectName), "--")) + "\n\n")
	b.WriteString(formatter.FormatProgress(m.editor.Progress()) + "\n")

	selected := m.statuses[m.statusIdx]
	status := formatter.StatusStyle(selected).Render(selected.Label())
	b.WriteString(m.fieldLine(fieldStatus, "Status", "‹ "+status+" ›"))

	quantity := m.quantity.View()
	if selected != domain.StatusInProgress {
		quantity = formatter.Dim("only logged with IN PROGRESS")
	} else if pending := m.editor.Progress().Pending; pending != nil {
		quantity += formatter.Dim(fmt.Sprintf("  (max %s)", reconcile.FormatQuantity(max(*pending, 0))))
	}
	b.WriteString(m.fieldLine(fieldQuantity, "Today", quantity))
	b.WriteString(m.fieldLine(fieldNote, "Remarks", m.note.View()))
	b.WriteString("\n")

	switch {
	case m.editor.State() == service.EditorSubmitting:
		b.WriteString(formatter.StylePurple.Render("Submitting…") + "\n")
	case m.failed != nil:
		b.WriteString(formatter.FormatNotice(m.failed))
	case m.flash != "":
		b.WriteString(formatter.Dim(m.flash) + "\n")
	}

	feed := m.editor.Feed()
	if len(feed) > feedTail {
		feed = feed[len(feed)-feedTail:]
	}
	b.WriteString("\n" + formatter.Header("Activity") + "\n" + formatter.FormatFeed(feed, m.now()))
	b.WriteString("\n" + m.helpLine())
	return b.String()
}

func (m *editModel) fieldLine(f editField, label, value string) string {
	marker := "  "
	styled := formatter.Dim(fmt.Sprintf("%-8s", label))
	if m.focus == f {
		marker = formatter.StyleHeader.Render("▸ ")
		styled = formatter.Bold(fmt.Sprintf("%-8s", label))
	}
	return marker + styled + " " + value + "\n"
}

func (m *editModel) helpLine() string {
	var parts []string
	for _, b := range []key.Binding{m.keys.Next, m.keys.Left, m.keys.Submit, m.keys.Quit} {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return formatter.Dim(strings.Join(parts, " · "))
}

func runProgram(m *editModel, out io.Writer) error {
	_, err := tea.NewProgram(m, tea.WithOutput(out), tea.WithAltScreen()).Run()
	return err
}
