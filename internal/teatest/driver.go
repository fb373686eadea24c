// Package teatest drives bubbletea models synchronously in tests: messages
// go straight into Update and returned Cmds are executed and fed back until
// none remain.
package teatest

import (
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// maxDepth bounds how many Cmd generations one Send may chain.
const maxDepth = 64

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// Driver feeds input to a tea.Model without a tea.Program.
type Driver struct {
	T     *testing.T
	Model tea.Model

	// Quitting is set once a Cmd produced tea.QuitMsg.
	Quitting bool

	cmdTimeout time.Duration
}

type Option func(*Driver)

// WithSize sends a WindowSizeMsg before anything else.
func WithSize(w, h int) Option {
	return func(d *Driver) {
		d.Model, _ = d.Model.Update(tea.WindowSizeMsg{Width: w, Height: h})
	}
}

// WithCmdTimeout sets how long a single Cmd may run before it is dropped.
// Timer-driven Cmds such as cursor blinks never finish in time and are
// dropped on purpose. Default 50ms.
func WithCmdTimeout(d time.Duration) Option {
	return func(dr *Driver) { dr.cmdTimeout = d }
}

func New(t *testing.T, model tea.Model, opts ...Option) *Driver {
	t.Helper()
	d := &Driver{T: t, Model: model, cmdTimeout: 50 * time.Millisecond}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Init runs the model's Init Cmd.
func (d *Driver) Init() {
	d.T.Helper()
	d.run(d.Model.Init(), 0)
}

// Send dispatches msg and drains the resulting Cmds.
func (d *Driver) Send(msg tea.Msg) {
	d.T.Helper()
	if d.Quitting {
		return
	}
	var cmd tea.Cmd
	d.Model, cmd = d.Model.Update(msg)
	d.run(cmd, 0)
}

func (d *Driver) Key(t tea.KeyType) {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: t})
}

// Type sends s one rune at a time.
func (d *Driver) Type(s string) {
	d.T.Helper()
	for _, r := range s {
		d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func (d *Driver) Enter() { d.T.Helper(); d.Key(tea.KeyEnter) }
func (d *Driver) Tab()   { d.T.Helper(); d.Key(tea.KeyTab) }
func (d *Driver) Esc()   { d.T.Helper(); d.Key(tea.KeyEsc) }
func (d *Driver) Right() { d.T.Helper(); d.Key(tea.KeyRight) }
func (d *Driver) Left()  { d.T.Helper(); d.Key(tea.KeyLeft) }

// View returns the rendered model with ANSI styling removed.
func (d *Driver) View() string {
	return ansi.ReplaceAllString(d.Model.View(), "")
}

func (d *Driver) run(cmd tea.Cmd, depth int) {
	d.T.Helper()
	if cmd == nil {
		return
	}
	if depth >= maxDepth {
		d.T.Logf("teatest: stopped after %d chained commands", maxDepth)
		return
	}

	msg := d.exec(cmd)
	switch msg := msg.(type) {
	case nil:
		return
	case tea.BatchMsg:
		for _, c := range msg {
			d.run(c, depth+1)
		}
		return
	case tea.QuitMsg:
		d.Quitting = true
		d.Model, _ = d.Model.Update(msg)
		return
	}
	if isBlink(msg) {
		return
	}

	var next tea.Cmd
	d.Model, next = d.Model.Update(msg)
	d.run(next, depth+1)
}

func (d *Driver) exec(cmd tea.Cmd) tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(d.cmdTimeout):
		return nil
	}
}

// isBlink matches the unexported cursor blink messages of bubbles.
func isBlink(msg tea.Msg) bool {
	return strings.Contains(strings.ToLower(fmt.Sprintf("%T", msg)), "blink")
}
