// Package tui renders a bubbletea progress view for batch runs.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/pubminer/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/pubminer/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/pubminer/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/pubminer/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pubminer/internal/core/domain"
	"github.com/custodia-labs/pubminer/internal/core/ports/driving"
)

// recentLimit is how many finished documents the view lists.
const recentLimit = 8

// finished is one line of the recent documents list.
type finished struct {
	id    string
	state domain.DocumentState
}

// BatchView renders the progress of one batch run.
// It implements tea.Model.
type BatchView struct {
	styles *styles.Styles
	keymap *keymap.KeyMap
	bar    progress.Model
	spin   spinner.Model
	help   help.Model
	status *status.Bar

	batch    string
	snapshot driving.BatchProgress
	recent   []finished

	// cancel stops the coordinator; the view then waits for messages.Done.
	cancel    context.CancelFunc
	cancelled bool

	report *domain.BatchReport
	err    error
	done   bool

	showHelp     bool
	showFailures bool
	width        int
}

// Ensure BatchView implements tea.Model.
var _ tea.Model = (*BatchView)(nil)

// NewBatchView creates the view for batch. cancel is called when the user
// quits before the run has finished; it may be nil.
func NewBatchView(batch string, cancel context.CancelFunc) *BatchView {
	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	theme := s.Theme()

	return &BatchView{
		styles: s,
		keymap: km,
		bar: progress.New(
			progress.WithGradient(string(theme.Primary), string(theme.Secondary)),
			progress.WithWidth(60),
		),
		spin:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(s.Subtitle)),
		help:   help.New(),
		status: status.NewBar(s, km),
		batch:  batch,
		cancel: cancel,
		width:  80,
	}
}

// Init starts the spinner.
func (v *BatchView) Init() tea.Cmd {
	return v.spin.Tick
}

// Update handles coordinator events, key presses and resizes.
func (v *BatchView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.bar.Width = max(msg.Width-4, 10)
		v.status.SetWidth(msg.Width)
		v.help.Width = msg.Width
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)

	case messages.CancelRequested:
		v.requestCancel()
		return v, nil

	case messages.Progress:
		v.applyProgress(msg.Snapshot)
		return v, nil

	case messages.Done:
		v.finish(msg.Report, msg.Err)
		return v, tea.Quit

	case spinner.TickMsg:
		if v.done {
			return v, nil
		}
		var cmd tea.Cmd
		v.spin, cmd = v.spin.Update(msg)
		return v, cmd
	}

	return v, nil
}

func (v *BatchView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()
	switch {
	case keymap.Matches(keyStr, v.keymap.Quit):
		if v.done {
			return v, tea.Quit
		}
		v.requestCancel()
	case keymap.Matches(keyStr, v.keymap.Help):
		v.showHelp = !v.showHelp
	case keymap.Matches(keyStr, v.keymap.Failures):
		v.showFailures = !v.showFailures
	}
	return v, nil
}

func (v *BatchView) requestCancel() {
	if v.cancelled || v.done {
		return
	}
	v.cancelled = true
	v.status.SetState(status.StateCancelling)
	if v.cancel != nil {
		v.cancel()
	}
}

func (v *BatchView) applyProgress(p driving.BatchProgress) {
	// Snapshots can arrive out of order from concurrent workers.
	if p.Done < v.snapshot.Done {
		return
	}
	v.snapshot = p
	if p.Last != "" {
		v.recent = append(v.recent, finished{id: p.Last, state: p.LastState})
		if len(v.recent) > recentLimit {
			v.recent = v.recent[len(v.recent)-recentLimit:]
		}
	}
	if !v.cancelled {
		v.status.SetState(status.StateRunning)
		v.status.SetMessage(fmt.Sprintf("%d/%d documents", p.Done, p.Total))
	}
}

func (v *BatchView) finish(report *domain.BatchReport, err error) {
	v.done = true
	v.report = report
	v.err = err

	switch {
	case err != nil:
		v.status.SetState(status.StateError)
		v.status.SetMessage(err.Error())
	case report != nil:
		v.snapshot.Total = report.Total
		v.snapshot.Done = report.Total
		v.snapshot.Persisted = report.Persisted
		v.snapshot.Failed = report.Failed
		v.snapshot.Skipped = report.Skipped
		v.status.SetState(status.StateDone)
		v.status.SetMessage(fmt.Sprintf("finished in %s", report.Duration().Round(time.Millisecond)))
	default:
		v.status.SetState(status.StateDone)
	}
}

// View renders the progress view.
func (v *BatchView) View() string {
	var b strings.Builder

	header := v.styles.Title.Render("pubminer merge") + " " + v.styles.Subtitle.Render(v.batch)
	if !v.done {
		header = v.spin.View() + " " + header
	}
	b.WriteString(header)
	b.WriteString("\n\n")

	b.WriteString(v.bar.ViewAs(v.snapshot.Fraction()))
	b.WriteString("\n\n")
	b.WriteString(v.renderCounts())
	b.WriteString("\n\n")

	if v.showFailures && v.report != nil && len(v.report.Failures) > 0 {
		b.WriteString(v.renderFailures())
	} else if len(v.recent) > 0 {
		b.WriteString(v.renderRecent())
	}

	if v.showHelp {
		b.WriteString("\n")
		b.WriteString(v.help.FullHelpView(v.keymap.FullHelp()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.status.View())
	return b.String()
}

func (v *BatchView) renderCounts() string {
	p := v.snapshot
	parts := []string{
		v.styles.Normal.Render(fmt.Sprintf("%d/%d", p.Done, p.Total)),
		v.styles.Success.Render(fmt.Sprintf("persisted %d", p.Persisted)),
		v.styles.Error.Render(fmt.Sprintf("failed %d", p.Failed)),
		v.styles.Warning.Render(fmt.Sprintf("skipped %d", p.Skipped)),
	}
	return strings.Join(parts, v.styles.Muted.Render("  ·  "))
}

func (v *BatchView) renderRecent() string {
	lines := make([]string, 0, len(v.recent))
	for i := len(v.recent) - 1; i >= 0; i-- {
		f := v.recent[i]
		lines = append(lines, fmt.Sprintf("%-12s %s",
			v.styles.ForState(f.state).Render(string(f.state)), f.id))
	}
	return v.styles.Border.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)) + "\n"
}

func (v *BatchView) renderFailures() string {
	lines := make([]string, 0, len(v.report.Failures))
	for _, f := range v.report.Failures {
		lines = append(lines, fmt.Sprintf("%s %s: %s",
			v.styles.Error.Render(f.DocumentID), v.styles.Muted.Render(string(f.Stage)), f.Error))
	}
	return v.styles.Border.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)) + "\n"
}

// Snapshot returns the latest progress shown.
func (v *BatchView) Snapshot() driving.BatchProgress {
	return v.snapshot
}

// Report returns the finished run, or nil while running.
func (v *BatchView) Report() *domain.BatchReport {
	return v.report
}

// Err returns the error the run ended with.
func (v *BatchView) Err() error {
	return v.err
}

// Done reports whether the run has finished.
func (v *BatchView) Done() bool {
	return v.done
}

// Cancelled reports whether the user asked to stop the run.
func (v *BatchView) Cancelled() bool {
	return v.cancelled
}
