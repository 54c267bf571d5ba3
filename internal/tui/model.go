// Package tui renders the recorder widget in the terminal.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/audiolibrelab/taperecorder/internal/audio"
	"github.com/audiolibrelab/taperecorder/internal/controller"
)

const (
	defaultBarWidth = 40
	maxBarWidth     = 80
)

// Model is the bubbletea model. Update is the only goroutine that touches
// the controller once the program runs.
type Model struct {
	ctrl     *controller.Controller
	surface  *Surface
	keys     KeyMap
	help     help.Model
	progress progress.Model
	width    int
}

type controllerEventMsg struct {
	event audio.Event
}

func NewModel(ctrl *controller.Controller, surface *Surface) Model {
	return Model{
		ctrl:    ctrl,
		surface: surface,
		keys:    DefaultKeyMap,
		help:    help.New(),
		progress: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(defaultBarWidth),
			progress.WithoutPercentage(),
		),
	}
}

// waitForEvent blocks on the controller inbox and hands the next event to
// Update.
func waitForEvent(events <-chan audio.Event) tea.Cmd {
	return func() tea.Msg {
		return controllerEventMsg{event: <-events}
	}
}

func (m Model) Init() tea.Cmd {
	return waitForEvent(m.ctrl.Events())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.progress.Width = barWidth(msg.Width)
		return m, nil

	case controllerEventMsg:
		m.ctrl.HandleEvent(msg.event)
		return m, waitForEvent(m.ctrl.Events())

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	return m, nil
}

func (m Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.PlayPause):
		if err := m.ctrl.PlayPause(); err != nil {
			slog.Warn("Play/pause failed", "error", err)
		}
		return m, nil

	case key.Matches(msg, m.keys.Record):
		// A disabled record control still retries.
		if err := m.ctrl.RecordToggle(); err != nil {
			slog.Warn("Record toggle failed", "error", err)
		}
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Quit):
		if err := m.ctrl.Close(); err != nil {
			slog.Error("Failed to shut down cleanly", "error", err)
		}
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	s := m.surface

	b.WriteString(titleStyle.Render("● TapeRecorder"))
	if pb := m.ctrl.Playback(); pb != nil {
		b.WriteString("  " + statusStyle.Render(filepath.Base(pb.Source())))
	}
	b.WriteString("\n\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderPlayButton(),
		" ",
		m.renderRecordButton(),
	))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("%s %s %s\n",
		clockStyle.Render(s.TimeLabel),
		m.progress.ViewAs(s.Fraction()),
		statusStyle.Render(s.Remaining),
	))

	if s.Status != "" {
		b.WriteString(errorStyle.Render("✗ "+s.Status) + "\n")
	} else {
		b.WriteString("\n")
	}

	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

func (m Model) renderPlayButton() string {
	label := "▶ " + m.surface.PlayLabel
	if m.surface.PlayLabel == "Pause" {
		label = "❚❚ " + m.surface.PlayLabel
	}

	switch {
	case !m.surface.PlayEnabled:
		return disabledButtonStyle.Render(label)
	case m.ctrl.IsPlaying():
		return activeButtonStyle.Render(label)
	default:
		return buttonStyle.Render(label)
	}
}

func (m Model) renderRecordButton() string {
	label := "● " + m.surface.RecordLabel
	if m.surface.RecordLabel == "Stop" {
		label = "■ " + m.surface.RecordLabel
	}

	switch {
	case !m.surface.RecordEnabled:
		return disabledButtonStyle.Render(label)
	case m.ctrl.IsRecording():
		return recordingButtonStyle.Render(label)
	default:
		return buttonStyle.Render(label)
	}
}

func barWidth(termWidth int) int {
	w := termWidth - 20
	if w < 10 {
		return 10
	}
	if w > maxBarWidth {
		return maxBarWidth
	}
	return w
}

// Run starts the full-screen program and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, m Model, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(m, opts...)

	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		// cancelled from outside, not a UI failure
		_ = m.ctrl.Close()
		return nil
	}
	return err
}
