// ABOUTME: Bubbletea model for player TUI
// ABOUTME: Seek prompt, session status and queue health
package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// longest accepted prompt input
const maxInput = 12

// Model represents the TUI state
type Model struct {
	// Source
	locator string
	format  string

	// Session
	state     string
	sessionID string
	start     time.Duration
	position  time.Duration

	// Stats
	underruns       int64
	framesDelivered int64
	chunksProduced  int64
	queueDepth      int
	queueCapacity   int

	// Prompt
	input   string
	message string
	lastErr string

	controls *Controls

	// Dimensions
	width  int
	height int
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := ""
	s += m.renderHeader()
	s += m.renderSession()
	s += m.renderStats()
	s += m.renderPrompt()
	s += m.renderHelp()

	return s
}

func (m Model) renderHeader() string {
	return fmt.Sprintf(`┌─ seekplay ───────────────────────────────────────────┐
│ Source: %-44s │
│ Format: %-44s │
├──────────────────────────────────────────────────────┤
`, truncate(m.locator, 44), truncate(m.format, 44))
}

func (m Model) renderSession() string {
	if m.state != "playing" {
		return "│ Idle                                                 │\n"
	}

	return fmt.Sprintf("│ Playing from %-10s  at %-26s │\n│ Session: %-44s │\n",
		formatPosition(m.start), formatPosition(m.position), truncate(m.sessionID, 44))
}

func (m Model) renderStats() string {
	queueBar := renderBar(m.queueDepth, m.queueCapacity, 20)

	return fmt.Sprintf(`├──────────────────────────────────────────────────────┤
│ Queue:  [%s] %d/%d%-15s │
│ Chunks: %-10d Delivered: %-10d Underruns: %-3d│
`, queueBar, m.queueDepth, m.queueCapacity, "", m.chunksProduced, m.framesDelivered, m.underruns)
}

func (m Model) renderPrompt() string {
	s := "├──────────────────────────────────────────────────────┤\n"
	s += fmt.Sprintf("│ Seek to (seconds): %-33s │\n", m.input+"_")
	if m.lastErr != "" {
		s += fmt.Sprintf("│ Error: %-45s │\n", truncate(m.lastErr, 45))
	} else if m.message != "" {
		s += fmt.Sprintf("│ %-52s │\n", truncate(m.message, 52))
	}
	return s
}

func (m Model) renderHelp() string {
	return `│ 0-9:Position  enter:Play  s:Stop  q:Quit             │
└──────────────────────────────────────────────────────┘
`
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q", "ctrl+c":
		if m.controls != nil {
			select {
			case m.controls.Quit <- QuitMsg{}:
			default:
			}
		}
		return m, tea.Quit
	case "enter":
		position, err := parsePosition(m.input)
		m.input = ""
		if err != nil {
			m.lastErr = err.Error()
			return m, nil
		}
		m.lastErr = ""
		m.message = fmt.Sprintf("Seeking to %s", formatPosition(position))
		m.send(Command{Position: position})
	case "s":
		m.message = "Stopping"
		m.send(Command{Stop: true})
	case "backspace":
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case "esc":
		m.input = ""
	default:
		if len(key) == 1 && strings.Contains("0123456789.", key) && len(m.input) < maxInput {
			m.input += key
		}
	}

	return m, nil
}

func (m Model) send(cmd Command) {
	if m.controls == nil {
		return
	}
	select {
	case m.controls.Commands <- cmd:
	default:
	}
}

// parsePosition reads a non-negative number of seconds; empty means zero
func parsePosition(input string) (time.Duration, error) {
	if input == "" {
		return 0, nil
	}
	secs, err := strconv.ParseFloat(input, 64)
	if err != nil || secs < 0 {
		return 0, fmt.Errorf("invalid position %q", input)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.State != "" {
		m.state = msg.State
		m.sessionID = msg.SessionID
		m.start = msg.Start
		m.position = msg.Position
	}
	if msg.Format != "" {
		m.format = msg.Format
	}
	if msg.QueueCapacity != 0 {
		m.underruns = msg.Underruns
		m.framesDelivered = msg.FramesDelivered
		m.chunksProduced = msg.ChunksProduced
		m.queueDepth = msg.QueueDepth
		m.queueCapacity = msg.QueueCapacity
	}
	if msg.Err != "" {
		m.lastErr = msg.Err
	}
}

// StatusMsg updates TUI state
type StatusMsg struct {
	State     string
	SessionID string
	Start     time.Duration
	Position  time.Duration
	Format    string

	Underruns       int64
	FramesDelivered int64
	ChunksProduced  int64
	QueueDepth      int
	QueueCapacity   int

	Err string
}

// Utility functions
func renderBar(value, max, width int) string {
	filled := 0
	if max > 0 {
		filled = (value * width) / max
	}
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return bar
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

func formatPosition(d time.Duration) string {
	total := int(d / time.Second)
	return fmt.Sprintf("%d:%02d.%d", total/60, total%60, int(d%time.Second/(100*time.Millisecond)))
}
