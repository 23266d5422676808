// ABOUTME: TUI initialization and control
// ABOUTME: Wraps bubbletea program for the seek prompt and status panel
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Command is a playback request typed at the prompt
type Command struct {
	// Stop is set for stop requests; otherwise play from Position
	Stop     bool
	Position time.Duration
}

// QuitMsg signals the user asked to quit
type QuitMsg struct{}

// Controls holds channels for communication from the TUI to the player
type Controls struct {
	Commands chan Command
	Quit     chan QuitMsg
}

// NewControls creates a new control handler
func NewControls() *Controls {
	return &Controls{
		Commands: make(chan Command, 10),
		Quit:     make(chan QuitMsg, 1),
	}
}

// NewModel creates a new TUI model
func NewModel(controls *Controls, locator string) Model {
	return Model{
		state:    "idle",
		locator:  locator,
		controls: controls,
	}
}

// Run creates the TUI program
func Run(controls *Controls, locator string) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(controls, locator), tea.WithAltScreen())
	return p, nil
}
