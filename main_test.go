// ABOUTME: Tests for the plain prompt loop
// ABOUTME: Feeds typed lines and checks the resulting play/stop calls
package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

// recordingController logs control calls as "play <duration>" or "stop"
type recordingController struct {
	calls   []string
	playErr error
}

func (r *recordingController) Play(start time.Duration) error {
	r.calls = append(r.calls, fmt.Sprintf("play %v", start))
	return r.playErr
}

func (r *recordingController) Stop() error {
	r.calls = append(r.calls, "stop")
	return nil
}

func TestPromptLoop(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		calls      []string
		broadcasts int
		output     string
	}{
		{
			name:       "play stop exit",
			input:      "12.5\ns\nexit\n",
			calls:      []string{"play 12.5s", "stop"},
			broadcasts: 2,
		},
		{
			name:       "stop alias and blank lines",
			input:      "\n  0  \nstop\n",
			calls:      []string{"play 0s", "stop"},
			broadcasts: 2,
		},
		{
			name:   "invalid positions are rejected",
			input:  "abc\n-3\nq\n",
			output: `Invalid position "-3"`,
		},
		{
			name:  "input after exit is ignored",
			input: "quit\n5\n",
		},
		{
			name:       "eof ends the loop",
			input:      "90",
			calls:      []string{"play 1m30s"},
			broadcasts: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := &recordingController{}
			var out bytes.Buffer
			broadcasts := 0
			quit := make(chan struct{})

			promptLoop(strings.NewReader(tt.input), &out, ctrl, func() { broadcasts++ }, quit)

			select {
			case <-quit:
			default:
				t.Error("quit channel not closed")
			}
			if strings.Join(ctrl.calls, ",") != strings.Join(tt.calls, ",") {
				t.Errorf("expected calls %v, got %v", tt.calls, ctrl.calls)
			}
			if broadcasts != tt.broadcasts {
				t.Errorf("expected %d broadcasts, got %d", tt.broadcasts, broadcasts)
			}
			if tt.output != "" && !strings.Contains(out.String(), tt.output) {
				t.Errorf("expected output to contain %q, got %q", tt.output, out.String())
			}
		})
	}
}

func TestPromptLoopReportsPlayError(t *testing.T) {
	ctrl := &recordingController{playErr: errors.New("audio device open failed")}
	var out bytes.Buffer

	promptLoop(strings.NewReader("3\nexit\n"), &out, ctrl, func() {}, make(chan struct{}))

	if !strings.Contains(out.String(), "Play failed: audio device open failed") {
		t.Errorf("play error not shown: %q", out.String())
	}
}
