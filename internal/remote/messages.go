// ABOUTME: Remote control message type definitions
// ABOUTME: JSON envelope and payloads exchanged over the control WebSocket
package remote

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/seekplay/seekplay/pkg/seekplay"
)

// Path is the WebSocket endpoint
const Path = "/seekplay"

// Message types
const (
	TypePlay   = "player/play"
	TypeStop   = "player/stop"
	TypeStatus = "player/status"
	TypeState  = "player/state"
	TypeError  = "player/error"
)

// Message is the top-level wrapper for all control messages
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// PlayRequest asks the player to start at Position seconds
type PlayRequest struct {
	Position float64 `json:"position"`
}

// PlayerState reports the session state (sent as player/state)
type PlayerState struct {
	State           string  `json:"state"` // "playing" or "idle"
	SessionID       string  `json:"session_id,omitempty"`
	Position        float64 `json:"position"` // seconds
	Underruns       int64   `json:"underruns"`
	FramesDelivered int64   `json:"frames_delivered"`
	ChunksProduced  int64   `json:"chunks_produced"`
	QueueDepth      int     `json:"queue_depth"`
}

// ErrorMessage reports a failed request (sent as player/error)
type ErrorMessage struct {
	Message string `json:"message"`
}

// NewPlayerState builds a state message from player status and stats
func NewPlayerState(status seekplay.Status, stats seekplay.Stats) PlayerState {
	return PlayerState{
		State:           status.State.String(),
		SessionID:       status.SessionID,
		Position:        status.Position.Seconds(),
		Underruns:       stats.Underruns,
		FramesDelivered: stats.FramesDelivered,
		ChunksProduced:  stats.ChunksProduced,
		QueueDepth:      stats.QueueDepth,
	}
}

// Duration converts the request position to a time offset
func (r PlayRequest) Duration() time.Duration {
	return time.Duration(r.Position * float64(time.Second))
}

// decodePayload re-marshals a generic payload into out
func decodePayload(payload interface{}, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return nil
}
