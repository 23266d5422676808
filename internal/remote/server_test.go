// ABOUTME: Tests for the remote control server and client
// ABOUTME: Round trips play/stop/status over a real WebSocket
package remote

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/seekplay/seekplay/pkg/seekplay"
)

// fakeController records requests
type fakeController struct {
	mu      sync.Mutex
	state   seekplay.State
	start   time.Duration
	plays   []time.Duration
	stops   int
	playErr error
}

func (f *fakeController) Play(start time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.playErr != nil {
		return f.playErr
	}
	f.plays = append(f.plays, start)
	f.state = seekplay.Playing
	f.start = start
	return nil
}

func (f *fakeController) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	f.state = seekplay.Idle
	return nil
}

func (f *fakeController) Status() seekplay.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == seekplay.Idle {
		return seekplay.Status{State: seekplay.Idle}
	}
	return seekplay.Status{State: seekplay.Playing, SessionID: "session-1", Start: f.start, Position: f.start}
}

func (f *fakeController) Stats() seekplay.Stats {
	return seekplay.Stats{Underruns: 3, FramesDelivered: 4410, ChunksProduced: 7, QueueDepth: 5}
}

func startTestServer(t *testing.T, ctrl Controller) *Client {
	t.Helper()

	srv := New(Config{Controller: ctrl})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := Dial(ctx, strings.TrimPrefix(ts.URL, "http://"))
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func nextState(t *testing.T, c *Client) PlayerState {
	t.Helper()
	select {
	case s := <-c.States:
		return s
	case e := <-c.Errors:
		t.Fatalf("unexpected error message: %s", e.Message)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for state")
	}
	return PlayerState{}
}

func nextError(t *testing.T, c *Client) ErrorMessage {
	t.Helper()
	select {
	case e := <-c.Errors:
		return e
	case s := <-c.States:
		t.Fatalf("unexpected state message: %+v", s)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for error")
	}
	return ErrorMessage{}
}

func TestStatusRoundTrip(t *testing.T) {
	c := startTestServer(t, &fakeController{})

	if err := c.RequestStatus(); err != nil {
		t.Fatalf("RequestStatus failed: %v", err)
	}

	state := nextState(t, c)
	if state.State != "idle" || state.SessionID != "" {
		t.Errorf("unexpected state: %+v", state)
	}
	if state.Underruns != 3 || state.FramesDelivered != 4410 || state.ChunksProduced != 7 || state.QueueDepth != 5 {
		t.Errorf("stats not carried: %+v", state)
	}
}

func TestPlayAndStop(t *testing.T) {
	ctrl := &fakeController{}
	c := startTestServer(t, ctrl)

	if err := c.Play(12500 * time.Millisecond); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	state := nextState(t, c)
	if state.State != "playing" || state.SessionID != "session-1" || state.Position != 12.5 {
		t.Errorf("unexpected state after play: %+v", state)
	}

	if err := c.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if state := nextState(t, c); state.State != "idle" {
		t.Errorf("unexpected state after stop: %+v", state)
	}

	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	if len(ctrl.plays) != 1 || ctrl.plays[0] != 12500*time.Millisecond {
		t.Errorf("unexpected plays: %v", ctrl.plays)
	}
	if ctrl.stops != 1 {
		t.Errorf("expected one stop, got %d", ctrl.stops)
	}
}

func TestPlayError(t *testing.T) {
	c := startTestServer(t, &fakeController{playErr: errors.New("audio device open failed")})

	c.Play(0)
	if e := nextError(t, c); !strings.Contains(e.Message, "audio device") {
		t.Errorf("unexpected error: %s", e.Message)
	}
}

func TestNegativePosition(t *testing.T) {
	ctrl := &fakeController{}
	c := startTestServer(t, ctrl)

	c.Play(-time.Second)
	if e := nextError(t, c); !strings.Contains(e.Message, "negative") {
		t.Errorf("unexpected error: %s", e.Message)
	}

	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	if len(ctrl.plays) != 0 {
		t.Error("controller should not see invalid requests")
	}
}

func TestUnknownMessage(t *testing.T) {
	srv := New(Config{Controller: &fakeController{}})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+Path, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"player/volume"}`)); err != nil {
		t.Fatal(err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !strings.Contains(string(data), `"type":"player/error"`) || !strings.Contains(string(data), "player/volume") {
		t.Errorf("unexpected reply: %s", data)
	}

	conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
	_, data, err = conn.ReadMessage()
	if err != nil || !strings.Contains(string(data), "invalid message") {
		t.Errorf("unexpected reply to garbage: %s, %v", data, err)
	}
}

func TestServerStartStop(t *testing.T) {
	srv := New(Config{Addr: "127.0.0.1:0", Controller: &fakeController{}})
	if err := srv.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if srv.Port() == 0 {
		t.Error("expected a bound port")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := Dial(ctx, srv.Addr().String())
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}

	if err := srv.Stop(); err != nil {
		t.Errorf("Stop failed: %v", err)
	}

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Error("client not disconnected by Stop")
	}
}
