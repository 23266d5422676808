// ABOUTME: WebSocket client for the remote control protocol
// ABOUTME: Sends play/stop/status requests and delivers state and error messages
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client is a remote control connection
type Client struct {
	conn *websocket.Conn
	mu   sync.Mutex // serialises writes

	// States receives player/state messages
	States chan PlayerState

	// Errors receives player/error messages
	Errors chan ErrorMessage

	done chan struct{}
	err  error
}

// Dial connects to a server at addr (host:port)
func Dial(ctx context.Context, addr string) (*Client, error) {
	u := url.URL{Scheme: "ws", Host: addr, Path: Path}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}

	c := &Client{
		conn:   conn,
		States: make(chan PlayerState, 16),
		Errors: make(chan ErrorMessage, 16),
		done:   make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Play asks the player to start at position
func (c *Client) Play(position time.Duration) error {
	return c.send(Message{Type: TypePlay, Payload: PlayRequest{Position: position.Seconds()}})
}

// Stop asks the player to stop
func (c *Client) Stop() error {
	return c.send(Message{Type: TypeStop})
}

// RequestStatus asks for a player/state message
func (c *Client) RequestStatus() error {
	return c.send(Message{Type: TypeStatus})
}

func (c *Client) send(msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	return nil
}

// Done is closed when the connection ends
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err returns the error that ended the connection
func (c *Client) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// Close closes the connection
func (c *Client) Close() error {
	c.mu.Lock()
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.mu.Unlock()

	err := c.conn.Close()
	<-c.done
	return err
}

func (c *Client) readLoop() {
	defer close(c.done)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.err = err
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("Error unmarshaling message: %v", err)
			continue
		}

		switch msg.Type {
		case TypeState:
			var state PlayerState
			if err := decodePayload(msg.Payload, &state); err != nil {
				log.Printf("Invalid state message: %v", err)
				continue
			}
			select {
			case c.States <- state:
			default:
			}
		case TypeError:
			var e ErrorMessage
			if err := decodePayload(msg.Payload, &e); err != nil {
				log.Printf("Invalid error message: %v", err)
				continue
			}
			select {
			case c.Errors <- e:
			default:
			}
		default:
			log.Printf("Unknown message type: %s", msg.Type)
		}
	}
}
