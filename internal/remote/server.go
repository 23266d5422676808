// ABOUTME: WebSocket remote control server
// ABOUTME: Accepts play/stop/status requests and broadcasts player state
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/seekplay/seekplay/pkg/seekplay"
)

// Controller is the player surface the server drives. It must be safe for
// concurrent use; *seekplay.Player is.
type Controller interface {
	Play(start time.Duration) error
	Stop() error
	Status() seekplay.Status
	Stats() seekplay.Stats
}

// Config holds server configuration
type Config struct {
	// Addr is the listen address, e.g. ":8928"
	Addr string

	// Controller receives play and stop requests
	Controller Controller
}

// Server is the remote control endpoint
type Server struct {
	config   Config
	upgrader websocket.Upgrader
	mux      *http.ServeMux

	clientsMu sync.RWMutex
	clients   map[string]*client

	httpServer *http.Server
	listener   net.Listener
	wg         sync.WaitGroup
}

type client struct {
	id       string
	conn     *websocket.Conn
	sendChan chan Message
	done     chan struct{}
}

// New creates a new server instance
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// trusted local network only
				return true
			},
		},
		clients: make(map[string]*client),
	}
	s.mux.HandleFunc(Path, s.handleWebSocket)
	return s
}

// Handler returns the HTTP handler serving Path
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start listens on the configured address and serves in the background
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}

	s.listener = ln
	s.httpServer = &http.Server{Handler: s.mux}

	log.Printf("Remote control listening on %s%s", ln.Addr(), Path)

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Remote control server error: %v", err)
		}
	}()
	return nil
}

// Addr returns the bound address once started
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Port returns the bound TCP port, or 0 before Start
func (s *Server) Port() int {
	if addr, ok := s.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return 0
}

// Stop shuts the HTTP server down and disconnects all clients
func (s *Server) Stop() error {
	var err error
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = s.httpServer.Shutdown(ctx)
	}

	s.clientsMu.Lock()
	for _, c := range s.clients {
		c.conn.Close()
	}
	s.clientsMu.Unlock()

	s.wg.Wait()
	return err
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	log.Printf("New remote control connection from %s", r.RemoteAddr)
	s.handleConnection(conn)
}

// handleConnection manages a client connection
func (s *Server) handleConnection(conn *websocket.Conn) {
	c := &client{
		id:       uuid.New().String(),
		conn:     conn,
		sendChan: make(chan Message, 32),
		done:     make(chan struct{}),
	}

	s.clientsMu.Lock()
	s.clients[c.id] = c
	s.clientsMu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.clientWriter(c)
	}()

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, c.id)
		s.clientsMu.Unlock()
		close(c.done)
		conn.Close()
		log.Printf("Remote control client %s disconnected", c.id)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}
		s.handleClientMessage(c, data)
	}
}

// clientWriter sends messages to the client
func (s *Server) clientWriter(c *client) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	const writeDeadline = 10 * time.Second

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.sendChan:
			data, err := json.Marshal(msg)
			if err != nil {
				log.Printf("Error marshaling message: %v", err)
				continue
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("Error writing message: %v", err)
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeDeadline)); err != nil {
				return
			}
		}
	}
}

// handleClientMessage processes messages from clients
func (s *Server) handleClientMessage(c *client, data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(c, fmt.Errorf("invalid message: %w", err))
		return
	}

	switch msg.Type {
	case TypePlay:
		var req PlayRequest
		if msg.Payload != nil {
			if err := decodePayload(msg.Payload, &req); err != nil {
				s.sendError(c, err)
				return
			}
		}
		if req.Position < 0 {
			s.sendError(c, seekplay.ErrNegativeStart)
			return
		}

		log.Printf("Remote play request from %s at %.3fs", c.id, req.Position)
		if err := s.config.Controller.Play(req.Duration()); err != nil {
			s.sendError(c, err)
			return
		}
		s.Broadcast()

	case TypeStop:
		log.Printf("Remote stop request from %s", c.id)
		if err := s.config.Controller.Stop(); err != nil {
			s.sendError(c, err)
		}
		s.Broadcast()

	case TypeStatus:
		s.send(c, Message{Type: TypeState, Payload: s.state()})

	default:
		s.sendError(c, fmt.Errorf("unknown message type: %s", msg.Type))
	}
}

// Broadcast sends the current player state to every client
func (s *Server) Broadcast() {
	msg := Message{Type: TypeState, Payload: s.state()}

	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for _, c := range s.clients {
		s.send(c, msg)
	}
}

func (s *Server) state() PlayerState {
	return NewPlayerState(s.config.Controller.Status(), s.config.Controller.Stats())
}

func (s *Server) sendError(c *client, err error) {
	log.Printf("Remote request from %s failed: %v", c.id, err)
	s.send(c, Message{Type: TypeError, Payload: ErrorMessage{Message: err.Error()}})
}

// send queues a message without blocking; slow clients miss updates
func (s *Server) send(c *client, msg Message) {
	select {
	case c.sendChan <- msg:
	default:
		log.Printf("Client %s send buffer full, dropping %s", c.id, msg.Type)
	}
}
