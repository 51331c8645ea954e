// Package ws fans the simulation's drawing commands out to renderer clients
// over websockets, and feeds a small set of admin commands back to the
// engine. Publishing never blocks on a slow client.
package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"tradewinds.dev/internal/protocol"
)

const (
	writeTimeout = 5 * time.Second
	readTimeout  = 60 * time.Second
	// clientBuffer is how many commands a client may fall behind before
	// messages are dropped for it.
	clientBuffer = 256
)

// Controls is what admin commands may reach on the engine.
type Controls interface {
	SetSpeed(speed float32)
	RevealAll()
}

type client struct {
	conn *websocket.Conn
	out  chan []byte
}

type Server struct {
	controls Controls
	log      *log.Logger

	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

func NewServer(controls Controls, logger *log.Logger) *Server {
	return &Server{
		controls: controls,
		log:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		clients: map[*client]struct{}{},
	}
}

// adminMsg is the inbound message shape; unknown types are ignored.
type adminMsg struct {
	Type  string  `json:"type"`
	Speed float32 `json:"speed"`
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		c := &client{conn: conn, out: make(chan []byte, clientBuffer)}
		s.register(c)
		defer s.unregister(c)
		defer conn.Close()

		done := make(chan struct{})
		defer close(done)

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-done:
					return
				case b, ok := <-c.out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						return
					}
				}
			}
		}()

		// Reader loop: admin commands in, everything else ignored.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var admin adminMsg
			if err := json.Unmarshal(msg, &admin); err != nil {
				continue
			}
			switch admin.Type {
			case "set_speed":
				if admin.Speed < 0 {
					continue
				}
				s.controls.SetSpeed(admin.Speed)
			case "reveal_all":
				s.controls.RevealAll()
			}
		}
	}
}

func (s *Server) register(c *client) {
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	if s.log != nil {
		s.log.Printf("renderer connected (%d clients)", s.ClientCount())
	}
}

func (s *Server) unregister(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
}

// Publish fans one command out to every connected client. Clients that have
// fallen clientBuffer messages behind lose this one.
func (s *Server) Publish(cmd protocol.Command) {
	b, err := json.Marshal(cmd)
	if err != nil {
		if s.log != nil {
			s.log.Printf("marshal command: %v", err)
		}
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.out <- b:
		default:
		}
	}
}

func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}
