package realtime

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"ecanteen/internal/logger"
	"ecanteen/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 32
)

type OrderEvent struct {
	Type  string        `json:"type"`
	Order *models.Order `json:"order"`
}

// socket is the write side of *websocket.Conn.
type socket interface {
	WriteJSON(v any) error
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// OrderBoard fans order events out to connected kitchen screens. Each screen
// has its own buffered queue and writer; a screen whose queue is full is dropped.
type OrderBoard struct {
	mu       sync.RWMutex
	screens  map[*screen]struct{}
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewOrderBoard accepts websocket handshakes from allowedOrigin, from the
// API's own host, or from clients that send no Origin.
func NewOrderBoard(allowedOrigin string) *OrderBoard {
	allowedOrigin = strings.TrimRight(allowedOrigin, "/")
	return &OrderBoard{
		screens: make(map[*screen]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || (allowedOrigin != "" && strings.TrimRight(origin, "/") == allowedOrigin) {
					return true
				}
				u, err := url.Parse(origin)
				return err == nil && strings.EqualFold(u.Host, r.Host)
			},
		},
		log: logger.WithModule("board"),
	}
}

// Serve upgrades the request and blocks until the screen goes away. On a
// failed handshake the upgrader has already answered the request.
func (b *OrderBoard) Serve(w http.ResponseWriter, r *http.Request) error {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	s := b.attach(conn)
	s.readLoop(conn)
	return nil
}

func (b *OrderBoard) attach(sock socket) *screen {
	s := &screen{board: b, socket: sock, send: make(chan OrderEvent, sendBuffer)}
	b.mu.Lock()
	b.screens[s] = struct{}{}
	b.mu.Unlock()
	go s.writeLoop()
	return s
}

func (b *OrderBoard) detach(s *screen) {
	b.mu.Lock()
	delete(b.screens, s)
	b.mu.Unlock()
}

func (b *OrderBoard) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.screens)
}

// Publish queues the event for every screen without waiting on any of them.
func (b *OrderBoard) Publish(_ context.Context, kind string, o *models.Order) {
	snapshot := *o
	ev := OrderEvent{Type: kind, Order: &snapshot}

	var slow []*screen
	b.mu.RLock()
	for s := range b.screens {
		select {
		case s.send <- ev:
		default:
			slow = append(slow, s)
		}
	}
	b.mu.RUnlock()

	for _, s := range slow {
		b.log.Warn("dropping slow board screen", zap.String("event", kind))
		s.close()
	}
}

type screen struct {
	board  *OrderBoard
	socket socket
	send   chan OrderEvent
	once   sync.Once
}

// readLoop discards client messages; it only tracks liveness via pongs.
func (s *screen) readLoop(conn *websocket.Conn) {
	defer s.close()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.board.log.Debug("board screen closed", zap.Error(err))
			}
			return
		}
	}
}

func (s *screen) writeLoop() {
	defer s.close()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-s.send:
			_ = s.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.socket.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// close detaches before closing send, so Publish never sends on a closed channel.
func (s *screen) close() {
	s.once.Do(func() {
		s.board.detach(s)
		close(s.send)
		_ = s.socket.Close()
	})
}
