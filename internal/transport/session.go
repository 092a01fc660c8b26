package transport

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

// A ping every 9/10 of the pong deadline keeps well inside the 60s window
// without flooding the wire.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBufferSize = 256
)

// session is one connected WebSocket client: one session for the lifetime
// of the socket.
type session struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	log  *slog.Logger
}

func newSession(id string, hub *Hub, conn *websocket.Conn, log *slog.Logger) *session {
	if log == nil {
		log = slog.Default()
	}
	return &session{
		id:   id,
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		log:  log.With("session", id),
	}
}

// enqueue is a non-blocking send; a full channel is back-pressure and the
// frame is dropped — the session is not disconnected, the next frame is
// attempted fresh.
func (s *session) enqueue(data []byte) bool {
	select {
	case s.send <- data:
		return true
	default:
		return false
	}
}

func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *session) readPump(core Core) {
	defer func() {
		s.hub.unregister <- s
		s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.log.Error("websocket error", "err", err)
			}
			return
		}
		s.handleFrame(core, data)
	}
}

func (s *session) handleFrame(core Core, data []byte) {
	typ, err := peekType(data)
	if err != nil {
		s.log.Warn("malformed frame", "err", err)
		return
	}
	if typ != FrameSubscribe && typ != FrameUnsubscribe {
		s.log.Warn("unrecognized frame type", "type", typ)
		return
	}

	var env Envelope
	if err := jsonUnmarshal(data, &env); err != nil {
		s.log.Warn("malformed envelope", "err", err)
		return
	}

	switch typ {
	case FrameSubscribe:
		s.handleSubscribe(core, env)
	case FrameUnsubscribe:
		s.handleUnsubscribe(core, env)
	}
}
