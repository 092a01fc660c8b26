// Package transport is the WebSocket Transport Adapter: it upgrades
// incoming connections to WebSocket sessions, routes inbound
// subscribe/unsubscribe frames into the Core orchestrator, and implements
// dispatch.Transport so the Dispatcher can hand it outbound deltas directly.
package transport

import (
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"bondstream/internal/model"
)

// AllowedOrigins configures the WebSocket upgrade's origin check — empty
// means "same host or localhost only".
type AllowedOrigins []string

// Hub owns the set of live sessions: register/unregister events arrive on
// channels processed by Run, and outbound frames are addressed per session
// id rather than broadcast.
type Hub struct {
	core    Core
	origins AllowedOrigins
	log     *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*session

	register   chan *session
	unregister chan *session

	nextID atomic.Uint64
}

// NewHub creates a Hub wired to core for subscribe/unsubscribe handling.
func NewHub(core Core, origins AllowedOrigins, log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		core:       core,
		origins:    origins,
		log:        log.With("component", "transport-hub"),
		sessions:   make(map[string]*session),
		register:   make(chan *session),
		unregister: make(chan *session),
	}
}

// Run processes session register/unregister events until stop is closed.
func (h *Hub) Run(stop <-chan struct{}) {
	for {
		select {
		case s := <-h.register:
			h.mu.Lock()
			h.sessions[s.id] = s
			h.mu.Unlock()
			h.core.RegisterSession(s.id)
			h.log.Info("session connected", "session", s.id)

		case s := <-h.unregister:
			h.mu.Lock()
			_, ok := h.sessions[s.id]
			delete(h.sessions, s.id)
			h.mu.Unlock()
			if ok {
				close(s.send)
				h.core.UnregisterSession(s.id)
				h.log.Info("session disconnected", "session", s.id)
			}

		case <-stop:
			return
		}
	}
}

// Send implements dispatch.Transport: it marshals d into an
// instrument-update envelope and performs a non-blocking send to the
// session's outbound queue. A full queue or an unknown session both result
// in false — the Dispatcher treats both identically as a per-session drop.
func (h *Hub) Send(sessionID string, d model.Delta) bool {
	s, ok := h.sessionFor(sessionID)
	if !ok {
		return false
	}
	data, err := encodeEnvelope(FrameInstrumentUpdate, "", d.ToWire())
	if err != nil {
		h.log.Error("encode instrument-update", "err", err)
		return false
	}
	return s.enqueue(data)
}

func (h *Hub) sessionFor(sessionID string) (*session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.sessions[sessionID]
	return s, ok
}

// SessionCount returns the number of currently connected sessions.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// HandleWebSocket upgrades an HTTP request to a WebSocket session and spawns
// its read/write pumps.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(req *http.Request) bool {
			return isOriginAllowed(req.Header.Get("Origin"), h.origins, req.Host)
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", "err", err)
		return
	}

	id := strconv.FormatUint(h.nextID.Add(1), 10)
	s := newSession(id, h, conn, h.log)

	h.register <- s

	go s.writePump()
	go s.readPump(h.core)
}

func isOriginAllowed(origin string, allowed AllowedOrigins, reqHost string) bool {
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	normalized := normalizeOrigin(originURL.Scheme, originURL.Host)
	if normalized == "" {
		return false
	}

	if len(allowed) > 0 {
		for _, a := range allowed {
			u, err := url.Parse(a)
			if err != nil {
				continue
			}
			if normalized == normalizeOrigin(u.Scheme, u.Host) {
				return true
			}
		}
		return false
	}

	host := strings.ToLower(originURL.Hostname())
	if host == "localhost" || host == "127.0.0.1" || host == "::1" {
		return true
	}

	reqHostname := normalizeHost(reqHost)
	return reqHostname != "" && host == reqHostname
}

func normalizeOrigin(scheme, host string) string {
	if scheme == "" || host == "" {
		return ""
	}
	return strings.ToLower(scheme) + "://" + strings.ToLower(host)
}

func normalizeHost(hostport string) string {
	hostport = strings.TrimSpace(hostport)
	if hostport == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(hostport); err == nil {
		return strings.ToLower(host)
	}
	return strings.ToLower(hostport)
}
