package shell

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/georgemunganga/nwc-marketplace-clone/internal/platform/timeouts"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/platform/httpx"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/platform/requestmeta"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/routepath"
)

const (
	maxEventBytes = 4 << 10
	pingInterval  = 30 * time.Second
	pongWait      = 2 * pingInterval
	eventRate     = rate.Limit(10)
	eventBurst    = 20
)

// EventType names an event sent by the browser.
type EventType string

const (
	EventReady         EventType = "ready"
	EventTransitionEnd EventType = "transitionend"
	EventNavigate      EventType = "navigate"
)

// Event is one browser report on the live channel.
type Event struct {
	Type  EventType `json:"type"`
	Path  string    `json:"path,omitempty"`
	Query string    `json:"query,omitempty"`
	Hash  string    `json:"hash,omitempty"`
}

// ConnectionObserver tracks live connections.
type ConnectionObserver interface {
	LiveConnectionOpened()
	LiveConnectionClosed()
}

// LiveHandler serves the live channel for a mounted visit.
type LiveHandler struct {
	manager     *Manager
	connections ConnectionObserver
	upgrader    websocket.Upgrader
	policy      requestmeta.SchemePolicy
}

// NewLiveHandler returns the websocket endpoint over m.
func NewLiveHandler(m *Manager, connections ConnectionObserver, policy requestmeta.SchemePolicy) *LiveHandler {
	h := &LiveHandler{manager: m, connections: connections, policy: policy}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return requestmeta.HasSameOriginProofWithPolicy(r, h.policy)
		},
	}
	return h
}

// ServeHTTP upgrades the request and pumps events and commands until the
// browser goes away.
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.MethodNotAllowed(http.MethodGet)(w, r)
		return
	}
	id := strings.TrimSpace(r.URL.Query().Get(routepath.VisitQueryKey))
	visit, ok := h.manager.Get(id)
	if id == "" || !ok {
		http.NotFound(w, r)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.manager.logger.WarnContext(r.Context(), "live upgrade failed", "visit", id, "error", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	visit.attach()
	defer visit.detach()
	if h.connections != nil {
		h.connections.LiveConnectionOpened()
		defer h.connections.LiveConnectionClosed()
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		defer cancel()
		h.readEvents(ctx, conn, visit)
	}()
	h.writeCommands(ctx, conn, visit)
}

func (h *LiveHandler) readEvents(ctx context.Context, conn *websocket.Conn, visit *Visit) {
	conn.SetReadLimit(maxEventBytes)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	limiter := rate.NewLimiter(eventRate, eventBurst)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.manager.logger.DebugContext(ctx, "live read ended", "visit", visit.ID(), "error", err)
			}
			return
		}
		if !limiter.Allow() {
			h.manager.logger.WarnContext(ctx, "live event dropped", "visit", visit.ID(), "reason", "rate_limited")
			continue
		}
		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			h.manager.logger.DebugContext(ctx, "live event malformed", "visit", visit.ID(), "error", err)
			continue
		}
		HandleEvent(visit, event)
	}
}

// HandleEvent applies a browser event to visit.
func HandleEvent(visit *Visit, event Event) {
	switch event.Type {
	case EventReady:
		visit.SignalReady(SourceClient)
		visit.markPresent()
	case EventTransitionEnd:
		visit.TransitionEnd()
	case EventNavigate:
		path := event.Path
		if !routepath.IsLocalPath(path) {
			return
		}
		visit.Navigate(Location{
			Path:  path,
			Query: strings.TrimPrefix(event.Query, "?"),
			Hash:  strings.TrimPrefix(event.Hash, "#"),
		})
	}
}

func (h *LiveHandler) writeCommands(ctx context.Context, conn *websocket.Conn, visit *Visit) {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	if err := flush(conn, visit); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(timeouts.LiveWrite),
			)
			return
		case <-visit.Updates():
			if err := flush(conn, visit); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					h.manager.logger.DebugContext(ctx, "live write failed", "visit", visit.ID(), "error", err)
				}
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(timeouts.LiveWrite)); err != nil {
				return
			}
		}
	}
}

func flush(conn *websocket.Conn, visit *Visit) error {
	for _, cmd := range visit.Drain() {
		if err := conn.SetWriteDeadline(time.Now().Add(timeouts.LiveWrite)); err != nil {
			return err
		}
		if err := conn.WriteJSON(cmd); err != nil {
			return err
		}
	}
	return nil
}

var _ http.Handler = (*LiveHandler)(nil)
