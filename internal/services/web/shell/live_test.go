package shell

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/georgemunganga/nwc-marketplace-clone/internal/platform/clock"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/platform/requestmeta"
)

type connectionCounter struct {
	open atomic.Int64
}

func (c *connectionCounter) LiveConnectionOpened() { c.open.Add(1) }
func (c *connectionCounter) LiveConnectionClosed() { c.open.Add(-1) }

func dialLive(t *testing.T, server *httptest.Server, visitID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/shell/live?visit=" + visitID
	header := http.Header{}
	header.Set("Origin", server.URL)
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.Fatalf("dial: %v (status %d)", err, status)
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}

func readCommand(t *testing.T, conn *websocket.Conn) Command {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var cmd Command
	if err := conn.ReadJSON(&cmd); err != nil {
		t.Fatalf("read command: %v", err)
	}
	return cmd
}

func newLiveServer(t *testing.T) (*Manager, *connectionCounter, *httptest.Server) {
	t.Helper()
	m := NewManager(Config{Clock: clock.NewFake(epoch), Logger: slog.New(slog.DiscardHandler)})
	counter := &connectionCounter{}
	mux := http.NewServeMux()
	mux.Handle("/shell/live", NewLiveHandler(m, counter, requestmeta.SchemePolicy{}))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return m, counter, server
}

func TestLiveHandlerFlushesQueuedCommands(t *testing.T) {
	t.Parallel()

	m, counter, server := newLiveServer(t)
	v := m.Mount(Location{Path: "/dashboard"}, true)
	v.SignalReady(SourceRoute)

	conn := dialLive(t, server, v.ID())
	want := []CommandType{CommandScroll, CommandBottomNav, CommandPreloaderHide}
	for _, typ := range want {
		if cmd := readCommand(t, conn); cmd.Type != typ {
			t.Fatalf("command = %q, want %q", cmd.Type, typ)
		}
	}
	if counter.open.Load() != 1 {
		t.Fatalf("open connections = %d, want 1", counter.open.Load())
	}

	if err := conn.WriteJSON(Event{Type: EventTransitionEnd}); err != nil {
		t.Fatalf("write event: %v", err)
	}
	if cmd := readCommand(t, conn); cmd.Type != CommandPreloaderRemove || cmd.Target != PreloaderID {
		t.Fatalf("command = %+v, want preloader-remove", cmd)
	}
	if !v.PreloaderRemoved() {
		t.Fatalf("visit did not record removal")
	}
}

func TestLiveHandlerNavigateEvent(t *testing.T) {
	t.Parallel()

	m, _, server := newLiveServer(t)
	v := m.Mount(Location{Path: "/"}, true)
	v.Drain()

	conn := dialLive(t, server, v.ID())
	if err := conn.WriteJSON(Event{Type: EventNavigate, Path: "/vendor/products", Query: "?page=1"}); err != nil {
		t.Fatalf("write event: %v", err)
	}
	if cmd := readCommand(t, conn); cmd.Type != CommandScroll {
		t.Fatalf("command = %+v, want scroll", cmd)
	}
	cmd := readCommand(t, conn)
	if cmd.Type != CommandBottomNav || cmd.Visible == nil || *cmd.Visible {
		t.Fatalf("command = %+v, want hidden bottom-nav", cmd)
	}
	if loc := v.Location(); loc.Path != "/vendor/products" || loc.Query != "page=1" {
		t.Fatalf("location = %+v", loc)
	}
}

func TestLiveHandlerUnknownVisit(t *testing.T) {
	t.Parallel()

	_, _, server := newLiveServer(t)
	resp, err := http.Get(server.URL + "/shell/live?visit=missing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestLiveHandlerRejectsCrossOrigin(t *testing.T) {
	t.Parallel()

	m, _, server := newLiveServer(t)
	v := m.Mount(Location{Path: "/"}, true)
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/shell/live?visit=" + v.ID()
	header := http.Header{}
	header.Set("Origin", "https://evil.example")
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err == nil {
		t.Fatalf("cross-origin dial succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("response = %v, want 403", resp)
	}
}

func TestHandleEventIgnoresForeignPaths(t *testing.T) {
	t.Parallel()

	v := mountVisit("v", Location{Path: "/"}, true, clock.NewFake(epoch), nopObserver{})
	v.Drain()
	HandleEvent(v, Event{Type: EventNavigate, Path: "https://evil.example/"})
	HandleEvent(v, Event{Type: EventNavigate, Path: "//evil.example"})
	if cmds := v.Drain(); len(cmds) != 0 {
		t.Fatalf("foreign navigate queued %v", commandTypes(cmds))
	}
	HandleEvent(v, Event{Type: EventReady})
	if !v.Ready() {
		t.Fatalf("ready event did not signal readiness")
	}
}
