// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package feed

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cuecard/internal/events"
	"github.com/tomtom215/cuecard/internal/ranking"
)

type frame struct {
	Type   string          `json:"type"`
	ShowID string          `json:"show_id"`
	Data   json.RawMessage `json:"data"`
}

// startHub runs a hub behind an httptest server. The show id is taken
// from the "show" query parameter.
func startHub(t *testing.T) (hub *Hub, srv *httptest.Server, cancel context.CancelFunc, done <-chan error) {
	t.Helper()
	hub = NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- hub.RunWithContext(ctx) }()

	handler := NewHandler(hub, nil)
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.ServeShow(w, r, r.URL.Query().Get("show"))
	}))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return hub, srv, cancel, errc
}

func dial(t *testing.T, hub *Hub, srv *httptest.Server, showID string) *websocket.Conn {
	t.Helper()
	before := hub.ShowClientCount(showID)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?show=" + showID
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })

	waitFor(t, func() bool { return hub.ShowClientCount(showID) > before })
	return conn
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("SetReadDeadline() error = %v", err)
	}
	var f frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return f
}

func TestHub_BroadcastsRankedResultsToShow(t *testing.T) {
	hub, srv, _, _ := startHub(t)
	watcher := dial(t, hub, srv, "show-1")
	other := dial(t, hub, srv, "show-2")

	result := &ranking.Result{Metadata: ranking.Metadata{TotalGenerated: 3, Returned: 1}}
	if err := hub.OnQuestionsRanked(context.Background(), events.NewQuestionsRankedEvent("show-1", "host-1", result)); err != nil {
		t.Fatalf("OnQuestionsRanked() error = %v", err)
	}

	got := readFrame(t, watcher)
	if got.Type != MessageTypeQuestionsRanked {
		t.Errorf("Type = %q, want %q", got.Type, MessageTypeQuestionsRanked)
	}
	if got.ShowID != "show-1" {
		t.Errorf("ShowID = %q, want show-1", got.ShowID)
	}
	var decoded ranking.Result
	if err := json.Unmarshal(got.Data, &decoded); err != nil {
		t.Fatalf("Unmarshal(data) error = %v", err)
	}
	if decoded.Metadata.TotalGenerated != 3 {
		t.Errorf("Metadata.TotalGenerated = %d, want 3", decoded.Metadata.TotalGenerated)
	}

	if err := other.SetReadDeadline(time.Now().Add(100 * time.Millisecond)); err != nil {
		t.Fatalf("SetReadDeadline() error = %v", err)
	}
	var stray frame
	err := other.ReadJSON(&stray)
	var netErr net.Error
	if !errors.As(err, &netErr) || !netErr.Timeout() {
		t.Errorf("other show ReadJSON() error = %v, want timeout", err)
	}
}

func TestHub_PingPong(t *testing.T) {
	hub, srv, _, _ := startHub(t)
	conn := dial(t, hub, srv, "show-1")

	if err := conn.WriteJSON(Message{Type: MessageTypePing}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	got := readFrame(t, conn)
	if got.Type != MessageTypePong {
		t.Errorf("Type = %q, want %q", got.Type, MessageTypePong)
	}
}

func TestHub_ClientDisconnectUnregisters(t *testing.T) {
	hub, srv, _, _ := startHub(t)
	conn := dial(t, hub, srv, "show-1")

	_ = conn.Close()
	waitFor(t, func() bool { return hub.ShowClientCount("show-1") == 0 })
	if got := hub.ClientCount(); got != 0 {
		t.Errorf("ClientCount() = %d, want 0", got)
	}
}

func TestHub_ShowEnded(t *testing.T) {
	hub, srv, _, _ := startHub(t)
	conn := dial(t, hub, srv, "show-1")

	hub.NotifyShowEnded("show-1")
	if got := readFrame(t, conn); got.Type != MessageTypeShowEnded {
		t.Errorf("Type = %q, want %q", got.Type, MessageTypeShowEnded)
	}
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	hub, srv, cancel, done := startHub(t)
	conn := dial(t, hub, srv, "show-1")

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("RunWithContext() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("RunWithContext() did not return after cancel")
	}

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("ClientCount() = %d, want 0", got)
	}
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("SetReadDeadline() error = %v", err)
	}
	var f frame
	if err := conn.ReadJSON(&f); err == nil {
		t.Errorf("ReadJSON() after shutdown error = nil, want close")
	}
}

func TestHub_BroadcastWithoutClients(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	if !hub.Broadcast(Message{Type: MessageTypeQuestionsRanked, ShowID: "nobody"}) {
		t.Error("Broadcast() = false, want true while the queue has room")
	}
	hub.broadcastToShow(<-hub.broadcast)
	if got := hub.ClientCount(); got != 0 {
		t.Errorf("ClientCount() = %d, want 0", got)
	}
}

func TestHub_BroadcastQueueFull(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	for i := 0; i < broadcastBuffer; i++ {
		hub.Broadcast(Message{ShowID: "s"})
	}
	if hub.Broadcast(Message{ShowID: "s"}) {
		t.Error("Broadcast() = true, want false when the queue is full")
	}
}

func TestHandler_RejectsUnknownOrigin(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	handler := NewHandler(hub, []string{"https://studio.example"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.ServeShow(w, r, "show-1")
	}))
	defer srv.Close()

	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header)
	if err == nil {
		t.Fatal("Dial() error = nil, want handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %v, want %d", resp, http.StatusForbidden)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
}
