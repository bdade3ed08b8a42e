// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go func() { _ = hub.Run(ctx) }()

	srv := httptest.NewServer(ServeWS(hub, []string{"*"}, func(*http.Request) string { return "Alice" }))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestHub_GreetsOnConnect(t *testing.T) {
	_, srv := startHub(t)
	conn := dial(t, srv)

	f := readFrame(t, conn)
	assert.Equal(t, EventMessage, f.Type)
	assert.JSONEq(t, `{"data":"Connected to server."}`, string(f.Data))
}

func TestHub_BroadcastReachesAllClients(t *testing.T) {
	hub, srv := startHub(t)
	a := dial(t, srv)
	b := dial(t, srv)
	readFrame(t, a)
	readFrame(t, b)

	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	hub.Broadcast(EventUpdateWorkers, []string{"Alice", "Bob"})

	for _, conn := range []*websocket.Conn{a, b} {
		f := readFrame(t, conn)
		assert.Equal(t, EventUpdateWorkers, f.Type)
		assert.JSONEq(t, `["Alice","Bob"]`, string(f.Data))
	}
}

func TestHub_UnregistersOnClose(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv)
	readFrame(t, conn)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_StopClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	done := make(chan error, 1)
	go func() { done <- hub.Run(ctx) }()

	srv := httptest.NewServer(ServeWS(hub, nil, func(*http.Request) string { return "" }))
	defer srv.Close()
	conn := dial(t, srv)
	readFrame(t, conn)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "connection should be closed after hub stops")
	assert.False(t, hub.Register(NewClient(hub, nil, "late")))
}

func TestHub_RunAfterStop(t *testing.T) {
	hub := NewHub()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, hub.Run(ctx), context.Canceled)

	again, cancelAgain := context.WithCancel(context.Background())
	defer cancelAgain()
	assert.NotPanics(t, func() {
		assert.NoError(t, hub.Run(again))
	})
	assert.False(t, hub.Register(&Client{}))
}

func TestServeWS_RejectsForeignOrigin(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(ServeWS(hub, []string{"https://site.example"}, func(*http.Request) string { return "" }))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

type recordingSink struct {
	mu     sync.Mutex
	events []Message
}

func (s *recordingSink) Broadcast(event string, data any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, Message{Type: event, Data: data})
}

func (s *recordingSink) snapshot() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.events...)
}

func TestBus_ForwardsEvents(t *testing.T) {
	bus := NewBus(nil)
	t.Cleanup(func() { _ = bus.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sink := &recordingSink{}
	go func() { _ = bus.Forward(ctx, sink) }()

	select {
	case <-bus.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("forwarder never subscribed")
	}

	bus.Notify(ctx, EventUpdateProjects, []string{"Site1"})

	require.Eventually(t, func() bool { return len(sink.snapshot()) == 1 }, 2*time.Second, 10*time.Millisecond)
	got := sink.snapshot()[0]
	assert.Equal(t, EventUpdateProjects, got.Type)
	raw, err := json.Marshal(got.Data)
	require.NoError(t, err)
	assert.JSONEq(t, `["Site1"]`, string(raw))
}

func TestBus_NotifyWithoutForwarderIsDropped(t *testing.T) {
	bus := NewBus(nil)
	defer bus.Close()

	// must not block or panic
	bus.Notify(context.Background(), EventNewRecord, map[string]string{"id": "r1"})
}
