package websocket

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"room-relay/internal/metrics"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type storedMessage struct {
	RoomID, RoomName, Text string
}

// memoryStore records AddMessage calls and optionally fails them.
type memoryStore struct {
	mu       sync.Mutex
	messages []storedMessage
	fail     bool
}

func (s *memoryStore) AddMessage(_ context.Context, roomID, roomName, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("store unavailable")
	}
	s.messages = append(s.messages, storedMessage{roomID, roomName, text})
	return nil
}

func (s *memoryStore) all() []storedMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]storedMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *memoryStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func createTestHub(store MessageStore, sendBuffer int) (*Hub, *metrics.Relay) {
	m := metrics.NewRelay(prometheus.NewRegistry())
	hub := NewHub(store, Options{
		SendBuffer: sendBuffer,
		Logger:     quietLogger(),
		Metrics:    m,
	})
	return hub, m
}

// createTestClient registers a client with no transport; its sink can be
// read directly from the send channel.
func createTestClient(t *testing.T, hub *Hub) *Client {
	t.Helper()
	c := newClient(hub, nil, hub.opts.SendBuffer)
	require.NoError(t, hub.Register(c))
	return c
}

func drain(c *Client) []string {
	var out []string
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return out
			}
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func startServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(func() {
		hub.Shutdown()
		srv.Close()
	})
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func sendJSON(t *testing.T, conn *websocket.Conn, payload string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(payload)))
}

func readText(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	mt, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.TextMessage, mt)
	return string(data)
}

// expectSilence fails if conn receives a data frame within the window. The
// connection is unusable for reads afterwards.
func expectSilence(t *testing.T, conn *websocket.Conn, window time.Duration) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(window)))
	_, data, err := conn.ReadMessage()
	require.Error(t, err, "unexpected message %q", string(data))
}

func waitForStored(t *testing.T, store *memoryStore, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return store.count() >= n }, 2*time.Second, 10*time.Millisecond)
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Stats().Clients == n }, 2*time.Second, 10*time.Millisecond)
}
