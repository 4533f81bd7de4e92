package websocket

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"room-relay/internal/metrics"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
)

// ErrHubClosed is returned by Register after Shutdown.
var ErrHubClosed = errors.New("hub is shut down")

// MessageStore persists relayed messages.
type MessageStore interface {
	AddMessage(ctx context.Context, roomID, roomName, text string) error
}

// Options configures a Hub. Zero values take defaults in NewHub.
type Options struct {
	// SendBuffer is the capacity of each client's outbound sink.
	SendBuffer int
	// MaxMessageSize caps inbound frame size in bytes.
	MaxMessageSize int64
	Upgrader       *websocket.Upgrader
	Logger         *slog.Logger
	Metrics        *metrics.Relay
}

// Hub owns the connection registry and the room index. Both are guarded by
// mu so that updating a sender's room and computing the recipients of its
// message happen as one step.
type Hub struct {
	mu      sync.RWMutex
	clients *connectionRegistry
	rooms   *roomIndex
	closed  bool

	store    MessageStore
	upgrader *websocket.Upgrader
	opts     Options
	metrics  *metrics.Relay
	log      *slog.Logger
}

// Stats is a point-in-time summary of the hub.
type Stats struct {
	Clients int `json:"clients"`
	Rooms   int `json:"rooms"`
}

// NewHub creates a hub that persists relayed messages to store.
func NewHub(store MessageStore, opts Options) *Hub {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 256
	}
	if opts.MaxMessageSize <= 0 {
		opts.MaxMessageSize = 64 * 1024
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewRelay(prometheus.NewRegistry())
	}
	if opts.Upgrader == nil {
		opts.Upgrader = NewUpgrader(nil)
	}

	return &Hub{
		clients:  newConnectionRegistry(),
		rooms:    newRoomIndex(),
		store:    store,
		upgrader: opts.Upgrader,
		opts:     opts,
		metrics:  opts.Metrics,
		log:      opts.Logger,
	}
}

// Register adds c to the registry with an empty current room.
func (h *Hub) Register(c *Client) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return ErrHubClosed
	}
	h.clients.add(c)
	count := h.clients.len()
	h.mu.Unlock()

	h.metrics.ConnectionsTotal.Inc()
	h.metrics.ConnectionsActive.Inc()
	h.log.Info("Client registered", "clientID", c.id, "clients", count)
	return nil
}

// Unregister removes the client and its room membership and closes its
// outbound sink. Unknown ids are ignored.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	c, ok := h.clients.remove(id)
	if ok && c.joined {
		h.rooms.leave(c.room, id)
	}
	count, rooms := h.clients.len(), h.rooms.len()
	h.mu.Unlock()

	if !ok {
		return
	}
	c.closeSend()

	h.metrics.ConnectionsActive.Dec()
	h.metrics.RoomsActive.Set(float64(rooms))
	h.log.Info("Client unregistered", "clientID", id, "clients", count)
}

// SetRoom makes room the client's current room, moving it out of the room
// it was in before.
func (h *Hub) SetRoom(id, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.clients.get(id); ok {
		h.setRoomLocked(c, room)
	}
}

func (h *Hub) setRoomLocked(c *Client, room string) {
	if c.joined && c.room != room {
		h.rooms.leave(c.room, c.id)
	}
	c.room = room
	c.joined = true
	h.rooms.join(room, c.id)
	h.metrics.RoomsActive.Set(float64(h.rooms.len()))
}

// Snapshot returns the live clients at one point in time.
func (h *Hub) Snapshot() []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients.snapshot()
}

// Members returns the ids of the clients currently in room.
func (h *Hub) Members(room string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms.members(room)
}

func (h *Hub) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return Stats{Clients: h.clients.len(), Rooms: h.rooms.len()}
}

// route records room as the sender's current room and returns every other
// live client whose current room is room and which is a member of it.
func (h *Hub) route(sender *Client, room string) []*Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, live := h.clients.get(sender.id); !live {
		return nil
	}
	h.setRoomLocked(sender, room)

	var recipients []*Client
	for _, id := range h.rooms.members(room) {
		if id == sender.id {
			continue
		}
		c, ok := h.clients.get(id)
		if !ok || c.room != room {
			continue
		}
		recipients = append(recipients, c)
	}
	return recipients
}

// Relay handles one decoded frame from sender: it updates the room state,
// persists the message and pushes the raw text to every recipient. It
// returns the number of recipients the text was queued for.
func (h *Hub) Relay(ctx context.Context, sender *Client, f Frame) int {
	recipients := h.route(sender, f.RoomID)

	if err := h.store.AddMessage(ctx, f.RoomID, f.RoomName, f.Text); err != nil {
		h.metrics.PersistFailures.Inc()
		h.log.Error("Failed to persist message", "clientID", sender.id, "roomID", f.RoomID, "error", err)
	}

	payload := []byte(f.Text)
	delivered := 0
	for _, c := range recipients {
		switch err := c.enqueue(payload); {
		case err == nil:
			delivered++
		case errors.Is(err, ErrSendBufferFull):
			h.metrics.DeliveriesDropped.Inc()
			h.log.Warn("Send buffer full, closing client", "clientID", c.id, "roomID", f.RoomID)
			c.closeSend()
		default:
			h.metrics.DeliveriesDropped.Inc()
			h.log.Debug("Skipping disconnected recipient", "clientID", c.id, "roomID", f.RoomID)
		}
	}
	h.metrics.Deliveries.Add(float64(delivered))

	h.log.Debug("Message relayed", "clientID", sender.id, "roomID", f.RoomID, "recipients", len(recipients), "delivered", delivered)
	return delivered
}

// ServeWS upgrades the request and runs the connection until it closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("Failed to upgrade WebSocket connection", "remote", r.RemoteAddr, "error", err)
		return
	}

	client := newClient(h, conn, h.opts.SendBuffer)
	if err := h.Register(client); err != nil {
		h.log.Warn("Rejecting WebSocket connection", "remote", r.RemoteAddr, "error", err)
		_ = conn.Close()
		return
	}

	go client.writePump()
	client.readPump(r.Context(), h.opts.MaxMessageSize)
	<-client.done
}

// Shutdown refuses new connections and closes every live client. Each
// client's relay loop unregisters it as its connection goes down.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()

	clients := h.Snapshot()

	for _, c := range clients {
		c.closeSend()
	}
	h.log.Info("WebSocket hub shutting down", "clients", len(clients))
}
