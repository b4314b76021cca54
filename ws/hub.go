package ws

import (
	"encoding/json"
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// EventPublisher is what services depend on to broadcast.
type EventPublisher interface {
	BroadcastToAll(event Event)
	BroadcastToUser(userID int64, event Event)
	OnlineUserIDs() []int64
}

// ReadyProvider builds the payload of the ready event for a new connection.
type ReadyProvider func(userID int64) (any, error)

// Hub owns the set of live connections. Register and unregister go through
// channels served by Run; broadcasts take the read lock directly.
type Hub struct {
	clients map[int64]map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once

	seq   atomic.Int64
	ready ReadyProvider
	log   *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log.Named("ws"),
	}
}

// OnReady sets the ready payload provider. Call before Run.
func (h *Hub) OnReady(fn ReadyProvider) {
	h.ready = fn
}

// Run serves register/unregister until Shutdown.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.done:
			return
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true
	n := len(h.clients[client.userID])
	h.mu.Unlock()

	h.log.Info("client connected", zap.Int64("user_id", client.userID), zap.Int("connections", n))
	go h.sendReady(client)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.userID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.userID)
	}
	h.log.Info("client disconnected", zap.Int64("user_id", client.userID), zap.Int("remaining", len(clients)))
}

func (h *Hub) sendReady(client *Client) {
	data := ReadyData{UserID: client.userID, OnlineAdmins: h.OnlineUserIDs()}
	if h.ready != nil {
		pending, err := h.ready(client.userID)
		if err != nil {
			h.log.Warn("failed to build ready payload", zap.Int64("user_id", client.userID), zap.Error(err))
		}
		data.PendingCounts = pending
	}
	h.deliver(Event{Op: OpReady, Data: data}, func(c *Client) bool { return c == client })
}

// BroadcastToAll sends event to every connection.
func (h *Hub) BroadcastToAll(event Event) {
	h.deliver(event, nil)
}

// BroadcastToUser sends event to every connection of one user.
func (h *Hub) BroadcastToUser(userID int64, event Event) {
	h.deliver(event, func(c *Client) bool { return c.userID == userID })
}

func (h *Hub) deliver(event Event, match func(*Client) bool) {
	event.Seq = h.seq.Add(1)
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error("failed to marshal event", zap.String("op", event.Op), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, clients := range h.clients {
		for client := range clients {
			if match != nil && !match(client) {
				continue
			}
			select {
			case client.send <- data:
			default:
				// slow consumer
				go h.drop(client)
			}
		}
	}
}

func (h *Hub) drop(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// OnlineUserIDs returns connected user ids in ascending order.
func (h *Hub) OnlineUserIDs() []int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]int64, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Shutdown closes every connection and stops Run.
func (h *Hub) Shutdown() {
	h.stopOnce.Do(func() {
		close(h.done)

		h.mu.Lock()
		defer h.mu.Unlock()
		for _, clients := range h.clients {
			for client := range clients {
				close(client.send)
			}
		}
		h.clients = make(map[int64]map[*Client]bool)
		h.log.Info("hub shut down")
	})
}
