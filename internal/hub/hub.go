package hub

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Client is the transport handle the hub borrows for sending. The gateway
// owns the underlying connection; the hub never reads from it.
type Client interface {
	ID() string
	SendJSON(v interface{})
	SendBytes(b []byte)
	IsOpen() bool
	Close()
}

// Warmer is the cache hook fired when a subscription references a symbol
// the cache has never seen.
type Warmer interface {
	EnsureSymbols(ctx context.Context, symbols []string)
}

// Hub is the subscription registry: connection id -> live client handle and
// its set of subscribed bare symbols. All operations are safe to call from
// the message-handling path concurrently with the broadcaster.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*connection

	warmer Warmer
	logger *zap.Logger
}

type connection struct {
	client Client
	subs   map[string]struct{}
}

func NewHub(warmer Warmer, logger *zap.Logger) *Hub {
	return &Hub{
		conns:  make(map[string]*connection),
		warmer: warmer,
		logger: logger,
	}
}

// Register adds a client with an empty subscription set.
func (h *Hub) Register(client Client) {
	h.mu.Lock()
	h.conns[client.ID()] = &connection{
		client: client,
		subs:   make(map[string]struct{}),
	}
	h.mu.Unlock()

	h.logger.Info("Client connected", zap.String("client_id", client.ID()))
}

// Unregister removes the connection entirely. A second call for the same id
// is a harmless no-op, guarding against the close path and an error path
// both firing.
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	conn, ok := h.conns[clientID]
	if ok {
		delete(h.conns, clientID)
	}
	h.mu.Unlock()

	if !ok {
		return
	}
	conn.client.Close()
	h.logger.Info("Client disconnected", zap.String("client_id", clientID))
}

// Subscribe normalizes the symbols to uppercase and adds them to the
// connection's set. Adding an already-present symbol is a no-op; an unknown
// connection id is ignored. Symbols the cache has never seen are warmed
// asynchronously so the next broadcast can include them.
func (h *Hub) Subscribe(clientID string, symbols []string) {
	normalized := normalize(symbols)
	if len(normalized) == 0 {
		return
	}

	h.mu.Lock()
	conn, ok := h.conns[clientID]
	if ok {
		for _, sym := range normalized {
			conn.subs[sym] = struct{}{}
		}
	}
	h.mu.Unlock()

	if !ok {
		return
	}

	h.logger.Info("Client subscribed",
		zap.String("client_id", clientID), zap.Strings("symbols", normalized))

	// Warm outside the lock: the fetch waits on the network and must never
	// block registry operations or the broadcast timer.
	go h.warmer.EnsureSymbols(context.Background(), normalized)
}

// Unsubscribe removes the given symbols from the connection's set. Removing
// an absent symbol is a no-op, not an error.
func (h *Hub) Unsubscribe(clientID string, symbols []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn, ok := h.conns[clientID]
	if !ok {
		return
	}
	for _, sym := range normalize(symbols) {
		delete(conn.subs, sym)
	}
}

// Subscriptions returns a sorted copy of one connection's subscribed set.
func (h *Hub) Subscriptions(clientID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conn, ok := h.conns[clientID]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(conn.subs))
	for sym := range conn.subs {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// ActiveSymbols computes a fresh union of all connections' subscription
// sets. It is never cached; the refresh cycle calls it each pass.
func (h *Hub) ActiveSymbols() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	set := make(map[string]struct{})
	for _, conn := range h.conns {
		for sym := range conn.subs {
			set[sym] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for sym := range set {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// BroadcastAll sends one payload to every registered client whose transport
// is currently open. Closed transports are skipped, not removed; teardown
// belongs to the lifecycle handler.
func (h *Hub) BroadcastAll(payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conn := range h.conns {
		if !conn.client.IsOpen() {
			continue
		}
		conn.client.SendBytes(payload)
	}
}

// ClientCount reports the number of registered connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func normalize(symbols []string) []string {
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
