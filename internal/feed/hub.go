// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package feed

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cuecard/internal/events"
	"github.com/tomtom215/cuecard/internal/metrics"
)

// Message types sent over the feed.
const (
	MessageTypeQuestionsRanked = "questions_ranked"
	MessageTypeShowEnded       = "show_ended"
	MessageTypePing            = "ping"
	MessageTypePong            = "pong"
)

// Message is one feed frame.
type Message struct {
	Type   string      `json:"type"`
	ShowID string      `json:"show_id,omitempty"`
	Data   interface{} `json:"data"`
}

// ShutdownReason describes why the hub stopped.
type ShutdownReason string

const (
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

const broadcastBuffer = 256

// Hub fans ranked results out to the clients watching each show.
type Hub struct {
	// clients is keyed by show id.
	clients    map[string]map[*Client]struct{}
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
	logger     zerolog.Logger

	stopped  chan struct{}
	stopOnce sync.Once
}

var _ events.RankedListener = (*Hub)(nil)

// NewHub creates a hub. Call RunWithContext to start it.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		broadcast:  make(chan Message, broadcastBuffer),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		stopped:    make(chan struct{}),
		logger:     logger.With().Str("component", "feed-hub").Logger(),
	}
}

// RunWithContext processes registrations and broadcasts until ctx is done.
// Shutdown is checked first on every iteration so a busy broadcast channel
// cannot delay it.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()

		case client := <-h.Register:
			h.add(client)

		case client := <-h.Unregister:
			h.remove(client)

		case message := <-h.broadcast:
			h.broadcastToShow(message)
		}
	}
}

func (h *Hub) add(client *Client) {
	h.mu.Lock()
	set, ok := h.clients[client.showID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[client.showID] = set
	}
	set[client] = struct{}{}
	h.mu.Unlock()

	metrics.FeedClients.Inc()
	h.logger.Debug().Str("show_id", client.showID).Uint64("client_id", client.id).Msg("feed client connected")
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	set, ok := h.clients[client.showID]
	if ok {
		if _, present := set[client]; present {
			delete(set, client)
			close(client.send)
			metrics.FeedClients.Dec()
		}
		if len(set) == 0 {
			delete(h.clients, client.showID)
		}
	}
	h.mu.Unlock()

	h.logger.Debug().Str("show_id", client.showID).Uint64("client_id", client.id).Msg("feed client disconnected")
}

func (h *Hub) logGracefulShutdown(ctx context.Context) {
	count := h.ClientCount()
	h.stopOnce.Do(func() { close(h.stopped) })
	h.closeAllClients()

	h.logger.Info().
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", count).
		Msg("feed hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	if ctx.Err() == context.DeadlineExceeded {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}

// sortedClients returns the show's clients ordered by id. Caller holds mu.
func (h *Hub) sortedClients(showID string) []*Client {
	set := h.clients[showID]
	clients := make([]*Client, 0, len(set))
	for c := range set {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	return clients
}

// broadcastToShow delivers a message to every client of its show.
// Clients whose send buffer is full are dropped.
func (h *Hub) broadcastToShow(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var slow []*Client
	for _, client := range h.sortedClients(message.ShowID) {
		select {
		case client.send <- message:
		default:
			slow = append(slow, client)
		}
	}

	for _, client := range slow {
		close(client.send)
		delete(h.clients[message.ShowID], client)
		metrics.FeedClients.Dec()
		h.logger.Warn().Str("show_id", message.ShowID).Uint64("client_id", client.id).Msg("dropping slow feed client")
	}
	if len(h.clients[message.ShowID]) == 0 {
		delete(h.clients, message.ShowID)
	}
	metrics.FeedBroadcasts.Inc()
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	shows := make([]string, 0, len(h.clients))
	for showID := range h.clients {
		shows = append(shows, showID)
	}
	sort.Strings(shows)

	for _, showID := range shows {
		for _, client := range h.sortedClients(showID) {
			close(client.send)
			metrics.FeedClients.Dec()
		}
		delete(h.clients, showID)
	}
}

// Broadcast queues a message for the clients of message.ShowID.
// It never blocks; a full queue drops the message.
func (h *Hub) Broadcast(message Message) bool {
	select {
	case h.broadcast <- message:
		return true
	default:
		h.logger.Warn().Str("show_id", message.ShowID).Str("message_type", message.Type).Msg("broadcast channel full, dropping message")
		return false
	}
}

// OnQuestionsRanked forwards a ranked batch to the show's feed.
func (h *Hub) OnQuestionsRanked(_ context.Context, event *events.QuestionsRankedEvent) error {
	h.Broadcast(Message{
		Type:   MessageTypeQuestionsRanked,
		ShowID: event.ShowID,
		Data:   event.Result,
	})
	return nil
}

// NotifyShowEnded tells a show's clients that no further rankings will arrive.
func (h *Hub) NotifyShowEnded(showID string) {
	h.Broadcast(Message{Type: MessageTypeShowEnded, ShowID: showID})
}

// ClientCount returns the number of connected clients across all shows.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// ShowClientCount returns the number of clients watching one show.
func (h *Hub) ShowClientCount(showID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[showID])
}

// String implements fmt.Stringer for suture logging.
func (h *Hub) String() string {
	return "feed-hub"
}
