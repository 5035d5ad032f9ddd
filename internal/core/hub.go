package core

import (
	"context"

	"github.com/rs/zerolog"

	applog "github.com/vovakirdan/wirechat-relay/internal/log"
	"github.com/vovakirdan/wirechat-relay/internal/metrics"
)

// Sink accepts session events. Sessions depend on this instead of the hub.
type Sink interface {
	Publish(ctx context.Context, ev Event) error
}

// Options tune a Hub.
type Options struct {
	// EventBuffer is the capacity of the merged event stream.
	EventBuffer int
	// PrefixSender prepends "[addr] " to relayed payloads.
	PrefixSender bool
}

type peersRequest struct {
	reply chan []PeerInfo
}

// Hub is the broadcast core. It owns the registry and is the only goroutine
// that reads or mutates it; every change arrives through the event stream.
type Hub struct {
	events   chan Event
	queries  chan peersRequest
	done     chan struct{}
	registry *Registry
	render   Renderer
	log      *zerolog.Logger
}

// NewHub creates a hub. Call Run to start consuming events.
func NewHub(opts Options, logger *zerolog.Logger) *Hub {
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = 256
	}
	if logger == nil {
		logger = applog.Nop()
	}
	return &Hub{
		events:   make(chan Event, opts.EventBuffer),
		queries:  make(chan peersRequest),
		done:     make(chan struct{}),
		registry: NewRegistry(),
		render:   Renderer{PrefixSender: opts.PrefixSender},
		log:      logger,
	}
}

// Publish hands an event to the hub. Events from one caller are consumed in
// the order they were published. Once Run has returned, Publish always fails
// with ErrHubStopped.
func (h *Hub) Publish(ctx context.Context, ev Event) error {
	select {
	case <-h.done:
		return ErrHubStopped
	default:
	}

	select {
	case h.events <- ev:
		return nil
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Peers returns a snapshot of the registry taken on the hub goroutine. Every
// event published before the call is applied first.
func (h *Hub) Peers(ctx context.Context) ([]PeerInfo, error) {
	req := peersRequest{reply: make(chan []PeerInfo, 1)}
	select {
	case h.queries <- req:
	case <-h.done:
		return nil, ErrHubStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case peers := <-req.reply:
		return peers, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Run consumes events until ctx is cancelled. On return every outbound queue
// still registered is closed.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	defer h.closeAll()

	for {
		select {
		case ev := <-h.events:
			h.handle(ev)
		case req := <-h.queries:
			h.drain()
			req.reply <- h.registry.Snapshot()
		case <-ctx.Done():
			return
		}
	}
}

// drain handles every event already queued, so a snapshot reflects all
// events whose Publish returned before the query was made.
func (h *Hub) drain() {
	for n := len(h.events); n > 0; n-- {
		h.handle(<-h.events)
	}
}

func (h *Hub) handle(ev Event) {
	metrics.EventsTotal.WithLabelValues(ev.Kind.String()).Inc()

	switch ev.Kind {
	case EventConnected:
		h.handleConnected(ev)
	case EventData:
		h.handleData(ev)
	case EventDisconnected:
		h.handleDisconnected(ev)
	default:
		h.log.Warn().Int("kind", int(ev.Kind)).Msg("unknown event kind")
	}
}

func (h *Hub) handleConnected(ev Event) {
	handle := ev.Handle
	if handle == nil {
		h.log.Warn().Str("peer_id", string(ev.Peer)).Msg("connected event without handle")
		return
	}
	if _, exists := h.registry.Get(handle.ID); exists {
		h.log.Warn().Str("peer_id", string(handle.ID)).Msg("peer already registered")
		return
	}
	if h.registry.Removed(handle.ID) {
		h.log.Warn().Str("peer_id", string(handle.ID)).Msg("connected event for removed peer ignored")
		return
	}

	// Announce before inserting so the newcomer never sees its own notice.
	h.fanOut("", h.render.Joined(handle.Addr))
	h.registry.Add(handle)
	metrics.PeersConnected.Set(float64(h.registry.Len()))

	h.log.Info().
		Str("peer_id", string(handle.ID)).
		Str("peer_addr", applog.Sensitive(handle.Addr)).
		Int("peers", h.registry.Len()).
		Msg("client connected")
}

func (h *Hub) handleData(ev Event) {
	sender, ok := h.registry.Get(ev.Peer)
	if !ok {
		h.log.Debug().Str("peer_id", string(ev.Peer)).Msg("data from unregistered peer ignored")
		return
	}
	metrics.RelayedBytesTotal.Add(float64(len(ev.Data)))

	recipients := h.fanOut(sender.ID, h.render.Payload(sender.Addr, ev.Data))

	h.log.Debug().
		Str("peer_id", string(sender.ID)).
		Int("bytes", len(ev.Data)).
		Int("recipients", recipients).
		Msg("message relayed")
}

func (h *Hub) handleDisconnected(ev Event) {
	handle := h.registry.Remove(ev.Peer)
	if handle == nil {
		return
	}
	close(handle.Outbound)
	metrics.PeersConnected.Set(float64(h.registry.Len()))

	h.fanOut("", h.render.Left(handle.Addr))

	h.log.Info().
		Str("peer_id", string(handle.ID)).
		Str("peer_addr", applog.Sensitive(handle.Addr)).
		Int("peers", h.registry.Len()).
		Msg("client disconnected")
}

// fanOut offers msg to every registered peer except skip without blocking.
// A full queue drops the chunk for that peer only.
func (h *Hub) fanOut(skip PeerID, msg []byte) int {
	delivered := 0
	h.registry.Each(skip, func(c *ClientHandle) {
		select {
		case c.Outbound <- msg:
			delivered++
		default:
			metrics.DeliveriesDropped.Inc()
			h.log.Warn().Str("peer_id", string(c.ID)).Msg("outbound queue full, chunk dropped")
		}
	})
	return delivered
}

func (h *Hub) closeAll() {
	for _, p := range h.registry.Snapshot() {
		if c := h.registry.Remove(p.ID); c != nil {
			close(c.Outbound)
		}
	}
	metrics.PeersConnected.Set(0)
}
