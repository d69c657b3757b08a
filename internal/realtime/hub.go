package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"leadflow-be/internal/entity"
	"leadflow-be/internal/pkg/logger"
	"leadflow-be/internal/pkg/metrics"
	"leadflow-be/pkg/wsproto"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "cluster_events"

// Credentials verify private channel signatures.
type Credentials struct {
	AppKey    string
	AppSecret string
}

type outbound struct {
	channel string
	event   string
	frame   []byte
}

type direct struct {
	client *Client
	frame  []byte
}

type subscription struct {
	client  *Client
	channel string
	add     bool
}

// clusterMessage is relayed through redis so every instance reaches its own
// sockets. Origin lets an instance skip its own messages.
type clusterMessage struct {
	Origin  string          `json:"origin"`
	Channel string          `json:"channel"`
	Event   string          `json:"event"`
	Frame   json.RawMessage `json:"frame"`
}

// Hub owns all sockets of this instance. Membership maps are touched only
// by the Run goroutine.
type Hub struct {
	id    string
	creds Credentials

	clients  map[*Client]struct{}
	channels map[string]map[*Client]struct{}

	register    chan *Client
	unregister  chan *Client
	subscribe   chan subscription
	direct      chan direct
	broadcast   chan outbound
	stats       chan chan map[string]int
	done        chan struct{}
	rdb         redis.UniversalClient
	logger      logger.ILogger
	metrics     *metrics.Metrics
	clusterDone chan struct{}
}

var ErrHubClosed = errors.New("realtime hub stopped")

func NewHub(creds Credentials, rdb redis.UniversalClient, log logger.ILogger, m *metrics.Metrics) *Hub {
	return &Hub{
		id:         uuid.NewString(),
		creds:      creds,
		clients:    make(map[*Client]struct{}),
		channels:   make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		subscribe:  make(chan subscription),
		direct:     make(chan direct),
		broadcast:  make(chan outbound, 256),
		stats:      make(chan chan map[string]int),
		done:       make(chan struct{}),
		rdb:        rdb,
		logger:     log,
		metrics:    m,
	}
}

// Run serves the hub until ctx is cancelled, then closes every socket.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		h.clusterDone = make(chan struct{})
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for c := range h.clients {
				h.drop(c)
			}
			if h.clusterDone != nil {
				<-h.clusterDone
			}
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			if h.metrics != nil {
				h.metrics.RealtimeClients.Inc()
			}
			frame, _ := wsproto.Encode(wsproto.EventConnectionEstablished, "", wsproto.ConnectionData{SocketId: c.SocketId})
			h.deliver(c, frame)
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"socket_id": c.SocketId, "principal": c.principalKey()})

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
				h.logger.Info("Hub", "Client unregistered", map[string]interface{}{"socket_id": c.SocketId})
			}

		case s := <-h.subscribe:
			h.applySubscription(s)

		case d := <-h.direct:
			if _, ok := h.clients[d.client]; ok {
				h.deliver(d.client, d.frame)
			}

		case out := <-h.broadcast:
			h.fanout(out)

		case reply := <-h.stats:
			counts := make(map[string]int, len(h.channels))
			for name, members := range h.channels {
				counts[name] = len(members)
			}
			reply <- counts
		}
	}
}

func (h *Hub) applySubscription(s subscription) {
	if _, ok := h.clients[s.client]; !ok {
		return
	}
	if !s.add {
		h.leave(s.client, s.channel)
		return
	}
	members, ok := h.channels[s.channel]
	if !ok {
		members = make(map[*Client]struct{})
		h.channels[s.channel] = members
	}
	members[s.client] = struct{}{}
	frame, _ := wsproto.Encode(wsproto.EventSubscriptionSucceeded, s.channel, nil)
	h.deliver(s.client, frame)
}

func (h *Hub) leave(c *Client, channel string) {
	if members, ok := h.channels[channel]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.channels, channel)
		}
	}
}

// drop forgets c and closes its send buffer, which ends its write pump.
func (h *Hub) drop(c *Client) {
	for name := range h.channels {
		h.leave(c, name)
	}
	delete(h.clients, c)
	close(c.send)
	if h.metrics != nil {
		h.metrics.RealtimeClients.Dec()
	}
}

// deliver never blocks the hub. A client whose buffer is full is dropped.
func (h *Hub) deliver(c *Client, frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
		h.logger.Warn("Hub", "Client send buffer full, dropping client", map[string]interface{}{"socket_id": c.SocketId})
		h.drop(c)
		return false
	}
}

func (h *Hub) fanout(out outbound) {
	for c := range h.channels[out.channel] {
		if h.deliver(c, out.frame) && h.metrics != nil {
			h.metrics.EventsDelivered.WithLabelValues(out.event).Inc()
		}
	}
}

// Broadcast sends event to every socket subscribed to channel, on this and
// every other instance sharing the redis connection.
func (h *Hub) Broadcast(channel, event string, data interface{}) error {
	frame, err := wsproto.Encode(event, channel, data)
	if err != nil {
		return fmt.Errorf("encode %s frame: %w", event, err)
	}
	select {
	case h.broadcast <- outbound{channel: channel, event: event, frame: frame}:
	case <-h.done:
		return ErrHubClosed
	}

	if h.rdb != nil {
		payload, _ := json.Marshal(clusterMessage{Origin: h.id, Channel: channel, Event: event, Frame: frame})
		if err := h.rdb.Publish(context.Background(), clusterChannel, payload).Err(); err != nil {
			h.logger.Warn("Hub", "Failed to relay event to cluster", map[string]interface{}{"error": err.Error(), "channel": channel})
		}
	}
	return nil
}

// ChannelCounts reports subscribers per channel.
func (h *Hub) ChannelCounts() map[string]int {
	reply := make(chan map[string]int, 1)
	select {
	case h.stats <- reply:
		return <-reply
	case <-h.done:
		return map[string]int{}
	}
}

// The enqueue helpers give up once Run has returned so socket goroutines
// never block on a stopped hub.

func (h *Hub) enqueueRegister(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) enqueueUnregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) enqueueSubscription(s subscription) {
	select {
	case h.subscribe <- s:
	case <-h.done:
	}
}

func (h *Hub) enqueueDirect(d direct) {
	select {
	case h.direct <- d:
	case <-h.done:
	}
}

// authorize decides whether c may join channel.
func (h *Hub) authorize(c *Client, channel, auth string) error {
	switch {
	case channel == entity.AdminChannel:
		if !c.Principal.IsAdmin() {
			return fmt.Errorf("channel %s requires an admin session", channel)
		}
		return nil
	case wsproto.IsPrivate(channel):
		if !wsproto.Verify(h.creds.AppKey, h.creds.AppSecret, c.SocketId, channel, auth) {
			return fmt.Errorf("invalid signature for channel %s", channel)
		}
		if c.Principal.IsProvider() && channel != entity.ProviderChannel(c.Principal.Id) {
			return fmt.Errorf("channel %s belongs to another provider", channel)
		}
		return nil
	default:
		return fmt.Errorf("unknown channel %s", channel)
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	defer close(h.clusterDone)

	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var cm clusterMessage
			if err := json.Unmarshal([]byte(msg.Payload), &cm); err != nil {
				h.logger.Warn("Hub", "Cluster message parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			if cm.Origin == h.id {
				continue
			}
			select {
			case h.broadcast <- outbound{channel: cm.Channel, event: cm.Event, frame: cm.Frame}:
			case <-ctx.Done():
				return
			}
		}
	}
}
