// Package realtime subscribes a dashboard session to lead events pushed on
// the API's websocket. Any failure leaves the caller on polling alone.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"leadflow-be/pkg/client"
	"leadflow-be/pkg/events"
	"leadflow-be/pkg/wsproto"

	"github.com/fasthttp/websocket"
	"go.uber.org/zap"
)

var (
	ErrDisabled     = errors.New("realtime is disabled")
	ErrAlreadyBound = errors.New("a handler is already bound to this channel and event")
	ErrNotConnected = errors.New("realtime socket is not connected")
	errNoHandshake  = errors.New("socket closed before connection_established")
)

const handshakeTimeout = 10 * time.Second

// Backend is the part of the API client the subscriber needs.
type Backend interface {
	RealtimeConfig(ctx context.Context) (*client.RealtimeConfig, error)
	AuthorizeChannel(ctx context.Context, socketId, channel string) (string, error)
	SocketURL() string
}

type Handler func(events.Event)

// Unsubscribe removes one binding. Calling it more than once is harmless.
type Unsubscribe func()

type binding struct {
	channel string
	event   events.Type
}

type Subscriber struct {
	backend Backend
	dialer  *websocket.Dialer
	logger  *zap.Logger

	mu       sync.Mutex
	handlers map[binding]Handler
	joined   map[string]bool
	conn     *websocket.Conn
	socketId string

	writeMu sync.Mutex
	done    chan struct{}
}

type Option func(*Subscriber)

func WithDialer(d *websocket.Dialer) Option {
	return func(s *Subscriber) { s.dialer = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Subscriber) { s.logger = l }
}

func New(backend Backend, opts ...Option) *Subscriber {
	s := &Subscriber{
		backend:  backend,
		dialer:   &websocket.Dialer{HandshakeTimeout: handshakeTimeout},
		logger:   zap.NewNop(),
		handlers: make(map[binding]Handler),
		joined:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect opens the socket and joins every channel that already has a
// binding. Callers log the error and carry on with polling.
func (s *Subscriber) Connect(ctx context.Context) error {
	cfg, err := s.backend.RealtimeConfig(ctx)
	if err != nil {
		return fmt.Errorf("load realtime config: %w", err)
	}
	if !cfg.Enabled {
		return ErrDisabled
	}

	conn, _, err := s.dialer.DialContext(ctx, s.backend.SocketURL(), nil)
	if err != nil {
		return fmt.Errorf("dial realtime socket: %w", err)
	}
	socketId, err := handshake(conn)
	if err != nil {
		conn.Close()
		return err
	}

	s.mu.Lock()
	s.conn = conn
	s.socketId = socketId
	s.done = make(chan struct{})
	channels := make(map[string]bool)
	for b := range s.handlers {
		channels[b.channel] = true
	}
	s.mu.Unlock()

	go s.readLoop(conn, s.done)

	for channel := range channels {
		if err := s.join(ctx, channel); err != nil {
			s.logger.Warn("realtime join failed", zap.String("channel", channel), zap.Error(err))
		}
	}
	s.logger.Info("realtime connected", zap.String("socket_id", socketId))
	return nil
}

func handshake(conn *websocket.Conn) (string, error) {
	_ = conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	defer conn.SetReadDeadline(time.Time{})

	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", errNoHandshake
	}
	f, err := wsproto.Decode(msg)
	if err != nil || f.Event != wsproto.EventConnectionEstablished {
		return "", errNoHandshake
	}
	var data wsproto.ConnectionData
	if err := json.Unmarshal(f.Data, &data); err != nil || data.SocketId == "" {
		return "", errNoHandshake
	}
	return data.SocketId, nil
}

func (s *Subscriber) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// Subscribe binds h to event on channel. Only one handler may be bound per
// channel and event.
func (s *Subscriber) Subscribe(ctx context.Context, channel string, event events.Type, h Handler) (Unsubscribe, error) {
	b := binding{channel: channel, event: event}

	s.mu.Lock()
	if _, exists := s.handlers[b]; exists {
		s.mu.Unlock()
		return nil, ErrAlreadyBound
	}
	s.handlers[b] = h
	needJoin := s.conn != nil && !s.joined[channel]
	s.mu.Unlock()

	if needJoin {
		if err := s.join(ctx, channel); err != nil {
			s.logger.Warn("realtime join failed", zap.String("channel", channel), zap.Error(err))
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() { s.unbind(b) })
	}, nil
}

func (s *Subscriber) unbind(b binding) {
	s.mu.Lock()
	delete(s.handlers, b)
	leave := s.joined[b.channel]
	for other := range s.handlers {
		if other.channel == b.channel {
			leave = false
			break
		}
	}
	if leave {
		delete(s.joined, b.channel)
	}
	s.mu.Unlock()

	if leave {
		if err := s.write(wsproto.EventUnsubscribe, wsproto.SubscribeData{Channel: b.channel}); err != nil {
			s.logger.Debug("realtime leave failed", zap.String("channel", b.channel), zap.Error(err))
		}
	}
}

func (s *Subscriber) join(ctx context.Context, channel string) error {
	s.mu.Lock()
	socketId := s.socketId
	s.mu.Unlock()

	data := wsproto.SubscribeData{Channel: channel}
	if wsproto.IsPrivate(channel) {
		auth, err := s.backend.AuthorizeChannel(ctx, socketId, channel)
		if err != nil {
			return fmt.Errorf("authorize %s: %w", channel, err)
		}
		data.Auth = auth
	}
	if err := s.write(wsproto.EventSubscribe, data); err != nil {
		return err
	}

	s.mu.Lock()
	s.joined[channel] = true
	s.mu.Unlock()
	return nil
}

func (s *Subscriber) write(event string, data interface{}) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	frame, err := wsproto.Encode(event, "", data)
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, frame)
}

func (s *Subscriber) readLoop(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			s.disconnected(conn, err)
			return
		}
		f, err := wsproto.Decode(msg)
		if err != nil {
			continue
		}
		s.dispatch(f)
	}
}

func (s *Subscriber) dispatch(f wsproto.Frame) {
	switch f.Event {
	case wsproto.EventPing:
		_ = s.write(wsproto.EventPong, nil)
		return
	case wsproto.EventPong, wsproto.EventSubscriptionSucceeded:
		return
	case wsproto.EventSubscriptionError:
		var data wsproto.ErrorData
		_ = json.Unmarshal(f.Data, &data)
		s.logger.Warn("realtime subscription rejected", zap.String("channel", f.Channel), zap.String("reason", data.Message))
		s.mu.Lock()
		delete(s.joined, f.Channel)
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	h := s.handlers[binding{channel: f.Channel, event: events.Type(f.Event)}]
	s.mu.Unlock()
	if h == nil {
		return
	}

	var env events.Envelope
	if err := json.Unmarshal(f.Data, &env); err != nil {
		s.logger.Warn("realtime payload parse error", zap.String("event", f.Event), zap.Error(err))
		return
	}
	e, err := env.Event()
	if err != nil {
		s.logger.Warn("realtime payload rejected", zap.String("event", f.Event), zap.Error(err))
		return
	}
	h(e)
}

func (s *Subscriber) disconnected(conn *websocket.Conn, err error) {
	s.mu.Lock()
	if s.conn == conn {
		s.conn = nil
		s.socketId = ""
		s.joined = make(map[string]bool)
	}
	s.mu.Unlock()
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		s.logger.Info("realtime disconnected", zap.Error(err))
	}
	conn.Close()
}

// Close shuts the socket and waits for the read loop. Bindings survive so a
// later Connect rejoins them.
func (s *Subscriber) Close() error {
	s.mu.Lock()
	conn, done := s.conn, s.done
	s.mu.Unlock()
	if conn == nil {
		return nil
	}

	s.writeMu.Lock()
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	s.writeMu.Unlock()
	err := conn.Close()
	<-done
	return err
}
