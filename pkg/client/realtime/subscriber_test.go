package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"leadflow-be/pkg/client"
	"leadflow-be/pkg/events"
	"leadflow-be/pkg/wsproto"

	"github.com/fasthttp/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// socketServer speaks just enough of the hub protocol for one client.
type socketServer struct {
	t      *testing.T
	srv    *httptest.Server
	frames chan wsproto.Frame
	conns  chan *websocket.Conn
}

func newSocketServer(t *testing.T) *socketServer {
	s := &socketServer{t: t, frames: make(chan wsproto.Frame, 16), conns: make(chan *websocket.Conn, 1)}
	upgrader := websocket.Upgrader{}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hello, _ := wsproto.Encode(wsproto.EventConnectionEstablished, "", wsproto.ConnectionData{SocketId: "11.22"})
		_ = conn.WriteMessage(websocket.TextMessage, hello)
		s.conns <- conn
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			f, err := wsproto.Decode(msg)
			if err == nil {
				s.frames <- f
			}
		}
	}))
	return s
}

func (s *socketServer) url() string {
	return "ws" + strings.TrimPrefix(s.srv.URL, "http") + "/api/ws?token=t"
}

func (s *socketServer) next() wsproto.Frame {
	s.t.Helper()
	select {
	case f := <-s.frames:
		return f
	case <-time.After(2 * time.Second):
		s.t.Fatal("server received no frame")
		return wsproto.Frame{}
	}
}

type fakeBackend struct {
	mu         sync.Mutex
	cfg        *client.RealtimeConfig
	cfgErr     error
	socketURL  string
	authorized []string
}

func (b *fakeBackend) RealtimeConfig(context.Context) (*client.RealtimeConfig, error) {
	return b.cfg, b.cfgErr
}

func (b *fakeBackend) AuthorizeChannel(_ context.Context, socketId, channel string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.authorized = append(b.authorized, socketId+"|"+channel)
	return "leadflow:sig", nil
}

func (b *fakeBackend) SocketURL() string { return b.socketURL }

func TestConnectDegradesWhenDisabled(t *testing.T) {
	s := New(&fakeBackend{cfg: &client.RealtimeConfig{Enabled: false}})
	assert.ErrorIs(t, s.Connect(context.Background()), ErrDisabled)
	assert.False(t, s.Connected())

	s = New(&fakeBackend{cfgErr: errors.New("503")})
	assert.Error(t, s.Connect(context.Background()))

	s = New(&fakeBackend{cfg: &client.RealtimeConfig{Enabled: true}, socketURL: "ws://127.0.0.1:1/ws"})
	assert.Error(t, s.Connect(context.Background()))
	assert.False(t, s.Connected())
}

func TestSubscribeBindsOnce(t *testing.T) {
	s := New(&fakeBackend{})
	ctx := context.Background()

	unsub, err := s.Subscribe(ctx, "admin", events.LeadAssigned, func(events.Event) {})
	require.NoError(t, err)

	_, err = s.Subscribe(ctx, "admin", events.LeadAssigned, func(events.Event) {})
	assert.ErrorIs(t, err, ErrAlreadyBound)

	_, err = s.Subscribe(ctx, "admin", events.LeadStatusUpdated, func(events.Event) {})
	assert.NoError(t, err)

	unsub()
	unsub()

	_, err = s.Subscribe(ctx, "admin", events.LeadAssigned, func(events.Event) {})
	assert.NoError(t, err)
}

func TestPrivateChannelRoundTrip(t *testing.T) {
	defer goleak.VerifyNone(t)

	server := newSocketServer(t)
	defer server.srv.Close()
	backend := &fakeBackend{cfg: &client.RealtimeConfig{Enabled: true}, socketURL: server.url()}
	s := New(backend)
	ctx := context.Background()

	got := make(chan events.Event, 1)
	channel := "private-provider.7"
	unsub, err := s.Subscribe(ctx, channel, events.LeadStatusUpdated, func(e events.Event) { got <- e })
	require.NoError(t, err)

	require.NoError(t, s.Connect(ctx))
	assert.True(t, s.Connected())

	join := server.next()
	assert.Equal(t, wsproto.EventSubscribe, join.Event)
	var data wsproto.SubscribeData
	require.NoError(t, json.Unmarshal(join.Data, &data))
	assert.Equal(t, wsproto.SubscribeData{Channel: channel, Auth: "leadflow:sig"}, data)
	assert.Equal(t, []string{"11.22|" + channel}, backend.authorized)

	conn := <-server.conns
	lead := events.LeadRef{Id: 42, Name: "Jane", Status: "closed", OldStatus: "new"}
	frame, err := wsproto.Encode(string(events.LeadStatusUpdated), channel, events.ToEnvelope(events.NewLeadStatusUpdated(lead, events.Actor{})))
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame))

	// Same event on a channel without a binding is ignored.
	stray, err := wsproto.Encode(string(events.LeadStatusUpdated), "admin", events.ToEnvelope(events.NewLeadStatusUpdated(lead, events.Actor{})))
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, stray))

	select {
	case e := <-got:
		assert.Equal(t, events.LeadStatusUpdated, e.EventType())
		assert.Equal(t, uint(42), e.Lead().Id)
		assert.Equal(t, "Lead 'Jane' status changed from new to closed", e.Message())
	case <-time.After(2 * time.Second):
		t.Fatal("handler not called")
	}

	unsub()
	leave := server.next()
	assert.Equal(t, wsproto.EventUnsubscribe, leave.Event)
	unsub()

	require.NoError(t, s.Close())
	assert.False(t, s.Connected())
	conn.Close()
}
