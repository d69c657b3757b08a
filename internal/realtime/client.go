package realtime

import (
	"encoding/json"
	"fmt"
	"time"

	"leadflow-be/internal/entity"
	"leadflow-be/pkg/wsproto"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub *Hub

	conn *websocket.Conn

	SocketId  string
	Principal entity.Principal

	// Buffered channel of outbound frames. Only the hub closes it.
	send chan []byte
}

func (c *Client) principalKey() string {
	return fmt.Sprintf("%s:%d", c.Principal.Role, c.Principal.Id)
}

// readPump handles subscribe, unsubscribe and ping frames from the peer.
func (c *Client) readPump() {
	defer func() {
		c.hub.enqueueUnregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("Client", "Unexpected close", map[string]interface{}{"socket_id": c.SocketId, "error": err.Error()})
			}
			return
		}
		c.handle(message)
	}
}

func (c *Client) handle(message []byte) {
	frame, err := wsproto.Decode(message)
	if err != nil {
		return
	}

	switch frame.Event {
	case wsproto.EventPing:
		c.reply(wsproto.EventPong, "", nil)

	case wsproto.EventSubscribe, wsproto.EventUnsubscribe:
		var data wsproto.SubscribeData
		if err := json.Unmarshal(frame.Data, &data); err != nil || data.Channel == "" {
			c.reply(wsproto.EventSubscriptionError, data.Channel, wsproto.ErrorData{Message: "channel is required"})
			return
		}
		if frame.Event == wsproto.EventUnsubscribe {
			c.hub.enqueueSubscription(subscription{client: c, channel: data.Channel})
			return
		}
		if err := c.hub.authorize(c, data.Channel, data.Auth); err != nil {
			c.hub.logger.Warn("Client", "Subscription rejected", map[string]interface{}{"socket_id": c.SocketId, "channel": data.Channel, "error": err.Error()})
			c.reply(wsproto.EventSubscriptionError, data.Channel, wsproto.ErrorData{Message: err.Error()})
			return
		}
		c.hub.enqueueSubscription(subscription{client: c, channel: data.Channel, add: true})
	}
}

// reply goes through the hub so only the hub ever writes to or closes
// c.send.
func (c *Client) reply(event, channel string, data interface{}) {
	frame, err := wsproto.Encode(event, channel, data)
	if err != nil {
		return
	}
	c.hub.enqueueDirect(direct{client: c, frame: frame})
}

// writePump pumps frames from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
