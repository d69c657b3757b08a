// Package wsproto is the frame format spoken on the realtime websocket by
// the API and its Go client.
package wsproto

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Control events. Anything else on the wire is a domain event name.
const (
	EventConnectionEstablished = "connection_established"
	EventSubscribe             = "subscribe"
	EventUnsubscribe           = "unsubscribe"
	EventSubscriptionSucceeded = "subscription_succeeded"
	EventSubscriptionError     = "subscription_error"
	EventPing                  = "ping"
	EventPong                  = "pong"
)

const privatePrefix = "private-"

type Frame struct {
	Event   string          `json:"event"`
	Channel string          `json:"channel,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type ConnectionData struct {
	SocketId string `json:"socket_id"`
}

type SubscribeData struct {
	Channel string `json:"channel"`
	Auth    string `json:"auth,omitempty"`
}

type ErrorData struct {
	Message string `json:"message"`
}

// Encode builds a frame; data may be nil.
func Encode(event, channel string, data interface{}) ([]byte, error) {
	f := Frame{Event: event, Channel: channel}
	if data != nil {
		raw, ok := data.(json.RawMessage)
		if !ok {
			var err error
			if raw, err = json.Marshal(data); err != nil {
				return nil, err
			}
		}
		f.Data = raw
	}
	return json.Marshal(f)
}

func Decode(b []byte) (Frame, error) {
	var f Frame
	err := json.Unmarshal(b, &f)
	return f, err
}

func IsPrivate(channel string) bool {
	return strings.HasPrefix(channel, privatePrefix)
}

// Sign returns the "key:signature" string that authorizes socketId on a
// private channel. The signature is HMAC-SHA256 over "socket_id:channel".
func Sign(key, secret, socketId, channel string) (string, error) {
	sig, err := jwt.SigningMethodHS256.Sign(socketId+":"+channel, []byte(secret))
	if err != nil {
		return "", err
	}
	return key + ":" + hex.EncodeToString(sig), nil
}

func Verify(key, secret, socketId, channel, auth string) bool {
	gotKey, hexSig, ok := strings.Cut(auth, ":")
	if !ok || gotKey != key {
		return false
	}
	sig, err := hex.DecodeString(hexSig)
	if err != nil {
		return false
	}
	return jwt.SigningMethodHS256.Verify(socketId+":"+channel, sig, []byte(secret)) == nil
}
