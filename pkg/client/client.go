// Package client is the Go SDK of the leadflow API used by dashboards and
// the leadctl command.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"leadflow-be/pkg/apperr"

	"go.uber.org/zap"
)

// AuthErrorHandler is told about every 401 and 403 after the session has
// been updated. Kind is one of unauthorized, account_inactive,
// subscription_inactive or forbidden.
type AuthErrorHandler func(kind apperr.Kind, err error)

type Client struct {
	baseURL *url.URL
	http    *http.Client
	session *Session
	logger  *zap.Logger
	onAuth  AuthErrorHandler
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithAuthErrorHandler(h AuthErrorHandler) Option {
	return func(c *Client) { c.onAuth = h }
}

// New builds a client for the API rooted at baseURL, e.g.
// "http://localhost:3000/api".
func New(baseURL string, session *Session, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: 15 * time.Second},
		session: session,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Session() *Session {
	return c.session
}

// envelope mirrors the API's response body.
type envelope struct {
	Success              bool              `json:"success"`
	Code                 int               `json:"code"`
	Message              string            `json:"message"`
	Data                 json.RawMessage   `json:"data"`
	Errors               map[string]string `json:"errors"`
	AccountInactive      bool              `json:"account_inactive"`
	SubscriptionInactive bool              `json:"subscription_inactive"`
}

func (c *Client) url(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// send performs one authorized request and returns the raw body of a
// successful response. Failures come back as *apperr.Error.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body interface{}) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path, query), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "Request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "Failed to read response", err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}
	return nil, c.intercept(method, path, resp.StatusCode, raw)
}

// intercept turns an error response into an apperr and handles the
// session side of authentication failures in one place.
func (c *Client) intercept(method, path string, status int, raw []byte) error {
	var env envelope
	_ = json.Unmarshal(raw, &env)

	kind := apperr.FromStatus(status, env.AccountInactive, env.SubscriptionInactive)
	message := env.Message
	if message == "" {
		message = http.StatusText(status)
	}
	err := &apperr.Error{Kind: kind, Message: message, Fields: env.Errors}

	switch kind {
	case apperr.KindUnauthorized:
		c.session.Clear()
		c.logger.Info("session cleared", zap.String("path", path), zap.Int("status", status))
	case apperr.KindAccountInactive, apperr.KindSubscriptionInactive, apperr.KindForbidden:
		c.logger.Info("request forbidden", zap.String("path", path), zap.String("kind", string(kind)))
	default:
		c.logger.Debug("request failed", zap.String("method", method), zap.String("path", path), zap.Int("status", status))
		return err
	}
	if c.onAuth != nil {
		c.onAuth(kind, err)
	}
	return err
}

// do sends a request and decodes the envelope's data into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	raw, err := c.send(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return apperr.Wrap(apperr.KindInternal, "Malformed response", err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return apperr.Wrap(apperr.KindInternal, "Malformed response data", err)
	}
	return nil
}

// Login authenticates against the session's role and stores the token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var res LoginResult
	err := c.do(ctx, http.MethodPost, c.session.prefix()+"/login", nil, map[string]string{
		"email":    email,
		"password": password,
	}, &res)
	if err != nil {
		return nil, err
	}
	c.session.SetToken(res.Token)
	return &res, nil
}

// Me returns the signed-in provider and remembers its id for the private
// channel name.
func (c *Client) Me(ctx context.Context) (*Provider, error) {
	var p Provider
	if err := c.do(ctx, http.MethodGet, "/provider/user", nil, nil, &p); err != nil {
		return nil, err
	}
	c.session.setProviderId(p.Id)
	return &p, nil
}

func (c *Client) Logout(ctx context.Context) error {
	var err error
	if c.session.Role() == RoleProvider {
		err = c.do(ctx, http.MethodPost, "/provider/logout", nil, nil, nil)
	}
	c.session.Clear()
	return err
}

// RealtimeConfig reads the pusher settings group for the session's role.
func (c *Client) RealtimeConfig(ctx context.Context) (*RealtimeConfig, error) {
	path := "/provider/settings/pusher"
	if c.session.Role() == RoleAdmin {
		path = "/admin/settings/group/pusher"
	}
	var cfg RealtimeConfig
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// AuthorizeChannel signs socketId for a private channel.
func (c *Client) AuthorizeChannel(ctx context.Context, socketId, channel string) (string, error) {
	raw, err := c.send(ctx, http.MethodPost, "/broadcasting/auth", nil, map[string]string{
		"socket_id":    socketId,
		"channel_name": channel,
	})
	if err != nil {
		return "", err
	}
	var res struct {
		Auth string `json:"auth"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "Malformed channel auth response", err)
	}
	return res.Auth, nil
}

// SocketURL is the websocket endpoint with the session token attached.
func (c *Client) SocketURL() string {
	u := *c.baseURL
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = c.baseURL.Path + "/ws"
	u.RawQuery = url.Values{"token": {c.session.Token()}}.Encode()
	return u.String()
}
