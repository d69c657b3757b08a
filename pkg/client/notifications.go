package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

func (c *Client) UnreadCount(ctx context.Context) (int64, error) {
	var res struct {
		Count int64 `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, c.session.prefix()+"/notifications/unread", nil, nil, &res); err != nil {
		return 0, err
	}
	return res.Count, nil
}

// ListNotifications returns the newest page, most recent first.
func (c *Client) ListNotifications(ctx context.Context, perPage int) ([]Notification, error) {
	q := url.Values{}
	if perPage > 0 {
		q.Set("per_page", strconv.Itoa(perPage))
	}
	var page Page[Notification]
	if err := c.do(ctx, http.MethodGet, c.session.prefix()+"/notifications", q, nil, &page); err != nil {
		return nil, err
	}
	return page.Data, nil
}

func (c *Client) MarkRead(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, c.session.prefix()+"/notifications/"+url.PathEscape(id)+"/read", nil, nil, nil)
}

func (c *Client) MarkAllRead(ctx context.Context) (int64, error) {
	var res struct {
		Updated int64 `json:"updated"`
	}
	if err := c.do(ctx, http.MethodPost, c.session.prefix()+"/notifications/read-all", nil, nil, &res); err != nil {
		return 0, err
	}
	return res.Updated, nil
}
