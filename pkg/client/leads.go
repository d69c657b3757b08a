package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

func (f LeadFilter) values() url.Values {
	q := url.Values{}
	if f.LocationId != 0 {
		q.Set("location_id", strconv.FormatUint(uint64(f.LocationId), 10))
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.DateFrom != "" {
		q.Set("date_from", f.DateFrom)
	}
	if f.DateTo != "" {
		q.Set("date_to", f.DateTo)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(f.PerPage))
	}
	return q
}

func (c *Client) leadPath(id uint, suffix string) string {
	return fmt.Sprintf("%s/leads/%d%s", c.session.prefix(), id, suffix)
}

// SubmitLead posts the public capture form and returns the new lead id.
func (c *Client) SubmitLead(ctx context.Context, lead NewLead) (uint, error) {
	var res struct {
		Id uint `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/leads", nil, lead, &res); err != nil {
		return 0, err
	}
	return res.Id, nil
}

func (c *Client) ListLeads(ctx context.Context, filter LeadFilter) (*Page[Lead], error) {
	var page Page[Lead]
	if err := c.do(ctx, http.MethodGet, c.session.prefix()+"/leads", filter.values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetLead(ctx context.Context, id uint) (*Lead, error) {
	var lead Lead
	if err := c.do(ctx, http.MethodGet, c.leadPath(id, ""), nil, nil, &lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

func (c *Client) UpdateLeadStatus(ctx context.Context, id uint, status LeadStatus) (*Lead, error) {
	var lead Lead
	if err := c.do(ctx, http.MethodPut, c.leadPath(id, ""), nil, map[string]LeadStatus{"status": status}, &lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

// Reassign is admin only.
func (c *Client) Reassign(ctx context.Context, id, providerId uint) (*Lead, error) {
	var lead Lead
	body := map[string]uint{"service_provider_id": providerId}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/admin/leads/%d/reassign", id), nil, body, &lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

func (c *Client) ListNotes(ctx context.Context, leadId uint) ([]Note, error) {
	var notes []Note
	if err := c.do(ctx, http.MethodGet, c.leadPath(leadId, "/notes"), nil, nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *Client) AddNote(ctx context.Context, leadId uint, text string) (*Note, error) {
	var note Note
	if err := c.do(ctx, http.MethodPost, c.leadPath(leadId, "/notes"), nil, map[string]string{"note": text}, &note); err != nil {
		return nil, err
	}
	return &note, nil
}
