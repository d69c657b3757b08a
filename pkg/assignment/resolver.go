// Package assignment picks the service provider that receives a new lead.
package assignment

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
)

type Algorithm string

const (
	RoundRobin  Algorithm = "round_robin"
	Geographic  Algorithm = "geographic"
	LoadBalance Algorithm = "load_balance"
	Manual      Algorithm = "manual"
)

var Algorithms = []Algorithm{RoundRobin, Geographic, LoadBalance, Manual}

func (a Algorithm) Valid() bool {
	for _, known := range Algorithms {
		if a == known {
			return true
		}
	}
	return false
}

// Candidate is one provider of a location pool.
type Candidate struct {
	ProviderId uint
	Name       string
	Address    string
	Active     bool
	// OpenLeads counts leads in new or contacted. Only load_balance reads it.
	OpenLeads int64
}

type Request struct {
	LocationId uint
	Algorithm  Algorithm
	ZipCode    string
	Pool       []Candidate
}

// CursorStore hands out a strictly increasing, 1-based sequence per location.
type CursorStore interface {
	Next(ctx context.Context, locationId uint) (uint64, error)
}

// ProximityRanker returns one distance per pool entry, same order as pool.
// math.Inf(1) marks a provider that could not be placed.
type ProximityRanker interface {
	Rank(ctx context.Context, zipCode string, pool []Candidate) ([]float64, error)
}

type Resolver struct {
	cursors CursorStore
	ranker  ProximityRanker
	logger  *zap.Logger
}

type Option func(*Resolver)

func WithRanker(r ProximityRanker) Option {
	return func(res *Resolver) { res.ranker = r }
}

func WithLogger(l *zap.Logger) Option {
	return func(res *Resolver) { res.logger = l }
}

func NewResolver(cursors CursorStore, opts ...Option) *Resolver {
	r := &Resolver{cursors: cursors, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the chosen provider id, or nil when the lead stays unassigned.
// An empty pool is not an error.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*uint, error) {
	if req.Algorithm == Manual {
		return nil, nil
	}

	pool := eligible(req.Pool)
	if len(pool) == 0 {
		return nil, nil
	}

	var (
		chosen Candidate
		err    error
	)
	switch req.Algorithm {
	case RoundRobin:
		chosen, err = r.roundRobin(ctx, req.LocationId, pool)
	case LoadBalance:
		chosen, err = r.loadBalance(ctx, req.LocationId, pool)
	case Geographic:
		chosen, err = r.geographic(ctx, req, pool)
	default:
		return nil, fmt.Errorf("unknown assignment algorithm %q", req.Algorithm)
	}
	if err != nil {
		return nil, err
	}

	id := chosen.ProviderId
	return &id, nil
}

// eligible drops inactive and duplicate providers and sorts by id.
func eligible(pool []Candidate) []Candidate {
	seen := make(map[uint]bool, len(pool))
	out := make([]Candidate, 0, len(pool))
	for _, c := range pool {
		if !c.Active || seen[c.ProviderId] {
			continue
		}
		seen[c.ProviderId] = true
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProviderId < out[j].ProviderId })
	return out
}

func (r *Resolver) roundRobin(ctx context.Context, locationId uint, pool []Candidate) (Candidate, error) {
	if len(pool) == 1 {
		return pool[0], nil
	}
	n, err := r.cursors.Next(ctx, locationId)
	if err != nil {
		return Candidate{}, fmt.Errorf("failed to advance cursor for location %d: %w", locationId, err)
	}
	if n == 0 {
		n = 1
	}
	return pool[(n-1)%uint64(len(pool))], nil
}

func (r *Resolver) loadBalance(ctx context.Context, locationId uint, pool []Candidate) (Candidate, error) {
	min := pool[0].OpenLeads
	for _, c := range pool[1:] {
		if c.OpenLeads < min {
			min = c.OpenLeads
		}
	}
	var tied []Candidate
	for _, c := range pool {
		if c.OpenLeads == min {
			tied = append(tied, c)
		}
	}
	return r.roundRobin(ctx, locationId, tied)
}

const distanceEpsilon = 1e-6

func (r *Resolver) geographic(ctx context.Context, req Request, pool []Candidate) (Candidate, error) {
	if r.ranker == nil || req.ZipCode == "" {
		return r.roundRobin(ctx, req.LocationId, pool)
	}

	distances, err := r.ranker.Rank(ctx, req.ZipCode, pool)
	if err != nil || len(distances) != len(pool) {
		r.logger.Warn("proximity ranking unavailable, using round robin",
			zap.Uint("location_id", req.LocationId), zap.Error(err))
		return r.roundRobin(ctx, req.LocationId, pool)
	}

	best := math.Inf(1)
	for _, d := range distances {
		if d < best {
			best = d
		}
	}
	if math.IsInf(best, 1) {
		return r.roundRobin(ctx, req.LocationId, pool)
	}

	var nearest []Candidate
	for i, d := range distances {
		if math.Abs(d-best) <= distanceEpsilon {
			nearest = append(nearest, pool[i])
		}
	}
	return r.roundRobin(ctx, req.LocationId, nearest)
}
