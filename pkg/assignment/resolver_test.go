package assignment

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pool(ids ...uint) []Candidate {
	out := make([]Candidate, 0, len(ids))
	for _, id := range ids {
		out = append(out, Candidate{ProviderId: id, Active: true})
	}
	return out
}

type stubRanker struct {
	distances []float64
	err       error
}

func (s stubRanker) Rank(_ context.Context, _ string, _ []Candidate) ([]float64, error) {
	return s.distances, s.err
}

type failingStore struct{}

func (failingStore) Next(context.Context, uint) (uint64, error) {
	return 0, errors.New("down")
}

func TestRoundRobin_EachProviderOncePerCycle(t *testing.T) {
	r := NewResolver(NewMemoryCursorStore())
	ctx := context.Background()

	// Pool order is deliberately unsorted; resolution uses ascending id.
	req := Request{LocationId: 1, Algorithm: RoundRobin, Pool: pool(30, 10, 20)}

	var got []uint
	for i := 0; i < 6; i++ {
		id, err := r.Resolve(ctx, req)
		require.NoError(t, err)
		require.NotNil(t, id)
		got = append(got, *id)
	}
	assert.Equal(t, []uint{10, 20, 30, 10, 20, 30}, got)
}

func TestRoundRobin_CursorIsPerLocation(t *testing.T) {
	r := NewResolver(NewMemoryCursorStore())
	ctx := context.Background()

	a, _ := r.Resolve(ctx, Request{LocationId: 1, Algorithm: RoundRobin, Pool: pool(1, 2)})
	b, _ := r.Resolve(ctx, Request{LocationId: 2, Algorithm: RoundRobin, Pool: pool(1, 2)})
	assert.Equal(t, uint(1), *a)
	assert.Equal(t, uint(1), *b)
}

func TestResolve_Unassigned(t *testing.T) {
	r := NewResolver(NewMemoryCursorStore())
	ctx := context.Background()

	tests := []struct {
		name string
		req  Request
	}{
		{"manual never assigns", Request{Algorithm: Manual, Pool: pool(1, 2)}},
		{"empty round robin", Request{Algorithm: RoundRobin}},
		{"empty load balance", Request{Algorithm: LoadBalance}},
		{"empty geographic", Request{Algorithm: Geographic, ZipCode: "10001"}},
		{"only inactive", Request{Algorithm: RoundRobin, Pool: []Candidate{{ProviderId: 1, Active: false}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := r.Resolve(ctx, tt.req)
			assert.NoError(t, err)
			assert.Nil(t, id)
		})
	}
}

func TestResolve_SkipsInactiveProviders(t *testing.T) {
	r := NewResolver(NewMemoryCursorStore())
	req := Request{LocationId: 1, Algorithm: RoundRobin, Pool: []Candidate{
		{ProviderId: 1, Active: false},
		{ProviderId: 2, Active: true},
	}}
	for i := 0; i < 3; i++ {
		id, err := r.Resolve(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, uint(2), *id)
	}
}

func TestLoadBalance_FewestOpenLeadsWins(t *testing.T) {
	r := NewResolver(NewMemoryCursorStore())
	req := Request{LocationId: 1, Algorithm: LoadBalance, Pool: []Candidate{
		{ProviderId: 1, Active: true, OpenLeads: 4},
		{ProviderId: 2, Active: true, OpenLeads: 1},
		{ProviderId: 3, Active: true, OpenLeads: 2},
	}}
	id, err := r.Resolve(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, uint(2), *id)
}

func TestLoadBalance_TiesRotate(t *testing.T) {
	r := NewResolver(NewMemoryCursorStore())
	req := Request{LocationId: 1, Algorithm: LoadBalance, Pool: []Candidate{
		{ProviderId: 1, Active: true, OpenLeads: 0},
		{ProviderId: 2, Active: true, OpenLeads: 5},
		{ProviderId: 3, Active: true, OpenLeads: 0},
	}}
	first, _ := r.Resolve(context.Background(), req)
	second, _ := r.Resolve(context.Background(), req)
	assert.Equal(t, uint(1), *first)
	assert.Equal(t, uint(3), *second)
}

func TestGeographic(t *testing.T) {
	ctx := context.Background()
	inf := math.Inf(1)

	tests := []struct {
		name   string
		ranker ProximityRanker
		zip    string
		want   uint
	}{
		{"nearest wins", stubRanker{distances: []float64{12, 3, 40}}, "10001", 2},
		{"tie broken by round robin", stubRanker{distances: []float64{5, 5, 9}}, "10001", 1},
		{"ranker error falls back", stubRanker{err: errors.New("quota")}, "10001", 1},
		{"nothing placed falls back", stubRanker{distances: []float64{inf, inf, inf}}, "10001", 1},
		{"no zip falls back", stubRanker{distances: []float64{9, 1, 9}}, "", 1},
		{"no ranker falls back", nil, "10001", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []Option
			if tt.ranker != nil {
				opts = append(opts, WithRanker(tt.ranker))
			}
			r := NewResolver(NewMemoryCursorStore(), opts...)
			id, err := r.Resolve(ctx, Request{LocationId: 1, Algorithm: Geographic, ZipCode: tt.zip, Pool: pool(1, 2, 3)})
			require.NoError(t, err)
			assert.Equal(t, tt.want, *id)
		})
	}
}

func TestFallbackCursorStore(t *testing.T) {
	mem := NewMemoryCursorStore()
	s := NewFallbackCursorStore(nil, failingStore{}, mem)

	n, err := s.Next(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)

	_, err = NewFallbackCursorStore(nil, failingStore{}).Next(context.Background(), 1)
	assert.Error(t, err)
}

func TestResolve_CursorFailureIsReported(t *testing.T) {
	r := NewResolver(failingStore{})
	_, err := r.Resolve(context.Background(), Request{LocationId: 1, Algorithm: RoundRobin, Pool: pool(1, 2)})
	assert.Error(t, err)
}

func TestAlgorithmValid(t *testing.T) {
	assert.True(t, Geographic.Valid())
	assert.False(t, Algorithm("nearest").Valid())
}
