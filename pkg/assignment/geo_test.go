package assignment

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeoapifyRanker_Rank(t *testing.T) {
	coords := map[string]string{
		"10001":        `{"results":[{"lat":40.75,"lon":-73.99}]}`,
		"Brooklyn, NY": `{"results":[{"lat":40.68,"lon":-73.94}]}`,
		"Boston, MA":   `{"results":[{"lat":42.36,"lon":-71.06}]}`,
	}
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		body, ok := coords[r.URL.Query().Get("text")]
		if !ok {
			body = `{"results":[]}`
		}
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	g := NewGeoapifyRanker("key").WithBaseURL(srv.URL)
	candidates := []Candidate{
		{ProviderId: 1, Address: "Boston, MA"},
		{ProviderId: 2, Address: "Brooklyn, NY"},
		{ProviderId: 3, Address: "Nowhere"},
	}

	d, err := g.Rank(context.Background(), "10001", candidates)
	require.NoError(t, err)
	require.Len(t, d, 3)
	assert.Less(t, d[1], d[0])
	assert.True(t, math.IsInf(d[2], 1))

	before := calls
	_, err = g.Rank(context.Background(), "10001", candidates[:2])
	require.NoError(t, err)
	assert.Equal(t, before, calls, "cached lookups must not hit the geocoder")
}

func TestGeoapifyRanker_UnknownZipIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	_, err := NewGeoapifyRanker("key").WithBaseURL(srv.URL).Rank(context.Background(), "00000", []Candidate{{ProviderId: 1}})
	assert.ErrorIs(t, err, ErrNotGeocoded)
}

func TestHaversine(t *testing.T) {
	// New York to Los Angeles is roughly 3936 km.
	d := haversineKm(point{40.7128, -74.0060}, point{34.0522, -118.2437})
	assert.InDelta(t, 3936, d, 15)
}
