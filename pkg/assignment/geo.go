package assignment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

const geoapifySearchURL = "https://api.geoapify.com/v1/geocode/search"

var ErrNotGeocoded = errors.New("address could not be geocoded")

type point struct {
	Lat float64
	Lon float64
}

// GeoapifyRanker geocodes the lead zip and provider addresses and ranks by
// great-circle distance. Lookups are cached for a day.
type GeoapifyRanker struct {
	apiKey  string
	baseURL string
	client  *http.Client
	cache   *cache.Cache
}

func NewGeoapifyRanker(apiKey string) *GeoapifyRanker {
	return &GeoapifyRanker{
		apiKey:  apiKey,
		baseURL: geoapifySearchURL,
		client:  &http.Client{Timeout: 5 * time.Second},
		cache:   cache.New(24*time.Hour, time.Hour),
	}
}

// WithBaseURL points the ranker at another geocoder endpoint.
func (g *GeoapifyRanker) WithBaseURL(u string) *GeoapifyRanker {
	g.baseURL = u
	return g
}

func (g *GeoapifyRanker) Rank(ctx context.Context, zipCode string, pool []Candidate) ([]float64, error) {
	origin, err := g.geocode(ctx, zipCode)
	if err != nil {
		return nil, fmt.Errorf("geocode lead zip %q: %w", zipCode, err)
	}

	distances := make([]float64, len(pool))
	for i, c := range pool {
		p, err := g.geocode(ctx, c.Address)
		if err != nil {
			distances[i] = math.Inf(1)
			continue
		}
		distances[i] = haversineKm(origin, p)
	}
	return distances, nil
}

func (g *GeoapifyRanker) geocode(ctx context.Context, text string) (point, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return point{}, ErrNotGeocoded
	}
	key := "geo:" + strings.ToLower(text)
	if v, ok := g.cache.Get(key); ok {
		return v.(point), nil
	}

	params := url.Values{}
	params.Add("text", text)
	params.Add("format", "json")
	params.Add("limit", "1")
	params.Add("apiKey", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return point{}, err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return point{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return point{}, fmt.Errorf("geocoder returned %d", resp.StatusCode)
	}

	var result struct {
		Results []struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return point{}, err
	}
	if len(result.Results) == 0 {
		return point{}, ErrNotGeocoded
	}

	p := point{Lat: result.Results[0].Lat, Lon: result.Results[0].Lon}
	g.cache.Set(key, p, cache.DefaultExpiration)
	return p, nil
}

const earthRadiusKm = 6371.0

func haversineKm(a, b point) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
