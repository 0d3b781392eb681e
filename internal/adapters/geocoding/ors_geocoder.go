package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/domain"
	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/platform/obs"
	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/ports"
)

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// ORSGeocoder implements Geocoder using OpenRouteService (/geocode/search).
//
// It coordinates:
//   - Address normalization
//   - Persistent geocode caching
//   - External API calls with retry/backoff
//
// The geocoder is safe for concurrent use.
type ORSGeocoder struct {
	session        *http.Client
	apiKey         string
	baseURL        string
	country        string
	cache          ports.GeocodeCache
	maxAttempts    int
	initialBackoff time.Duration
}

type Option func(*ORSGeocoder)

// WithBaseURL points the geocoder at another ORS-compatible endpoint.
func WithBaseURL(u string) Option {
	return func(o *ORSGeocoder) { o.baseURL = strings.TrimRight(u, "/") }
}

// WithCountry restricts results to an ISO country code (default KE).
func WithCountry(code string) Option {
	return func(o *ORSGeocoder) { o.country = code }
}

func WithBackoff(initial time.Duration) Option {
	return func(o *ORSGeocoder) { o.initialBackoff = initial }
}

func NewORSGeocoder(apiKey string, cache ports.GeocodeCache, opts ...Option) (*ORSGeocoder, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	g := &ORSGeocoder{
		session:        &http.Client{Timeout: 10 * time.Second},
		apiKey:         apiKey,
		baseURL:        "https://api.openrouteservice.org",
		country:        "KE",
		cache:          cache,
		maxAttempts:    4,
		initialBackoff: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// Normalize collapses whitespace so equal addresses share a cache key.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Geocode resolves addresses, consulting the cache before calling ORS.
// Results are keyed by normalized address. Any unresolved address fails the call.
func (o *ORSGeocoder) Geocode(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.Geocode")(&err)

	needed := make([]string, 0, len(addresses))
	seen := make(map[string]struct{}, len(addresses))
	for _, a := range addresses {
		n := Normalize(a)
		if n == "" {
			return nil, errors.New("geocode: address must be non-empty")
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		needed = append(needed, n)
	}

	if len(needed) == 0 {
		return map[string]domain.Coordinates{}, nil
	}

	hits := make(map[string]domain.Coordinates)
	if o.cache != nil {
		hits, err = o.cache.GetMany(ctx, needed)
		if err != nil {
			return nil, fmt.Errorf("ORS get geocode cache: %w", err)
		}
	}

	misses := make([]string, 0, len(needed))
	for _, a := range needed {
		if _, ok := hits[a]; !ok {
			misses = append(misses, a)
		}
	}

	fresh := make(map[string]domain.Coordinates, len(misses))
	for _, a := range misses {
		c, err := o.geocodeOne(ctx, a)
		if err != nil {
			return nil, fmt.Errorf("retrieving coordinates: %w", err)
		}
		fresh[a] = c
	}

	if o.cache != nil && len(fresh) > 0 {
		if err := o.cache.PutMany(ctx, fresh); err != nil {
			log.Printf("geocode cache write failed: %v", err)
		}
	}

	out := make(map[string]domain.Coordinates, len(hits)+len(fresh))
	for k, v := range hits {
		out[k] = v
	}
	for k, v := range fresh {
		out[k] = v
	}

	return out, nil
}

// geocodeOne resolves a single normalized address.
func (o *ORSGeocoder) geocodeOne(ctx context.Context, address string) (domain.Coordinates, error) {
	endpoint := o.baseURL + "/geocode/search"

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := o.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", address)
		q.Set("boundary.country", o.country)
		q.Set("size", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("execute request for %q: %w", address, err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, fmt.Errorf("decode geocode response for %q: %w", address, err)
	}

	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, fmt.Errorf("no geocode results for %q", address)
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Coordinates{}, fmt.Errorf("invalid coordinate format for %q", address)
	}

	c := domain.Coordinates{Lon: coords[0], Lat: coords[1]}
	if err := c.Validate(); err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", address, err)
	}

	return c, nil
}
