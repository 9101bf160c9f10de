package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"cartographix/internal/apperr"
)

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Suggestion is one candidate returned by the place-lookup endpoint.
type Suggestion struct {
	DisplayName string  `json:"display_name"`
	City        string  `json:"city"`
	Country     string  `json:"country"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

// Geocoder resolves free-form place queries to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (Point, error)
	Search(ctx context.Context, query string, limit int) ([]Suggestion, error)
}

const nominatimUserAgent = "Cartographix/1.0"

// NominatimClient talks to a Nominatim instance. Outbound calls are paced to
// at most one per second, which the public instance's usage policy requires.
type NominatimClient struct {
	httpClient *http.Client
	baseURL    string
	pacer      *rate.Limiter
}

// NominatimOptions configures a NominatimClient.
type NominatimOptions struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// NewNominatimClient builds a client for the configured Nominatim base URL.
func NewNominatimClient(opts NominatimOptions) *NominatimClient {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://nominatim.openstreetmap.org"
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &NominatimClient{
		httpClient: client,
		baseURL:    base,
		pacer:      rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

type nominatimResult struct {
	DisplayName string `json:"display_name"`
	Name        string `json:"name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Address     struct {
		City         string `json:"city"`
		Town         string `json:"town"`
		Village      string `json:"village"`
		Municipality string `json:"municipality"`
		Country      string `json:"country"`
	} `json:"address"`
}

// Geocode resolves a place query to a single coordinate. A query Nominatim
// cannot resolve yields a LocationNotFound error.
func (c *NominatimClient) Geocode(ctx context.Context, query string) (Point, error) {
	results, err := c.search(ctx, query, 1)
	if err != nil {
		return Point{}, apperr.Wrap(apperr.KindLocationNotFound, "", err)
	}
	if len(results) == 0 {
		return Point{}, apperr.New(apperr.KindLocationNotFound, "")
	}
	return Point{Lat: results[0].Lat, Lon: results[0].Lon}, nil
}

// Search returns up to limit place suggestions for the query.
func (c *NominatimClient) Search(ctx context.Context, query string, limit int) ([]Suggestion, error) {
	if limit <= 0 {
		limit = 5
	}
	return c.search(ctx, query, limit)
}

func (c *NominatimClient) search(ctx context.Context, query string, limit int) ([]Suggestion, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("geo: query is required")
	}
	if err := c.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("addressdetails", "1")

	endpoint := c.baseURL + "/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", nominatimUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geo: nominatim request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geo: nominatim http %d", resp.StatusCode)
	}

	var raw []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("geo: decode nominatim response: %w", err)
	}

	out := make([]Suggestion, 0, len(raw))
	for _, item := range raw {
		lat, errLat := strconv.ParseFloat(item.Lat, 64)
		lon, errLon := strconv.ParseFloat(item.Lon, 64)
		if errLat != nil || errLon != nil {
			continue
		}
		city := firstNonEmpty(
			item.Address.City,
			item.Address.Town,
			item.Address.Village,
			item.Address.Municipality,
			item.Name,
		)
		out = append(out, Suggestion{
			DisplayName: item.DisplayName,
			City:        city,
			Country:     item.Address.Country,
			Lat:         lat,
			Lon:         lon,
		})
	}
	return out, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
