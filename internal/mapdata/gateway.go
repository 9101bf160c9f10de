package mapdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"cartographix/internal/apperr"
)

// driveThreshold is the effective radius above which only drivable road
// classes are fetched; smaller areas get every highway way for more detail.
const driveThreshold = 5000.0

const overpassTimeout = 60 // seconds, embedded in the query

// Gateway fetches street and feature geometry from a list of equivalent
// Overpass endpoints, falling back to the next endpoint on any failure.
type Gateway struct {
	endpoints  []string
	httpClient *http.Client
	log        zerolog.Logger
}

// GatewayOptions configures a Gateway.
type GatewayOptions struct {
	Endpoints  []string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     zerolog.Logger
}

// NewGateway builds a Gateway over the given endpoints.
func NewGateway(opts GatewayOptions) *Gateway {
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 90 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Gateway{
		endpoints:  opts.Endpoints,
		httpClient: client,
		log:        opts.Logger,
	}
}

// Fetch retrieves the street graph around center plus the requested optional
// layers. The street graph is mandatory; water and park layers are
// best-effort and omitted on failure.
func (g *Gateway) Fetch(ctx context.Context, center Point, radiusMeters float64, layers Layers) (*Graph, *FeatureSet, error) {
	graph, err := g.FetchStreets(ctx, center, radiusMeters)
	if err != nil {
		return nil, nil, err
	}
	return graph, g.FetchFeatures(ctx, center, radiusMeters, layers), nil
}

// FetchFeatures retrieves the optional water and park layers. A layer that
// fails to fetch is logged and simply omitted, never escalated.
func (g *Gateway) FetchFeatures(ctx context.Context, center Point, radiusMeters float64, layers Layers) *FeatureSet {
	features := &FeatureSet{}
	if layers.Water {
		if water, err := g.fetchPolygons(ctx, center, radiusMeters, `way["natural"="water"]`); err != nil {
			g.log.Warn().Err(err).Msg("water layer fetch failed, omitting")
		} else {
			features.Water = water
		}
	}
	if layers.Parks {
		if parks, err := g.fetchPolygons(ctx, center, radiusMeters, `way["leisure"~"^(park|garden|nature_reserve)$"]`); err != nil {
			g.log.Warn().Err(err).Msg("park layer fetch failed, omitting")
		} else {
			features.Parks = parks
		}
	}
	return features
}

// FetchStreets retrieves the mandatory street graph. All-endpoint failure
// surfaces as MapDataUnavailable, except an out-of-memory style response
// which is distinguished as AreaTooLarge.
func (g *Gateway) FetchStreets(ctx context.Context, center Point, radiusMeters float64) (*Graph, error) {
	graph, err := g.fetchStreets(ctx, center, radiusMeters)
	if err != nil {
		if apperr.IsKind(err, apperr.KindAreaTooLarge) {
			return nil, err
		}
		return nil, apperr.Wrap(apperr.KindMapDataUnavailable, "", err)
	}
	return graph, nil
}

func (g *Gateway) fetchStreets(ctx context.Context, center Point, radiusMeters float64) (*Graph, error) {
	selector := `way["highway"]`
	if radiusMeters > driveThreshold {
		selector = `way["highway"~"^(motorway|motorway_link|trunk|trunk_link|primary|primary_link|secondary|secondary_link|tertiary|tertiary_link|residential|unclassified)$"]`
	}
	query := fmt.Sprintf("[out:json][timeout:%d];%s(around:%.0f,%.6f,%.6f);out geom;",
		overpassTimeout, selector, radiusMeters, center.Lat, center.Lon)

	resp, err := g.run(ctx, query)
	if err != nil {
		return nil, err
	}

	graph := &Graph{}
	for _, el := range resp.Elements {
		if el.Type != "way" || len(el.Geometry) < 2 {
			continue
		}
		edge := Edge{Highway: el.Tags["highway"], Points: el.Geometry}
		graph.Edges = append(graph.Edges, edge)
		for _, p := range el.Geometry {
			graph.Bounds.Extend(p)
		}
	}
	if len(graph.Edges) == 0 {
		return nil, fmt.Errorf("mapdata: no streets within %.0f m of (%.4f, %.4f)", radiusMeters, center.Lat, center.Lon)
	}
	return graph, nil
}

func (g *Gateway) fetchPolygons(ctx context.Context, center Point, radiusMeters float64, selector string) ([]Polygon, error) {
	query := fmt.Sprintf("[out:json][timeout:%d];%s(around:%.0f,%.6f,%.6f);out geom;",
		overpassTimeout, selector, radiusMeters, center.Lat, center.Lon)

	resp, err := g.run(ctx, query)
	if err != nil {
		return nil, err
	}

	var polygons []Polygon
	for _, el := range resp.Elements {
		if el.Type != "way" || len(el.Geometry) < 3 {
			continue
		}
		polygons = append(polygons, Polygon(el.Geometry))
	}
	return polygons, nil
}

type overpassElement struct {
	Type     string            `json:"type"`
	ID       int64             `json:"id"`
	Tags     map[string]string `json:"tags"`
	Geometry []Point           `json:"geometry"`
}

type overpassResponse struct {
	Remark   string            `json:"remark"`
	Elements []overpassElement `json:"elements"`
}

// run executes one Overpass query, trying every configured endpoint in order
// and returning the last failure if all of them fail. An oversized-query
// rejection ends the loop immediately; every mirror serves the same dataset,
// so retrying cannot make the query fit.
func (g *Gateway) run(ctx context.Context, query string) (*overpassResponse, error) {
	if len(g.endpoints) == 0 {
		return nil, fmt.Errorf("mapdata: no endpoints configured")
	}

	var lastErr error
	for _, endpoint := range g.endpoints {
		resp, err := g.post(ctx, endpoint, query)
		if err == nil {
			return resp, nil
		}
		if apperr.IsKind(err, apperr.KindAreaTooLarge) {
			return nil, err
		}
		lastErr = err
		g.log.Warn().Err(err).Str("endpoint", endpoint).Msg("overpass endpoint failed, trying next")
		if ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

func (g *Gateway) post(ctx context.Context, endpoint, query string) (*overpassResponse, error) {
	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mapdata: request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusRequestEntityTooLarge {
		return nil, apperr.New(apperr.KindAreaTooLarge, "")
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("mapdata: %s returned http %d: %s", endpoint, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("mapdata: decode response from %s: %w", endpoint, err)
	}
	if remark := strings.ToLower(out.Remark); strings.Contains(remark, "out of memory") {
		return nil, apperr.New(apperr.KindAreaTooLarge, "")
	}
	return &out, nil
}
