package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"cartographix/internal/apperr"
)

const parisSearchResponse = `[
  {
    "display_name": "Paris, Île-de-France, France",
    "name": "Paris",
    "lat": "48.8566",
    "lon": "2.3522",
    "address": {"city": "Paris", "country": "France"}
  },
  {
    "display_name": "Paris, Lamar County, Texas, United States",
    "name": "Paris",
    "lat": "33.6609",
    "lon": "-95.5555",
    "address": {"town": "Paris", "country": "United States"}
  }
]`

func TestSearchParsesSuggestions(t *testing.T) {
	var gotQuery, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(parisSearchResponse))
	}))
	defer srv.Close()

	client := NewNominatimClient(NominatimOptions{BaseURL: srv.URL})
	suggestions, err := client.Search(context.Background(), "paris", 5)
	require.NoError(t, err)
	require.Equal(t, "paris", gotQuery)
	require.Equal(t, nominatimUserAgent, gotAgent)
	require.Len(t, suggestions, 2)

	require.Equal(t, "Paris", suggestions[0].City)
	require.Equal(t, "France", suggestions[0].Country)
	require.InDelta(t, 48.8566, suggestions[0].Lat, 1e-9)
	require.InDelta(t, 2.3522, suggestions[0].Lon, 1e-9)

	// address.town fills in when address.city is absent.
	require.Equal(t, "Paris", suggestions[1].City)
	require.Equal(t, "United States", suggestions[1].Country)
}

func TestGeocodeReturnsFirstResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(parisSearchResponse))
	}))
	defer srv.Close()

	client := NewNominatimClient(NominatimOptions{BaseURL: srv.URL})
	point, err := client.Geocode(context.Background(), "paris, france")
	require.NoError(t, err)
	require.InDelta(t, 48.8566, point.Lat, 1e-9)
	require.InDelta(t, 2.3522, point.Lon, 1e-9)
}

func TestGeocodeEmptyResultIsLocationNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewNominatimClient(NominatimOptions{BaseURL: srv.URL})
	_, err := client.Geocode(context.Background(), "nowhere at all")
	require.Error(t, err)
	require.Equal(t, apperr.KindLocationNotFound, apperr.KindOf(err))
}

func TestGeocodeUpstreamFailureIsLocationNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewNominatimClient(NominatimOptions{BaseURL: srv.URL})
	_, err := client.Geocode(context.Background(), "paris")
	require.Error(t, err)
	require.Equal(t, apperr.KindLocationNotFound, apperr.KindOf(err))
}
