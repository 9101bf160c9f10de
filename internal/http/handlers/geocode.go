package handlers

import (
	"net/http"
	"strings"
)

type geocodeSuggestion struct {
	DisplayName string  `json:"display_name"`
	City        string  `json:"city"`
	Country     string  `json:"country"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

// Geocode proxies place lookup to Nominatim. The client paces outbound
// requests to at most one per second.
func (a *App) Geocode(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if len(q) < 2 {
		a.error(w, http.StatusUnprocessableEntity, "invalid_query", "q must be at least 2 characters")
		return
	}

	suggestions, err := a.Geocoder.Search(r.Context(), q, 5)
	if err != nil {
		a.error(w, http.StatusBadGateway, "geocoding_unavailable", "Geocoding service unavailable")
		return
	}
	out := make([]geocodeSuggestion, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, geocodeSuggestion{
			DisplayName: s.DisplayName,
			City:        s.City,
			Country:     s.Country,
			Lat:         s.Lat,
			Lon:         s.Lon,
		})
	}
	a.json(w, http.StatusOK, out)
}
