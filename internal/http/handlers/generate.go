package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/mail"
	"strings"

	"cartographix/internal/apperr"
	"cartographix/internal/jobs"
	"cartographix/internal/middleware"
	"cartographix/internal/poster"
)

const (
	minDistanceMeters = 1000
	maxDistanceMeters = 50000
	defaultDistance   = 10000
	maxLandmarks      = 5
)

type landmarkPayload struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

type generateRequest struct {
	City         string            `json:"city"`
	Country      string            `json:"country"`
	Theme        string            `json:"theme"`
	Distance     int               `json:"distance"`
	OutputFormat string            `json:"output_format"`
	CustomTitle  string            `json:"custom_title"`
	Email        string            `json:"email"`
	Landmarks    []landmarkPayload `json:"landmarks"`
}

type generateResponse struct {
	JobID            string `json:"job_id"`
	Status           string `json:"status"`
	EstimatedSeconds int    `json:"estimated_seconds"`
}

// Generate validates a submission, runs the admission checks and queues the
// job. Oversized distances inside the accepted range are clamped later in the
// pipeline, never rejected here.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	clientIP := middleware.ClientIP(r)
	if !a.IPLimiter.Allow(clientIP) {
		a.error(w, http.StatusTooManyRequests, "rate_limited", "Too many requests. Please try again later.")
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.City = strings.TrimSpace(req.City)
	req.Country = strings.TrimSpace(req.Country)
	if req.Theme == "" {
		req.Theme = "default"
	}
	if req.OutputFormat == "" {
		req.OutputFormat = "instagram"
	}
	if req.Distance == 0 {
		req.Distance = defaultDistance
	}

	if req.City == "" || len(req.City) > 100 {
		a.error(w, http.StatusUnprocessableEntity, "invalid_city", "city must be 1-100 characters")
		return
	}
	if len(req.Country) > 100 {
		a.error(w, http.StatusUnprocessableEntity, "invalid_country", "country must be at most 100 characters")
		return
	}
	if _, ok := poster.LookupTheme(req.Theme); !ok {
		a.error(w, http.StatusUnprocessableEntity, "invalid_theme", fmt.Sprintf("Unknown theme: %s", req.Theme))
		return
	}
	if _, ok := poster.LookupFormat(req.OutputFormat); !ok {
		a.error(w, http.StatusUnprocessableEntity, "invalid_output_format", fmt.Sprintf("Unknown output format: %s", req.OutputFormat))
		return
	}
	if req.Distance < minDistanceMeters || req.Distance > maxDistanceMeters {
		a.error(w, http.StatusUnprocessableEntity, "invalid_distance",
			fmt.Sprintf("distance must be between %d and %d meters", minDistanceMeters, maxDistanceMeters))
		return
	}
	if len(req.CustomTitle) > 100 {
		a.error(w, http.StatusUnprocessableEntity, "invalid_title", "custom title must be at most 100 characters")
		return
	}
	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			a.error(w, http.StatusUnprocessableEntity, "invalid_email", "invalid email address")
			return
		}
		if !a.EmailLimiter.Allow(req.Email) {
			a.error(w, http.StatusTooManyRequests, "rate_limited",
				fmt.Sprintf("Maximum %d requests per email per 24 hours", a.EmailLimiter.Max()))
			return
		}
	}
	if len(req.Landmarks) > maxLandmarks {
		a.error(w, http.StatusUnprocessableEntity, "too_many_landmarks",
			fmt.Sprintf("Maximum %d landmarks allowed", maxLandmarks))
		return
	}
	landmarks := make([]jobs.Landmark, 0, len(req.Landmarks))
	for _, lm := range req.Landmarks {
		lm.Name = strings.TrimSpace(lm.Name)
		if lm.Name == "" || len(lm.Name) > 100 || lm.Lat < -90 || lm.Lat > 90 || lm.Lon < -180 || lm.Lon > 180 {
			a.error(w, http.StatusUnprocessableEntity, "invalid_landmark", "landmark needs a name and valid coordinates")
			return
		}
		landmarks = append(landmarks, jobs.Landmark{Name: lm.Name, Lat: lm.Lat, Lon: lm.Lon})
	}

	job, err := a.Store.Create(jobs.CreateParams{
		City:        req.City,
		Country:     req.Country,
		Theme:       req.Theme,
		Distance:    req.Distance,
		Format:      req.OutputFormat,
		CustomTitle: req.CustomTitle,
		Email:       req.Email,
		Landmarks:   landmarks,
	})
	if err != nil {
		if apperr.IsKind(err, apperr.KindAtCapacity) {
			a.error(w, http.StatusServiceUnavailable, "at_capacity", "Server is at capacity. Please try again later.")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to create job")
		return
	}
	a.Orch.Submit(job.ID)

	estimated := req.Distance / 200
	if estimated < 10 {
		estimated = 10
	}
	a.json(w, http.StatusAccepted, generateResponse{
		JobID:            job.ID,
		Status:           string(job.Status),
		EstimatedSeconds: estimated,
	})
}
