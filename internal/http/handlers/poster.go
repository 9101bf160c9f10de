package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"cartographix/internal/jobs"
	"cartographix/pkg/zip"
)

// Poster serves the generated PNG for a completed job.
func (a *App) Poster(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	job, ok := a.Store.Get(jobID)
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "Job not found")
		return
	}
	if job.Status != jobs.StatusCompleted || job.ResultPath == "" {
		a.error(w, http.StatusNotFound, "not_found", "Poster not ready")
		return
	}
	a.servePoster(w, r, job)
}

type shareRequest struct {
	GalleryOptIn bool `json:"gallery_opt_in"`
}

type shareResponse struct {
	ShareID  string `json:"share_id"`
	ShareURL string `json:"share_url"`
}

// Share issues a stable share token for a completed poster, optionally
// listing it in the public gallery.
func (a *App) Share(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	job, ok := a.Store.Get(jobID)
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "Job not found")
		return
	}
	if job.Status != jobs.StatusCompleted {
		a.error(w, http.StatusBadRequest, "not_ready", "Poster not ready for sharing")
		return
	}

	var req shareRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	token, ok := a.Store.Share(jobID, req.GalleryOptIn)
	if !ok {
		a.error(w, http.StatusBadRequest, "not_ready", "Could not create share link")
		return
	}
	a.json(w, http.StatusOK, shareResponse{ShareID: token, ShareURL: "/api/share/" + token})
}

// SharedPoster serves a poster through its share token.
func (a *App) SharedPoster(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "share_id")
	job, ok := a.Store.GetByShare(token)
	if !ok || job.ResultPath == "" {
		a.error(w, http.StatusNotFound, "not_found", "Shared poster not found")
		return
	}
	a.servePoster(w, r, job)
}

type galleryItem struct {
	ShareID   string    `json:"share_id"`
	City      string    `json:"city"`
	Country   string    `json:"country"`
	Theme     string    `json:"theme"`
	PosterURL string    `json:"poster_url"`
	CreatedAt time.Time `json:"created_at"`
}

type galleryResponse struct {
	Posters []galleryItem `json:"posters"`
	Total   int           `json:"total"`
}

// Gallery lists opted-in shared posters, newest first.
func (a *App) Gallery(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	page, total := a.Store.ListGallery(limit, offset)
	posters := make([]galleryItem, 0, len(page))
	for _, job := range page {
		posters = append(posters, galleryItem{
			ShareID:   job.ShareToken,
			City:      job.City,
			Country:   job.Country,
			Theme:     job.Theme,
			PosterURL: "/api/share/" + job.ShareToken,
			CreatedAt: job.CreatedAt,
		})
	}
	a.json(w, http.StatusOK, galleryResponse{Posters: posters, Total: total})
}

// GalleryArchive bundles the current gallery page into one zip download.
func (a *App) GalleryArchive(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	page, _ := a.Store.ListGallery(limit, offset)
	entries := make([]zip.Entry, 0, len(page))
	for _, job := range page {
		path, err := a.Files.Resolve(job.ResultPath)
		if err != nil {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		name := fmt.Sprintf("%s_%s.png",
			strings.ReplaceAll(strings.ToLower(job.City), " ", "_"), job.Theme)
		entries = append(entries, zip.Entry{Filename: name, Data: data})
	}
	if len(entries) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "No gallery posters to archive")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="gallery.zip"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(zip.Archive(entries))
}

// servePoster streams the artifact after the output-directory guard. Requests
// for paths outside the configured output directory are refused.
func (a *App) servePoster(w http.ResponseWriter, r *http.Request, job jobs.Job) {
	path, err := a.Files.Resolve(job.ResultPath)
	if err != nil {
		a.error(w, http.StatusForbidden, "access_denied", "Access denied")
		return
	}
	if _, err := os.Stat(path); err != nil {
		a.error(w, http.StatusNotFound, "not_found", "Poster file not found")
		return
	}

	download := fmt.Sprintf("%s_%s_poster.png",
		strings.ReplaceAll(strings.ToLower(job.City), " ", "_"), job.Theme)
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", download))
	http.ServeFile(w, r, path)
}
