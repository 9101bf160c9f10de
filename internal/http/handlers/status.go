package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cartographix/internal/jobs"
)

type statusResponse struct {
	JobID        string `json:"job_id"`
	Status       string `json:"status"`
	City         string `json:"city"`
	Theme        string `json:"theme"`
	Stage        string `json:"stage,omitempty"`
	PosterURL    string `json:"poster_url,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	ShareID      string `json:"share_id,omitempty"`
}

// Status reports the lifecycle of one job. The poster URL appears only once
// the job completed, the error message only once it failed.
func (a *App) Status(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	job, ok := a.Store.Get(jobID)
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", fmt.Sprintf("Job %s not found", jobID))
		return
	}

	resp := statusResponse{
		JobID:   job.ID,
		Status:  string(job.Status),
		City:    job.City,
		Theme:   job.Theme,
		Stage:   job.Stage,
		ShareID: job.ShareToken,
	}
	if job.Status == jobs.StatusCompleted && job.ResultPath != "" {
		resp.PosterURL = "/api/poster/" + job.ID
	}
	if job.Status == jobs.StatusFailed {
		resp.ErrorMessage = job.Error
	}
	a.json(w, http.StatusOK, resp)
}
