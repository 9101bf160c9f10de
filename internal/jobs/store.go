package jobs

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"cartographix/internal/apperr"
)

// Retention windows for TTL eviction. Terminal jobs go quickly; the absolute
// ceiling catches jobs stuck in processing forever.
const (
	DefaultRetainTerminal = 2 * time.Hour
	DefaultRetainAll      = 6 * time.Hour
	DefaultMaxJobs        = 500
)

// StoreOptions configures a Store.
type StoreOptions struct {
	MaxJobs        int
	RetainTerminal time.Duration
	RetainAll      time.Duration
	Logger         zerolog.Logger

	// RemoveArtifact deletes a job's backing file during eviction.
	RemoveArtifact func(path string)

	// Now is injectable for tests.
	Now func() time.Time
}

// Store is the in-memory registry of generation jobs. State is deliberately
// ephemeral: nothing survives a process restart.
type Store struct {
	mu         sync.Mutex
	jobs       map[string]*Job
	shareIndex map[string]string // share token -> job id

	maxJobs        int
	retainTerminal time.Duration
	retainAll      time.Duration
	removeArtifact func(path string)
	now            func() time.Time
	log            zerolog.Logger
}

// NewStore builds a Store with the given options, applying defaults for any
// zero field.
func NewStore(opts StoreOptions) *Store {
	if opts.MaxJobs <= 0 {
		opts.MaxJobs = DefaultMaxJobs
	}
	if opts.RetainTerminal <= 0 {
		opts.RetainTerminal = DefaultRetainTerminal
	}
	if opts.RetainAll <= 0 {
		opts.RetainAll = DefaultRetainAll
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RemoveArtifact == nil {
		opts.RemoveArtifact = func(string) {}
	}
	return &Store{
		jobs:           make(map[string]*Job),
		shareIndex:     make(map[string]string),
		maxJobs:        opts.MaxJobs,
		retainTerminal: opts.RetainTerminal,
		retainAll:      opts.RetainAll,
		removeArtifact: opts.RemoveArtifact,
		now:            opts.Now,
		log:            opts.Logger,
	}
}

// CreateParams carries the validated submission fields.
type CreateParams struct {
	City         string
	Country      string
	Theme        string
	Distance     int
	Format       string
	CustomTitle  string
	Email        string
	Landmarks    []Landmark
	GalleryOptIn bool
}

// Create registers a new queued job. Opportunistic cleanup runs first; if the
// registry is still at its ceiling the job is refused with AtCapacity.
func (s *Store) Create(params CreateParams) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cleanupLocked()
	if len(s.jobs) >= s.maxJobs {
		return Job{}, apperr.New(apperr.KindAtCapacity, "")
	}

	job := &Job{
		ID:           strings.ReplaceAll(uuid.NewString(), "-", ""),
		City:         params.City,
		Country:      params.Country,
		Theme:        params.Theme,
		Distance:     params.Distance,
		Format:       params.Format,
		CustomTitle:  params.CustomTitle,
		Email:        params.Email,
		Landmarks:    append([]Landmark(nil), params.Landmarks...),
		GalleryOptIn: params.GalleryOptIn,
		Status:       StatusQueued,
		CreatedAt:    s.now(),
	}
	s.jobs[job.ID] = job
	return *job, nil
}

// Get returns a copy of the job, if it exists.
func (s *Store) Get(id string) (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Len reports the number of live jobs.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// MarkProcessing moves a queued job into processing.
func (s *Store) MarkProcessing(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok && job.Status == StatusQueued {
		job.Status = StatusProcessing
	}
}

// SetStage records the current pipeline checkpoint. Terminal jobs are left
// untouched.
func (s *Store) SetStage(id, stage string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok && !job.Status.Terminal() {
		job.Stage = stage
	}
}

// Complete marks a job completed with its artifact path. A job already in a
// terminal state is left as-is, so a render finishing after a timeout is
// discarded rather than resurrected.
func (s *Store) Complete(id, resultPath string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok || job.Status.Terminal() {
		return false
	}
	job.Status = StatusCompleted
	job.Stage = StageDone
	job.ResultPath = resultPath
	return true
}

// Fail marks a job failed with a user-facing message, unless it is already
// terminal.
func (s *Store) Fail(id, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok || job.Status.Terminal() {
		return false
	}
	job.Status = StatusFailed
	job.Error = message
	return true
}

// Share assigns a share token to a completed job, opting it into the public
// gallery when requested. Repeated calls return the existing token; jobs not
// yet completed get nothing.
func (s *Store) Share(id string, galleryOptIn bool) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok || job.Status != StatusCompleted {
		return "", false
	}
	if galleryOptIn {
		job.GalleryOptIn = true
	}
	if job.ShareToken != "" {
		return job.ShareToken, true
	}
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	job.ShareToken = token
	s.shareIndex[token] = job.ID
	return token, true
}

// GetByShare resolves a share token to its job.
func (s *Store) GetByShare(token string) (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.shareIndex[token]
	if !ok {
		return Job{}, false
	}
	job, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// ListGallery returns the requested page of shared, opted-in, completed jobs,
// newest first, along with the total count.
func (s *Store) ListGallery(limit, offset int) ([]Job, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var eligible []*Job
	for _, job := range s.jobs {
		if job.Status == StatusCompleted && job.ShareToken != "" && job.GalleryOptIn {
			eligible = append(eligible, job)
		}
	}
	sort.Slice(eligible, func(i, j int) bool {
		return eligible[i].CreatedAt.After(eligible[j].CreatedAt)
	})

	total := len(eligible)
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	if limit <= 0 {
		limit = 20
	}
	end := offset + limit
	if end > total {
		end = total
	}

	page := make([]Job, 0, end-offset)
	for _, job := range eligible[offset:end] {
		page = append(page, *job)
	}
	return page, total
}

// Cleanup evicts stale jobs and their artifact files.
func (s *Store) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanupLocked()
}

func (s *Store) cleanupLocked() {
	now := s.now()
	removed := 0
	for id, job := range s.jobs {
		age := now.Sub(job.CreatedAt)
		stale := (job.Status.Terminal() && age > s.retainTerminal) || age > s.retainAll
		if !stale {
			continue
		}
		if job.ShareToken != "" {
			delete(s.shareIndex, job.ShareToken)
		}
		if job.ResultPath != "" {
			s.removeArtifact(job.ResultPath)
		}
		delete(s.jobs, id)
		removed++
	}
	if removed > 0 {
		s.log.Info().Int("removed", removed).Msg("cleaned up stale jobs")
	}
}
