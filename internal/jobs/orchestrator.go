package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"cartographix/internal/apperr"
	"cartographix/internal/geo"
	"cartographix/internal/mapdata"
	"cartographix/internal/notify"
	"cartographix/internal/poster"
)

// Geocoder resolves a city/country pair to a center point.
type Geocoder interface {
	Resolve(ctx context.Context, city, country string) (geo.Point, error)
}

// MapFetcher retrieves the street graph and the optional feature layers.
type MapFetcher interface {
	FetchStreets(ctx context.Context, center mapdata.Point, radiusMeters float64) (*mapdata.Graph, error)
	FetchFeatures(ctx context.Context, center mapdata.Point, radiusMeters float64, layers mapdata.Layers) *mapdata.FeatureSet
}

// Renderer composites a poster and returns the artifact path.
type Renderer interface {
	Render(ctx context.Context, req poster.Request) (string, error)
}

// Mailer delivers the finished poster. Delivery failures never fail a job.
type Mailer interface {
	SendPosterReady(ctx context.Context, msg notify.PosterReady) error
}

// OrchestratorOptions wires an Orchestrator.
type OrchestratorOptions struct {
	Store         *Store
	Geocoder      Geocoder
	Fetcher       MapFetcher
	Renderer      Renderer
	Mailer        Mailer
	MaxConcurrent int
	Timeout       time.Duration
	Logger        zerolog.Logger
}

// Orchestrator runs generation pipelines under a global concurrency cap with
// a hard per-job wall-clock timeout. It is the single place where pipeline
// failures become user-facing error strings.
type Orchestrator struct {
	store    *Store
	geocoder Geocoder
	fetcher  MapFetcher
	renderer Renderer
	mailer   Mailer
	sem      *semaphore.Weighted
	timeout  time.Duration
	log      zerolog.Logger
}

// NewOrchestrator builds an Orchestrator.
func NewOrchestrator(opts OrchestratorOptions) *Orchestrator {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 3
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Minute
	}
	return &Orchestrator{
		store:    opts.Store,
		geocoder: opts.Geocoder,
		fetcher:  opts.Fetcher,
		renderer: opts.Renderer,
		mailer:   opts.Mailer,
		sem:      semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		timeout:  opts.Timeout,
		log:      opts.Logger,
	}
}

// Submit schedules a created job. It returns immediately; the pipeline runs
// on its own goroutine once a semaphore slot is available.
func (o *Orchestrator) Submit(jobID string) {
	go o.run(jobID)
}

func (o *Orchestrator) run(jobID string) {
	if err := o.sem.Acquire(context.Background(), 1); err != nil {
		return
	}
	o.store.MarkProcessing(jobID)

	done := make(chan error, 1)
	go func() {
		done <- o.pipeline(jobID)
	}()

	timer := time.NewTimer(o.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		o.sem.Release(1)
		if err != nil {
			o.store.Fail(jobID, apperr.UserMessage(err))
			o.log.Error().Err(err).Str("job_id", jobID).Str("kind", string(apperr.KindOf(err))).Msg("job failed")
		}
	case <-timer.C:
		// The slot is released but the pipeline goroutine is not cancelled:
		// it may still finish and write an artifact nothing references. The
		// leak is bounded by the timeout and the store's TTL cleanup.
		o.sem.Release(1)
		o.store.Fail(jobID, fmt.Sprintf("Generation timed out after %.0f seconds", o.timeout.Seconds()))
		o.log.Error().Str("job_id", jobID).Dur("timeout", o.timeout).Msg("job timed out")
	}
}

// pipeline runs every stage of one job. Domain failures are returned to run,
// which translates them exactly once.
func (o *Orchestrator) pipeline(jobID string) error {
	ctx := context.Background()
	job, ok := o.store.Get(jobID)
	if !ok {
		return nil
	}

	theme, ok := poster.LookupTheme(job.Theme)
	if !ok {
		return apperr.Wrap(apperr.KindInternal, "", fmt.Errorf("unknown theme %q", job.Theme))
	}
	format, ok := poster.LookupFormat(job.Format)
	if !ok {
		return apperr.Wrap(apperr.KindInternal, "", fmt.Errorf("unknown format %q", job.Format))
	}

	o.store.SetStage(jobID, StageGeocoding)
	center, err := o.geocoder.Resolve(ctx, job.City, job.Country)
	if err != nil {
		return err
	}

	// Oversized requests are clamped, not rejected.
	effective := poster.EffectiveRadius(float64(job.Distance))
	fetchRadius := poster.FetchRadius(format, effective)
	mapCenter := mapdata.Point{Lat: center.Lat, Lon: center.Lon}

	o.store.SetStage(jobID, StageFetchingStreets)
	started := time.Now()
	graph, err := o.fetcher.FetchStreets(ctx, mapCenter, fetchRadius)
	if err != nil {
		return err
	}
	o.log.Debug().Str("job_id", jobID).Int("edges", len(graph.Edges)).Dur("took", time.Since(started)).Msg("street fetch done")

	o.store.SetStage(jobID, StageFetchingFeatures)
	features := o.fetcher.FetchFeatures(ctx, mapCenter, fetchRadius, mapdata.Layers{Water: true, Parks: true})

	o.store.SetStage(jobID, StageRendering)
	landmarks := make([]poster.Landmark, 0, len(job.Landmarks))
	for _, lm := range job.Landmarks {
		landmarks = append(landmarks, poster.Landmark{Name: lm.Name, Lat: lm.Lat, Lon: lm.Lon})
	}
	path, err := o.renderer.Render(ctx, poster.Request{
		Graph:       graph,
		Features:    features,
		Theme:       theme,
		Format:      format,
		City:        job.City,
		Country:     job.Country,
		CustomTitle: job.CustomTitle,
		Center:      mapCenter,
		Landmarks:   landmarks,
		Gradients:   true,
	})
	if err != nil {
		return err
	}

	if job.Email != "" && o.mailer != nil {
		o.store.SetStage(jobID, StageSendingEmail)
		msg := notify.PosterReady{
			To:             job.Email,
			City:           job.City,
			Theme:          theme.Name,
			CustomTitle:    job.CustomTitle,
			FormatLabel:    format.Label,
			DistanceMeters: job.Distance,
			AttachmentPath: path,
		}
		for _, lm := range job.Landmarks {
			msg.Landmarks = append(msg.Landmarks, lm.Name)
		}
		if err := o.mailer.SendPosterReady(ctx, msg); err != nil {
			o.log.Warn().Err(err).Str("job_id", jobID).Msg("poster email failed")
		}
	}

	if !o.store.Complete(jobID, path) {
		o.log.Warn().Str("job_id", jobID).Str("path", path).Msg("job finished after timeout, result discarded")
	}
	return nil
}
