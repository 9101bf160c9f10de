package jobs

import "time"

// Status is the lifecycle state of a generation job. Transitions are
// monotonic: queued → processing → completed|failed, with no regressions.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether s is an end state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Stage labels reported at pipeline checkpoints, observable mid-flight
// through the status endpoint.
const (
	StageGeocoding        = "geocoding"
	StageFetchingStreets  = "fetching_streets"
	StageFetchingFeatures = "fetching_features"
	StageRendering        = "rendering"
	StageSendingEmail     = "sending_email"
	StageDone             = "done"
)

// Landmark is a validated named point the user wants highlighted.
type Landmark struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Job is one poster generation request and its outcome. Instances handed out
// by the store are copies; all mutation goes through store methods.
type Job struct {
	ID          string
	City        string
	Country     string
	Theme       string
	Distance    int
	Format      string
	CustomTitle string
	Email       string
	Landmarks   []Landmark

	Status       Status
	Stage        string
	ResultPath   string
	Error        string
	ShareToken   string
	GalleryOptIn bool
	CreatedAt    time.Time
}
