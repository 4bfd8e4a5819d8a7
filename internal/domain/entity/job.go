package entity

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusSkipped    JobStatus = "SKIPPED"
	JobStatusDone       JobStatus = "DONE"
	JobStatusFailed     JobStatus = "FAILED"
)

// DetectionJob tracks one source video through the detection pipeline.
type DetectionJob struct {
	ID           uuid.UUID
	VideoPath    string
	Stem         string
	Status       JobStatus
	Events       []Event
	Clips        []Clip
	Duration     float64
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  *time.Time
}

func NewDetectionJob(videoPath, stem string) *DetectionJob {
	now := time.Now().UTC()
	return &DetectionJob{
		ID:        uuid.New(),
		VideoPath: videoPath,
		Stem:      stem,
		Status:    JobStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (j *DetectionJob) MarkProcessing() {
	j.Status = JobStatusProcessing
	j.UpdatedAt = time.Now().UTC()
}

// MarkSkipped records that output clips for this video already exist and the
// pipeline never ran.
func (j *DetectionJob) MarkSkipped() {
	now := time.Now().UTC()
	j.Status = JobStatusSkipped
	j.UpdatedAt = now
	j.CompletedAt = &now
}

func (j *DetectionJob) MarkDone(events []Event, clips []Clip, duration float64) {
	now := time.Now().UTC()
	j.Status = JobStatusDone
	j.Events = events
	j.Clips = clips
	j.Duration = duration
	j.UpdatedAt = now
	j.CompletedAt = &now
}

func (j *DetectionJob) MarkFailed(errMsg string) {
	j.Status = JobStatusFailed
	j.ErrorMessage = errMsg
	j.UpdatedAt = time.Now().UTC()
}
