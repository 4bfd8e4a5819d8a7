package entity

import "github.com/google/uuid"

// DetectionStatusMessage is the outbound message published to the
// detection.status queue after each video finishes, skips, or fails.
type DetectionStatusMessage struct {
	JobID        uuid.UUID `json:"job_id"`
	VideoPath    string    `json:"video_path"`
	Stem         string    `json:"stem"`
	Status       JobStatus `json:"status"`
	EventCount   int       `json:"event_count,omitempty"`
	Clips        []string  `json:"clips,omitempty"`
	Duration     float64   `json:"duration_seconds,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// StatusMessageFromJob builds the outbound status payload for a finished job.
func StatusMessageFromJob(j *DetectionJob) DetectionStatusMessage {
	return DetectionStatusMessage{
		JobID:        j.ID,
		VideoPath:    j.VideoPath,
		Stem:         j.Stem,
		Status:       j.Status,
		EventCount:   len(j.Events),
		Clips:        ClipNames(j.Clips),
		Duration:     j.Duration,
		ErrorMessage: j.ErrorMessage,
	}
}
