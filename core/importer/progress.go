package importer

import (
	"math"
	"time"
)

// Snapshot is an immutable point-in-time read of job progress.
type Snapshot struct {
	Status       Status    `json:"status"`
	Mode         Mode      `json:"mode,omitempty"`
	Current      int       `json:"current"`
	Total        int       `json:"total"`
	Percentage   int       `json:"percentage"`
	SuccessCount int       `json:"success_count"`
	UpdatedCount int       `json:"updated_count"`
	ErrorCount   int       `json:"error_count"`
	Message      string    `json:"message,omitempty"`
	StartedAt    time.Time `json:"started_at,omitempty"`
	FinishedAt   time.Time `json:"finished_at,omitempty"`
}

// NewSnapshot derives the progress read model from a job. It is a pure function.
func NewSnapshot(job ImportJob) Snapshot {
	return Snapshot{
		Status:       job.Status,
		Mode:         job.Mode,
		Current:      job.Current,
		Total:        job.Total,
		Percentage:   Percentage(job.Current, job.Total),
		SuccessCount: job.SuccessCount,
		UpdatedCount: job.UpdatedCount,
		ErrorCount:   job.ErrorCount,
		Message:      job.Message,
		StartedAt:    job.StartedAt,
		FinishedAt:   job.FinishedAt,
	}
}

// Percentage returns round(current/total*100), or 0 when total is 0.
func Percentage(current, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(current) / float64(total) * 100))
}

// Processed is the number of rows that reached a final outcome.
func (s Snapshot) Processed() int {
	return s.SuccessCount + s.UpdatedCount + s.ErrorCount
}

// Cancelled reports whether the job ended through a user cancel.
func (s Snapshot) Cancelled() bool {
	return s.Status == StatusError && s.Message == CancelledMessage
}
