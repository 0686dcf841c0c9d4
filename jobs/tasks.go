// Package jobs hosts the Asynq worker, its task definitions and the
// scheduled maintenance handlers.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportsWarmup pre-populates report caches after invalidation.
	TaskReportsWarmup = "reports:warmup"
	// TaskAttendanceAutoclose marks unrecorded staff Absent for the
	// previous working day.
	TaskAttendanceAutoclose = "attendance:autoclose"
)

// ReportsWarmupPayload selects the granularity warmed into the cache.
type ReportsWarmupPayload struct {
	Range string `json:"range"`
}

// NewReportsWarmupTask constructs a reports warmup task.
func NewReportsWarmupTask(rangeParam string) (*asynq.Task, error) {
	data, err := json.Marshal(ReportsWarmupPayload{Range: rangeParam})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportsWarmup, data), nil
}

// AttendanceAutoclosePayload optionally pins the day to close. Empty
// means the most recent working day before today.
type AttendanceAutoclosePayload struct {
	Day string `json:"day,omitempty"`
}

// NewAttendanceAutocloseTask constructs an attendance autoclose task.
func NewAttendanceAutocloseTask(day string) (*asynq.Task, error) {
	data, err := json.Marshal(AttendanceAutoclosePayload{Day: day})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAttendanceAutoclose, data), nil
}
