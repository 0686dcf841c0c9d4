package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lattice-erp/lattice/internal/attendance"
	jobmetrics "github.com/lattice-erp/lattice/internal/jobs"
	"github.com/lattice-erp/lattice/internal/shared"
)

// AttendanceAutocloseJob backfills Absent records for active managers and
// employees who never marked the previous working day. Weekends and
// holidays are skipped entirely.
type AttendanceAutocloseJob struct {
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewAttendanceAutocloseJob wires dependencies for the autoclose handler.
func NewAttendanceAutocloseJob(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *AttendanceAutocloseJob {
	return &AttendanceAutocloseJob{
		Pool:    pool,
		Logger:  logger,
		Metrics: metrics,
		clock:   time.Now,
	}
}

// Handle processes attendance autoclose tasks.
func (j *AttendanceAutocloseJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("attendance autoclose: handler not configured")
	}
	var payload AttendanceAutoclosePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskAttendanceAutoclose)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	day, err := j.targetDay(payload.Day)
	if err != nil {
		j.logger().Error("resolve target day", slog.Any("error", err))
		return asynq.SkipRetry
	}
	logger := j.logger().With(slog.String("day", day.Format("2006-01-02")))

	if !attendance.IsWorkingDay(day) {
		logger.Info("skipping non-working day")
		return resultErr
	}

	closed, err := j.closeDay(ctx, day)
	if err != nil {
		resultErr = err
		logger.Error("close attendance day", slog.Any("error", err))
		return resultErr
	}

	logger.Info("completed attendance autoclose", slog.Int64("marked_absent", closed))
	return resultErr
}

// targetDay resolves the day to close: the payload's day when pinned,
// otherwise the most recent working day before today.
func (j *AttendanceAutocloseJob) targetDay(pinned string) (time.Time, error) {
	if pinned != "" {
		return time.Parse("2006-01-02", pinned)
	}
	day := j.now().AddDate(0, 0, -1)
	for !attendance.IsWorkingDay(day) {
		day = day.AddDate(0, 0, -1)
	}
	return day, nil
}

func (j *AttendanceAutocloseJob) closeDay(ctx context.Context, day time.Time) (int64, error) {
	if j.Pool == nil {
		return 0, errors.New("attendance autoclose: pool not configured")
	}
	tag, err := j.Pool.Exec(ctx, `
		INSERT INTO attendance (user_id, day, status)
		SELECT u.id, $1, $2
		FROM users u
		WHERE u.role IN ($3, $4) AND u.status = $5
		ON CONFLICT (user_id, day) DO NOTHING
	`, day.Format("2006-01-02"), attendance.StatusAbsent,
		shared.RoleManager, shared.RoleEmployee, shared.StatusActive)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (j *AttendanceAutocloseJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskAttendanceAutoclose))
	}
	return slog.Default().With(slog.String("job", TaskAttendanceAutoclose))
}

func (j *AttendanceAutocloseJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *AttendanceAutocloseJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now()
}
