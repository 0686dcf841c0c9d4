package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/lattice-erp/lattice/internal/jobs"
	"github.com/lattice-erp/lattice/internal/reports"
	"github.com/lattice-erp/lattice/internal/shared"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// ReportsWarmupJob pre-populates the report caches for every active
// organization so the first dashboard load of the day is served hot.
type ReportsWarmupJob struct {
	Reports *reports.Service
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewReportsWarmupJob wires dependencies for the warmup handler.
func NewReportsWarmupJob(reportsSvc *reports.Service, pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportsWarmupJob {
	return &ReportsWarmupJob{Reports: reportsSvc, Pool: pool, Logger: logger, Metrics: metrics}
}

// Handle processes reports warmup tasks.
func (j *ReportsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("reports warmup: handler not configured")
	}
	var payload ReportsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Range == "" {
		payload.Range = string(reports.GranularityMonthly)
	}

	tracker := j.metrics().Track(TaskReportsWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("range", payload.Range))
	logger.Info("starting reports warmup")
	start := time.Now()

	orgAdmins, err := j.activeOrgAdmins(ctx)
	if err != nil {
		resultErr = err
		logger.Error("load organizations", slog.Any("error", err))
		return resultErr
	}

	for _, orgAdminID := range orgAdmins {
		if err := j.warmOrganization(ctx, orgAdminID, payload.Range); err != nil {
			resultErr = err
			logger.Error("warm organization", slog.Int64("org_admin_id", orgAdminID), slog.Any("error", err))
			return resultErr
		}
	}

	if _, err := j.Reports.SystemRevenue(ctx, payload.Range, "", ""); err != nil {
		resultErr = err
		logger.Error("warm system revenue", slog.Any("error", err))
		return resultErr
	}

	logger.Info("completed reports warmup",
		slog.Int("organizations", len(orgAdmins)),
		slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *ReportsWarmupJob) warmOrganization(ctx context.Context, orgAdminID int64, rangeParam string) error {
	orgCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	if _, err := j.Reports.SalesReport(orgCtx, orgAdminID, rangeParam, "", ""); err != nil {
		return err
	}
	if _, err := j.Reports.ProfitLoss(orgCtx, orgAdminID, rangeParam, "", ""); err != nil {
		return err
	}
	return nil
}

func (j *ReportsWarmupJob) activeOrgAdmins(ctx context.Context) ([]int64, error) {
	if j.Pool == nil {
		return nil, errors.New("reports warmup: pool not configured")
	}
	rows, err := j.Pool.Query(ctx, `
		SELECT id FROM users
		WHERE role = $1 AND status = $2
		ORDER BY id
	`, shared.RoleOrgAdmin, shared.StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (j *ReportsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReportsWarmup))
	}
	return slog.Default().With(slog.String("job", TaskReportsWarmup))
}

func (j *ReportsWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
