package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/inkwell-cms/inkwell/internal/audit"
	jobmetrics "github.com/inkwell-cms/inkwell/internal/jobs"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAuditRetention trims the audit trail past its retention window.
	TaskAuditRetention = "audit:retention"

	defaultRetentionDays = 365
)

// AuditRetentionPayload configures one retention run.
type AuditRetentionPayload struct {
	RetentionDays int `json:"retention_days"`
}

// NewAuditRetentionTask constructs an Asynq task.
func NewAuditRetentionTask(payload AuditRetentionPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditRetention, data), nil
}

// AuditRetentionJob purges audit records older than the retention window.
type AuditRetentionJob struct {
	Repo    audit.Repository
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewAuditRetentionJob initialises the retention handler.
func NewAuditRetentionJob(repo audit.Repository, logger *slog.Logger, metrics *jobmetrics.Metrics) *AuditRetentionJob {
	return &AuditRetentionJob{
		Repo:    repo,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes one retention run.
func (j *AuditRetentionJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Repo == nil {
		return errors.New("audit retention: handler not configured")
	}
	var payload AuditRetentionPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.RetentionDays <= 0 {
		payload.RetentionDays = defaultRetentionDays
	}

	tracker := j.metrics().Track(TaskAuditRetention)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	cutoff := j.now().AddDate(0, 0, -payload.RetentionDays)
	logger := j.logger().With(
		slog.Int("retention_days", payload.RetentionDays),
		slog.Time("cutoff", cutoff),
	)
	logger.Info("starting audit retention")

	purged, err := j.Repo.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		resultErr = err
		logger.Error("retention failed", slog.Any("error", err))
		return resultErr
	}
	j.metrics().AddPurged(TaskAuditRetention, purged)
	logger.Info("audit retention complete", slog.Int64("purged", purged))
	return nil
}

func (j *AuditRetentionJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

func (j *AuditRetentionJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *AuditRetentionJob) metrics() *jobmetrics.Metrics {
	return j.Metrics
}
