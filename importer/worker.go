package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// QueueKey is the redis list external schedulers push job IDs onto.
	QueueKey = "inventory_import:queue"

	jobKeyPrefix = "inventory_import:job:"
	jobTTL       = 24 * time.Hour
)

// Job is one scheduled import: a feed source (empty means the bundled
// sample) and the address the summary report goes to.
type Job struct {
	ID             string `json:"id"`
	Source         string `json:"source,omitempty"`
	RecipientEmail string `json:"recipient_email"`
}

// JobStatus is the queue-side record of a job, kept in redis for 24h.
type JobStatus struct {
	Status    string      `json:"status"`
	CreatedAt string      `json:"created_at"`
	Source    string      `json:"source,omitempty"`
	Recipient string      `json:"recipient_email,omitempty"`
	Error     string      `json:"error,omitempty"`
	Result    interface{} `json:"result,omitempty"`
}

func jobKey(id string) string { return jobKeyPrefix + id }

// EnqueueJob stores the job metadata and pushes its ID onto the queue.
func EnqueueJob(ctx context.Context, rdb *redis.Client, job Job) error {
	status := JobStatus{
		Status:    "pending",
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Source:    job.Source,
		Recipient: job.RecipientEmail,
	}
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal job metadata: %w", err)
	}
	if err := rdb.Set(ctx, jobKey(job.ID), data, jobTTL).Err(); err != nil {
		return fmt.Errorf("failed to store job metadata: %w", err)
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	if err := rdb.RPush(ctx, QueueKey, payload).Err(); err != nil {
		rdb.Del(ctx, jobKey(job.ID))
		return fmt.Errorf("failed to enqueue job: %w", err)
	}
	return nil
}

// GetJobStatus fetches the stored status record for a job ID. Returns
// (nil, nil) when the job is unknown or expired.
func GetJobStatus(ctx context.Context, rdb *redis.Client, id string) (*JobStatus, error) {
	val, err := rdb.Get(ctx, jobKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var status JobStatus
	if err := json.Unmarshal([]byte(val), &status); err != nil {
		return nil, fmt.Errorf("failed to parse job status: %w", err)
	}
	return &status, nil
}

// StartWorker starts the single background goroutine that consumes import
// jobs. Consuming from one goroutine is what guarantees at most one import
// run at a time against the catalog.
func StartWorker(ctx context.Context, rdb *redis.Client, imp *Importer, logger *zap.Logger) {
	if rdb == nil || imp == nil {
		logger.Warn("import worker not started: missing dependencies")
		return
	}

	go func() {
		logger.Info("import worker started", zap.String("queue", QueueKey))
		for {
			select {
			case <-ctx.Done():
				logger.Info("import worker stopping")
				return
			default:
			}

			res, err := rdb.BLPop(ctx, 0, QueueKey).Result()
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return
				}
				logger.Error("redis BLPop failed", zap.Error(err))
				time.Sleep(500 * time.Millisecond)
				continue
			}
			if len(res) < 2 {
				continue
			}

			var job Job
			if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
				logger.Error("failed to parse queued job", zap.Error(err))
				continue
			}
			runJob(ctx, rdb, imp, logger, job)
		}
	}()
}

func runJob(ctx context.Context, rdb *redis.Client, imp *Importer, logger *zap.Logger, job Job) {
	setStatus(ctx, rdb, job, JobStatus{Status: "processing"})
	logger.Info("import job started",
		zap.String("job_id", job.ID),
		zap.String("source", job.Source),
	)

	summary, err := imp.Run(ctx, job.Source, job.RecipientEmail)
	if err != nil {
		logger.Error("import job failed", zap.String("job_id", job.ID), zap.Error(err))
		setStatus(ctx, rdb, job, JobStatus{Status: "failed", Error: err.Error()})
		return
	}

	setStatus(ctx, rdb, job, JobStatus{Status: "done", Result: summary})
	logger.Info("import job finished", zap.String("job_id", job.ID))
}

func setStatus(ctx context.Context, rdb *redis.Client, job Job, status JobStatus) {
	status.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	status.Source = job.Source
	status.Recipient = job.RecipientEmail
	if data, err := json.Marshal(status); err == nil {
		rdb.Set(ctx, jobKey(job.ID), data, jobTTL)
	}
}
