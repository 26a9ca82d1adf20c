package recibos

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/atende-erp/atende/internal/jobs"
	"github.com/atende-erp/atende/jobs"
)

// Job renders and stores receipts requested through the queue.
type Job struct {
	service *Service
	metrics *jobmetrics.Metrics
	logger  *slog.Logger
}

// NewJob constructs a Job handler.
func NewJob(service *Service, metrics *jobmetrics.Metrics, logger *slog.Logger) *Job {
	if logger == nil {
		logger = slog.Default()
	}
	return &Job{service: service, metrics: metrics, logger: logger}
}

// Handle fulfils the asynq.HandlerFunc contract.
func (j *Job) Handle(ctx context.Context, task *asynq.Task) error {
	tracker := j.metrics.Track(jobs.TaskReceiptRender)
	return tracker.End(j.handle(ctx, task))
}

func (j *Job) handle(ctx context.Context, task *asynq.Task) error {
	if j == nil || j.service == nil {
		return fmt.Errorf("recibos job not configured")
	}
	payload, err := jobs.DecodeReceiptRenderPayload(task)
	if err != nil {
		j.logger.Warn("receipt render payload rejected", slog.Any("error", err))
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	stored, err := j.service.RenderAndStore(ctx, payload.ReciboID)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidReceipt) {
			j.logger.Warn("receipt render skipped", slog.String("recibo_id", payload.ReciboID), slog.Any("error", err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}
	j.metrics.AddRendered(string(stored.Document.Variant), string(stored.Document.Amount.Source))
	j.logger.Info("receipt ready",
		slog.String("recibo_id", payload.ReciboID),
		slog.String("file", stored.Filename),
		slog.String("location", stored.Location))
	return nil
}
