package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MilktreeAgency/landco/models"
	aws_pkg "github.com/MilktreeAgency/landco/pkg/aws"
	"github.com/MilktreeAgency/landco/providers"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	RelayModeQueued = "queued"
	RelayModeMock   = "mock"
)

var ErrRelayQueueFull = errors.New("relay queue is full")

// RelayQueue carries relay jobs between the HTTP handlers and the delivery
// workers. Run blocks, handing each job to handle until ctx is cancelled.
type RelayQueue interface {
	Enqueue(ctx context.Context, job models.RelayJob, delay time.Duration) error
	Run(ctx context.Context, handle func(context.Context, models.RelayJob) error) error
}

type RelayConfig struct {
	MaxAttempts int
	Backoff     time.Duration // multiplied by the attempt number
	Workers     int
}

// Relay delivers form submissions to Formspree in the background with a
// bounded number of attempts.
type Relay struct {
	sink    providers.FormSink
	queue   RelayQueue
	cfg     RelayConfig
	metrics aws_pkg.MetricsRecorder
	logger  *zap.Logger
	now     func() time.Time
}

func NewRelay(sink providers.FormSink, queue RelayQueue, cfg RelayConfig, metrics aws_pkg.MetricsRecorder, logger *zap.Logger) *Relay {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 5
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 2 * time.Second
	}
	if cfg.Workers < 1 {
		cfg.Workers = 2
	}
	return &Relay{sink: sink, queue: queue, cfg: cfg, metrics: metrics, logger: logger, now: time.Now}
}

// Enqueue schedules a submission. Without a form id nothing is sent and the
// job is reported in mock mode.
func (r *Relay) Enqueue(ctx context.Context, formID, formType string, payload map[string]any) (models.RelayJob, string, error) {
	job := models.RelayJob{
		ID:         uuid.NewString(),
		FormID:     formID,
		FormType:   formType,
		Payload:    payload,
		EnqueuedAt: r.now().UTC(),
	}
	log := r.logger.With(zap.String("job_id", job.ID), zap.String("form_type", formType))

	if formID == "" {
		log.Warn("Formspree form id not configured, submission accepted in mock mode")
		return job, RelayModeMock, nil
	}
	if err := r.queue.Enqueue(ctx, job, 0); err != nil {
		return job, "", fmt.Errorf("enqueue relay job: %w", err)
	}
	log.Info("form submission queued for relay")
	return job, RelayModeQueued, nil
}

// Run starts the delivery workers and blocks until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			if err := r.queue.Run(ctx, r.handle); err != nil && !errors.Is(err, context.Canceled) {
				r.logger.Error("relay worker stopped", zap.Int("worker", worker), zap.Error(err))
			}
		}(i)
	}
	wg.Wait()
	r.logger.Info("relay workers stopped")
}

// handle makes one delivery attempt. A returned error means the job could
// not be rescheduled and the queue should keep it.
func (r *Relay) handle(ctx context.Context, job models.RelayJob) error {
	attempt := job.Attempts + 1
	log := r.logger.With(
		zap.String("job_id", job.ID),
		zap.String("form_type", job.FormType),
		zap.Int("attempt", attempt),
	)

	err := r.sink.Submit(ctx, job.FormID, job.Payload)
	if err == nil {
		log.Info("form submission delivered")
		countMetric(r.metrics, log, aws_pkg.MetricRelayDelivered, map[string]string{"FormType": job.FormType})
		return nil
	}

	if !providers.IsRetryable(err) || attempt >= r.cfg.MaxAttempts {
		log.Error("form submission dropped",
			zap.Int("max_attempts", r.cfg.MaxAttempts),
			zap.Bool("retryable", providers.IsRetryable(err)),
			zap.Error(err),
		)
		countMetric(r.metrics, log, aws_pkg.MetricRelayFailed, map[string]string{"FormType": job.FormType})
		return nil
	}

	job.Attempts = attempt
	delay := r.cfg.Backoff * time.Duration(attempt)
	log.Warn("form submission failed, retrying", zap.Duration("delay", delay), zap.Error(err))
	if qErr := r.queue.Enqueue(ctx, job, delay); qErr != nil {
		log.Error("failed to reschedule form submission", zap.Error(qErr))
		return qErr
	}
	return nil
}

// channelDrainTimeout bounds the final delivery pass over buffered jobs.
const channelDrainTimeout = 10 * time.Second

// ChannelQueue is the in-process RelayQueue. Jobs are lost on restart.
type ChannelQueue struct {
	jobs chan models.RelayJob
	done chan struct{}
	once sync.Once
}

func NewChannelQueue(size int) *ChannelQueue {
	if size < 1 {
		size = 100
	}
	return &ChannelQueue{
		jobs: make(chan models.RelayJob, size),
		done: make(chan struct{}),
	}
}

func (q *ChannelQueue) Enqueue(ctx context.Context, job models.RelayJob, delay time.Duration) error {
	if delay > 0 {
		time.AfterFunc(delay, func() {
			select {
			case q.jobs <- job:
			case <-q.done:
			}
		})
		return nil
	}
	select {
	case q.jobs <- job:
		return nil
	case <-q.done:
		return errors.New("relay queue closed")
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrRelayQueueFull
	}
}

func (q *ChannelQueue) Run(ctx context.Context, handle func(context.Context, models.RelayJob) error) error {
	defer q.once.Do(func() { close(q.done) })
	for {
		select {
		case <-ctx.Done():
			q.drain(ctx, handle)
			return ctx.Err()
		case job := <-q.jobs:
			_ = handle(ctx, job)
		}
	}
}

// drain gives every buffered job one more attempt after ctx is cancelled.
func (q *ChannelQueue) drain(ctx context.Context, handle func(context.Context, models.RelayJob) error) {
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), channelDrainTimeout)
	defer cancel()
	for {
		select {
		case job := <-q.jobs:
			_ = handle(dctx, job)
		default:
			return
		}
	}
}

// SQSTransport is the part of aws_pkg.SQSQueue the relay uses.
type SQSTransport interface {
	SendMessage(ctx context.Context, body string, delaySeconds int32) error
	StartPolling(ctx context.Context, handler aws_pkg.MessageHandler) error
}

// SQSRelayQueue stores relay jobs as JSON messages so they survive restarts
// and are shared between instances.
type SQSRelayQueue struct {
	transport SQSTransport
	logger    *zap.Logger
}

func NewSQSRelayQueue(transport SQSTransport, logger *zap.Logger) *SQSRelayQueue {
	return &SQSRelayQueue{transport: transport, logger: logger}
}

func (q *SQSRelayQueue) Enqueue(ctx context.Context, job models.RelayJob, delay time.Duration) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal relay job: %w", err)
	}
	seconds := int32((delay + time.Second - 1) / time.Second)
	return q.transport.SendMessage(ctx, string(body), seconds)
}

func (q *SQSRelayQueue) Run(ctx context.Context, handle func(context.Context, models.RelayJob) error) error {
	return q.transport.StartPolling(ctx, func(ctx context.Context, body string) error {
		var job models.RelayJob
		if err := json.Unmarshal([]byte(body), &job); err != nil {
			// Undecodable messages are deleted rather than redelivered forever.
			q.logger.Error("discarding malformed relay message", zap.Error(err))
			return nil
		}
		return handle(ctx, job)
	})
}
