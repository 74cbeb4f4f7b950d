package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MilktreeAgency/landco/models"
	aws_pkg "github.com/MilktreeAgency/landco/pkg/aws"
	"github.com/MilktreeAgency/landco/providers"
	"github.com/MilktreeAgency/landco/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type submission struct {
	formID string
	fields map[string]any
}

type fakeSink struct {
	mu    sync.Mutex
	errs  []error // returned in order; nil once exhausted
	calls []submission
}

func (f *fakeSink) Submit(_ context.Context, formID string, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, submission{formID: formID, fields: fields})
	if len(f.errs) == 0 {
		return nil
	}
	err := f.errs[0]
	f.errs = f.errs[1:]
	return err
}

func (f *fakeSink) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func retryable() error {
	return &providers.FormspreeError{Status: 503, Message: "unavailable", Retryable: true}
}

func startRelay(t *testing.T, sink *fakeSink, maxAttempts int) *services.Relay {
	t.Helper()
	relay := services.NewRelay(sink, services.NewChannelQueue(10), services.RelayConfig{
		MaxAttempts: maxAttempts,
		Backoff:     time.Millisecond,
		Workers:     1,
	}, nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		relay.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return relay
}

func TestRelay_DeliversQueuedJob(t *testing.T) {
	sink := &fakeSink{}
	relay := startRelay(t, sink, 3)

	job, mode, err := relay.Enqueue(context.Background(), "xyzabc", "Lead Qualifier", map[string]any{"email": "a@b.io"})
	require.NoError(t, err)
	assert.Equal(t, services.RelayModeQueued, mode)
	assert.NotEmpty(t, job.ID)

	require.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "xyzabc", sink.calls[0].formID)
	assert.Equal(t, "a@b.io", sink.calls[0].fields["email"])
}

func TestRelay_MockModeWithoutFormID(t *testing.T) {
	sink := &fakeSink{}
	relay := startRelay(t, sink, 3)

	job, mode, err := relay.Enqueue(context.Background(), "", "Land Submission", map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, services.RelayModeMock, mode)
	assert.NotEmpty(t, job.ID)

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, sink.count())
}

func TestRelay_RetriesUntilSuccess(t *testing.T) {
	sink := &fakeSink{errs: []error{retryable(), errors.New("connection reset")}}
	relay := startRelay(t, sink, 5)

	_, _, err := relay.Enqueue(context.Background(), "f1", "Lead Qualifier", map[string]any{})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return sink.count() == 3 }, time.Second, 5*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 3, sink.count())
}

func TestRelay_StopsAtMaxAttempts(t *testing.T) {
	sink := &fakeSink{errs: []error{retryable(), retryable(), retryable(), retryable(), retryable(), retryable()}}
	relay := startRelay(t, sink, 3)

	_, _, err := relay.Enqueue(context.Background(), "f1", "Land Submission", map[string]any{})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return sink.count() == 3 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 3, sink.count())
}

func TestRelay_DropsNonRetryableErrors(t *testing.T) {
	sink := &fakeSink{errs: []error{&providers.FormspreeError{Status: 422, Message: "invalid email", Retryable: false}}}
	relay := startRelay(t, sink, 5)

	_, _, err := relay.Enqueue(context.Background(), "f1", "Quick Land Enquiry", map[string]any{})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 1, sink.count())
}

func TestChannelQueue_FullQueueRejects(t *testing.T) {
	q := services.NewChannelQueue(1)
	require.NoError(t, q.Enqueue(context.Background(), models.RelayJob{ID: "1"}, 0))
	err := q.Enqueue(context.Background(), models.RelayJob{ID: "2"}, 0)
	assert.ErrorIs(t, err, services.ErrRelayQueueFull)
}

func TestChannelQueue_DrainsBufferedJobsOnStop(t *testing.T) {
	q := services.NewChannelQueue(10)
	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, q.Enqueue(context.Background(), models.RelayJob{ID: id}, 0))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var handled []string
	err := q.Run(ctx, func(hctx context.Context, job models.RelayJob) error {
		assert.NoError(t, hctx.Err())
		handled = append(handled, job.ID)
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.ElementsMatch(t, []string{"1", "2", "3"}, handled)
}

type fakeSQS struct {
	mu       sync.Mutex
	sent     []string
	delays   []int32
	incoming []string
	results  []error
}

func (f *fakeSQS) SendMessage(_ context.Context, body string, delaySeconds int32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, body)
	f.delays = append(f.delays, delaySeconds)
	return nil
}

func (f *fakeSQS) StartPolling(_ context.Context, handler aws_pkg.MessageHandler) error {
	for _, body := range f.incoming {
		f.results = append(f.results, handler(context.Background(), body))
	}
	return nil
}

func TestSQSRelayQueue_EnqueueEncodesJobWithDelay(t *testing.T) {
	transport := &fakeSQS{}
	q := services.NewSQSRelayQueue(transport, zap.NewNop())

	job := models.RelayJob{ID: "j1", FormID: "f1", FormType: "Lead Qualifier", Attempts: 2, Payload: map[string]any{"email": "a@b.io"}}
	require.NoError(t, q.Enqueue(context.Background(), job, 1500*time.Millisecond))

	require.Len(t, transport.sent, 1)
	assert.Equal(t, int32(2), transport.delays[0])

	var got models.RelayJob
	require.NoError(t, json.Unmarshal([]byte(transport.sent[0]), &got))
	assert.Equal(t, "j1", got.ID)
	assert.Equal(t, 2, got.Attempts)
	assert.Equal(t, "a@b.io", got.Payload["email"])
}

func TestSQSRelayQueue_RunDecodesAndSkipsMalformed(t *testing.T) {
	transport := &fakeSQS{incoming: []string{`{"id":"j1","formId":"f1","attempts":1}`, `not json`}}
	q := services.NewSQSRelayQueue(transport, zap.NewNop())

	var handled []models.RelayJob
	handleErr := errors.New("keep message")
	require.NoError(t, q.Run(context.Background(), func(_ context.Context, job models.RelayJob) error {
		handled = append(handled, job)
		return handleErr
	}))

	require.Len(t, handled, 1)
	assert.Equal(t, "j1", handled[0].ID)
	assert.Equal(t, 1, handled[0].Attempts)
	assert.Equal(t, []error{handleErr, nil}, transport.results)
}

func TestRelay_RetryThroughSQSCarriesAttempt(t *testing.T) {
	transport := &fakeSQS{incoming: []string{`{"id":"j1","formId":"f1","formType":"Land Submission","attempts":0}`}}
	sink := &fakeSink{errs: []error{retryable()}}
	relay := services.NewRelay(sink, services.NewSQSRelayQueue(transport, zap.NewNop()), services.RelayConfig{
		MaxAttempts: 3,
		Backoff:     2 * time.Second,
		Workers:     1,
	}, nil, zap.NewNop())

	relay.Run(context.Background())

	assert.Equal(t, 1, sink.count())
	require.Len(t, transport.sent, 1)
	assert.Equal(t, int32(2), transport.delays[0])
	var retried models.RelayJob
	require.NoError(t, json.Unmarshal([]byte(transport.sent[0]), &retried))
	assert.Equal(t, 1, retried.Attempts)
}
