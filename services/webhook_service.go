package services

import (
	"context"
	"net/http"
	"time"

	"github.com/MilktreeAgency/landco/apperrors"
	"github.com/MilktreeAgency/landco/logger"
	"go.uber.org/zap"
)

const processingWarning = "Event received but processing had issues"

// WebhookResult is the acknowledgement body returned to Stripe.
type WebhookResult struct {
	Received  bool   `json:"received"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Warning   string `json:"warning,omitempty"`
}

// WebhookService verifies Stripe deliveries and hands them to the
// reconciler.
type WebhookService interface {
	Receive(ctx context.Context, payload []byte, sigHeader string) (*WebhookResult, error)
}

type webhookServiceImpl struct {
	stripeConfigured bool
	verifier         WebhookVerifier // nil when the signing secret is missing
	reconciler       *Reconciler
	logger           *zap.Logger
	now              func() time.Time
}

// NewWebhookService returns a fail-closed receiver: without a Stripe key or
// a verifier every delivery is rejected.
func NewWebhookService(stripeConfigured bool, verifier WebhookVerifier, reconciler *Reconciler, logger *zap.Logger) WebhookService {
	return &webhookServiceImpl{
		stripeConfigured: stripeConfigured,
		verifier:         verifier,
		reconciler:       reconciler,
		logger:           logger,
		now:              time.Now,
	}
}

func (s *webhookServiceImpl) Receive(ctx context.Context, payload []byte, sigHeader string) (*WebhookResult, error) {
	log := logger.FromContext(ctx, s.logger)

	if !s.stripeConfigured {
		log.Error("webhook rejected: STRIPE_SECRET_KEY is not set")
		return nil, apperrors.NotConfigured("Webhook not configured")
	}
	if s.verifier == nil {
		log.Error("webhook rejected: STRIPE_WEBHOOK_SECRET is not set")
		return nil, apperrors.NotConfigured("Webhook not configured securely")
	}
	if sigHeader == "" {
		log.Warn("webhook rejected: missing Stripe-Signature header")
		return nil, apperrors.BadRequest("Missing signature header")
	}

	event, err := s.verifier.VerifyWebhook(payload, sigHeader)
	if err != nil {
		log.Warn("webhook signature verification failed", zap.Error(err))
		return nil, apperrors.New(http.StatusBadRequest, "Webhook Error: "+err.Error(), err)
	}

	pe, err := NormalizeEvent(event, s.now())
	if err != nil {
		log.Error("webhook payload could not be decoded",
			zap.String("event_id", event.ID), zap.String("event_type", string(event.Type)), zap.Error(err))
		return &WebhookResult{Received: true, Warning: processingWarning}, nil
	}

	out, err := s.reconciler.Reconcile(ctx, pe)
	if err != nil {
		log.Error("webhook processing error",
			zap.String("event_id", pe.EventID), zap.String("event_type", pe.RawType), zap.Error(err))
		return &WebhookResult{Received: true, Warning: processingWarning}, nil
	}
	return &WebhookResult{Received: true, Duplicate: out.Duplicate}, nil
}
