package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MilktreeAgency/landco/logger"
	"github.com/MilktreeAgency/landco/models"
	aws_pkg "github.com/MilktreeAgency/landco/pkg/aws"
	"github.com/MilktreeAgency/landco/providers"
	"go.uber.org/zap"
)

var (
	DepositTags   = []string{"Deposit Paid", "Hot Lead", "Website Lead"}
	AbandonedTags = []string{"Abandoned Checkout"}
)

const depositSource = "Stripe Deposit Payment"

// EventLedger remembers which webhook events have already been reconciled.
type EventLedger interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	// Record marks eventID processed. It returns false when another
	// delivery recorded it first.
	Record(ctx context.Context, eventID, eventType string) (bool, error)
}

// Outcome describes what Reconcile did with an event.
type Outcome struct {
	Action    string
	ContactID string
	Duplicate bool
	Degraded  bool
}

const (
	ActionContactUpdated = "contact_updated"
	ActionContactCreated = "contact_created"
	ActionSkippedUnpaid  = "skipped_unpaid"
	ActionNoContact      = "no_contact"
	ActionNoEmail        = "no_email"
	ActionLogged         = "logged"
)

// Reconciler applies verified payment events to CRM contacts.
type Reconciler struct {
	crm      providers.CRM
	ledger   EventLedger
	sns      aws_pkg.SNSPublisher
	topicARN string
	metrics  aws_pkg.MetricsRecorder
	logger   *zap.Logger
	now      func() time.Time
}

type ReconcilerOption func(*Reconciler)

// WithLedger turns on duplicate suppression by event id.
func WithLedger(l EventLedger) ReconcilerOption {
	return func(r *Reconciler) { r.ledger = l }
}

// WithDepositPublisher publishes a DepositEvent for every paid deposit.
func WithDepositPublisher(p aws_pkg.SNSPublisher, topicARN string) ReconcilerOption {
	return func(r *Reconciler) {
		r.sns = p
		r.topicARN = topicARN
	}
}

func WithMetrics(m aws_pkg.MetricsRecorder) ReconcilerOption {
	return func(r *Reconciler) { r.metrics = m }
}

func WithClock(now func() time.Time) ReconcilerOption {
	return func(r *Reconciler) { r.now = now }
}

// NewReconciler builds a reconciler. A nil crm leaves every event
// acknowledged but unsynced, with a warning per event.
func NewReconciler(crm providers.CRM, logger *zap.Logger, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{crm: crm, logger: logger, now: time.Now}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Reconcile performs the CRM side effects for ev. The returned error means
// processing was incomplete; the webhook still acknowledges the event.
func (r *Reconciler) Reconcile(ctx context.Context, ev models.PaymentEvent) (Outcome, error) {
	log := logger.FromContext(ctx, r.logger).With(
		zap.String("event_id", ev.EventID),
		zap.String("event_type", ev.RawType),
	)

	if r.ledger != nil && ev.Kind != models.EventUnknown {
		seen, err := r.ledger.Seen(ctx, ev.EventID)
		if err != nil {
			log.Warn("idempotency ledger lookup failed, processing anyway", zap.Error(err))
		} else if seen {
			log.Info("duplicate webhook delivery ignored")
			countMetric(r.metrics, log, aws_pkg.MetricWebhookDuplicate, nil)
			return Outcome{Duplicate: true}, nil
		}
	}

	var (
		out Outcome
		err error
	)
	switch ev.Kind {
	case models.EventCompleted:
		out, err = r.handleCompleted(ctx, log, ev)
	case models.EventExpired:
		out, err = r.handleExpired(ctx, log, ev)
	case models.EventPaymentFailed:
		log.Warn("payment failed",
			zap.String("payment_intent_id", ev.PaymentIntentID),
			zap.String("status", ev.PaymentStatus),
		)
		countMetric(r.metrics, log, aws_pkg.MetricPaymentFailed, nil)
		out = Outcome{Action: ActionLogged}
	default:
		log.Info("unhandled webhook event type")
		return Outcome{Action: ActionLogged}, nil
	}
	if err != nil {
		return out, err
	}

	if r.ledger != nil && !out.Degraded {
		if first, recErr := r.ledger.Record(ctx, ev.EventID, ev.RawType); recErr != nil {
			log.Warn("failed to record webhook event", zap.Error(recErr))
		} else if !first {
			log.Warn("webhook event was reconciled concurrently by another delivery")
		}
	}
	return out, nil
}

func (r *Reconciler) handleCompleted(ctx context.Context, log *zap.Logger, ev models.PaymentEvent) (Outcome, error) {
	sess := ev.Session
	log = log.With(zap.String("session_id", sess.SessionID), zap.String("payment_status", ev.PaymentStatus))

	if ev.PaymentStatus != string(models.SessionPaid) {
		log.Info("checkout completed without payment, skipping CRM sync")
		return Outcome{Action: ActionSkippedUnpaid}, nil
	}

	countMetric(r.metrics, log, aws_pkg.MetricDepositPaid, nil)

	if r.crm == nil {
		log.Warn("deposit paid but CRM is not configured, contact not synced")
		countMetric(r.metrics, log, aws_pkg.MetricWebhookDegraded, nil)
		r.publishDeposit(ctx, log, ev, "")
		return Outcome{Degraded: true}, nil
	}
	if sess.CustomerEmail == "" {
		log.Warn("paid checkout has no customer email, contact not synced")
		r.publishDeposit(ctx, log, ev, "")
		return Outcome{Action: ActionNoEmail}, nil
	}

	propertyName := sess.PropertyName
	if propertyName == "" {
		propertyName = "Property"
	}
	amount := models.FormatMinorUnits(sess.Amount, 100)
	at := r.now().UTC().Format(time.RFC3339)
	note := fmt.Sprintf("DEPOSIT RECEIVED\n\nAmount: %s\nProperty: %s (%s)\nStripe Session: %s\nDate: %s",
		amount, propertyName, sess.PropertyID, sess.SessionID, at)

	contactID, err := r.crm.FindContactByEmail(ctx, sess.CustomerEmail)
	if err != nil {
		return Outcome{}, fmt.Errorf("find contact: %w", err)
	}

	if contactID != "" {
		// The note is attempted even when tagging fails.
		tagErr := r.crm.UpdateTags(ctx, contactID, DepositTags)
		if tagErr != nil {
			log.Error("failed to tag contact", zap.String("contact_id", contactID), zap.Error(tagErr))
		}
		noteErr := r.crm.AddNote(ctx, contactID, note)
		if noteErr != nil {
			log.Error("failed to add deposit note", zap.String("contact_id", contactID), zap.Error(noteErr))
		}
		r.publishDeposit(ctx, log, ev, contactID)

		out := Outcome{Action: ActionContactUpdated, ContactID: contactID}
		if err := errors.Join(tagErr, noteErr); err != nil {
			return out, err
		}
		log.Info("updated CRM contact with deposit", zap.String("contact_id", contactID))
		return out, nil
	}

	contactID, err = r.crm.CreateContact(ctx,
		models.CRMContact{
			Email:  sess.CustomerEmail,
			Name:   sess.CustomerName,
			Source: depositSource,
			Tags:   DepositTags,
			CustomFields: map[string]string{
				"deposit_amount":    amount,
				"deposit_date":      at,
				"stripe_session_id": sess.SessionID,
			},
		},
		models.LeadFields{PropertyID: sess.PropertyID, PropertyName: propertyName},
	)
	if err != nil {
		r.publishDeposit(ctx, log, ev, "")
		return Outcome{}, fmt.Errorf("create contact: %w", err)
	}

	out := Outcome{Action: ActionContactCreated, ContactID: contactID}
	r.publishDeposit(ctx, log, ev, contactID)
	if err := r.crm.AddNote(ctx, contactID, note); err != nil {
		log.Error("failed to add deposit note", zap.String("contact_id", contactID), zap.Error(err))
		return out, err
	}
	log.Info("created CRM contact for deposit", zap.String("contact_id", contactID))
	return out, nil
}

func (r *Reconciler) handleExpired(ctx context.Context, log *zap.Logger, ev models.PaymentEvent) (Outcome, error) {
	sess := ev.Session
	log = log.With(zap.String("session_id", sess.SessionID))
	log.Info("checkout expired")
	countMetric(r.metrics, log, aws_pkg.MetricCheckoutExpired, nil)

	if r.crm == nil {
		log.Warn("CRM is not configured, abandoned checkout not recorded")
		countMetric(r.metrics, log, aws_pkg.MetricWebhookDegraded, nil)
		return Outcome{Degraded: true}, nil
	}
	if sess.CustomerEmail == "" {
		return Outcome{Action: ActionNoEmail}, nil
	}

	contactID, err := r.crm.FindContactByEmail(ctx, sess.CustomerEmail)
	if err != nil {
		return Outcome{}, fmt.Errorf("find contact: %w", err)
	}
	if contactID == "" {
		return Outcome{Action: ActionNoContact}, nil
	}

	propertyName := sess.PropertyName
	if propertyName == "" {
		propertyName = "Unknown"
	}
	note := fmt.Sprintf("ABANDONED CHECKOUT\n\nProperty: %s\nDate: %s\n\nFollow up recommended.",
		propertyName, r.now().UTC().Format(time.RFC3339))

	tagErr := r.crm.UpdateTags(ctx, contactID, AbandonedTags)
	if tagErr != nil {
		log.Error("failed to tag abandoned checkout", zap.String("contact_id", contactID), zap.Error(tagErr))
	}
	noteErr := r.crm.AddNote(ctx, contactID, note)
	if noteErr != nil {
		log.Error("failed to add abandoned checkout note", zap.String("contact_id", contactID), zap.Error(noteErr))
	}
	return Outcome{Action: ActionContactUpdated, ContactID: contactID}, errors.Join(tagErr, noteErr)
}

func (r *Reconciler) publishDeposit(ctx context.Context, log *zap.Logger, ev models.PaymentEvent, contactID string) {
	if r.sns == nil || r.topicARN == "" {
		return
	}
	msg, err := json.Marshal(models.DepositEvent{
		Type:          "deposit_paid",
		EventID:       ev.EventID,
		SessionID:     ev.Session.SessionID,
		PropertyID:    ev.Session.PropertyID,
		PropertyName:  ev.Session.PropertyName,
		CustomerEmail: ev.Session.CustomerEmail,
		ContactID:     contactID,
		Amount:        ev.Session.Amount,
		Currency:      ev.Session.Currency,
		Timestamp:     r.now().UTC(),
	})
	if err != nil {
		log.Error("failed to marshal deposit event", zap.Error(err))
		return
	}
	if err := r.sns.Publish(ctx, r.topicARN, msg); err != nil {
		log.Error("failed to publish deposit event", zap.Error(err))
	}
}
