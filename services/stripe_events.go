package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/MilktreeAgency/landco/models"
	"github.com/stripe/stripe-go/v80"
)

const (
	stripeCheckoutCompleted = "checkout.session.completed"
	stripeCheckoutExpired   = "checkout.session.expired"
	stripePaymentFailed     = "payment_intent.payment_failed"
)

// NormalizeEvent reduces a verified Stripe event to a PaymentEvent.
// Unrecognised types come back with Kind EventUnknown and no error.
func NormalizeEvent(ev stripe.Event, receivedAt time.Time) (models.PaymentEvent, error) {
	pe := models.PaymentEvent{
		EventID:    ev.ID,
		Kind:       models.EventUnknown,
		RawType:    string(ev.Type),
		ReceivedAt: receivedAt,
	}
	if ev.Data == nil {
		return pe, fmt.Errorf("event %s has no data", ev.ID)
	}

	switch pe.RawType {
	case stripeCheckoutCompleted, stripeCheckoutExpired:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &sess); err != nil {
			return pe, fmt.Errorf("decode checkout session: %w", err)
		}
		pe.Kind = models.EventCompleted
		if pe.RawType == stripeCheckoutExpired {
			pe.Kind = models.EventExpired
		}
		pe.PaymentStatus = string(sess.PaymentStatus)
		if sess.PaymentIntent != nil {
			pe.PaymentIntentID = sess.PaymentIntent.ID
		}
		pe.Session = sessionView(&sess)

	case stripePaymentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
			return pe, fmt.Errorf("decode payment intent: %w", err)
		}
		pe.Kind = models.EventPaymentFailed
		pe.PaymentIntentID = pi.ID
		pe.PaymentStatus = string(pi.Status)
		pe.Session.Amount = pi.Amount
		pe.Session.Currency = string(pi.Currency)
	}
	return pe, nil
}

func sessionView(sess *stripe.CheckoutSession) models.CheckoutSession {
	md := sess.Metadata

	email := sess.CustomerEmail
	if email == "" && sess.CustomerDetails != nil {
		email = sess.CustomerDetails.Email
	}
	propertyID := md["propertyId"]
	if propertyID == "" {
		propertyID = sess.ClientReferenceID
	}

	status := models.SessionPending
	switch {
	case sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid:
		status = models.SessionPaid
	case sess.Status == stripe.CheckoutSessionStatusExpired:
		status = models.SessionExpired
	}

	view := models.CheckoutSession{
		SessionID:     sess.ID,
		PropertyID:    propertyID,
		PropertyName:  md["propertyName"],
		CustomerEmail: email,
		CustomerName:  md["customerName"],
		Amount:        sess.AmountTotal,
		Currency:      string(sess.Currency),
		Status:        status,
		URL:           sess.URL,
	}
	if sess.ExpiresAt > 0 {
		view.ExpiresAt = time.Unix(sess.ExpiresAt, 0).UTC()
	}
	return view
}
