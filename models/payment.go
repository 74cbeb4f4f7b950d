package models

import "time"

type SessionStatus string

const (
	SessionPending SessionStatus = "pending"
	SessionPaid    SessionStatus = "paid"
	SessionExpired SessionStatus = "expired"
)

// CheckoutRequest is the body of POST /api/create-checkout-session.
type CheckoutRequest struct {
	PropertyID    string `json:"propertyId"`
	PropertyName  string `json:"propertyName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerName  string `json:"customerName,omitempty"`
	CustomAmount  int64  `json:"customAmount,omitempty"` // pence
}

type CheckoutResponse struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}

// CheckoutSession is our view of a Stripe hosted checkout session.
type CheckoutSession struct {
	SessionID     string        `json:"sessionId"`
	PropertyID    string        `json:"propertyId"`
	PropertyName  string        `json:"propertyName"`
	CustomerEmail string        `json:"customerEmail"`
	CustomerName  string        `json:"customerName,omitempty"`
	Amount        int64         `json:"amount"` // minor units
	Currency      string        `json:"currency"`
	Status        SessionStatus `json:"status"`
	ExpiresAt     time.Time     `json:"expiresAt"`
	URL           string        `json:"url,omitempty"`
}

type EventKind string

const (
	EventCompleted     EventKind = "completed"
	EventExpired       EventKind = "expired"
	EventPaymentFailed EventKind = "payment_failed"
	EventUnknown       EventKind = "unknown"
)

// PaymentEvent is a verified Stripe event reduced to the fields the
// reconciler acts on.
type PaymentEvent struct {
	EventID         string
	Kind            EventKind
	RawType         string
	Session         CheckoutSession
	PaymentStatus   string
	PaymentIntentID string
	ReceivedAt      time.Time
}

// DepositEvent is published to SNS once a paid deposit has been reconciled.
type DepositEvent struct {
	Type          string    `json:"type"`
	EventID       string    `json:"event_id"`
	SessionID     string    `json:"session_id"`
	PropertyID    string    `json:"property_id"`
	PropertyName  string    `json:"property_name"`
	CustomerEmail string    `json:"customer_email"`
	ContactID     string    `json:"contact_id,omitempty"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	Timestamp     time.Time `json:"timestamp"`
}

// ProcessedEvent is a row of the webhook idempotency ledger.
type ProcessedEvent struct {
	EventID     string    `gorm:"primaryKey;type:varchar(255)"`
	EventType   string    `gorm:"type:varchar(100);not null"`
	ProcessedAt time.Time `gorm:"index;not null"`
}

func (ProcessedEvent) TableName() string {
	return "processed_webhook_events"
}
