package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MilktreeAgency/landco/apperrors"
	"github.com/MilktreeAgency/landco/logger"
	"github.com/MilktreeAgency/landco/models"
	aws_pkg "github.com/MilktreeAgency/landco/pkg/aws"
	"github.com/MilktreeAgency/landco/wizard"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
)

const (
	checkoutTTL       = 30 * time.Minute
	defaultSiteOrigin = "https://landco.co.uk"
	depositLogoURL    = "https://landco.co.uk/landco-logo.png"
	depositTypeTag    = "holding_deposit"
)

// CheckoutService starts hosted deposit payments for a yard.
type CheckoutService interface {
	CreateSession(ctx context.Context, req models.CheckoutRequest, origin string) (*models.CheckoutSession, error)
}

type CheckoutConfig struct {
	DepositAmount int64 // pence
	Currency      string
	SiteURL       string
}

type checkoutServiceImpl struct {
	stripe  CheckoutCreator
	cfg     CheckoutConfig
	metrics aws_pkg.MetricsRecorder
	logger  *zap.Logger
	now     func() time.Time
}

// NewCheckoutService returns a service that reports "not configured" on
// every call when creator is nil.
func NewCheckoutService(creator CheckoutCreator, cfg CheckoutConfig, metrics aws_pkg.MetricsRecorder, logger *zap.Logger) CheckoutService {
	if cfg.Currency == "" {
		cfg.Currency = "gbp"
	}
	return &checkoutServiceImpl{
		stripe:  creator,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *checkoutServiceImpl) CreateSession(ctx context.Context, req models.CheckoutRequest, origin string) (*models.CheckoutSession, error) {
	log := logger.FromContext(ctx, s.logger)

	if s.stripe == nil {
		log.Error("checkout requested but STRIPE_SECRET_KEY is not set")
		return nil, apperrors.NotConfigured("Payment system not configured")
	}

	req.PropertyID = strings.TrimSpace(req.PropertyID)
	req.CustomerEmail = strings.TrimSpace(req.CustomerEmail)
	if req.PropertyID == "" || req.CustomerEmail == "" {
		return nil, apperrors.BadRequest("Missing required fields: propertyId, customerEmail")
	}
	if !wizard.ValidEmail(req.CustomerEmail) {
		return nil, apperrors.BadRequest("Invalid email format")
	}

	amount := s.cfg.DepositAmount
	if req.CustomAmount > 0 {
		amount = req.CustomAmount
	}
	expiresAt := s.now().Add(checkoutTTL)
	params := s.buildParams(req, amount, s.redirectOrigin(origin), expiresAt)

	sess, err := s.stripe.CreateCheckoutSession(ctx, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			log.Warn("stripe rejected checkout session",
				zap.String("property_id", req.PropertyID),
				zap.String("stripe_code", string(stripeErr.Code)),
				zap.Error(err),
			)
			msg := stripeErr.Msg
			if msg == "" {
				msg = "Failed to create checkout session"
			}
			return nil, apperrors.Upstream(http.StatusBadRequest, msg, err)
		}
		log.Error("checkout session creation failed", zap.String("property_id", req.PropertyID), zap.Error(err))
		return nil, apperrors.Upstream(http.StatusInternalServerError, "Failed to create checkout session", err)
	}

	log.Info("checkout session created",
		zap.String("session_id", sess.ID),
		zap.String("property_id", req.PropertyID),
		zap.Int64("amount", amount),
	)
	countMetric(s.metrics, s.logger, aws_pkg.MetricCheckoutCreated, nil)

	return &models.CheckoutSession{
		SessionID:     sess.ID,
		PropertyID:    req.PropertyID,
		PropertyName:  req.PropertyName,
		CustomerEmail: req.CustomerEmail,
		CustomerName:  req.CustomerName,
		Amount:        amount,
		Currency:      s.cfg.Currency,
		Status:        models.SessionPending,
		ExpiresAt:     expiresAt,
		URL:           sess.URL,
	}, nil
}

func (s *checkoutServiceImpl) buildParams(req models.CheckoutRequest, amount int64, origin string, expiresAt time.Time) *stripe.CheckoutSessionParams {
	productName := req.PropertyName
	if productName == "" {
		productName = "Landco Property"
	}
	describedAs := req.PropertyName
	if describedAs == "" {
		describedAs = "property"
	}

	base := fmt.Sprintf("%s/#/property/%s", origin, req.PropertyID)
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail:      stripe.String(req.CustomerEmail),
		ClientReferenceID:  stripe.String(req.PropertyID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(s.cfg.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String("Holding Deposit - " + productName),
						Description: stripe.String(fmt.Sprintf("Refundable holding deposit for %s (ID: %s)", describedAs, req.PropertyID)),
						Images:      stripe.StringSlice([]string{depositLogoURL}),
					},
					UnitAmount: stripe.Int64(amount),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(base + "?payment=success&session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(base + "?payment=cancelled"),
		ExpiresAt:  stripe.Int64(expiresAt.Unix()),
	}
	params.AddMetadata("propertyId", req.PropertyID)
	params.AddMetadata("propertyName", req.PropertyName)
	params.AddMetadata("customerName", req.CustomerName)
	params.AddMetadata("type", depositTypeTag)
	return params
}

// redirectOrigin prefers the caller's Origin header, then SITE_URL.
func (s *checkoutServiceImpl) redirectOrigin(origin string) string {
	for _, o := range []string{origin, s.cfg.SiteURL, defaultSiteOrigin} {
		if o = strings.TrimSuffix(strings.TrimSpace(o), "/"); o != "" {
			return o
		}
	}
	return defaultSiteOrigin
}
