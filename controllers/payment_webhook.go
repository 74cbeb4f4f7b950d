package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/MilktreeAgency/landco/apperrors"
	"github.com/MilktreeAgency/landco/services"
	"github.com/gin-gonic/gin"
)

// Stripe caps webhook payloads well below this.
const maxWebhookBody = 65536

type WebhookController struct {
	webhookService services.WebhookService
}

func NewWebhookController(svc services.WebhookService) *WebhookController {
	return &WebhookController{webhookService: svc}
}

// StripeWebhook handles POST /api/stripe-webhook. The body is read raw so the
// signature is checked against the exact bytes Stripe signed.
func (wc *WebhookController) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			apperrors.Respond(c, apperrors.New(http.StatusRequestEntityTooLarge, "Payload too large", err))
			return
		}
		apperrors.Respond(c, apperrors.New(http.StatusBadRequest, "Failed to read request body", err))
		return
	}

	res, err := wc.webhookService.Receive(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
