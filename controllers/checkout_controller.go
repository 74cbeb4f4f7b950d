package controllers

import (
	"net/http"

	"github.com/MilktreeAgency/landco/apperrors"
	"github.com/MilktreeAgency/landco/models"
	"github.com/MilktreeAgency/landco/services"
	"github.com/gin-gonic/gin"
)

type CheckoutController struct {
	checkoutService services.CheckoutService
}

func NewCheckoutController(svc services.CheckoutService) *CheckoutController {
	return &CheckoutController{checkoutService: svc}
}

// CreateSession handles POST /api/create-checkout-session
func (cc *CheckoutController) CreateSession(c *gin.Context) {
	var req models.CheckoutRequest
	if err := bindAndValidate(c, nil, &req); err != nil {
		apperrors.Respond(c, err)
		return
	}

	sess, err := cc.checkoutService.CreateSession(c.Request.Context(), req, c.GetHeader("Origin"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, models.CheckoutResponse{URL: sess.URL, SessionID: sess.SessionID})
}
