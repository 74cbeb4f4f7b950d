package controllers

import (
	"net/http"

	"github.com/MilktreeAgency/landco/apperrors"
	"github.com/MilktreeAgency/landco/models"
	"github.com/MilktreeAgency/landco/services"
	"github.com/gin-gonic/gin"
)

type LeadController struct {
	leadService services.LeadService
}

func NewLeadController(svc services.LeadService) *LeadController {
	return &LeadController{leadService: svc}
}

// PushLead handles POST /api/push-lead-to-ghl
func (lc *LeadController) PushLead(c *gin.Context) {
	var req models.LeadPushRequest
	if err := bindAndValidate(c, nil, &req); err != nil {
		apperrors.Respond(c, err)
		return
	}

	resp, err := lc.leadService.PushLead(c.Request.Context(), req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
