package controllers

import (
	"net/http"

	"github.com/MilktreeAgency/landco/apperrors"
	"github.com/MilktreeAgency/landco/models"
	"github.com/MilktreeAgency/landco/services"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// FormController accepts the completed website wizards.
type FormController struct {
	formService services.FormService
	validate    *validator.Validate
}

func NewFormController(svc services.FormService) *FormController {
	return &FormController{formService: svc, validate: newValidator()}
}

// SubmitLead handles POST /api/forms/lead
func (fc *FormController) SubmitLead(c *gin.Context) {
	var data models.LeadData
	if err := bindAndValidate(c, nil, &data); err != nil {
		apperrors.Respond(c, err)
		return
	}
	fc.respond(c, func() (*models.FormResponse, error) {
		return fc.formService.SubmitLead(c.Request.Context(), data)
	})
}

// SubmitLand handles POST /api/forms/land
func (fc *FormController) SubmitLand(c *gin.Context) {
	var data models.LandSubmission
	if err := bindAndValidate(c, nil, &data); err != nil {
		apperrors.Respond(c, err)
		return
	}
	fc.respond(c, func() (*models.FormResponse, error) {
		return fc.formService.SubmitLand(c.Request.Context(), data)
	})
}

// SubmitQuickContact handles POST /api/forms/quick-contact
func (fc *FormController) SubmitQuickContact(c *gin.Context) {
	var data models.QuickContact
	if err := bindAndValidate(c, fc.validate, &data); err != nil {
		apperrors.Respond(c, err)
		return
	}
	fc.respond(c, func() (*models.FormResponse, error) {
		return fc.formService.SubmitQuickContact(c.Request.Context(), data)
	})
}

func (fc *FormController) respond(c *gin.Context, submit func() (*models.FormResponse, error)) {
	resp, err := submit()
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusAccepted, resp)
}
