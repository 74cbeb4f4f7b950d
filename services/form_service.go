package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/MilktreeAgency/landco/apperrors"
	"github.com/MilktreeAgency/landco/logger"
	"github.com/MilktreeAgency/landco/models"
	"github.com/MilktreeAgency/landco/wizard"
	"go.uber.org/zap"
)

const (
	formTypeLead  = "Lead Qualifier"
	formTypeLand  = "Land Submission"
	formTypeQuick = "Quick Land Enquiry"
)

// FormService accepts the website forms and queues them for Formspree.
type FormService interface {
	SubmitLead(ctx context.Context, data models.LeadData) (*models.FormResponse, error)
	SubmitLand(ctx context.Context, data models.LandSubmission) (*models.FormResponse, error)
	SubmitQuickContact(ctx context.Context, data models.QuickContact) (*models.FormResponse, error)
}

type FormIDs struct {
	Lead string
	Land string
}

type formServiceImpl struct {
	relay  *Relay
	ids    FormIDs
	logger *zap.Logger
}

func NewFormService(relay *Relay, ids FormIDs, logger *zap.Logger) FormService {
	return &formServiceImpl{relay: relay, ids: ids, logger: logger}
}

func (s *formServiceImpl) SubmitLead(ctx context.Context, data models.LeadData) (*models.FormResponse, error) {
	var resp *models.FormResponse
	err := wizard.NewLeadWizard(data).Complete(ctx, func(ctx context.Context, d models.LeadData) error {
		var err error
		resp, err = s.enqueue(ctx, s.ids.Lead, formTypeLead, LeadFormFields(d))
		return err
	})
	if err != nil {
		return nil, s.submitError(ctx, formTypeLead, err)
	}
	return resp, nil
}

func (s *formServiceImpl) SubmitLand(ctx context.Context, data models.LandSubmission) (*models.FormResponse, error) {
	var resp *models.FormResponse
	err := wizard.NewLandWizard(data).Complete(ctx, func(ctx context.Context, d models.LandSubmission) error {
		var err error
		resp, err = s.enqueue(ctx, s.ids.Land, formTypeLand, LandFormFields(d))
		return err
	})
	if err != nil {
		return nil, s.submitError(ctx, formTypeLand, err)
	}
	return resp, nil
}

func (s *formServiceImpl) SubmitQuickContact(ctx context.Context, data models.QuickContact) (*models.FormResponse, error) {
	if strings.TrimSpace(data.Postcode) == "" {
		return nil, apperrors.BadRequest("postcode: is required")
	}
	if !wizard.ValidEmail(data.Email) {
		return nil, apperrors.BadRequest("email: must be a valid email address")
	}
	resp, err := s.enqueue(ctx, s.ids.Land, formTypeQuick, QuickContactFields(data))
	if err != nil {
		return nil, s.submitError(ctx, formTypeQuick, err)
	}
	return resp, nil
}

func (s *formServiceImpl) enqueue(ctx context.Context, formID, formType string, fields map[string]any) (*models.FormResponse, error) {
	job, mode, err := s.relay.Enqueue(ctx, formID, formType, fields)
	if err != nil {
		return nil, err
	}
	return &models.FormResponse{Success: true, JobID: job.ID, Mode: mode}, nil
}

func (s *formServiceImpl) submitError(ctx context.Context, formType string, err error) error {
	var vErr *wizard.ValidationError
	if errors.As(err, &vErr) {
		return apperrors.BadRequest(vErr.Error())
	}
	logger.FromContext(ctx, s.logger).Error("form submission could not be queued",
		zap.String("form_type", formType), zap.Error(err))
	if errors.Is(err, ErrRelayQueueFull) {
		return apperrors.New(http.StatusServiceUnavailable, "Form service is busy, please try again", err)
	}
	return apperrors.Upstream(http.StatusInternalServerError, "Failed to submit form", err)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// LeadFormFields maps the lead qualifier to the Formspree inbox fields.
func LeadFormFields(d models.LeadData) map[string]any {
	return map[string]any{
		"_formType":           formTypeLead,
		"storage_type":        d.StorageType,
		"space_required_sqft": d.Size,
		"timeline":            d.Timeline,
		"preferred_location":  orDefault(d.Location, "Any"),
		"email":               d.Email,
		"source":              orDefault(d.Source, "Website Lead Qualifier"),
	}
}

// LandFormFields maps a land submission to the Formspree inbox fields.
func LandFormFields(d models.LandSubmission) map[string]any {
	return map[string]any{
		"_formType":               formTypeLand,
		"property_address":        d.Address,
		"postcode":                d.Postcode,
		"land_size_sqft":          d.LandSize,
		"land_type":               d.LandType,
		"current_use":             d.CurrentUse,
		"planning_permission":     d.HasPlanning,
		"owner_name":              d.OwnerName,
		"email":                   d.Email,
		"phone":                   d.Phone,
		"company_name":            orDefault(d.CompanyName, "N/A"),
		"asking_price":            orDefault(d.AskingPrice, "Valuation requested"),
		"sale_timeframe":          d.Timeframe,
		"interested_in_leaseback": yesNo(d.RentBack),
		"leaseback_terms":         orDefault(d.RentBackTerms, "N/A"),
		"description":             orDefault(d.Description, "No additional notes"),
		"has_photos_documents":    yesNo(d.HasPhotos),
		"source":                  "Sell Your Land Page",
	}
}

func QuickContactFields(d models.QuickContact) map[string]any {
	return map[string]any{
		"_formType":               formTypeQuick,
		"postcode":                d.Postcode,
		"approx_land_size":        d.LandSize,
		"email":                   d.Email,
		"interested_in_leaseback": yesNo(d.InterestedInLeaseback),
		"source":                  "Sell Your Land - Quick Contact",
	}
}
