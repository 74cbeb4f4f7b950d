package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/MilktreeAgency/landco/apperrors"
	"github.com/MilktreeAgency/landco/logger"
	"github.com/MilktreeAgency/landco/models"
	aws_pkg "github.com/MilktreeAgency/landco/pkg/aws"
	"github.com/MilktreeAgency/landco/providers"
	"github.com/MilktreeAgency/landco/wizard"
	"go.uber.org/zap"
)

const (
	defaultLeadSource = "Landco Website"
	leadPushedMessage = "Lead successfully pushed to CRM"
)

// LeadService pushes website leads straight into the CRM.
type LeadService interface {
	PushLead(ctx context.Context, req models.LeadPushRequest) (*models.LeadPushResponse, error)
}

type leadServiceImpl struct {
	crm        providers.CRM
	workflowID string
	metrics    aws_pkg.MetricsRecorder
	logger     *zap.Logger
}

// NewLeadService returns a service that answers "CRM system not configured"
// when crm is nil. A non-empty workflowID enrolls every new contact in that
// GoHighLevel workflow.
func NewLeadService(crm providers.CRM, workflowID string, metrics aws_pkg.MetricsRecorder, logger *zap.Logger) LeadService {
	return &leadServiceImpl{
		crm:        crm,
		workflowID: workflowID,
		metrics:    metrics,
		logger:     logger,
	}
}

func (s *leadServiceImpl) PushLead(ctx context.Context, req models.LeadPushRequest) (*models.LeadPushResponse, error) {
	log := logger.FromContext(ctx, s.logger)

	if s.crm == nil {
		log.Error("lead push rejected: GHL_API_KEY or GHL_LOCATION_ID is not set")
		return nil, apperrors.NotConfigured("CRM system not configured")
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		return nil, apperrors.BadRequest("Email is required")
	}
	if !wizard.ValidEmail(req.Email) {
		return nil, apperrors.BadRequest("Invalid email format")
	}

	source := req.Source
	if source == "" {
		source = defaultLeadSource
	}
	tags := LeadTags(req)

	contactID, err := s.crm.CreateContact(ctx,
		models.CRMContact{
			Email:       req.Email,
			Name:        req.Name,
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			Phone:       req.Phone,
			CompanyName: req.CompanyName,
			Source:      source,
			Tags:        tags,
		},
		models.LeadFields{
			StorageType:           req.StorageType,
			SpaceRequired:         req.SpaceRequired,
			Timeline:              req.Timeline,
			PreferredLocation:     req.PreferredLocation,
			PropertyAddress:       req.PropertyAddress,
			Postcode:              req.Postcode,
			LandSize:              req.LandSize,
			LandType:              req.LandType,
			AskingPrice:           req.AskingPrice,
			InterestedInLeaseback: req.InterestedInLeaseback,
		},
	)
	if err != nil {
		log.Error("GHL push failed", zap.String("form_type", string(req.FormType)), zap.Error(err))
		msg := "Failed to create contact in CRM"
		var crmErr *providers.CRMError
		if errors.As(err, &crmErr) && crmErr.Message != "" {
			msg = crmErr.Message
		}
		return nil, apperrors.Upstream(http.StatusInternalServerError, msg, err)
	}

	if s.workflowID != "" {
		if err := s.crm.TriggerWorkflow(ctx, contactID, s.workflowID); err != nil {
			log.Warn("failed to enroll lead in workflow",
				zap.String("contact_id", contactID),
				zap.String("workflow_id", s.workflowID),
				zap.Error(err),
			)
		}
	}

	log.Info("lead pushed to CRM",
		zap.String("contact_id", contactID),
		zap.String("form_type", string(req.FormType)),
		zap.Strings("tags", tags),
	)
	formType := string(req.FormType)
	if formType == "" {
		formType = string(models.FormGeneral)
	}
	countMetric(s.metrics, s.logger, aws_pkg.MetricLeadPushed, map[string]string{"FormType": formType})

	return &models.LeadPushResponse{
		Success:   true,
		ContactID: contactID,
		Tags:      tags,
		Message:   leadPushedMessage,
	}, nil
}

// LeadTags returns the caller's tags followed by the tags implied by the
// form type, without duplicates.
func LeadTags(req models.LeadPushRequest) []string {
	tags := append([]string(nil), req.Tags...)

	switch req.FormType {
	case models.FormLeadQualifier:
		tags = append(tags, "Website Lead", "Lead Qualifier")
		if req.Timeline == "immediate" {
			tags = append(tags, "Hot Lead")
		}
	case models.FormLandSubmission:
		tags = append(tags, "Land Seller", "Acquisition Lead")
		if req.InterestedInLeaseback != nil && *req.InterestedInLeaseback {
			tags = append(tags, "Leaseback Interest")
		}
	case models.FormQuickContact:
		tags = append(tags, "Quick Enquiry", "Land Seller")
	default:
		tags = append(tags, "Website Lead")
	}
	return dedupe(tags)
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
