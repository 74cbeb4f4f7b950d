package wizard

import (
	"strings"

	"github.com/MilktreeAgency/landco/models"
)

const (
	LeadStepType Step = iota
	LeadStepSize
	LeadStepTimeline
	LeadStepLocation
	LeadStepContact
)

const (
	DefaultLeadSize = 5000
	MinLeadSize     = 500
	MaxLeadSize     = 50000
)

var leadSteps = []StepDef[models.LeadData]{
	{Step: LeadStepType, Name: "type", Validate: func(d *models.LeadData) error {
		if strings.TrimSpace(d.StorageType) == "" {
			return &ValidationError{Step: "type", Field: "storageType", Message: "is required"}
		}
		return nil
	}},
	{Step: LeadStepSize, Name: "size", Validate: func(d *models.LeadData) error {
		if d.Size < MinLeadSize || d.Size > MaxLeadSize {
			return &ValidationError{Step: "size", Field: "size", Message: "must be between 500 and 50000 sq ft"}
		}
		return nil
	}},
	{Step: LeadStepTimeline, Name: "timeline", Validate: func(d *models.LeadData) error {
		if strings.TrimSpace(d.Timeline) == "" {
			return &ValidationError{Step: "timeline", Field: "timeline", Message: "is required"}
		}
		return nil
	}},
	{Step: LeadStepLocation, Name: "location"},
	{Step: LeadStepContact, Name: "contact", Validate: func(d *models.LeadData) error {
		if !ValidEmail(d.Email) {
			return &ValidationError{Step: "contact", Field: "email", Message: "must be a valid email address"}
		}
		return nil
	}},
}

// NewLeadWizard starts the storage lead qualifier. A zero size takes the
// slider's starting value.
func NewLeadWizard(data models.LeadData) *Machine[models.LeadData] {
	if data.Size == 0 {
		data.Size = DefaultLeadSize
	}
	m, _ := NewMachine(leadSteps, data)
	return m
}
