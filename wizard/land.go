package wizard

import (
	"strings"

	"github.com/MilktreeAgency/landco/models"
)

const (
	LandStepProperty Step = iota
	LandStepOwner
	LandStepSale
	LandStepAdditional
)

func required(step, field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Step: step, Field: field, Message: "is required"}
	}
	return nil
}

var landSteps = []StepDef[models.LandSubmission]{
	{Step: LandStepProperty, Name: "property", Validate: func(d *models.LandSubmission) error {
		for _, f := range []struct{ name, value string }{
			{"address", d.Address},
			{"postcode", d.Postcode},
			{"landSize", d.LandSize},
			{"landType", d.LandType},
		} {
			if err := required("property", f.name, f.value); err != nil {
				return err
			}
		}
		return nil
	}},
	{Step: LandStepOwner, Name: "owner", Validate: func(d *models.LandSubmission) error {
		if err := required("owner", "ownerName", d.OwnerName); err != nil {
			return err
		}
		if !ValidEmail(d.Email) {
			return &ValidationError{Step: "owner", Field: "email", Message: "must be a valid email address"}
		}
		return required("owner", "phone", d.Phone)
	}},
	{Step: LandStepSale, Name: "sale"},
	{Step: LandStepAdditional, Name: "additional"},
}

// NewLandWizard starts the sell-your-land submission funnel.
func NewLandWizard(data models.LandSubmission) *Machine[models.LandSubmission] {
	m, _ := NewMachine(landSteps, data)
	return m
}
