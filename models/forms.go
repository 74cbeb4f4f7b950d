package models

// LeadData is collected by the lead qualifier wizard.
type LeadData struct {
	StorageType string `json:"storageType"`
	Size        int    `json:"size"` // sq ft
	Timeline    string `json:"timeline"`
	Location    string `json:"location"`
	Email       string `json:"email"`
	Source      string `json:"source,omitempty"`
}

// LandSubmission is collected by the sell-your-land wizard.
type LandSubmission struct {
	Address     string `json:"address"`
	Postcode    string `json:"postcode"`
	LandSize    string `json:"landSize"`
	LandType    string `json:"landType"`
	CurrentUse  string `json:"currentUse"`
	HasPlanning string `json:"hasPlanning"`

	OwnerName   string `json:"ownerName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	CompanyName string `json:"companyName"`

	AskingPrice   string `json:"askingPrice"`
	Timeframe     string `json:"timeframe"`
	RentBack      bool   `json:"rentBack"`
	RentBackTerms string `json:"rentBackTerms"`

	Description string `json:"description"`
	HasPhotos   bool   `json:"hasPhotos"`
}

// QuickContact is the short land enquiry form.
type QuickContact struct {
	Postcode              string `json:"postcode" validate:"required"`
	LandSize              string `json:"landSize"`
	Email                 string `json:"email" validate:"required,emailshape"`
	InterestedInLeaseback bool   `json:"interestedInLeaseback"`
}

// FormResponse is returned by the /api/forms endpoints.
type FormResponse struct {
	Success bool   `json:"success"`
	JobID   string `json:"jobId"`
	Mode    string `json:"mode"` // "queued" or "mock"
}
