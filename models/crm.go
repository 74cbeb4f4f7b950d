package models

// CRMContact is the subset of a GoHighLevel contact this service writes.
type CRMContact struct {
	ContactID    string            `json:"id,omitempty"`
	Email        string            `json:"email"`
	Name         string            `json:"name,omitempty"`
	FirstName    string            `json:"firstName,omitempty"`
	LastName     string            `json:"lastName,omitempty"`
	Phone        string            `json:"phone,omitempty"`
	CompanyName  string            `json:"companyName,omitempty"`
	Source       string            `json:"source,omitempty"`
	Tags         []string          `json:"tags,omitempty"`
	CustomFields map[string]string `json:"customFields,omitempty"`
}

// LeadFields are the property and qualification details merged into a
// contact's custom fields on creation. Zero values are omitted.
type LeadFields struct {
	PropertyID            string
	PropertyName          string
	StorageType           string
	SpaceRequired         int
	Timeline              string
	PreferredLocation     string
	PropertyAddress       string
	Postcode              string
	LandSize              string
	LandType              string
	AskingPrice           string
	InterestedInLeaseback *bool
}

type FormType string

const (
	FormLeadQualifier  FormType = "lead_qualifier"
	FormLandSubmission FormType = "land_submission"
	FormQuickContact   FormType = "quick_contact"
	FormGeneral        FormType = "general"
)

// LeadPushRequest is the body of POST /api/push-lead-to-ghl.
type LeadPushRequest struct {
	Email       string   `json:"email"`
	Name        string   `json:"name,omitempty"`
	FirstName   string   `json:"firstName,omitempty"`
	LastName    string   `json:"lastName,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	CompanyName string   `json:"companyName,omitempty"`
	Source      string   `json:"source,omitempty"`
	FormType    FormType `json:"formType,omitempty"`

	StorageType       string `json:"storageType,omitempty"`
	SpaceRequired     int    `json:"spaceRequired,omitempty"`
	Timeline          string `json:"timeline,omitempty"`
	PreferredLocation string `json:"preferredLocation,omitempty"`

	PropertyAddress       string `json:"propertyAddress,omitempty"`
	Postcode              string `json:"postcode,omitempty"`
	LandSize              string `json:"landSize,omitempty"`
	LandType              string `json:"landType,omitempty"`
	AskingPrice           string `json:"askingPrice,omitempty"`
	InterestedInLeaseback *bool  `json:"interestedInLeaseback,omitempty"`

	Tags []string `json:"tags,omitempty"`
}

type LeadPushResponse struct {
	Success   bool     `json:"success"`
	ContactID string   `json:"contactId"`
	Tags      []string `json:"tags"`
	Message   string   `json:"message"`
}
