package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/MilktreeAgency/landco/models"
)

const (
	GHLBaseURL    = "https://services.leadconnectorhq.com"
	ghlAPIVersion = "2021-07-28"
)

// CRMError is a failed GoHighLevel call. Message is the CRM's own message
// when it returned one.
type CRMError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *CRMError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("ghl %s: %s (status %d)", e.Op, e.Message, e.Status)
	}
	return fmt.Sprintf("ghl %s: %s", e.Op, e.Message)
}

func (e *CRMError) Unwrap() error { return e.Err }

// GHLClient implements CRM against the GoHighLevel v2 REST API.
type GHLClient struct {
	apiKey     string
	locationID string
	baseURL    string
	httpClient *http.Client
}

func NewGHLClient(apiKey, locationID, baseURL string) *GHLClient {
	if baseURL == "" {
		baseURL = GHLBaseURL
	}
	return &GHLClient{
		apiKey:     apiKey,
		locationID: locationID,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: newHTTPClient(),
	}
}

type ghlContactEnvelope struct {
	Contact *struct {
		ID string `json:"id"`
	} `json:"contact"`
}

type ghlCreateContactRequest struct {
	Email       string            `json:"email"`
	Phone       string            `json:"phone"`
	FirstName   string            `json:"firstName"`
	LastName    string            `json:"lastName"`
	CompanyName string            `json:"companyName"`
	Source      string            `json:"source"`
	Tags        []string          `json:"tags"`
	CustomField map[string]string `json:"customField"`
	LocationID  string            `json:"locationId"`
}

func (g *GHLClient) FindContactByEmail(ctx context.Context, email string) (string, error) {
	q := url.Values{}
	q.Set("locationId", g.locationID)
	q.Set("email", email)

	var out ghlContactEnvelope
	if err := g.do(ctx, "find contact", http.MethodGet, "/contacts/search/duplicate?"+q.Encode(), nil, &out); err != nil {
		return "", err
	}
	if out.Contact == nil {
		return "", nil
	}
	return out.Contact.ID, nil
}

func (g *GHLClient) CreateContact(ctx context.Context, contact models.CRMContact, lead models.LeadFields) (string, error) {
	first, last := contact.FirstName, contact.LastName
	if first == "" && last == "" && contact.Name != "" {
		first, last = SplitName(contact.Name)
	}

	source := contact.Source
	if source == "" {
		source = "Website"
	}
	tags := contact.Tags
	if len(tags) == 0 {
		tags = []string{"Website Lead"}
	}

	payload := ghlCreateContactRequest{
		Email:       contact.Email,
		Phone:       contact.Phone,
		FirstName:   first,
		LastName:    last,
		CompanyName: contact.CompanyName,
		Source:      source,
		Tags:        tags,
		CustomField: MergeCustomFields(contact.CustomFields, lead),
		LocationID:  g.locationID,
	}

	var out ghlContactEnvelope
	if err := g.do(ctx, "create contact", http.MethodPost, "/contacts/", payload, &out); err != nil {
		return "", err
	}
	if out.Contact == nil || out.Contact.ID == "" {
		return "", &CRMError{Op: "create contact", Message: "response did not include a contact id"}
	}
	return out.Contact.ID, nil
}

func (g *GHLClient) AddNote(ctx context.Context, contactID, body string) error {
	path := "/contacts/" + url.PathEscape(contactID) + "/notes"
	return g.do(ctx, "add note", http.MethodPost, path, map[string]string{"body": body}, nil)
}

func (g *GHLClient) UpdateTags(ctx context.Context, contactID string, tags []string) error {
	path := "/contacts/" + url.PathEscape(contactID)
	return g.do(ctx, "update tags", http.MethodPut, path, map[string][]string{"tags": tags}, nil)
}

func (g *GHLClient) TriggerWorkflow(ctx context.Context, contactID, workflowID string) error {
	path := "/contacts/" + url.PathEscape(contactID) + "/workflow/" + url.PathEscape(workflowID)
	return g.do(ctx, "trigger workflow", http.MethodPost, path, map[string]string{"locationId": g.locationID}, nil)
}

func (g *GHLClient) do(ctx context.Context, op, method, path string, body, out any) error {
	headers := map[string]string{
		"Authorization": "Bearer " + g.apiKey,
		"Version":       ghlAPIVersion,
	}
	err := doJSON(ctx, g.httpClient, method, g.baseURL+path, headers, body, out)
	if err == nil {
		return nil
	}

	var hErr *httpError
	if errors.As(err, &hErr) {
		return &CRMError{Op: op, Status: hErr.Status, Message: ghlMessage(hErr), Err: err}
	}
	return &CRMError{Op: op, Message: err.Error(), Err: err}
}

// ghlMessage pulls "message" out of an error body. GHL sends either a
// string or a list of strings.
func ghlMessage(e *httpError) string {
	var body struct {
		Message json.RawMessage `json:"message"`
	}
	if json.Unmarshal(e.Body, &body) == nil && len(body.Message) > 0 {
		var s string
		if json.Unmarshal(body.Message, &s) == nil && s != "" {
			return s
		}
		var list []string
		if json.Unmarshal(body.Message, &list) == nil && len(list) > 0 {
			return strings.Join(list, "; ")
		}
	}
	return "GHL API error (" + strconv.Itoa(e.Status) + ")"
}

// SplitName splits a display name at the first whitespace.
func SplitName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	i := strings.IndexFunc(name, unicode.IsSpace)
	if i < 0 {
		return name, ""
	}
	return name[:i], strings.TrimSpace(name[i:])
}

// MergeCustomFields overlays the non-empty lead fields on base. base is not
// modified.
func MergeCustomFields(base map[string]string, lead models.LeadFields) map[string]string {
	out := make(map[string]string, len(base)+12)
	for k, v := range base {
		if v != "" {
			out[k] = v
		}
	}

	set := func(key, val string) {
		if val != "" {
			out[key] = val
		}
	}
	set("property_id", lead.PropertyID)
	set("property_name", lead.PropertyName)
	set("storage_type", lead.StorageType)
	if lead.SpaceRequired > 0 {
		out["space_required"] = strconv.Itoa(lead.SpaceRequired) + " sq ft"
	}
	set("timeline", lead.Timeline)
	set("preferred_location", lead.PreferredLocation)
	set("property_address", lead.PropertyAddress)
	set("postcode", lead.Postcode)
	set("land_size", lead.LandSize)
	set("land_type", lead.LandType)
	set("asking_price", lead.AskingPrice)
	if lead.InterestedInLeaseback != nil {
		out["interested_in_leaseback"] = yesNo(*lead.InterestedInLeaseback)
	}
	return out
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
