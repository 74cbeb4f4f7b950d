package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MilktreeAgency/landco/apperrors"
	"github.com/MilktreeAgency/landco/catalog"
	"github.com/MilktreeAgency/landco/controllers"
	"github.com/MilktreeAgency/landco/models"
	"github.com/MilktreeAgency/landco/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/webhook"
	"go.uber.org/zap"
)

// ---- mocks ----

type mockCheckout struct {
	gotReq    models.CheckoutRequest
	gotOrigin string
	sess      *models.CheckoutSession
	err       error
}

func (m *mockCheckout) CreateSession(_ context.Context, req models.CheckoutRequest, origin string) (*models.CheckoutSession, error) {
	m.gotReq, m.gotOrigin = req, origin
	return m.sess, m.err
}

type mockLead struct {
	got  models.LeadPushRequest
	resp *models.LeadPushResponse
	err  error
}

func (m *mockLead) PushLead(_ context.Context, req models.LeadPushRequest) (*models.LeadPushResponse, error) {
	m.got = req
	return m.resp, m.err
}

type mockForms struct {
	calls []string
	err   error
}

func (m *mockForms) result(name string) (*models.FormResponse, error) {
	m.calls = append(m.calls, name)
	if m.err != nil {
		return nil, m.err
	}
	return &models.FormResponse{Success: true, JobID: "job-1", Mode: services.RelayModeQueued}, nil
}

func (m *mockForms) SubmitLead(context.Context, models.LeadData) (*models.FormResponse, error) {
	return m.result("lead")
}

func (m *mockForms) SubmitLand(context.Context, models.LandSubmission) (*models.FormResponse, error) {
	return m.result("land")
}

func (m *mockForms) SubmitQuickContact(context.Context, models.QuickContact) (*models.FormResponse, error) {
	return m.result("quick")
}

type mockChat struct {
	got models.ChatRequest
}

func (m *mockChat) Send(_ context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	m.got = req
	return &models.ChatResponse{SessionID: "s-1", Reply: "hello", Mode: services.ChatModeLive}, nil
}

// ---- helpers ----

func init() { gin.SetMode(gin.TestMode) }

func do(r http.Handler, method, path string, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// ---- checkout ----

func TestCreateSession_Success(t *testing.T) {
	svc := &mockCheckout{sess: &models.CheckoutSession{SessionID: "cs_1", URL: "https://checkout.stripe.com/c/pay/cs_1"}}
	r := gin.New()
	r.POST("/api/create-checkout-session", controllers.NewCheckoutController(svc).CreateSession)

	w := do(r, http.MethodPost, "/api/create-checkout-session",
		`{"propertyId":"1","propertyName":"Southampton Western Docks Hub","customerEmail":"a@b.io"}`,
		map[string]string{"Origin": "https://preview.landco.co.uk"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"url":"https://checkout.stripe.com/c/pay/cs_1","sessionId":"cs_1"}`, w.Body.String())
	assert.Equal(t, "https://preview.landco.co.uk", svc.gotOrigin)
	assert.Equal(t, "1", svc.gotReq.PropertyID)
}

func TestCreateSession_Errors(t *testing.T) {
	svc := &mockCheckout{err: apperrors.BadRequest("Missing required fields: propertyId, customerEmail")}
	r := gin.New()
	r.POST("/api/create-checkout-session", controllers.NewCheckoutController(svc).CreateSession)

	w := do(r, http.MethodPost, "/api/create-checkout-session", `{"propertyName":"x"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required fields: propertyId, customerEmail", decode(t, w)["error"])

	w = do(r, http.MethodPost, "/api/create-checkout-session", `{not json`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid JSON body", decode(t, w)["error"])
}

// ---- webhook ----

func TestStripeWebhook_EndToEnd(t *testing.T) {
	const secret = "whsec_ctrl"
	rec := services.NewReconciler(nil, zap.NewNop())
	svc := services.NewWebhookService(true, services.NewStripeClient("sk_test", secret), rec, zap.NewNop())
	r := gin.New()
	r.POST("/api/stripe-webhook", controllers.NewWebhookController(svc).StripeWebhook)

	payload, err := json.Marshal(map[string]any{
		"id":          "evt_ctrl",
		"object":      "event",
		"type":        "customer.created",
		"api_version": stripe.APIVersion,
		"created":     time.Now().Unix(),
		"data":        map[string]any{"object": map[string]any{"id": "cus_1", "object": "customer"}},
	})
	require.NoError(t, err)
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{Payload: payload, Secret: secret})

	w := do(r, http.MethodPost, "/api/stripe-webhook", string(signed.Payload), map[string]string{"Stripe-Signature": signed.Header})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true}`, w.Body.String())

	w = do(r, http.MethodPost, "/api/stripe-webhook", string(signed.Payload), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing signature header", decode(t, w)["error"])

	// re-encoding the JSON changes the bytes and breaks the signature
	var reencoded bytes.Buffer
	require.NoError(t, json.Indent(&reencoded, signed.Payload, "", "  "))
	w = do(r, http.MethodPost, "/api/stripe-webhook", reencoded.String(), map[string]string{"Stripe-Signature": signed.Header})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, strings.HasPrefix(decode(t, w)["error"].(string), "Webhook Error:"))
}

func TestStripeWebhook_NotConfigured(t *testing.T) {
	svc := services.NewWebhookService(false, nil, services.NewReconciler(nil, zap.NewNop()), zap.NewNop())
	r := gin.New()
	r.POST("/api/stripe-webhook", controllers.NewWebhookController(svc).StripeWebhook)

	w := do(r, http.MethodPost, "/api/stripe-webhook", `{}`, map[string]string{"Stripe-Signature": "t=1,v1=x"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Webhook not configured", decode(t, w)["error"])
}

func TestStripeWebhook_TooLarge(t *testing.T) {
	svc := services.NewWebhookService(true, services.NewStripeClient("sk", "whsec"), services.NewReconciler(nil, zap.NewNop()), zap.NewNop())
	r := gin.New()
	r.POST("/api/stripe-webhook", controllers.NewWebhookController(svc).StripeWebhook)

	w := do(r, http.MethodPost, "/api/stripe-webhook", strings.Repeat("x", 70000), map[string]string{"Stripe-Signature": "t=1,v1=x"})
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

// ---- lead push ----

func TestPushLead(t *testing.T) {
	svc := &mockLead{resp: &models.LeadPushResponse{Success: true, ContactID: "c1", Tags: []string{"Website Lead"}, Message: "Lead successfully pushed to CRM"}}
	r := gin.New()
	r.POST("/api/push-lead-to-ghl", controllers.NewLeadController(svc).PushLead)

	w := do(r, http.MethodPost, "/api/push-lead-to-ghl",
		`{"email":"a@b.io","formType":"land_submission","interestedInLeaseback":true,"spaceRequired":5000}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "c1", body["contactId"])

	assert.Equal(t, models.FormLandSubmission, svc.got.FormType)
	require.NotNil(t, svc.got.InterestedInLeaseback)
	assert.True(t, *svc.got.InterestedInLeaseback)
	assert.Equal(t, 5000, svc.got.SpaceRequired)

	svc.err = apperrors.NotConfigured("CRM system not configured")
	w = do(r, http.MethodPost, "/api/push-lead-to-ghl", `{"email":"a@b.io"}`, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "CRM system not configured", decode(t, w)["error"])
}

// ---- forms ----

func formRouter(svc services.FormService) *gin.Engine {
	r := gin.New()
	fc := controllers.NewFormController(svc)
	r.POST("/api/forms/lead", fc.SubmitLead)
	r.POST("/api/forms/land", fc.SubmitLand)
	r.POST("/api/forms/quick-contact", fc.SubmitQuickContact)
	return r
}

func TestForms_Accepted(t *testing.T) {
	svc := &mockForms{}
	r := formRouter(svc)

	for path, body := range map[string]string{
		"/api/forms/lead":          `{"storageType":"container","size":1000,"timeline":"immediate","email":"a@b.io"}`,
		"/api/forms/land":          `{"address":"1 Road","email":"a@b.io"}`,
		"/api/forms/quick-contact": `{"postcode":"SO15 1AA","email":"a@b.io"}`,
	} {
		w := do(r, http.MethodPost, path, body, nil)
		assert.Equal(t, http.StatusAccepted, w.Code, path)
		assert.JSONEq(t, `{"success":true,"jobId":"job-1","mode":"queued"}`, w.Body.String())
	}
	assert.ElementsMatch(t, []string{"lead", "land", "quick"}, svc.calls)
}

func TestForms_QuickContactValidation(t *testing.T) {
	svc := &mockForms{}
	r := formRouter(svc)

	w := do(r, http.MethodPost, "/api/forms/quick-contact", `{"email":"a@b.io"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "postcode: is required", decode(t, w)["error"])

	w = do(r, http.MethodPost, "/api/forms/quick-contact", `{"postcode":"SO15","email":"a@b"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "email: must be a valid email address", decode(t, w)["error"])

	assert.Empty(t, svc.calls)
}

func TestForms_ServiceError(t *testing.T) {
	svc := &mockForms{err: apperrors.BadRequest("storageType: is required")}
	w := do(formRouter(svc), http.MethodPost, "/api/forms/lead", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "storageType: is required", decode(t, w)["error"])
}

// ---- chat ----

func TestChat(t *testing.T) {
	svc := &mockChat{}
	r := gin.New()
	r.POST("/api/chat", controllers.NewChatController(svc).Chat)

	w := do(r, http.MethodPost, "/api/chat", `{"sessionId":"s-1","message":"hi"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello", decode(t, w)["reply"])
	assert.Equal(t, "s-1", svc.got.SessionID)

	w = do(r, http.MethodPost, "/api/chat", `{"sessionId":"s-1"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "message: is required", decode(t, w)["error"])
}

// ---- catalog ----

func catalogRouter() *gin.Engine {
	r := gin.New()
	pc := controllers.NewPropertyController(services.NewCatalogService(catalog.Yards(), catalog.CityHubs()))
	r.GET("/api/properties", pc.ListProperties)
	r.GET("/api/properties/:id", pc.GetProperty)
	r.GET("/api/cities", pc.ListCities)
	r.GET("/api/cities/:slug", pc.GetCity)
	return r
}

func TestListProperties(t *testing.T) {
	r := catalogRouter()

	w := do(r, http.MethodGet, "/api/properties?maxPrice=2000&sort=price_desc", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Properties []models.Yard `json:"properties"`
		Total      int           `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Total)
	assert.Equal(t, "6", body.Properties[0].ID)

	w = do(r, http.MethodGet, "/api/properties?securityRating=A+&securityRating=A", "", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Total)

	w = do(r, http.MethodGet, "/api/properties?minSize=big", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid minSize: must be a non-negative integer", decode(t, w)["error"])

	w = do(r, http.MethodGet, "/api/properties?available=maybe", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPropertyAndCities(t *testing.T) {
	r := catalogRouter()

	w := do(r, http.MethodGet, "/api/properties/5", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Yeovil Commercial Yard", decode(t, w)["title"])

	w = do(r, http.MethodGet, "/api/properties/404", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Property not found", decode(t, w)["error"])

	w = do(r, http.MethodGet, "/api/cities", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["cities"], 6)

	w = do(r, http.MethodGet, "/api/cities/andover", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	page := decode(t, w)
	assert.Equal(t, "Andover", page["name"])
	assert.Equal(t, float64(1), page["availableCount"])
}

// ---- health ----

func TestHealth(t *testing.T) {
	r := gin.New()
	hc := controllers.NewHealthController(
		map[string]bool{"stripe": true, "chat": false},
		map[string]controllers.Check{"redis": func(context.Context) error { return nil }},
	)
	r.GET("/health", hc.Health)

	w := do(r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"landco","integrations":{"stripe":"live","chat":"mock"},"dependencies":{"redis":"up"}}`, w.Body.String())

	r = gin.New()
	r.GET("/health", controllers.NewHealthController(nil, map[string]controllers.Check{
		"postgres": func(context.Context) error { return errors.New("connection refused") },
	}).Health)
	w = do(r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "degraded", decode(t, w)["status"])
}
