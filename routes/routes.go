package routes

import (
	"net/http"

	"github.com/MilktreeAgency/landco/controllers"
	"github.com/MilktreeAgency/landco/middleware"
	"github.com/gin-gonic/gin"
)

type Controllers struct {
	Checkout *controllers.CheckoutController
	Webhook  *controllers.WebhookController
	Lead     *controllers.LeadController
	Forms    *controllers.FormController
	Chat     *controllers.ChatController
	Property *controllers.PropertyController
	Health   *controllers.HealthController
}

// Limiters throttle the public write endpoints per client IP. A nil limiter
// leaves its group unthrottled.
type Limiters struct {
	Chat  *middleware.RateLimiter
	Forms *middleware.RateLimiter
}

var notPost = []string{http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete}

// postOnly registers a POST route and answers every other method with 405.
func postOnly(g gin.IRoutes, path string, handlers ...gin.HandlerFunc) {
	g.POST(path, handlers...)
	for _, m := range notPost {
		g.Handle(m, path, middleware.MethodNotAllowed(http.MethodPost))
	}
}

func RegisterRoutes(r *gin.Engine, c Controllers, l Limiters) {
	r.GET("/health", c.Health.Health)

	api := r.Group("/api")

	postOnly(api, "/create-checkout-session", c.Checkout.CreateSession)
	// Stripe retries on its own schedule, so the webhook is never rate limited.
	postOnly(api, "/stripe-webhook", c.Webhook.StripeWebhook)
	postOnly(api, "/push-lead-to-ghl", c.Lead.PushLead)

	forms := api.Group("/forms")
	if l.Forms != nil {
		forms.Use(middleware.RateLimit(l.Forms))
	}
	postOnly(forms, "/lead", c.Forms.SubmitLead)
	postOnly(forms, "/land", c.Forms.SubmitLand)
	postOnly(forms, "/quick-contact", c.Forms.SubmitQuickContact)

	chat := api.Group("")
	if l.Chat != nil {
		chat.Use(middleware.RateLimit(l.Chat))
	}
	postOnly(chat, "/chat", c.Chat.Chat)

	api.GET("/properties", c.Property.ListProperties)
	api.GET("/properties/:id", c.Property.GetProperty)
	api.GET("/cities", c.Property.ListCities)
	api.GET("/cities/:slug", c.Property.GetCity)
}
