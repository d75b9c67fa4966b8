package billing

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v78/webhook"

	"github.com/bootstrappedbetas/EOB-explainer/internal/shared/server/middleware"
	"github.com/bootstrappedbetas/EOB-explainer/internal/shared/server/respond"
	"github.com/bootstrappedbetas/EOB-explainer/internal/shared/telemetry"
)

const maxWebhookBody = 64 << 10 // 64KB

// Handler wires HTTP handlers to the billing service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches authenticated billing routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/billing/create-checkout-session", h.createCheckoutSession)
	rg.GET("/billing/subscription", h.subscription)
}

// RegisterWebhook attaches the provider webhook outside the authenticated
// API group; Stripe signs requests instead of carrying a session token.
func (h *Handler) RegisterWebhook(r *gin.Engine) {
	r.POST("/api/stripe/webhook", h.webhookHandler)
}

func (h *Handler) createCheckoutSession(c *gin.Context) {
	sub := middleware.UserSubFromContext(c)
	email := middleware.UserEmailFromContext(c)

	url, err := h.Svc.CreateCheckoutSession(c.Request.Context(), sub, email)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotConfigured):
			respond.Error(c, http.StatusInternalServerError, "billing_not_configured", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create checkout session", nil)
		}
		return
	}
	respond.OK(c, gin.H{"url": url})
}

func (h *Handler) subscription(c *gin.Context) {
	sub := middleware.UserSubFromContext(c)

	status, err := h.Svc.Subscription(c.Request.Context(), sub)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch subscription", nil)
		return
	}
	respond.OK(c, status)
}

func (h *Handler) webhookHandler(c *gin.Context) {
	if !h.Svc.Enabled() || h.Svc.WebhookSecret == "" {
		telemetry.Warn("billing.webhook_unconfigured", nil)
		respond.Error(c, http.StatusBadRequest, "webhook_not_configured", "webhook not configured", nil)
		return
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "unable to read payload", nil)
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), h.Svc.WebhookSecret)
	if err != nil {
		telemetry.Warn("billing.webhook_bad_signature", map[string]any{"error": err.Error()})
		respond.Error(c, http.StatusBadRequest, "invalid_signature", "webhook signature verification failed", nil)
		return
	}

	if err := h.Svc.HandleEvent(c.Request.Context(), event); err != nil {
		telemetry.Error("billing.webhook_failed", map[string]any{"event": string(event.Type), "error": err.Error()})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "webhook handler failed", nil)
		return
	}

	respond.OK(c, gin.H{"received": true})
}
