package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/checkout/session"

	"github.com/bootstrappedbetas/EOB-explainer/internal/shared/telemetry"
	"github.com/bootstrappedbetas/EOB-explainer/internal/users"
)

// ErrNotConfigured is returned when Stripe credentials are absent.
var ErrNotConfigured = errors.New("billing is not configured. Set STRIPE_SECRET_KEY and STRIPE_PRICE_ID")

// Access-granting subscription statuses.
const (
	statusActive   = "active"
	statusTrialing = "trialing"
)

// Service handles subscription checkout and billing-provider webhooks.
// When Stripe is unconfigured every user has access (dev bypass).
type Service struct {
	Users         *users.Service
	PriceID       string
	AppURL        string
	WebhookSecret string
	enabled       bool
}

// NewService builds a Service. A non-empty secret key is installed as the
// process-wide Stripe key.
func NewService(usersSvc *users.Service, secretKey, priceID, webhookSecret, appURL string) *Service {
	if secretKey != "" {
		stripe.Key = secretKey
	}
	return &Service{
		Users:         usersSvc,
		PriceID:       priceID,
		AppURL:        appURL,
		WebhookSecret: webhookSecret,
		enabled:       secretKey != "" && priceID != "",
	}
}

// Enabled reports whether checkout and webhooks are operational.
func (s *Service) Enabled() bool {
	return s.enabled
}

// CreateCheckoutSession starts a subscription checkout and returns the
// hosted payment page URL. The caller's identity is attached as metadata
// so the completion webhook can link the subscription back to the user.
func (s *Service) CreateCheckoutSession(ctx context.Context, auth0Sub, email string) (string, error) {
	if !s.enabled {
		return "", ErrNotConfigured
	}

	user, err := s.Users.GetOrCreate(ctx, auth0Sub, email)
	if err != nil {
		return "", err
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(s.PriceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL:        stripe.String(s.AppURL + "/dashboard?checkout=success"),
		CancelURL:         stripe.String(s.AppURL + "/subscribe?checkout=canceled"),
		ClientReferenceID: stripe.String(user.ID),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{"auth0_sub": auth0Sub},
		},
	}
	params.Context = ctx
	params.AddMetadata("auth0_sub", auth0Sub)
	if email != "" {
		params.CustomerEmail = stripe.String(email)
	}

	sess, err := session.New(params)
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}

// SubscriptionStatus describes the caller's subscription gate.
type SubscriptionStatus struct {
	Status           *string `json:"status"`
	StripeCustomerID *string `json:"stripeCustomerId,omitempty"`
	HasAccess        bool    `json:"hasAccess"`
}

// Subscription returns the caller's subscription state. Unconfigured
// billing grants access to everyone.
func (s *Service) Subscription(ctx context.Context, auth0Sub string) (SubscriptionStatus, error) {
	if !s.enabled {
		return SubscriptionStatus{HasAccess: true}, nil
	}

	user, err := s.Users.GetBySub(ctx, auth0Sub)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return SubscriptionStatus{HasAccess: false}, nil
		}
		return SubscriptionStatus{}, err
	}

	status := user.SubscriptionStatus
	out := SubscriptionStatus{
		HasAccess: status == statusActive || status == statusTrialing,
	}
	if status != "" {
		out.Status = &status
	}
	if user.StripeCustomerID != "" {
		customerID := user.StripeCustomerID
		out.StripeCustomerID = &customerID
	}
	return out, nil
}

// HandleEvent applies a verified webhook event to the user store. Unknown
// event types are ignored.
func (s *Service) HandleEvent(ctx context.Context, event stripe.Event) error {
	switch string(event.Type) {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return fmt.Errorf("decode checkout session: %w", err)
		}

		auth0Sub := sess.Metadata["auth0_sub"]
		var customerID, subscriptionID string
		if sess.Customer != nil {
			customerID = sess.Customer.ID
		}
		if sess.Subscription != nil {
			subscriptionID = sess.Subscription.ID
		}
		if auth0Sub == "" || customerID == "" {
			telemetry.Warn("billing.webhook_incomplete", map[string]any{"event": string(event.Type)})
			return nil
		}
		return s.Users.SetSubscription(ctx, auth0Sub, customerID, subscriptionID, statusActive)

	case "customer.subscription.updated", "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("decode subscription: %w", err)
		}
		return s.Users.UpdateSubscriptionStatus(ctx, sub.ID, string(sub.Status))
	}
	return nil
}
