package billing

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stripe/stripe-go/v78"

	"github.com/bootstrappedbetas/EOB-explainer/internal/users"
)

func newTestService(enabled bool) (*Service, *users.Service) {
	usersSvc := users.NewService(users.NewMemoryRepo())
	if enabled {
		return NewService(usersSvc, "sk_test_123", "price_123", "whsec_123", "http://localhost:5173"), usersSvc
	}
	return NewService(usersSvc, "", "", "", "http://localhost:5173"), usersSvc
}

func TestSubscriptionUnconfiguredGrantsAccess(t *testing.T) {
	svc, _ := newTestService(false)

	status, err := svc.Subscription(context.Background(), "auth0|u1")
	if err != nil {
		t.Fatalf("subscription: %v", err)
	}
	if !status.HasAccess {
		t.Fatal("expected dev bypass access when billing is unconfigured")
	}
	if status.Status != nil {
		t.Fatalf("expected null status, got %v", *status.Status)
	}
}

func TestSubscriptionUnknownUser(t *testing.T) {
	svc, _ := newTestService(true)

	status, err := svc.Subscription(context.Background(), "auth0|stranger")
	if err != nil {
		t.Fatalf("subscription: %v", err)
	}
	if status.HasAccess {
		t.Fatal("expected no access for unknown user")
	}
}

func TestSubscriptionActiveAndCanceled(t *testing.T) {
	svc, usersSvc := newTestService(true)
	ctx := context.Background()

	if _, err := usersSvc.GetOrCreate(ctx, "auth0|u1", "u1@example.com"); err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if err := usersSvc.SetSubscription(ctx, "auth0|u1", "cus_123", "sub_123", "active"); err != nil {
		t.Fatalf("set subscription: %v", err)
	}

	status, err := svc.Subscription(ctx, "auth0|u1")
	if err != nil {
		t.Fatalf("subscription: %v", err)
	}
	if !status.HasAccess {
		t.Fatal("expected access for active subscription")
	}
	if status.Status == nil || *status.Status != "active" {
		t.Fatalf("expected active status, got %v", status.Status)
	}

	if err := usersSvc.UpdateSubscriptionStatus(ctx, "sub_123", "canceled"); err != nil {
		t.Fatalf("update status: %v", err)
	}
	status, err = svc.Subscription(ctx, "auth0|u1")
	if err != nil {
		t.Fatalf("subscription: %v", err)
	}
	if status.HasAccess {
		t.Fatal("expected no access after cancellation")
	}
}

func TestCreateCheckoutSessionUnconfigured(t *testing.T) {
	svc, _ := newTestService(false)

	_, err := svc.CreateCheckoutSession(context.Background(), "auth0|u1", "u1@example.com")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestHandleEventCheckoutCompleted(t *testing.T) {
	svc, usersSvc := newTestService(true)
	ctx := context.Background()

	if _, err := usersSvc.GetOrCreate(ctx, "auth0|u1", "u1@example.com"); err != nil {
		t.Fatalf("get or create: %v", err)
	}

	raw, _ := json.Marshal(map[string]any{
		"id":           "cs_123",
		"customer":     "cus_123",
		"subscription": "sub_123",
		"metadata":     map[string]string{"auth0_sub": "auth0|u1"},
	})
	event := stripe.Event{
		Type: "checkout.session.completed",
		Data: &stripe.EventData{Raw: raw},
	}

	if err := svc.HandleEvent(ctx, event); err != nil {
		t.Fatalf("handle event: %v", err)
	}

	user, err := usersSvc.GetBySub(ctx, "auth0|u1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.StripeCustomerID != "cus_123" {
		t.Fatalf("expected customer id recorded, got %q", user.StripeCustomerID)
	}
	if user.SubscriptionStatus != "active" {
		t.Fatalf("expected active status, got %q", user.SubscriptionStatus)
	}
}

func TestHandleEventSubscriptionDeleted(t *testing.T) {
	svc, usersSvc := newTestService(true)
	ctx := context.Background()

	if _, err := usersSvc.GetOrCreate(ctx, "auth0|u1", "u1@example.com"); err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if err := usersSvc.SetSubscription(ctx, "auth0|u1", "cus_123", "sub_123", "active"); err != nil {
		t.Fatalf("set subscription: %v", err)
	}

	raw, _ := json.Marshal(map[string]any{
		"id":     "sub_123",
		"status": "canceled",
	})
	event := stripe.Event{
		Type: "customer.subscription.deleted",
		Data: &stripe.EventData{Raw: raw},
	}

	if err := svc.HandleEvent(ctx, event); err != nil {
		t.Fatalf("handle event: %v", err)
	}

	user, err := usersSvc.GetBySub(ctx, "auth0|u1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.SubscriptionStatus != "canceled" {
		t.Fatalf("expected canceled status, got %q", user.SubscriptionStatus)
	}
	if user.StripeSubscriptionID != "" {
		t.Fatalf("expected subscription reference cleared, got %q", user.StripeSubscriptionID)
	}
}

func TestHandleEventIgnoresUnknownType(t *testing.T) {
	svc, _ := newTestService(true)

	event := stripe.Event{
		Type: "invoice.paid",
		Data: &stripe.EventData{Raw: []byte(`{}`)},
	}
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("expected unknown event to be ignored, got %v", err)
	}
}
