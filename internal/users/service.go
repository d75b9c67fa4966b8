package users

import (
	"context"
	"errors"
	"strings"
)

// Service contains business logic for users.
type Service struct {
	Repo Repo
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// GetOrCreate resolves the user record for an authenticated subject,
// creating it on first contact.
func (s *Service) GetOrCreate(ctx context.Context, auth0Sub, email string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(auth0Sub) == "" {
		return User{}, errors.New("identity subject is required")
	}
	return s.Repo.GetOrCreate(ctx, auth0Sub, email)
}

// GetBySub returns the user for an identity-provider subject.
func (s *Service) GetBySub(ctx context.Context, auth0Sub string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(auth0Sub) == "" {
		return User{}, errors.New("identity subject is required")
	}
	return s.Repo.GetBySub(ctx, auth0Sub)
}

// SetSubscription records billing references after a completed checkout.
func (s *Service) SetSubscription(ctx context.Context, auth0Sub, customerID, subscriptionID, status string) error {
	if s == nil || s.Repo == nil {
		return errors.New("users service not configured")
	}
	if strings.TrimSpace(auth0Sub) == "" {
		return errors.New("identity subject is required")
	}
	return s.Repo.SetSubscription(ctx, auth0Sub, customerID, subscriptionID, status)
}

// UpdateSubscriptionStatus applies a billing-provider status change.
func (s *Service) UpdateSubscriptionStatus(ctx context.Context, subscriptionID, status string) error {
	if s == nil || s.Repo == nil {
		return errors.New("users service not configured")
	}
	if strings.TrimSpace(subscriptionID) == "" {
		return errors.New("subscription id is required")
	}
	return s.Repo.UpdateSubscriptionStatus(ctx, subscriptionID, status)
}
