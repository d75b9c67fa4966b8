package users

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu    sync.RWMutex
	bySub map[string]User
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{bySub: make(map[string]User)}
}

// GetOrCreate returns the user for a subject, inserting on first sight.
func (r *MemoryRepo) GetOrCreate(ctx context.Context, auth0Sub, email string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.bySub[auth0Sub]; ok {
		return user, nil
	}
	now := time.Now().UTC()
	user := User{
		ID:        uuid.NewString(),
		Auth0Sub:  auth0Sub,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.bySub[auth0Sub] = user
	return user, nil
}

// GetBySub returns the user for an identity-provider subject.
func (r *MemoryRepo) GetBySub(ctx context.Context, auth0Sub string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.bySub[auth0Sub]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

// SetSubscription records billing references after a completed checkout.
func (r *MemoryRepo) SetSubscription(ctx context.Context, auth0Sub, customerID, subscriptionID, status string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.bySub[auth0Sub]
	if !ok {
		return nil
	}
	user.StripeCustomerID = customerID
	user.StripeSubscriptionID = subscriptionID
	user.SubscriptionStatus = status
	user.UpdatedAt = time.Now().UTC()
	r.bySub[auth0Sub] = user
	return nil
}

// UpdateSubscriptionStatus updates status by billing subscription id.
func (r *MemoryRepo) UpdateSubscriptionStatus(ctx context.Context, subscriptionID, status string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for sub, user := range r.bySub {
		if user.StripeSubscriptionID != subscriptionID {
			continue
		}
		user.SubscriptionStatus = status
		if status == "canceled" {
			user.StripeSubscriptionID = ""
		}
		user.UpdatedAt = time.Now().UTC()
		r.bySub[sub] = user
	}
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
