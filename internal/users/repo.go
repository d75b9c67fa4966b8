package users

import "context"

var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "user not found" }

// Repo defines persistence operations for users.
type Repo interface {
	// GetOrCreate returns the user for an identity-provider subject,
	// inserting a new row on first sight.
	GetOrCreate(ctx context.Context, auth0Sub, email string) (User, error)
	GetBySub(ctx context.Context, auth0Sub string) (User, error)
	// SetSubscription records billing-provider references after checkout.
	SetSubscription(ctx context.Context, auth0Sub, customerID, subscriptionID, status string) error
	// UpdateSubscriptionStatus updates status by billing subscription id;
	// a canceled status also clears the stored subscription reference.
	UpdateSubscriptionStatus(ctx context.Context, subscriptionID, status string) error
}
