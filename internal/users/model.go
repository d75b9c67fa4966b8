package users

import "time"

// User is an application user, keyed internally by UUID and externally by
// the identity-provider subject. Created lazily on first authenticated
// action; never deleted.
type User struct {
	ID                   string    `json:"id"`
	Auth0Sub             string    `json:"auth0Sub"`
	Email                string    `json:"email"`
	StripeCustomerID     string    `json:"stripeCustomerId,omitempty"`
	StripeSubscriptionID string    `json:"stripeSubscriptionId,omitempty"`
	SubscriptionStatus   string    `json:"subscriptionStatus,omitempty"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}
