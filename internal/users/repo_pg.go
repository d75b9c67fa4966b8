package users

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const userColumns = `id, auth0_sub, email, stripe_customer_id, stripe_subscription_id, subscription_status, created_at, updated_at`

// GetOrCreate returns the user for a subject, inserting on first sight.
func (r *PGRepo) GetOrCreate(ctx context.Context, auth0Sub, email string) (User, error) {
	user, err := r.GetBySub(ctx, auth0Sub)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	const insert = `
INSERT INTO users (auth0_sub, email)
VALUES ($1, $2)
ON CONFLICT (auth0_sub) DO UPDATE SET updated_at = now()
RETURNING ` + userColumns
	row := r.DB.QueryRowContext(ctx, insert, auth0Sub, nullableString(email))
	return scanUser(row)
}

// GetBySub returns the user for an identity-provider subject.
func (r *PGRepo) GetBySub(ctx context.Context, auth0Sub string) (User, error) {
	const query = `
SELECT ` + userColumns + `
FROM users
WHERE auth0_sub = $1
LIMIT 1`
	user, err := scanUser(r.DB.QueryRowContext(ctx, query, auth0Sub))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

// SetSubscription records billing references after a completed checkout.
func (r *PGRepo) SetSubscription(ctx context.Context, auth0Sub, customerID, subscriptionID, status string) error {
	const query = `
UPDATE users
SET stripe_customer_id = $1,
    stripe_subscription_id = $2,
    subscription_status = $3,
    updated_at = now()
WHERE auth0_sub = $4`
	_, err := r.DB.ExecContext(ctx, query, customerID, nullableString(subscriptionID), status, auth0Sub)
	return err
}

// UpdateSubscriptionStatus updates status by billing subscription id.
// Canceled subscriptions also drop the stored subscription reference.
func (r *PGRepo) UpdateSubscriptionStatus(ctx context.Context, subscriptionID, status string) error {
	const query = `
UPDATE users
SET subscription_status = $1,
    stripe_subscription_id = CASE WHEN $1 = 'canceled' THEN NULL ELSE stripe_subscription_id END,
    updated_at = now()
WHERE stripe_subscription_id = $2`
	_, err := r.DB.ExecContext(ctx, query, status, subscriptionID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var user User
	var email, customerID, subscriptionID, status sql.NullString
	err := row.Scan(
		&user.ID,
		&user.Auth0Sub,
		&email,
		&customerID,
		&subscriptionID,
		&status,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return User{}, err
	}
	if email.Valid {
		user.Email = email.String
	}
	if customerID.Valid {
		user.StripeCustomerID = customerID.String
	}
	if subscriptionID.Valid {
		user.StripeSubscriptionID = subscriptionID.String
	}
	if status.Valid {
		user.SubscriptionStatus = status.String
	}
	return user, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

var _ Repo = (*PGRepo)(nil)
