package eobs

import "context"

// Repo defines persistence operations for EOB records.
type Repo interface {
	Create(ctx context.Context, eob EOB) (EOB, error)
	// ListByUser returns the caller's records, newest first.
	ListByUser(ctx context.Context, userID string) ([]EOB, error)
	// GetByID returns a record only when owned by userID.
	GetByID(ctx context.Context, userID, eobID string) (EOB, error)
	// Delete removes a record owned by userID and returns it.
	Delete(ctx context.Context, userID, eobID string) (EOB, error)
	UpdateExtractedText(ctx context.Context, eobID, text string) error
	UpdateSummary(ctx context.Context, eobID string, summary []byte) error
	// AverageOwedByProcedure aggregates amount owed across all users for a
	// procedure code. A zero sample returns (nil, 0, nil).
	AverageOwedByProcedure(ctx context.Context, procedureCode string) (*float64, int, error)
}
