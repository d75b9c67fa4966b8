package eobs

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo is an in-memory Repo used for local development without a
// database and for service tests.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]EOB
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]EOB)}
}

func (r *MemoryRepo) Create(ctx context.Context, eob EOB) (EOB, error) {
	if err := ctx.Err(); err != nil {
		return EOB{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if eob.ID == "" {
		eob.ID = uuid.NewString()
	}
	if eob.CreatedAt.IsZero() {
		eob.CreatedAt = time.Now().UTC()
	}
	r.byID[eob.ID] = eob
	return eob, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]EOB, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []EOB
	for _, eob := range r.byID {
		if eob.UserID == userID {
			out = append(out, eob)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID, eobID string) (EOB, error) {
	if err := ctx.Err(); err != nil {
		return EOB{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	eob, ok := r.byID[eobID]
	if !ok || eob.UserID != userID {
		return EOB{}, ErrNotFound
	}
	return eob, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, eobID string) (EOB, error) {
	if err := ctx.Err(); err != nil {
		return EOB{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	eob, ok := r.byID[eobID]
	if !ok || eob.UserID != userID {
		return EOB{}, ErrNotFound
	}
	delete(r.byID, eobID)
	return eob, nil
}

func (r *MemoryRepo) UpdateExtractedText(ctx context.Context, eobID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	eob, ok := r.byID[eobID]
	if !ok {
		return ErrNotFound
	}
	eob.ExtractedText = text
	r.byID[eobID] = eob
	return nil
}

func (r *MemoryRepo) UpdateSummary(ctx context.Context, eobID string, summary []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	eob, ok := r.byID[eobID]
	if !ok {
		return ErrNotFound
	}
	eob.AISummary = append([]byte(nil), summary...)
	r.byID[eobID] = eob
	return nil
}

func (r *MemoryRepo) AverageOwedByProcedure(ctx context.Context, procedureCode string) (*float64, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sum float64
	var count int
	for _, eob := range r.byID {
		if eob.ProcedureCode == nil || *eob.ProcedureCode != procedureCode || eob.AmountOwed == nil {
			continue
		}
		sum += *eob.AmountOwed
		count++
	}
	if count == 0 {
		return nil, 0, nil
	}
	avg := sum / float64(count)
	return &avg, count, nil
}

var _ Repo = (*MemoryRepo)(nil)
