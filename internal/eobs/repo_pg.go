package eobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const eobColumns = `id, user_id, claim_number, member, plan, group_number, member_id, service_date, provider, amount_charged, insurance_paid, amount_owed, procedure_code, file_path, status, extracted_text, ai_summary, created_at`

// Create inserts a new record and returns it with identifiers populated.
func (r *PGRepo) Create(ctx context.Context, eob EOB) (EOB, error) {
	if eob.ID == "" {
		eob.ID = uuid.NewString()
	}
	if eob.CreatedAt.IsZero() {
		eob.CreatedAt = time.Now().UTC()
	}

	const query = `
INSERT INTO eobs (
    id,
    user_id,
    claim_number,
    member,
    plan,
    group_number,
    member_id,
    service_date,
    provider,
    amount_charged,
    insurance_paid,
    amount_owed,
    procedure_code,
    file_path,
    status,
    extracted_text,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		eob.ID,
		eob.UserID,
		eob.ClaimNumber,
		eob.Member,
		eob.Plan,
		eob.GroupNumber,
		eob.MemberID,
		eob.ServiceDate,
		eob.Provider,
		eob.AmountCharged,
		eob.InsurancePaid,
		eob.AmountOwed,
		eob.ProcedureCode,
		eob.FilePath,
		eob.Status,
		nullableText(eob.ExtractedText),
		eob.CreatedAt,
	)
	if err != nil {
		return EOB{}, err
	}
	return eob, nil
}

// ListByUser returns the user's records, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]EOB, error) {
	const query = `
SELECT ` + eobColumns + `
FROM eobs
WHERE user_id = $1
ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EOB
	for rows.Next() {
		eob, err := scanEOB(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, eob)
	}
	return out, rows.Err()
}

// GetByID fetches a record owned by userID.
func (r *PGRepo) GetByID(ctx context.Context, userID, eobID string) (EOB, error) {
	const query = `
SELECT ` + eobColumns + `
FROM eobs
WHERE id = $1 AND user_id = $2
LIMIT 1`
	eob, err := scanEOB(r.DB.QueryRowContext(ctx, query, eobID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return EOB{}, ErrNotFound
		}
		return EOB{}, err
	}
	return eob, nil
}

// Delete removes a record owned by userID and returns the deleted row.
func (r *PGRepo) Delete(ctx context.Context, userID, eobID string) (EOB, error) {
	const query = `
DELETE FROM eobs
WHERE id = $1 AND user_id = $2
RETURNING ` + eobColumns
	eob, err := scanEOB(r.DB.QueryRowContext(ctx, query, eobID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return EOB{}, ErrNotFound
		}
		return EOB{}, err
	}
	return eob, nil
}

// UpdateExtractedText caches re-extracted raw text on the record.
func (r *PGRepo) UpdateExtractedText(ctx context.Context, eobID, text string) error {
	const query = `UPDATE eobs SET extracted_text = $1 WHERE id = $2`
	_, err := r.DB.ExecContext(ctx, query, nullableText(text), eobID)
	return err
}

// UpdateSummary caches the serialized AI summary on the record.
func (r *PGRepo) UpdateSummary(ctx context.Context, eobID string, summary []byte) error {
	const query = `UPDATE eobs SET ai_summary = $1 WHERE id = $2`
	_, err := r.DB.ExecContext(ctx, query, summary, eobID)
	return err
}

// AverageOwedByProcedure aggregates amount owed across all users.
func (r *PGRepo) AverageOwedByProcedure(ctx context.Context, procedureCode string) (*float64, int, error) {
	const query = `
SELECT AVG(amount_owed), COUNT(*)
FROM eobs
WHERE procedure_code = $1 AND amount_owed IS NOT NULL`

	var avg sql.NullFloat64
	var count int
	if err := r.DB.QueryRowContext(ctx, query, procedureCode).Scan(&avg, &count); err != nil {
		return nil, 0, err
	}
	if !avg.Valid {
		return nil, 0, nil
	}
	return &avg.Float64, count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEOB(row rowScanner) (EOB, error) {
	var eob EOB
	var claimNumber, member, plan, groupNumber, memberID, provider, procedureCode, filePath, extractedText, aiSummary sql.NullString
	var serviceDate sql.NullTime
	var amountCharged, insurancePaid, amountOwed sql.NullFloat64

	err := row.Scan(
		&eob.ID,
		&eob.UserID,
		&claimNumber,
		&member,
		&plan,
		&groupNumber,
		&memberID,
		&serviceDate,
		&provider,
		&amountCharged,
		&insurancePaid,
		&amountOwed,
		&procedureCode,
		&filePath,
		&eob.Status,
		&extractedText,
		&aiSummary,
		&eob.CreatedAt,
	)
	if err != nil {
		return EOB{}, err
	}

	eob.ClaimNumber = stringPtr(claimNumber)
	eob.Member = stringPtr(member)
	eob.Plan = stringPtr(plan)
	eob.GroupNumber = stringPtr(groupNumber)
	eob.MemberID = stringPtr(memberID)
	eob.Provider = stringPtr(provider)
	eob.ProcedureCode = stringPtr(procedureCode)
	eob.FilePath = stringPtr(filePath)
	eob.AmountCharged = floatPtr(amountCharged)
	eob.InsurancePaid = floatPtr(insurancePaid)
	eob.AmountOwed = floatPtr(amountOwed)
	if serviceDate.Valid {
		eob.ServiceDate = &serviceDate.Time
	}
	if extractedText.Valid {
		eob.ExtractedText = extractedText.String
	}
	if aiSummary.Valid {
		eob.AISummary = json.RawMessage(aiSummary.String)
	}
	return eob, nil
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func nullableText(v string) any {
	if v == "" {
		return nil
	}
	return v
}

var _ Repo = (*PGRepo)(nil)
