package eobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var eobTestColumns = []string{
	"id", "user_id", "claim_number", "member", "plan", "group_number",
	"member_id", "service_date", "provider", "amount_charged",
	"insurance_paid", "amount_owed", "procedure_code", "file_path",
	"status", "extracted_text", "ai_summary", "created_at",
}

func TestPGRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	member := "Jane Doe"
	owed := 50.00
	filePath := "u1/1700000000-eob.pdf"
	eob := EOB{
		ID:            "eob-1",
		UserID:        "user-1",
		Member:        &member,
		AmountOwed:    &owed,
		FilePath:      &filePath,
		Status:        StatusProcessed,
		ExtractedText: "raw text",
		CreatedAt:     time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO eobs").
		WithArgs(
			eob.ID,
			eob.UserID,
			nil, // claim_number
			member,
			nil, // plan
			nil, // group_number
			nil, // member_id
			nil, // service_date
			nil, // provider
			nil, // amount_charged
			nil, // insurance_paid
			owed,
			nil, // procedure_code
			filePath,
			eob.Status,
			eob.ExtractedText,
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	created, err := repo.Create(context.Background(), eob)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID != eob.ID {
		t.Fatalf("expected id %s, got %s", eob.ID, created.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectQuery("(?s)SELECT (.+) FROM eobs").
		WithArgs("eob-1", "user-1").
		WillReturnRows(sqlmock.NewRows(eobTestColumns))

	_, err = repo.GetByID(context.Background(), "user-1", "eob-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()

	rows := sqlmock.NewRows(eobTestColumns).
		AddRow("eob-1", "user-1", "CLM-1", "Jane Doe", "Gold PPO", nil,
			nil, now, "Springfield Medical", 500.00,
			450.00, 50.00, "99213", "u1/eob.pdf",
			StatusProcessed, "raw", []byte(`{"summary":"ok","codeExplanations":[]}`), now).
		AddRow("eob-2", "user-1", nil, nil, nil, nil,
			nil, nil, nil, nil,
			nil, nil, nil, nil,
			StatusPendingOCR, nil, nil, now)

	mock.ExpectQuery("(?s)SELECT (.+) FROM eobs").
		WithArgs("user-1").
		WillReturnRows(rows)

	got, err := repo.ListByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].Member == nil || *got[0].Member != "Jane Doe" {
		t.Fatalf("expected member Jane Doe, got %v", got[0].Member)
	}
	if got[0].ServiceDate == nil {
		t.Fatal("expected service date set")
	}
	if len(got[0].AISummary) == 0 {
		t.Fatal("expected cached summary decoded")
	}
	if got[1].Status != StatusPendingOCR {
		t.Fatalf("expected pending_ocr, got %s", got[1].Status)
	}
	if got[1].Member != nil || got[1].AmountOwed != nil {
		t.Fatal("expected null fields to stay nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoDeleteReturnsRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()

	rows := sqlmock.NewRows(eobTestColumns).
		AddRow("eob-1", "user-1", nil, nil, nil, nil,
			nil, nil, nil, nil,
			nil, nil, nil, "u1/eob.pdf",
			StatusProcessed, nil, nil, now)

	mock.ExpectQuery("DELETE FROM eobs").
		WithArgs("eob-1", "user-1").
		WillReturnRows(rows)

	deleted, err := repo.Delete(context.Background(), "user-1", "eob-1")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deleted.FilePath == nil || *deleted.FilePath != "u1/eob.pdf" {
		t.Fatalf("expected file path on deleted row, got %v", deleted.FilePath)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoAverageOwedByProcedure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectQuery("SELECT AVG\\(amount_owed\\), COUNT\\(\\*\\)").
		WithArgs("99213").
		WillReturnRows(sqlmock.NewRows([]string{"avg", "count"}).AddRow(50.00, 2))

	avg, count, err := repo.AverageOwedByProcedure(context.Background(), "99213")
	if err != nil {
		t.Fatalf("AverageOwedByProcedure: %v", err)
	}
	if avg == nil || *avg != 50.00 {
		t.Fatalf("expected avg 50.00, got %v", avg)
	}
	if count != 2 {
		t.Fatalf("expected count 2, got %d", count)
	}

	mock.ExpectQuery("SELECT AVG\\(amount_owed\\), COUNT\\(\\*\\)").
		WithArgs("00000").
		WillReturnRows(sqlmock.NewRows([]string{"avg", "count"}).AddRow(nil, 0))

	avg, count, err = repo.AverageOwedByProcedure(context.Background(), "00000")
	if err != nil {
		t.Fatalf("AverageOwedByProcedure: %v", err)
	}
	if avg != nil || count != 0 {
		t.Fatalf("expected empty aggregate, got %v %d", avg, count)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpdateSummary(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	payload := []byte(`{"summary":"ok","codeExplanations":[]}`)

	mock.ExpectExec("UPDATE eobs SET ai_summary").
		WithArgs(payload, "eob-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateSummary(context.Background(), "eob-1", payload); err != nil {
		t.Fatalf("UpdateSummary: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
