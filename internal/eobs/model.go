package eobs

import (
	"encoding/json"
	"time"
)

// Lifecycle states of an EOB record.
const (
	StatusProcessed  = "processed"
	StatusPendingOCR = "pending_ocr"
	StatusError      = "error"
)

// rawTextCacheChars bounds how much extracted text is cached on the record
// for later summarization reuse.
const rawTextCacheChars = 15000

// EOB is one uploaded Explanation of Benefits document. Every upload
// creates a new record; summarization is the only mutation.
type EOB struct {
	ID            string
	UserID        string
	ClaimNumber   *string
	Member        *string
	Plan          *string
	GroupNumber   *string
	MemberID      *string
	ServiceDate   *time.Time
	Provider      *string
	AmountCharged *float64
	InsurancePaid *float64
	AmountOwed    *float64
	ProcedureCode *string
	FilePath      *string
	Status        string
	ExtractedText string
	AISummary     json.RawMessage
	CreatedAt     time.Time
}
