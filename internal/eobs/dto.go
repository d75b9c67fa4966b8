package eobs

import "encoding/json"

// EOBResponse is the API shape of a stored record. Dates are formatted
// as YYYY-MM-DD; absent fields serialize as null.
type EOBResponse struct {
	ID            string          `json:"id"`
	ClaimNumber   *string         `json:"claimNumber"`
	Member        *string         `json:"member"`
	Plan          *string         `json:"plan"`
	GroupNumber   *string         `json:"groupNumber"`
	MemberID      *string         `json:"memberId"`
	Date          *string         `json:"date"`
	Provider      *string         `json:"provider"`
	AmountCharged *float64        `json:"amountCharged"`
	InsurancePaid *float64        `json:"insurancePaid"`
	AmountOwed    *float64        `json:"amountOwed"`
	ProcedureCode *string         `json:"procedureCode"`
	Status        string          `json:"status"`
	AISummary     json.RawMessage `json:"aiSummary,omitempty"`
	CreatedAt     string          `json:"createdAt"`
}

// DetailResponse is the single-record shape, including cached raw text.
type DetailResponse struct {
	EOBResponse
	ExtractedText string `json:"extractedText"`
}

// UploadResponse wraps the created record with OCR guidance for the UI.
type UploadResponse struct {
	EOBResponse
	RequiresOCR bool   `json:"requiresOcr"`
	Note        string `json:"note"`
}

// BenchmarkResponse reports the cross-user average owed for a procedure
// code. Market fields are reserved and currently always null.
type BenchmarkResponse struct {
	ProcedureCode     string   `json:"procedureCode"`
	UsersAverageOwed  *float64 `json:"usersAverageOwed"`
	UsersSampleSize   int      `json:"usersSampleSize"`
	MarketAverageOwed *float64 `json:"marketAverageOwed"`
	MarketSource      *string  `json:"marketSource"`
}

func toResponse(eob EOB) EOBResponse {
	resp := EOBResponse{
		ID:            eob.ID,
		ClaimNumber:   eob.ClaimNumber,
		Member:        eob.Member,
		Plan:          eob.Plan,
		GroupNumber:   eob.GroupNumber,
		MemberID:      eob.MemberID,
		Provider:      eob.Provider,
		AmountCharged: eob.AmountCharged,
		InsurancePaid: eob.InsurancePaid,
		AmountOwed:    eob.AmountOwed,
		ProcedureCode: eob.ProcedureCode,
		Status:        eob.Status,
		AISummary:     eob.AISummary,
		CreatedAt:     eob.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if eob.ServiceDate != nil {
		d := eob.ServiceDate.Format("2006-01-02")
		resp.Date = &d
	}
	return resp
}

func toResponses(eobs []EOB) []EOBResponse {
	out := make([]EOBResponse, 0, len(eobs))
	for _, eob := range eobs {
		item := toResponse(eob)
		// List items carry neither raw text nor the cached summary.
		item.AISummary = nil
		out = append(out, item)
	}
	return out
}
