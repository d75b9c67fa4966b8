package llm

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"
)

var serviceDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Fields is the fixed-shape extraction result. Every field is optional;
// nil means the model could not find it or its value failed validation.
type Fields struct {
	ClaimNumber   *string  `json:"claim_number"`
	PatientName   *string  `json:"patient_name"`
	Provider      *string  `json:"provider"`
	AmountBilled  *float64 `json:"amount_billed"`
	PlanPaid      *float64 `json:"plan_paid"`
	AmountOwed    *float64 `json:"amount_owed"`
	ServiceDate   *string  `json:"service_date"`
	ProcedureCode *string  `json:"procedure_code"`
}

// Empty reports whether every field is nil.
func (f Fields) Empty() bool {
	return f.ClaimNumber == nil &&
		f.PatientName == nil &&
		f.Provider == nil &&
		f.AmountBilled == nil &&
		f.PlanPaid == nil &&
		f.AmountOwed == nil &&
		f.ServiceDate == nil &&
		f.ProcedureCode == nil
}

// ParseFieldsPayload decodes a model response and sanitizes every field.
// Invalid values are discarded to nil, never coerced. A non-JSON payload
// is an error; callers degrade to the empty result.
func ParseFieldsPayload(content []byte) (Fields, error) {
	var raw map[string]any
	if err := json.Unmarshal(content, &raw); err != nil {
		return Fields{}, err
	}
	return SanitizeFields(raw), nil
}

// SanitizeFields validates each field of a decoded model payload
// independently. A bad value on one field never blocks the others.
func SanitizeFields(raw map[string]any) Fields {
	return Fields{
		ClaimNumber:   sanitizeString(raw["claim_number"]),
		PatientName:   sanitizeString(raw["patient_name"]),
		Provider:      sanitizeString(raw["provider"]),
		AmountBilled:  SanitizeAmount(raw["amount_billed"]),
		PlanPaid:      SanitizeAmount(raw["plan_paid"]),
		AmountOwed:    SanitizeAmount(raw["amount_owed"]),
		ServiceDate:   SanitizeServiceDate(raw["service_date"]),
		ProcedureCode: sanitizeString(raw["procedure_code"]),
	}
}

// SanitizeAmount accepts a numeric dollar value, rejects anything beyond
// the magnitude ceiling and rounds to two decimal places.
func SanitizeAmount(val any) *float64 {
	num, ok := val.(float64)
	if !ok {
		return nil
	}
	if math.IsNaN(num) || math.IsInf(num, 0) {
		return nil
	}
	if math.Abs(num) > MaxAmount {
		return nil
	}
	rounded := math.Round(num*100) / 100
	return &rounded
}

// SanitizeServiceDate accepts only strict YYYY-MM-DD strings.
func SanitizeServiceDate(val any) *string {
	s, ok := val.(string)
	if !ok || !serviceDatePattern.MatchString(s) {
		return nil
	}
	return &s
}

func sanitizeString(val any) *string {
	s, ok := val.(string)
	if !ok {
		return nil
	}
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
