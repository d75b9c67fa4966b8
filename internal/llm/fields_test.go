package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFieldsPayloadFullRecord(t *testing.T) {
	payload := []byte(`{
		"claim_number": " CLM-001 ",
		"patient_name": "Jane Doe",
		"provider": "Springfield Medical Center",
		"amount_billed": 500,
		"plan_paid": 450.004,
		"amount_owed": 49.996,
		"service_date": "2024-03-15",
		"procedure_code": "99213"
	}`)

	fields, err := ParseFieldsPayload(payload)
	require.NoError(t, err)

	require.NotNil(t, fields.ClaimNumber)
	assert.Equal(t, "CLM-001", *fields.ClaimNumber)
	require.NotNil(t, fields.AmountBilled)
	assert.Equal(t, 500.00, *fields.AmountBilled)
	require.NotNil(t, fields.PlanPaid)
	assert.Equal(t, 450.00, *fields.PlanPaid)
	require.NotNil(t, fields.AmountOwed)
	assert.Equal(t, 50.00, *fields.AmountOwed)
	require.NotNil(t, fields.ServiceDate)
	assert.Equal(t, "2024-03-15", *fields.ServiceDate)
	assert.False(t, fields.Empty())
}

func TestParseFieldsPayloadNonJSON(t *testing.T) {
	_, err := ParseFieldsPayload([]byte("I could not find any fields."))
	require.Error(t, err)
}

func TestSanitizeAmount(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want *float64
	}{
		{"rounds to cents", 12.345, ptr(12.35)},
		{"accepts ceiling", 999999999.99, ptr(999999999.99)},
		{"rejects beyond ceiling", 1000000000.00, nil},
		{"rejects negative beyond ceiling", -1000000000.00, nil},
		{"accepts negative adjustment", -25.129, ptr(-25.13)},
		{"rejects string", "50.00", nil},
		{"rejects nil", nil, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SanitizeAmount(tc.in)
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tc.want, *got)
		})
	}
}

func TestSanitizeServiceDate(t *testing.T) {
	assert.Nil(t, SanitizeServiceDate("03/15/2024"))
	assert.Nil(t, SanitizeServiceDate("2024-3-15"))
	assert.Nil(t, SanitizeServiceDate("2024-03-15T00:00:00Z"))
	assert.Nil(t, SanitizeServiceDate(20240315))

	got := SanitizeServiceDate("2024-03-15")
	require.NotNil(t, got)
	assert.Equal(t, "2024-03-15", *got)
}

func TestSanitizeFieldsBadValuesAreIndependent(t *testing.T) {
	fields := SanitizeFields(map[string]any{
		"claim_number": "   ",
		"patient_name": "Jane Doe",
		"amount_owed":  "not a number",
		"service_date": "March 15th",
	})

	assert.Nil(t, fields.ClaimNumber)
	assert.Nil(t, fields.AmountOwed)
	assert.Nil(t, fields.ServiceDate)
	require.NotNil(t, fields.PatientName)
	assert.Equal(t, "Jane Doe", *fields.PatientName)
}

func TestFieldsEmpty(t *testing.T) {
	assert.True(t, Fields{}.Empty())

	code := "99213"
	assert.False(t, Fields{ProcedureCode: &code}.Empty())
}

func ptr(f float64) *float64 { return &f }
