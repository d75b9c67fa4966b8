package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSummaryPayload(t *testing.T) {
	payload := []byte(`{
		"summary": "Your plan covered most of this office visit.",
		"codeExplanations": [
			{"code": "99213", "type": "CPT", "description": "Office visit, established patient"}
		]
	}`)

	summary, err := ParseSummaryPayload(payload)
	require.NoError(t, err)

	assert.Equal(t, "Your plan covered most of this office visit.", summary.Summary)
	require.Len(t, summary.CodeExplanations, 1)
	assert.Equal(t, "99213", summary.CodeExplanations[0].Code)
	assert.Equal(t, "CPT", summary.CodeExplanations[0].Type)
}

func TestParseSummaryPayloadMissingSummary(t *testing.T) {
	summary, err := ParseSummaryPayload([]byte(`{"codeExplanations": []}`))
	require.NoError(t, err)

	assert.Equal(t, SummaryUnavailable, summary.Summary)
	assert.Empty(t, summary.CodeExplanations)
}

func TestParseSummaryPayloadMalformedCodeList(t *testing.T) {
	summary, err := ParseSummaryPayload([]byte(`{"summary": "ok", "codeExplanations": "none"}`))
	require.NoError(t, err)

	assert.Equal(t, "ok", summary.Summary)
	assert.Empty(t, summary.CodeExplanations)
}

func TestParseSummaryPayloadSkipsNonObjectEntries(t *testing.T) {
	summary, err := ParseSummaryPayload([]byte(`{"summary": "ok", "codeExplanations": ["99213", {"code": "J1885"}]}`))
	require.NoError(t, err)

	require.Len(t, summary.CodeExplanations, 1)
	assert.Equal(t, "J1885", summary.CodeExplanations[0].Code)
}

func TestParseSummaryPayloadNonJSON(t *testing.T) {
	_, err := ParseSummaryPayload([]byte("Sure! Here is your summary."))
	require.Error(t, err)
}

func TestPlaceholderSummary(t *testing.T) {
	summary := PlaceholderSummary(SummaryNotConfigured)

	assert.Equal(t, SummaryNotConfigured, summary.Summary)
	assert.NotNil(t, summary.CodeExplanations)
	assert.Empty(t, summary.CodeExplanations)
}
