package llm

import "encoding/json"

// Fixed summaries returned without calling the model.
const (
	SummaryNoText        = "Unable to generate a summary. The document may be a scanned image or contain too little text."
	SummaryNotConfigured = "AI summary is not configured. Add OPENAI_API_KEY to your .env to generate summaries."
	SummaryUnavailable   = "Summary unavailable."
)

// CodeExplanation explains one billing code found in the document.
type CodeExplanation struct {
	Code        string `json:"code"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Summary is a plain-language explanation of an EOB.
type Summary struct {
	Summary          string            `json:"summary"`
	CodeExplanations []CodeExplanation `json:"codeExplanations"`
}

// PlaceholderSummary builds the fixed response used when the model is not
// called (text too short, or AI unconfigured).
func PlaceholderSummary(text string) Summary {
	return Summary{Summary: text, CodeExplanations: []CodeExplanation{}}
}

// ParseSummaryPayload decodes a model response into a Summary, coercing a
// missing or malformed code list to empty and a missing summary to the
// fixed placeholder. A non-JSON payload is an error.
func ParseSummaryPayload(content []byte) (Summary, error) {
	var raw map[string]any
	if err := json.Unmarshal(content, &raw); err != nil {
		return Summary{}, err
	}

	out := Summary{
		Summary:          SummaryUnavailable,
		CodeExplanations: []CodeExplanation{},
	}
	if s, ok := raw["summary"].(string); ok && s != "" {
		out.Summary = s
	}

	entries, ok := raw["codeExplanations"].([]any)
	if !ok {
		return out, nil
	}
	for _, entry := range entries {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		var ce CodeExplanation
		if v, ok := m["code"].(string); ok {
			ce.Code = v
		}
		if v, ok := m["type"].(string); ok {
			ce.Type = v
		}
		if v, ok := m["description"].(string); ok {
			ce.Description = v
		}
		out.CodeExplanations = append(out.CodeExplanations, ce)
	}
	return out, nil
}
