// Package llm defines the language-model contract for EOB field extraction
// and plain-language summarization, plus the sanitization rules applied to
// model output before it is trusted.
package llm

import "context"

const (
	// MinExtractionChars is the minimum raw-text length before the field
	// extractor will call the model at all.
	MinExtractionChars = 50
	// MinSummaryChars is the minimum raw-text length before the summarizer
	// will call the model at all.
	MinSummaryChars = 20
	// PromptPrefixChars bounds how much raw text is sent to the model.
	PromptPrefixChars = 12000
	// MaxAmount is the magnitude ceiling for monetary values accepted from
	// the model.
	MaxAmount = 999999999.99
)

// Client abstracts the language-model provider.
type Client interface {
	// ExtractEOBFields extracts structured billing fields from raw EOB text.
	// Fields that fail validation come back nil; a wholly failed call is an
	// error the caller degrades from.
	ExtractEOBFields(ctx context.Context, rawText string) (Fields, error)
	// SummarizeEOB produces a plain-language summary with billing-code
	// explanations. Unlike extraction, call failures propagate.
	SummarizeEOB(ctx context.Context, rawText string) (Summary, error)
}
