package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/bootstrappedbetas/EOB-explainer/internal/shared/telemetry"
)

// Fields is the normalized field set returned by the external processor.
type Fields struct {
	Member      *string  `json:"member"`
	Plan        *string  `json:"plan"`
	Provider    *string  `json:"provider"`
	AmountOwed  *float64 `json:"amountOwed"`
	ServiceDate *string  `json:"serviceDate"`
}

// ProcessorResult is the response contract of the external PDF processor.
type ProcessorResult struct {
	Normalized *Fields `json:"normalized"`
	RawText    string  `json:"rawText"`
}

// Processor is a client for the external PDF processing microservice.
// The service is optional; a nil *Processor is a valid "unconfigured" value.
type Processor struct {
	baseURL    string
	httpClient *http.Client
}

// NewProcessor builds a Processor, or nil when no URL is configured.
func NewProcessor(baseURL string) *Processor {
	if baseURL == "" {
		return nil
	}
	return &Processor{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Process sends the PDF to the external service for parsing and
// normalization. Any failure is logged and reported as a nil result;
// callers fall back to local extraction.
func (p *Processor) Process(ctx context.Context, data []byte) *ProcessorResult {
	if p == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/process", bytes.NewReader(data))
	if err != nil {
		telemetry.Warn("extract.processor_failed", map[string]any{"error": err.Error()})
		return nil
	}
	req.Header.Set("Content-Type", "application/pdf")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		telemetry.Warn("extract.processor_failed", map[string]any{"error": err.Error()})
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		telemetry.Warn("extract.processor_failed", map[string]any{"error": fmt.Sprintf("processor responded with %d", resp.StatusCode)})
		return nil
	}

	var result ProcessorResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		telemetry.Warn("extract.processor_failed", map[string]any{"error": err.Error()})
		return nil
	}
	return &result
}
