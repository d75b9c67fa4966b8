package eobs

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/bootstrappedbetas/EOB-explainer/internal/extract"
	"github.com/bootstrappedbetas/EOB-explainer/internal/llm"
	"github.com/bootstrappedbetas/EOB-explainer/internal/shared/storage/object"
	"github.com/bootstrappedbetas/EOB-explainer/internal/shared/telemetry"
	"github.com/bootstrappedbetas/EOB-explainer/internal/users"
)

// Notes returned with upload responses.
const (
	noteRequiresOCR = "Document requires OCR. It will be processed soon."
	noteProcessed   = "Document processed successfully."
)

// Accepted layouts for heuristic service dates. The AI extractor is held
// to strict YYYY-MM-DD before it gets here.
var serviceDateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"2006/01/02",
}

// TextExtractor pulls raw text out of PDF bytes and flags documents that
// carry no selectable text.
type TextExtractor interface {
	Text(ctx context.Context, data []byte) (string, error)
	DetectScanned(ctx context.Context, data []byte) bool
}

// PDFExtractor is the production TextExtractor.
type PDFExtractor struct{}

func (PDFExtractor) Text(ctx context.Context, data []byte) (string, error) {
	return extract.Text(ctx, data)
}

func (PDFExtractor) DetectScanned(ctx context.Context, data []byte) bool {
	return extract.DetectScanned(ctx, data)
}

// Service sequences the ingestion pipeline and owns all document
// operations. LLM is nil when AI is unconfigured; Processor is nil when no
// external PDF service is configured.
type Service struct {
	Repo      Repo
	Users     *users.Service
	Store     object.Store
	Extractor TextExtractor
	Processor *extract.Processor
	LLM       llm.Client
}

func NewService(repo Repo, usersSvc *users.Service, store object.Store, processor *extract.Processor, llmClient llm.Client) *Service {
	return &Service{
		Repo:      repo,
		Users:     usersSvc,
		Store:     store,
		Extractor: PDFExtractor{},
		Processor: processor,
		LLM:       llmClient,
	}
}

// Upload stores the PDF, runs the extraction pipeline, and persists a new
// document record. External failures inside the pipeline degrade to null
// fields; only storage and persistence failures abort the upload.
func (s *Service) Upload(ctx context.Context, auth0Sub, email, fileName string, data []byte) (UploadResponse, error) {
	user, err := s.Users.GetOrCreate(ctx, auth0Sub, email)
	if err != nil {
		return UploadResponse{}, err
	}

	path, err := s.Store.Save(ctx, user.ID, fileName, data)
	if err != nil {
		return UploadResponse{}, err
	}

	eob := EOB{UserID: user.ID}
	if path != "" {
		eob.FilePath = &path
	}

	result := s.process(ctx, data)
	eob.Status = result.status

	var serviceDate *string
	if result.normalized != nil {
		n := result.normalized
		eob.Member = n.Member
		eob.Plan = n.Plan
		eob.Provider = n.Provider
		eob.GroupNumber = n.GroupNumber
		eob.MemberID = n.MemberID
		eob.AmountOwed = n.AmountOwed
		serviceDate = n.ServiceDate
	}

	if result.status == StatusProcessed && strings.TrimSpace(result.rawText) != "" {
		fields := s.extractFields(ctx, result.rawText)
		if !fields.Empty() {
			applyOverride(&eob, &serviceDate, fields)
		}
	}

	eob.ServiceDate = parseServiceDate(serviceDate)
	eob.ExtractedText = truncateText(result.rawText, rawTextCacheChars)

	created, err := s.Repo.Create(ctx, eob)
	if err != nil {
		return UploadResponse{}, err
	}

	resp := UploadResponse{
		EOBResponse: toResponse(created),
		RequiresOCR: result.requiresOCR,
		Note:        noteProcessed,
	}
	if result.requiresOCR {
		resp.Note = noteRequiresOCR
	}
	return resp, nil
}

// List returns the caller's documents, newest first.
func (s *Service) List(ctx context.Context, auth0Sub, email string) ([]EOBResponse, error) {
	user, err := s.Users.GetOrCreate(ctx, auth0Sub, email)
	if err != nil {
		return nil, err
	}
	eobs, err := s.Repo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return toResponses(eobs), nil
}

// Get returns one owner-checked document including raw text and cached
// summary.
func (s *Service) Get(ctx context.Context, auth0Sub, email, eobID string) (EOB, error) {
	user, err := s.Users.GetOrCreate(ctx, auth0Sub, email)
	if err != nil {
		return EOB{}, err
	}
	return s.Repo.GetByID(ctx, user.ID, eobID)
}

// Delete removes a document record and its stored file.
func (s *Service) Delete(ctx context.Context, auth0Sub, email, eobID string) error {
	user, err := s.Users.GetOrCreate(ctx, auth0Sub, email)
	if err != nil {
		return err
	}
	deleted, err := s.Repo.Delete(ctx, user.ID, eobID)
	if err != nil {
		return err
	}
	if deleted.FilePath != nil {
		s.Store.Delete(ctx, *deleted.FilePath)
	}
	return nil
}

// Summarize returns the document's plain-language summary, generating and
// caching it if absent. Cached summaries are reused without a model call
// when cached raw text exists; otherwise text is re-extracted from the
// stored file first.
func (s *Service) Summarize(ctx context.Context, auth0Sub, email, eobID string) (llm.Summary, error) {
	user, err := s.Users.GetOrCreate(ctx, auth0Sub, email)
	if err != nil {
		return llm.Summary{}, err
	}
	eob, err := s.Repo.GetByID(ctx, user.ID, eobID)
	if err != nil {
		return llm.Summary{}, err
	}

	if len(eob.AISummary) > 0 && strings.TrimSpace(eob.ExtractedText) != "" {
		var cached llm.Summary
		if err := json.Unmarshal(eob.AISummary, &cached); err == nil {
			return cached, nil
		}
		telemetry.Warn("eobs.summary_cache_invalid", map[string]any{"eob_id": eob.ID})
	}

	rawText := eob.ExtractedText
	if strings.TrimSpace(rawText) == "" && eob.FilePath != nil {
		rawText = s.reextractText(ctx, eob)
	}

	summary, err := s.generateSummary(ctx, rawText)
	if err != nil {
		return llm.Summary{}, err
	}

	if payload, err := json.Marshal(summary); err == nil {
		if err := s.Repo.UpdateSummary(ctx, eob.ID, payload); err != nil {
			telemetry.Warn("eobs.summary_cache_failed", map[string]any{"eob_id": eob.ID, "error": err.Error()})
		}
	}
	return summary, nil
}

// Benchmark reports the average owed across all users for one procedure
// code. Market-rate fields are reserved and always null for now.
func (s *Service) Benchmark(ctx context.Context, procedureCode string) (BenchmarkResponse, error) {
	avg, count, err := s.Repo.AverageOwedByProcedure(ctx, procedureCode)
	if err != nil {
		return BenchmarkResponse{}, err
	}
	if avg != nil {
		rounded := math.Round(*avg*100) / 100
		avg = &rounded
	}
	return BenchmarkResponse{
		ProcedureCode:    procedureCode,
		UsersAverageOwed: avg,
		UsersSampleSize:  count,
	}, nil
}

type processResult struct {
	status      string
	requiresOCR bool
	normalized  *Normalized
	rawText     string
}

// process runs scan detection, the optional external processor, and the
// local extraction fallback over one document's bytes.
func (s *Service) process(ctx context.Context, data []byte) processResult {
	if s.Extractor.DetectScanned(ctx, data) {
		return processResult{status: StatusPendingOCR, requiresOCR: true}
	}

	if ext := s.Processor.Process(ctx, data); ext != nil && ext.Normalized != nil {
		n := Normalized{
			Member:      ext.Normalized.Member,
			Plan:        ext.Normalized.Plan,
			Provider:    ext.Normalized.Provider,
			AmountOwed:  ext.Normalized.AmountOwed,
			ServiceDate: ext.Normalized.ServiceDate,
			RawText:     ext.RawText,
		}
		return processResult{status: StatusProcessed, normalized: &n, rawText: ext.RawText}
	}

	text, err := s.Extractor.Text(ctx, data)
	if err != nil {
		telemetry.Error("eobs.extract_failed", map[string]any{"error": err.Error()})
		return processResult{status: StatusError}
	}
	n := NormalizeText(text)
	return processResult{status: StatusProcessed, normalized: &n, rawText: text}
}

// extractFields asks the AI extractor for structured fields. Short text,
// an unconfigured client, and call failures all collapse to the empty
// result so the upload proceeds with heuristic data only.
func (s *Service) extractFields(ctx context.Context, rawText string) llm.Fields {
	if s.LLM == nil || len(strings.TrimSpace(rawText)) < llm.MinExtractionChars {
		return llm.Fields{}
	}
	fields, err := s.LLM.ExtractEOBFields(ctx, rawText)
	if err != nil {
		telemetry.Warn("eobs.ai_extract_failed", map[string]any{"error": err.Error()})
		return llm.Fields{}
	}
	return fields
}

// applyOverride lets non-null AI fields win over the heuristic baseline.
func applyOverride(eob *EOB, serviceDate **string, fields llm.Fields) {
	if fields.PatientName != nil {
		eob.Member = fields.PatientName
	}
	if fields.Provider != nil {
		eob.Provider = fields.Provider
	}
	if fields.AmountOwed != nil {
		eob.AmountOwed = fields.AmountOwed
	}
	if fields.ServiceDate != nil {
		*serviceDate = fields.ServiceDate
	}
	if fields.ClaimNumber != nil {
		eob.ClaimNumber = fields.ClaimNumber
	}
	if fields.AmountBilled != nil {
		eob.AmountCharged = fields.AmountBilled
	}
	if fields.PlanPaid != nil {
		eob.InsurancePaid = fields.PlanPaid
	}
	if fields.ProcedureCode != nil {
		eob.ProcedureCode = fields.ProcedureCode
	}
}

func (s *Service) reextractText(ctx context.Context, eob EOB) string {
	data, err := s.Store.Open(ctx, *eob.FilePath)
	if err != nil {
		telemetry.Warn("eobs.file_missing", map[string]any{"eob_id": eob.ID, "path": *eob.FilePath})
		return ""
	}
	text, err := s.Extractor.Text(ctx, data)
	if err != nil {
		telemetry.Warn("eobs.reextract_failed", map[string]any{"eob_id": eob.ID, "error": err.Error()})
		return ""
	}
	if strings.TrimSpace(text) != "" {
		if err := s.Repo.UpdateExtractedText(ctx, eob.ID, truncateText(text, rawTextCacheChars)); err != nil {
			telemetry.Warn("eobs.text_cache_failed", map[string]any{"eob_id": eob.ID, "error": err.Error()})
		}
	}
	return text
}

func (s *Service) generateSummary(ctx context.Context, rawText string) (llm.Summary, error) {
	if len(strings.TrimSpace(rawText)) < llm.MinSummaryChars {
		return llm.PlaceholderSummary(llm.SummaryNoText), nil
	}
	if s.LLM == nil {
		return llm.PlaceholderSummary(llm.SummaryNotConfigured), nil
	}
	return s.LLM.SummarizeEOB(ctx, rawText)
}

func parseServiceDate(raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	val := strings.TrimSpace(*raw)
	for _, layout := range serviceDateLayouts {
		if t, err := time.Parse(layout, val); err == nil {
			return &t
		}
	}
	return nil
}

func truncateText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
