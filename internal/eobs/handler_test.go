package eobs

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/bootstrappedbetas/EOB-explainer/internal/llm"
	"github.com/bootstrappedbetas/EOB-explainer/internal/shared/server/middleware"
)

func newTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Auth(false))
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func pdfForm(t *testing.T, fileName string, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestHandlerUploadAndList(t *testing.T) {
	svc, _ := newTestService(fakeExtractor{text: labeledText}, nil)
	router := newTestRouter(svc)

	body, contentType := pdfForm(t, "eob.pdf", "application/pdf", []byte("pdf"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/eobs", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected id in upload response")
	}
	if created.RequiresOCR {
		t.Fatal("expected requiresOcr false")
	}
	if created.Note != noteProcessed {
		t.Fatalf("unexpected note: %s", created.Note)
	}

	reqList := httptest.NewRequest(http.MethodGet, "/api/v1/eobs", nil)
	respList := httptest.NewRecorder()
	router.ServeHTTP(respList, reqList)

	if respList.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", respList.Code)
	}
	var items []EOBResponse
	if err := json.NewDecoder(respList.Body).Decode(&items); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(items) != 1 || items[0].ID != created.ID {
		t.Fatalf("expected the uploaded record in the list, got %+v", items)
	}
}

func TestHandlerListOmitsCachedSummary(t *testing.T) {
	llmClient := &fakeLLM{summary: llm.Summary{Summary: "plain words", CodeExplanations: []llm.CodeExplanation{}}}
	svc, _ := newTestService(fakeExtractor{text: labeledText}, llmClient)
	router := newTestRouter(svc)

	body, contentType := pdfForm(t, "eob.pdf", "application/pdf", []byte("pdf"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/eobs", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}

	reqSum := httptest.NewRequest(http.MethodPost, "/api/v1/eobs/"+created.ID+"/summarize", nil)
	respSum := httptest.NewRecorder()
	router.ServeHTTP(respSum, reqSum)
	if respSum.Code != http.StatusOK {
		t.Fatalf("expected 200 from summarize, got %d: %s", respSum.Code, respSum.Body.String())
	}

	reqList := httptest.NewRequest(http.MethodGet, "/api/v1/eobs", nil)
	respList := httptest.NewRecorder()
	router.ServeHTTP(respList, reqList)
	if respList.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", respList.Code)
	}
	if strings.Contains(respList.Body.String(), "aiSummary") {
		t.Fatalf("list items must not carry the cached summary: %s", respList.Body.String())
	}

	reqGet := httptest.NewRequest(http.MethodGet, "/api/v1/eobs/"+created.ID, nil)
	respGet := httptest.NewRecorder()
	router.ServeHTTP(respGet, reqGet)
	if respGet.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", respGet.Code)
	}
	if !strings.Contains(respGet.Body.String(), "aiSummary") {
		t.Fatalf("detail response should still carry the cached summary: %s", respGet.Body.String())
	}
}

func TestHandlerUploadRejectsNonPDF(t *testing.T) {
	svc, store := newTestService(fakeExtractor{text: labeledText}, nil)
	router := newTestRouter(svc)

	body, contentType := pdfForm(t, "eob.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", []byte("doc"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/eobs", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if len(store.objects) != 0 {
		t.Fatal("expected nothing stored for a rejected upload")
	}
}

func TestHandlerUploadMissingFile(t *testing.T) {
	svc, _ := newTestService(fakeExtractor{text: labeledText}, nil)
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/eobs", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestHandlerGetNotFound(t *testing.T) {
	svc, _ := newTestService(fakeExtractor{text: labeledText}, nil)
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/eobs/does-not-exist", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestHandlerBenchmarkValidation(t *testing.T) {
	svc, _ := newTestService(fakeExtractor{text: labeledText}, nil)
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/eobs/benchmarks", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without procedureCode, got %d", resp.Code)
	}
}

func TestHandlerBenchmarkEmptySample(t *testing.T) {
	svc, _ := newTestService(fakeExtractor{text: labeledText}, nil)
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/eobs/benchmarks?procedureCode=99213", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var bench BenchmarkResponse
	if err := json.NewDecoder(resp.Body).Decode(&bench); err != nil {
		t.Fatalf("decode benchmark response: %v", err)
	}
	if bench.UsersAverageOwed != nil || bench.UsersSampleSize != 0 {
		t.Fatalf("expected empty benchmark, got %+v", bench)
	}
	if bench.ProcedureCode != "99213" {
		t.Fatalf("expected procedure code echoed, got %s", bench.ProcedureCode)
	}
}

func TestHandlerSummarizeNotFound(t *testing.T) {
	svc, _ := newTestService(fakeExtractor{text: labeledText}, nil)
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/eobs/missing/summarize", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
