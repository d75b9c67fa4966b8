package eobs

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bootstrappedbetas/EOB-explainer/internal/shared/server/middleware"
	"github.com/bootstrappedbetas/EOB-explainer/internal/shared/server/respond"
)

const maxUploadSize = 15 << 20 // 15MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router group. The static
// benchmarks route must register before the :id route.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/eobs", h.list)
	rg.POST("/eobs", h.upload)
	rg.GET("/eobs/benchmarks", h.benchmark)
	rg.GET("/eobs/:id", h.get)
	rg.POST("/eobs/:id/summarize", h.summarize)
	rg.DELETE("/eobs/:id", h.remove)
}

func (h *Handler) list(c *gin.Context) {
	sub := middleware.UserSubFromContext(c)
	email := middleware.UserEmailFromContext(c)

	items, err := h.Svc.List(c.Request.Context(), sub, email)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch EOBs", nil)
		return
	}
	respond.OK(c, items)
}

func (h *Handler) get(c *gin.Context) {
	sub := middleware.UserSubFromContext(c)
	email := middleware.UserEmailFromContext(c)

	eob, err := h.Svc.Get(c.Request.Context(), sub, email, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "EOB not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch EOB", nil)
		}
		return
	}

	respond.OK(c, DetailResponse{
		EOBResponse:   toResponse(eob),
		ExtractedText: eob.ExtractedText,
	})
}

func (h *Handler) upload(c *gin.Context) {
	sub := middleware.UserSubFromContext(c)
	email := middleware.UserEmailFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "PDF file is required", nil)
		return
	}
	if ct := fileHeader.Header.Get("Content-Type"); !strings.EqualFold(ct, "application/pdf") {
		respond.Error(c, http.StatusBadRequest, "validation_error", "only PDF files are accepted", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}

	resp, err := h.Svc.Upload(c.Request.Context(), sub, email, fileHeader.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to upload EOB", err.Error())
		}
		return
	}

	respond.JSON(c, http.StatusCreated, resp)
}

func (h *Handler) summarize(c *gin.Context) {
	sub := middleware.UserSubFromContext(c)
	email := middleware.UserEmailFromContext(c)

	summary, err := h.Svc.Summarize(c.Request.Context(), sub, email, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "EOB not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to generate summary", err.Error())
		}
		return
	}
	respond.OK(c, summary)
}

func (h *Handler) remove(c *gin.Context) {
	sub := middleware.UserSubFromContext(c)
	email := middleware.UserEmailFromContext(c)

	if err := h.Svc.Delete(c.Request.Context(), sub, email, c.Param("id")); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "EOB not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete EOB", nil)
		}
		return
	}
	respond.OK(c, gin.H{"deleted": true})
}

func (h *Handler) benchmark(c *gin.Context) {
	code := strings.TrimSpace(c.Query("procedureCode"))
	if code == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "procedureCode is required", nil)
		return
	}

	resp, err := h.Svc.Benchmark(c.Request.Context(), code)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to compute benchmark", nil)
		return
	}
	respond.OK(c, resp)
}
