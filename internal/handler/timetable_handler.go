package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/middleware"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

type timetableGenerator interface {
	Generate(ctx context.Context, tenantID string, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error)
	GenerateAsync(ctx context.Context, tenantID string, req dto.GenerateTimetableRequest) (*dto.TimetableRun, error)
	RunStatus(ctx context.Context, tenantID, runID string) (*dto.TimetableRun, error)
	Lookup(ctx context.Context, scope models.TimetableScope) (*dto.TimetableView, bool, error)
}

type timetableExporter interface {
	Export(ctx context.Context, scope models.TimetableScope, format string) (*service.ExportResult, error)
}

// TimetableHandler exposes timetable generation endpoints.
type TimetableHandler struct {
	generator timetableGenerator
	exporter  timetableExporter
	validator *validator.Validate
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(generator timetableGenerator, exporter timetableExporter, validate *validator.Validate) *TimetableHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &TimetableHandler{generator: generator, exporter: exporter, validator: validate}
}

// Generate godoc
// @Summary Generate the weekly timetable of a section
// @Description Replaces the section's timetable. With async=true the run is queued and 202 is returned with a run id to poll.
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest true "Generation request"
// @Success 200 {object} response.Envelope{data=dto.GenerateTimetableResponse}
// @Success 202 {object} response.Envelope{data=dto.GenerateAcceptedResponse}
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Failure 423 {object} response.Envelope
// @Security BearerAuth
// @Router /timetables/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generation payload"))
		return
	}
	tenantID := middleware.TenantID(c)

	if req.Async {
		run, err := h.generator.GenerateAsync(c.Request.Context(), tenantID, req)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Accepted(c, dto.GenerateAcceptedResponse{RunID: run.RunID, Status: run.Status})
		return
	}

	result, err := h.generator.Generate(c.Request.Context(), tenantID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, middleware.ExtractMeta(c))
}

// RunStatus godoc
// @Summary Get the status of an asynchronous generation run
// @Tags Timetables
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} response.Envelope{data=dto.TimetableRun}
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /timetables/runs/{id} [get]
func (h *TimetableHandler) RunStatus(c *gin.Context) {
	run, err := h.generator.RunStatus(c.Request.Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, run)
}

// Get godoc
// @Summary Get the persisted timetable of a section
// @Tags Timetables
// @Produce json
// @Param sessionId path string true "Academic session ID"
// @Param sectionId path string true "Section ID"
// @Success 200 {object} response.Envelope{data=dto.TimetableView}
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /timetables/sessions/{sessionId}/sections/{sectionId} [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	view, hit, err := h.generator.Lookup(c.Request.Context(), scopeFromPath(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, view, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Download the section timetable as a weekly grid
// @Tags Timetables
// @Produce text/csv
// @Produce application/pdf
// @Param sessionId path string true "Academic session ID"
// @Param sectionId path string true "Section ID"
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /timetables/sessions/{sessionId}/sections/{sectionId}/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	var query dto.TimetableExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export query"))
		return
	}
	query.Format = strings.ToLower(strings.TrimSpace(query.Format))
	if err := h.validator.Struct(query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "format must be csv or pdf"))
		return
	}
	result, err := h.exporter.Export(c.Request.Context(), scopeFromPath(c), query.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.ContentType, result.Filename, result.Payload)
}

func scopeFromPath(c *gin.Context) models.TimetableScope {
	return models.TimetableScope{
		TenantID:  middleware.TenantID(c),
		SessionID: strings.TrimSpace(c.Param("sessionId")),
		ClassID:   strings.TrimSpace(c.Query("classId")),
		SectionID: strings.TrimSpace(c.Param("sectionId")),
	}
}
