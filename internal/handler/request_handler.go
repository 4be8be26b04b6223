package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cse-hub/crs-api/internal/middleware"
	"github.com/cse-hub/crs-api/internal/models"
	"github.com/cse-hub/crs-api/internal/service"
	appErrors "github.com/cse-hub/crs-api/pkg/errors"
	"github.com/cse-hub/crs-api/pkg/export"
	"github.com/cse-hub/crs-api/pkg/response"
)

// RequestHandler handles request lifecycle endpoints.
type RequestHandler struct {
	service  *service.RequestService
	notifier service.Notifier
	exporter *export.CSVExporter
	logger   *zap.Logger
}

// NewRequestHandler creates a new request handler. notifier may be nil.
func NewRequestHandler(svc *service.RequestService, notifier service.Notifier, logger *zap.Logger) *RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestHandler{
		service:  svc,
		notifier: notifier,
		exporter: export.NewCSVExporter(),
		logger:   logger,
	}
}

// Create godoc
// @Summary Create request
// @Description Create a new request against a class the student is enrolled in
// @Tags Requests
// @Accept json
// @Produce json
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests [post]
func (h *RequestHandler) Create(c *gin.Context) {
	var input service.CreateRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload"))
		return
	}

	actor := middleware.ActingUser(c)
	id, err := h.service.CreateRequest(c.Request.Context(), actor, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.notifyRequest(c, actor, id, false)
	response.Created(c, gin.H{"id": id})
}

// Get godoc
// @Summary Get request
// @Description Request detail, visible to its requester and class staff
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests/{id} [get]
func (h *RequestHandler) Get(c *gin.Context) {
	request, err := h.service.GetRequest(c.Request.Context(), middleware.ActingUser(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request)
}

// List godoc
// @Summary List requests by acting role
// @Description As a student, own requests; as instructor or TA, requests in classes held with that role
// @Tags Requests
// @Produce json
// @Param role query string true "Acting role"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests [get]
func (h *RequestHandler) List(c *gin.Context) {
	role := models.Role(c.DefaultQuery("role", string(models.RoleStudent)))

	requests, err := h.service.GetRequestsAs(c.Request.Context(), middleware.ActingUser(c), role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests)
}

// Export godoc
// @Summary Export requests as CSV
// @Tags Requests
// @Produce text/csv
// @Param role query string true "Acting role"
// @Success 200 {string} string "CSV content"
// @Router /requests/export [get]
func (h *RequestHandler) Export(c *gin.Context) {
	role := models.Role(c.DefaultQuery("role", string(models.RoleInstructor)))

	requests, err := h.service.GetRequestsAs(c.Request.Context(), middleware.ActingUser(c), role)
	if err != nil {
		response.Error(c, err)
		return
	}

	dataset := export.Dataset{
		Headers: []string{"id", "from", "class", "type", "status", "decision", "timestamp"},
	}
	for _, r := range requests {
		row := map[string]string{
			"id":        r.ID,
			"from":      r.From,
			"class":     r.Class.String(),
			"type":      string(r.Type),
			"status":    "open",
			"timestamp": r.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		}
		if r.Resolved() {
			row["status"] = "resolved"
			row["decision"] = string(r.Response.Decision)
		}
		dataset.Rows = append(dataset.Rows, row)
	}

	payload, err := h.exporter.Render(dataset)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=requests-%s.csv", role))
	c.Data(http.StatusOK, "text/csv", payload)
}

// CreateResponse godoc
// @Summary Attach response
// @Description Attach the single response to an open request, instructor-only
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/{id}/response [post]
func (h *RequestHandler) CreateResponse(c *gin.Context) {
	var input service.CreateResponseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid response payload"))
		return
	}

	actor := middleware.ActingUser(c)
	id := c.Param("id")
	if err := h.service.CreateResponse(c.Request.Context(), actor, id, input); err != nil {
		response.Error(c, err)
		return
	}

	h.notifyRequest(c, actor, id, true)
	response.NoContent(c)
}

// notifyRequest re-fetches the request and fires the matching notification
// hook. Failures are logged and never affect the already-committed mutation.
func (h *RequestHandler) notifyRequest(c *gin.Context, actor, id string, resolved bool) {
	if h.notifier == nil {
		return
	}
	request, err := h.service.GetRequest(c.Request.Context(), actor, id)
	if err != nil {
		h.logger.Warn("notification skipped", zap.String("request_id", id), zap.Error(err))
		return
	}
	if resolved {
		err = h.notifier.NotifyNewResponse(c.Request.Context(), request)
	} else {
		err = h.notifier.NotifyNewRequest(c.Request.Context(), request)
	}
	if err != nil {
		h.logger.Warn("notification failed", zap.String("request_id", id), zap.Error(err))
	}
}
