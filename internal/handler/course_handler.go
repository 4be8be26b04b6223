package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cse-hub/crs-api/internal/middleware"
	"github.com/cse-hub/crs-api/internal/models"
	"github.com/cse-hub/crs-api/internal/service"
	appErrors "github.com/cse-hub/crs-api/pkg/errors"
	"github.com/cse-hub/crs-api/pkg/response"
)

// CourseHandler handles course directory endpoints.
type CourseHandler struct {
	service *service.CourseService
}

// NewCourseHandler creates a new course handler.
func NewCourseHandler(svc *service.CourseService) *CourseHandler {
	return &CourseHandler{service: svc}
}

func courseIDFromPath(c *gin.Context) models.CourseID {
	return models.CourseID{Code: c.Param("code"), Term: c.Param("term")}
}

// Get godoc
// @Summary Get course
// @Description Course detail, visible to anyone enrolled in any of its sections
// @Tags Courses
// @Produce json
// @Param code path string true "Course code"
// @Param term path string true "Course term"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{code}/{term} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.service.GetCourse(c.Request.Context(), middleware.ActingUser(c), courseIDFromPath(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// ListFromEnrollment godoc
// @Summary List enrolled courses
// @Description All courses referenced by the viewer's enrollment
// @Tags Courses
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) ListFromEnrollment(c *gin.Context) {
	courses, err := h.service.GetCoursesFromEnrollment(c.Request.Context(), middleware.ActingUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses)
}

// UpdateSections godoc
// @Summary Replace course sections
// @Description Full replace of the sections map, instructor-only
// @Tags Courses
// @Accept json
// @Produce json
// @Param code path string true "Course code"
// @Param term path string true "Course term"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Router /courses/{code}/{term}/sections [put]
func (h *CourseHandler) UpdateSections(c *gin.Context) {
	var sections map[string]models.Section
	if err := c.ShouldBindJSON(&sections); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid sections payload"))
		return
	}

	if err := h.service.UpdateSections(c.Request.Context(), middleware.ActingUser(c), courseIDFromPath(c), sections); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SetRequestTypes godoc
// @Summary Replace effective request types
// @Description Full replace of the request-type toggle map, instructor-only
// @Tags Courses
// @Accept json
// @Produce json
// @Param code path string true "Course code"
// @Param term path string true "Course term"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Router /courses/{code}/{term}/request-types [put]
func (h *CourseHandler) SetRequestTypes(c *gin.Context) {
	var types map[string]bool
	if err := c.ShouldBindJSON(&types); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request types payload"))
		return
	}

	if err := h.service.SetEffectiveRequestTypes(c.Request.Context(), middleware.ActingUser(c), courseIDFromPath(c), types); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
