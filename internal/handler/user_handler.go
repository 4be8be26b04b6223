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

// UserHandler handles user directory endpoints.
type UserHandler struct {
	service *service.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{service: svc}
}

// Me godoc
// @Summary Get own profile
// @Tags Users
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.service.GetUser(c.Request.Context(), middleware.ActingUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user)
}

type updateNameRequest struct {
	Name string `json:"name" binding:"required"`
}

// UpdateName godoc
// @Summary Rename self
// @Description Update the display name of the authenticated user
// @Tags Users
// @Accept json
// @Produce json
// @Success 204
// @Failure 400 {object} response.Envelope
// @Router /users/me/name [patch]
func (h *UserHandler) UpdateName(c *gin.Context) {
	var req updateNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid rename payload"))
		return
	}

	if err := h.service.UpdateUserName(c.Request.Context(), middleware.ActingUser(c), req.Name); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ClassMembers godoc
// @Summary List class members
// @Description List members of a class holding a role; staff rosters are
// @Description visible to any member of the class, student rosters to staff only
// @Tags Users
// @Produce json
// @Param course query string true "Course code"
// @Param term query string true "Course term"
// @Param section query string true "Section label"
// @Param role query string true "Member role"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /classes/members [get]
func (h *UserHandler) ClassMembers(c *gin.Context) {
	class := models.Class{
		Course: models.CourseID{
			Code: c.Query("course"),
			Term: c.Query("term"),
		},
		Section: c.Query("section"),
	}
	if class.Course.Code == "" || class.Course.Term == "" || class.Section == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "course, term and section are required"))
		return
	}
	role := models.Role(c.Query("role"))

	users, err := h.service.GetUsersFromClass(c.Request.Context(), middleware.ActingUser(c), class, role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users)
}
