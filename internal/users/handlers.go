package users

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/corebank/userservice/internal/response"
)

// UserHandlers provides HTTP handlers for user lifecycle operations
type UserHandlers struct {
	service UserService
	logger  *zap.Logger
}

// NewUserHandlers creates new user handlers
func NewUserHandlers(service UserService, logger *zap.Logger) *UserHandlers {
	return &UserHandlers{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers all user-related routes
func (h *UserHandlers) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.POST("", h.CreateUser)
		users.GET("", h.ListUsers)
		users.GET("/:id", h.GetUserByID)
		users.GET("/username/:username", h.GetUserByUsername)
		users.GET("/email/:email", h.GetUserByEmail)
		users.GET("/role/:role", h.ListUsersByRole)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
		users.GET("/check/username/:username", h.CheckUsernameExists)
		users.GET("/check/email/:email", h.CheckEmailExists)
	}
}

// CreateUser handles POST /users
func (h *UserHandlers) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if fields := BindingErrorFields(err); fields != nil {
			response.ValidationFailed(c, fields)
			return
		}
		response.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Created(c, "User created successfully", ToResponse(user))
}

// GetUserByID handles GET /users/:id
func (h *UserHandlers) GetUserByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid user id")
		return
	}

	user, err := h.service.GetUserByID(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.OK(c, ToResponse(user))
}

// GetUserByUsername handles GET /users/username/:username
func (h *UserHandlers) GetUserByUsername(c *gin.Context) {
	user, err := h.service.GetUserByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.OK(c, ToResponse(user))
}

// GetUserByEmail handles GET /users/email/:email
func (h *UserHandlers) GetUserByEmail(c *gin.Context) {
	user, err := h.service.GetUserByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.OK(c, ToResponse(user))
}

// ListUsers handles GET /users
func (h *UserHandlers) ListUsers(c *gin.Context) {
	list, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.OK(c, ToResponses(list))
}

// ListUsersByRole handles GET /users/role/:role
func (h *UserHandlers) ListUsersByRole(c *gin.Context) {
	role, ok := ParseRole(c.Param("role"))
	if !ok {
		response.BadRequest(c, fmt.Sprintf("Invalid role: %s", c.Param("role")))
		return
	}

	list, err := h.service.ListUsersByRole(c.Request.Context(), role)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.OK(c, ToResponses(list))
}

// UpdateUser handles PUT /users/:id
func (h *UserHandlers) UpdateUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid user id")
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if fields := BindingErrorFields(err); fields != nil {
			response.ValidationFailed(c, fields)
			return
		}
		response.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.service.UpdateUser(c.Request.Context(), id, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.OKMessage(c, "User updated successfully", ToResponse(user))
}

// DeleteUser handles DELETE /users/:id
func (h *UserHandlers) DeleteUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid user id")
		return
	}

	if err := h.service.DeleteUser(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}

	response.OKMessage(c, "User deleted successfully", nil)
}

// CheckUsernameExists handles GET /users/check/username/:username
func (h *UserHandlers) CheckUsernameExists(c *gin.Context) {
	exists, err := h.service.ExistsByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.OK(c, exists)
}

// CheckEmailExists handles GET /users/check/email/:email
func (h *UserHandlers) CheckEmailExists(c *gin.Context) {
	exists, err := h.service.ExistsByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.OK(c, exists)
}

// respondError translates domain errors into status codes. Deliberate errors
// keep their message; anything unexpected is logged in full and surfaced as a
// generic 500.
func (h *UserHandlers) respondError(c *gin.Context, err error) {
	var uerr *UserError
	if errors.As(err, &uerr) {
		switch uerr.Type {
		case UserErrorTypeNotFound:
			response.NotFound(c, uerr.Message)
			return
		case UserErrorTypeAlreadyExists:
			response.Conflict(c, uerr.Message)
			return
		case UserErrorTypeInvalidRequest:
			response.BadRequest(c, uerr.Message)
			return
		}
	}

	h.logger.Error("Unexpected error handling request",
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.Error(err))
	response.ServerError(c, "An unexpected error occurred")
}
