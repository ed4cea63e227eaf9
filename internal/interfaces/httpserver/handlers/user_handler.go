package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"chat-server/internal/domain/user"
	"chat-server/internal/infrastructure/auth"
	"chat-server/internal/interfaces/httpserver/requests"
	"chat-server/internal/interfaces/httpserver/responses"
	"chat-server/internal/utils/platformerrors"
)

// UserHandler exposes account management endpoints. Accounts are only
// visible to their owner.
type UserHandler struct {
	users user.Service
	log   zerolog.Logger
}

// NewUserHandler constructs the handler.
func NewUserHandler(users user.Service, log zerolog.Logger) *UserHandler {
	return &UserHandler{
		users: users,
		log:   log.With().Str("handler", "user").Logger(),
	}
}

// Get handles GET /users/:id
// @Summary Get an account
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} responses.UserResponse
// @Failure 403 {object} platformerrors.HTTPErrorResponse
// @Failure 404 {object} platformerrors.HTTPErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	publicID := c.Param("id")
	if !h.authorize(c, publicID) {
		return
	}

	account, err := h.users.GetByPublicID(c.Request.Context(), publicID)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	c.JSON(http.StatusOK, responses.FromUser(account))
}

// Update handles PUT /users/:id
// @Summary Update an account
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body requests.UpdateUserRequest true "Profile changes"
// @Success 200 {object} responses.UserResponse
// @Failure 400 {object} platformerrors.HTTPErrorResponse
// @Failure 403 {object} platformerrors.HTTPErrorResponse
// @Router /users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	publicID := c.Param("id")
	if !h.authorize(c, publicID) {
		return
	}

	var req requests.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteError(c, platformerrors.NewError(
			c.Request.Context(),
			platformerrors.LayerHandler,
			platformerrors.ErrorTypeValidation,
			"invalid request body",
			err,
			"user-invalid-request",
		), h.log)
		return
	}
	if err := req.Validate(); err != nil {
		platformerrors.WriteError(c, platformerrors.NewError(
			c.Request.Context(),
			platformerrors.LayerHandler,
			platformerrors.ErrorTypeValidation,
			err.Error(),
			err,
			"user-invalid-request",
		), h.log)
		return
	}

	account, err := h.users.Update(c.Request.Context(), publicID, user.UpdateParams{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	c.JSON(http.StatusOK, responses.FromUser(account))
}

// Delete handles DELETE /users/:id
// @Summary Delete an account
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} responses.DeletedResponse
// @Failure 403 {object} platformerrors.HTTPErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	publicID := c.Param("id")
	if !h.authorize(c, publicID) {
		return
	}

	deleted, err := h.users.Delete(c.Request.Context(), publicID)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	c.JSON(http.StatusOK, responses.DeletedResponse{ID: publicID, Success: deleted})
}

// authorize rejects access to accounts other than the caller's own.
func (h *UserHandler) authorize(c *gin.Context, publicID string) bool {
	callerID, ok := auth.UserIDFromContext(c)
	if !ok || callerID != publicID {
		platformerrors.WriteError(c, platformerrors.NewError(
			c.Request.Context(),
			platformerrors.LayerHandler,
			platformerrors.ErrorTypeForbidden,
			"cannot access another user's account",
			nil,
			"user-access-denied",
		), h.log)
		return false
	}
	return true
}
