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

// AuthHandler exposes registration, login and profile endpoints.
type AuthHandler struct {
	users     user.Service
	validator *auth.Validator
	log       zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(users user.Service, validator *auth.Validator, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		users:     users,
		validator: validator,
		log:       log.With().Str("handler", "auth").Logger(),
	}
}

// Register handles POST /auth/register
// @Summary Register a new account
// @Description Creates an account and returns an access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body requests.RegisterRequest true "Registration payload"
// @Success 201 {object} responses.AuthResponse
// @Failure 400 {object} platformerrors.HTTPErrorResponse
// @Failure 409 {object} platformerrors.HTTPErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req requests.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}
	if err := req.Validate(); err != nil {
		h.badRequest(c, err.Error(), err)
		return
	}

	account, err := h.users.Register(c.Request.Context(), user.RegisterParams{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	token, err := h.validator.IssueToken(account)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	c.JSON(http.StatusCreated, responses.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		User:        responses.FromUser(account),
	})
}

// Login handles POST /auth/login
// @Summary Log in
// @Description Exchanges credentials for an access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body requests.LoginRequest true "Credentials"
// @Success 200 {object} responses.AuthResponse
// @Failure 400 {object} platformerrors.HTTPErrorResponse
// @Failure 401 {object} platformerrors.HTTPErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req requests.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}
	if err := req.Validate(); err != nil {
		h.badRequest(c, err.Error(), err)
		return
	}

	account, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	token, err := h.validator.IssueToken(account)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	c.JSON(http.StatusOK, responses.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		User:        responses.FromUser(account),
	})
}

// Profile handles GET /auth/profile
// @Summary Get the authenticated account
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} responses.UserResponse
// @Failure 401 {object} platformerrors.HTTPErrorResponse
// @Router /auth/profile [get]
func (h *AuthHandler) Profile(c *gin.Context) {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		platformerrors.WriteError(c, platformerrors.NewError(
			c.Request.Context(),
			platformerrors.LayerHandler,
			platformerrors.ErrorTypeUnauthorized,
			"missing authentication",
			nil,
			"auth-missing-identity",
		), h.log)
		return
	}

	account, err := h.users.GetByPublicID(c.Request.Context(), userID)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	c.JSON(http.StatusOK, responses.FromUser(account))
}

func (h *AuthHandler) badRequest(c *gin.Context, message string, err error) {
	platformerrors.WriteError(c, platformerrors.NewError(
		c.Request.Context(),
		platformerrors.LayerHandler,
		platformerrors.ErrorTypeValidation,
		message,
		err,
		"auth-invalid-request",
	), h.log)
}
