package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"chat-server/internal/domain/conversation"
	"chat-server/internal/infrastructure/auth"
	"chat-server/internal/interfaces/httpserver/requests"
	"chat-server/internal/interfaces/httpserver/responses"
	"chat-server/internal/utils/platformerrors"
)

// ConversationHandler exposes the conversation lifecycle endpoints.
type ConversationHandler struct {
	conversations conversation.Service
	log           zerolog.Logger
}

// NewConversationHandler constructs the handler.
func NewConversationHandler(conversations conversation.Service, log zerolog.Logger) *ConversationHandler {
	return &ConversationHandler{
		conversations: conversations,
		log:           log.With().Str("handler", "conversation").Logger(),
	}
}

// Create handles POST /conversations
// @Summary Create a conversation
// @Tags Conversations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body requests.CreateConversationRequest false "Conversation payload"
// @Success 201 {object} responses.ConversationResponse
// @Failure 400 {object} platformerrors.HTTPErrorResponse
// @Router /conversations [post]
func (h *ConversationHandler) Create(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	var req requests.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.badRequest(c, "invalid request body", err)
		return
	}
	if err := req.Validate(); err != nil {
		h.badRequest(c, err.Error(), err)
		return
	}

	conv, err := h.conversations.Create(c.Request.Context(), userID, req.Title)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	c.JSON(http.StatusCreated, responses.FromConversation(conv))
}

// List handles GET /conversations
// @Summary List the caller's conversations
// @Tags Conversations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} responses.ConversationListResponse
// @Router /conversations [get]
func (h *ConversationHandler) List(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	items, err := h.conversations.ListByUser(c.Request.Context(), userID)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	c.JSON(http.StatusOK, responses.FromConversations(items))
}

// Search handles GET /conversations/search
// @Summary Search the caller's conversations by title
// @Tags Conversations
// @Produce json
// @Security BearerAuth
// @Param keyword query string false "Title keyword"
// @Success 200 {object} responses.ConversationListResponse
// @Router /conversations/search [get]
func (h *ConversationHandler) Search(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	items, err := h.conversations.Search(c.Request.Context(), userID, c.Query("keyword"))
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	c.JSON(http.StatusOK, responses.FromConversations(items))
}

// Get handles GET /conversations/:id
// @Summary Get a conversation with its transcript
// @Tags Conversations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Success 200 {object} responses.ConversationResponse
// @Failure 403 {object} platformerrors.HTTPErrorResponse
// @Failure 404 {object} platformerrors.HTTPErrorResponse
// @Router /conversations/{id} [get]
func (h *ConversationHandler) Get(c *gin.Context) {
	conv, ok := h.ownedConversation(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, responses.FromConversation(conv))
}

// Update handles PUT /conversations/:id
// @Summary Rename a conversation
// @Tags Conversations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Param request body requests.UpdateConversationRequest true "New title"
// @Success 200 {object} responses.ConversationResponse
// @Failure 400 {object} platformerrors.HTTPErrorResponse
// @Failure 404 {object} platformerrors.HTTPErrorResponse
// @Router /conversations/{id} [put]
func (h *ConversationHandler) Update(c *gin.Context) {
	conv, ok := h.ownedConversation(c)
	if !ok {
		return
	}

	var req requests.UpdateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}
	if err := req.Validate(); err != nil {
		h.badRequest(c, err.Error(), err)
		return
	}

	updated, err := h.conversations.Rename(c.Request.Context(), conv.PublicID, req.Title)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	c.JSON(http.StatusOK, responses.FromConversation(updated))
}

// Delete handles DELETE /conversations/:id
// @Summary Delete a conversation and its messages
// @Tags Conversations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Success 200 {object} responses.DeletedResponse
// @Failure 403 {object} platformerrors.HTTPErrorResponse
// @Router /conversations/{id} [delete]
func (h *ConversationHandler) Delete(c *gin.Context) {
	publicID := c.Param("id")
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	conv, err := h.conversations.GetByPublicID(c.Request.Context(), publicID)
	if err != nil {
		if platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
			c.JSON(http.StatusOK, responses.DeletedResponse{ID: publicID, Success: false})
			return
		}
		platformerrors.WriteError(c, err, h.log)
		return
	}
	if conv.UserID != userID {
		h.forbidden(c)
		return
	}

	deleted, err := h.conversations.Delete(c.Request.Context(), publicID)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	c.JSON(http.StatusOK, responses.DeletedResponse{ID: publicID, Success: deleted})
}

// Share handles POST /conversations/:id/share
// @Summary Issue a share token
// @Description Issues a fresh share token, replacing any previous one
// @Tags Conversations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Success 200 {object} responses.ShareResponse
// @Failure 403 {object} platformerrors.HTTPErrorResponse
// @Failure 404 {object} platformerrors.HTTPErrorResponse
// @Router /conversations/{id}/share [post]
func (h *ConversationHandler) Share(c *gin.Context) {
	conv, ok := h.ownedConversation(c)
	if !ok {
		return
	}

	token, err := h.conversations.GenerateShareToken(c.Request.Context(), conv.PublicID)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	c.JSON(http.StatusOK, responses.ShareResponse{ShareID: token})
}

// Unshare handles DELETE /conversations/:id/share
// @Summary Revoke the share token
// @Tags Conversations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Success 204 "No Content"
// @Failure 404 {object} platformerrors.HTTPErrorResponse
// @Router /conversations/{id}/share [delete]
func (h *ConversationHandler) Unshare(c *gin.Context) {
	conv, ok := h.ownedConversation(c)
	if !ok {
		return
	}

	if err := h.conversations.RevokeShareToken(c.Request.Context(), conv.PublicID); err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetShared handles GET /conversations/share/:shareId without authentication.
// @Summary Read a shared conversation
// @Description Resolves a share token to a read-only transcript
// @Tags Conversations
// @Produce json
// @Param shareId path string true "Share token"
// @Success 200 {object} responses.ConversationResponse
// @Failure 404 {object} platformerrors.HTTPErrorResponse
// @Router /conversations/share/{shareId} [get]
func (h *ConversationHandler) GetShared(c *gin.Context) {
	conv, err := h.conversations.FindByShareToken(c.Request.Context(), c.Param("shareId"))
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	c.JSON(http.StatusOK, responses.FromConversation(conv))
}

// ownedConversation loads the conversation at :id and enforces ownership.
func (h *ConversationHandler) ownedConversation(c *gin.Context) (*conversation.Conversation, bool) {
	userID, ok := h.callerID(c)
	if !ok {
		return nil, false
	}

	conv, err := h.conversations.GetByPublicID(c.Request.Context(), c.Param("id"))
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return nil, false
	}
	if conv.UserID != userID {
		h.forbidden(c)
		return nil, false
	}
	return conv, true
}

func (h *ConversationHandler) callerID(c *gin.Context) (string, bool) {
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
		return "", false
	}
	return userID, true
}

func (h *ConversationHandler) forbidden(c *gin.Context) {
	platformerrors.WriteError(c, platformerrors.NewError(
		c.Request.Context(),
		platformerrors.LayerHandler,
		platformerrors.ErrorTypeForbidden,
		"conversation belongs to another user",
		nil,
		"conversation-access-denied",
	), h.log)
}

func (h *ConversationHandler) badRequest(c *gin.Context, message string, err error) {
	platformerrors.WriteError(c, platformerrors.NewError(
		c.Request.Context(),
		platformerrors.LayerHandler,
		platformerrors.ErrorTypeValidation,
		message,
		err,
		"conversation-invalid-request",
	), h.log)
}
