package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"chat-server/internal/domain/chat"
	"chat-server/internal/domain/conversation"
	"chat-server/internal/infrastructure/auth"
	"chat-server/internal/interfaces/httpserver/requests"
	"chat-server/internal/interfaces/httpserver/responses"
	"chat-server/internal/utils/platformerrors"
)

// MessageHandler exposes transcript endpoints.
type MessageHandler struct {
	chat          chat.Service
	conversations conversation.Service
	log           zerolog.Logger
}

// NewMessageHandler constructs the handler.
func NewMessageHandler(chatService chat.Service, conversations conversation.Service, log zerolog.Logger) *MessageHandler {
	return &MessageHandler{
		chat:          chatService,
		conversations: conversations,
		log:           log.With().Str("handler", "message").Logger(),
	}
}

// List handles GET /messages/conversation/:conversationId
// @Summary List a conversation's messages in order
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Param conversationId path string true "Conversation ID"
// @Success 200 {object} responses.MessageListResponse
// @Failure 403 {object} platformerrors.HTTPErrorResponse
// @Failure 404 {object} platformerrors.HTTPErrorResponse
// @Router /messages/conversation/{conversationId} [get]
func (h *MessageHandler) List(c *gin.Context) {
	convID, ok := h.ownedConversationID(c)
	if !ok {
		return
	}

	items, err := h.chat.ListByConversation(c.Request.Context(), convID)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	c.JSON(http.StatusOK, responses.FromMessages(items))
}

// Search handles GET /messages/conversation/:conversationId/search
// @Summary Search messages inside a conversation
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Param conversationId path string true "Conversation ID"
// @Param keyword query string false "Content keyword"
// @Success 200 {object} responses.MessageListResponse
// @Failure 404 {object} platformerrors.HTTPErrorResponse
// @Router /messages/conversation/{conversationId}/search [get]
func (h *MessageHandler) Search(c *gin.Context) {
	convID, ok := h.ownedConversationID(c)
	if !ok {
		return
	}

	items, err := h.chat.SearchInConversation(c.Request.Context(), convID, c.Query("keyword"))
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	c.JSON(http.StatusOK, responses.FromMessages(items))
}

// CreateUser handles POST /messages/conversation/:conversationId/user
// @Summary Append a user message
// @Tags Messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param conversationId path string true "Conversation ID"
// @Param request body requests.CreateMessageRequest true "Message payload"
// @Success 201 {object} responses.MessageResponse
// @Failure 400 {object} platformerrors.HTTPErrorResponse
// @Failure 404 {object} platformerrors.HTTPErrorResponse
// @Router /messages/conversation/{conversationId}/user [post]
func (h *MessageHandler) CreateUser(c *gin.Context) {
	convID, ok := h.ownedConversationID(c)
	if !ok {
		return
	}

	var req requests.CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}
	if err := req.Validate(); err != nil {
		h.badRequest(c, err.Error(), err)
		return
	}

	msg, err := h.chat.CreateUserMessage(c.Request.Context(), convID, req.Content)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	c.JSON(http.StatusCreated, responses.FromMessage(msg))
}

// CreateAssistant handles POST /messages/conversation/:conversationId/assistant
// @Summary Generate an assistant reply to the current transcript
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Param conversationId path string true "Conversation ID"
// @Success 201 {object} responses.MessageResponse
// @Failure 404 {object} platformerrors.HTTPErrorResponse
// @Failure 502 {object} platformerrors.HTTPErrorResponse
// @Router /messages/conversation/{conversationId}/assistant [post]
func (h *MessageHandler) CreateAssistant(c *gin.Context) {
	convID, ok := h.ownedConversationID(c)
	if !ok {
		return
	}

	msg, err := h.chat.GenerateAssistantMessage(c.Request.Context(), convID)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	c.JSON(http.StatusCreated, responses.FromMessage(msg))
}

// Update handles PUT /messages/:id
// @Summary Edit a user message and regenerate the reply
// @Description Rewrites the message content, discards the stale assistant reply that followed it and generates a fresh one
// @Tags Messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Message ID"
// @Param request body requests.UpdateMessageRequest true "New content"
// @Success 200 {object} responses.EditMessageResponse
// @Failure 400 {object} platformerrors.HTTPErrorResponse
// @Failure 404 {object} platformerrors.HTTPErrorResponse
// @Failure 409 {object} platformerrors.HTTPErrorResponse
// @Failure 502 {object} platformerrors.HTTPErrorResponse
// @Router /messages/{id} [put]
func (h *MessageHandler) Update(c *gin.Context) {
	messageID := c.Param("id")
	if !h.authorizeMessage(c, messageID) {
		return
	}

	var req requests.UpdateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}
	if err := req.Validate(); err != nil {
		h.badRequest(c, err.Error(), err)
		return
	}

	result, err := h.chat.EditAndRegenerate(c.Request.Context(), messageID, req.Content)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	c.JSON(http.StatusOK, responses.FromEditResult(result))
}

// Delete handles DELETE /messages/:id
// @Summary Delete a message
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Param id path string true "Message ID"
// @Success 200 {object} responses.DeletedResponse
// @Failure 403 {object} platformerrors.HTTPErrorResponse
// @Failure 404 {object} platformerrors.HTTPErrorResponse
// @Router /messages/{id} [delete]
func (h *MessageHandler) Delete(c *gin.Context) {
	messageID := c.Param("id")
	if !h.authorizeMessage(c, messageID) {
		return
	}

	deleted, err := h.chat.DeleteMessage(c.Request.Context(), messageID)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	c.JSON(http.StatusOK, responses.DeletedResponse{ID: messageID, Success: deleted})
}

// ownedConversationID resolves :conversationId and enforces ownership.
func (h *MessageHandler) ownedConversationID(c *gin.Context) (string, bool) {
	userID, ok := h.callerID(c)
	if !ok {
		return "", false
	}

	conv, err := h.conversations.GetByPublicID(c.Request.Context(), c.Param("conversationId"))
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return "", false
	}
	if conv.UserID != userID {
		h.forbidden(c)
		return "", false
	}
	return conv.PublicID, true
}

// authorizeMessage enforces ownership of the conversation holding a message.
func (h *MessageHandler) authorizeMessage(c *gin.Context, messageID string) bool {
	userID, ok := h.callerID(c)
	if !ok {
		return false
	}

	conv, err := h.chat.GetConversationForMessage(c.Request.Context(), messageID)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return false
	}
	if conv.UserID != userID {
		h.forbidden(c)
		return false
	}
	return true
}

func (h *MessageHandler) callerID(c *gin.Context) (string, bool) {
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

func (h *MessageHandler) forbidden(c *gin.Context) {
	platformerrors.WriteError(c, platformerrors.NewError(
		c.Request.Context(),
		platformerrors.LayerHandler,
		platformerrors.ErrorTypeForbidden,
		"message belongs to another user's conversation",
		nil,
		"message-access-denied",
	), h.log)
}

func (h *MessageHandler) badRequest(c *gin.Context, message string, err error) {
	platformerrors.WriteError(c, platformerrors.NewError(
		c.Request.Context(),
		platformerrors.LayerHandler,
		platformerrors.ErrorTypeValidation,
		message,
		err,
		"message-invalid-request",
	), h.log)
}
