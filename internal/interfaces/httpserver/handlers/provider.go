package handlers

import (
	"github.com/rs/zerolog"

	"chat-server/internal/domain/chat"
	"chat-server/internal/domain/conversation"
	"chat-server/internal/domain/user"
	"chat-server/internal/infrastructure/auth"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Auth         *AuthHandler
	User         *UserHandler
	Conversation *ConversationHandler
	Message      *MessageHandler
}

// NewProvider constructs the handler provider with domain services.
func NewProvider(
	userService user.Service,
	conversationService conversation.Service,
	chatService chat.Service,
	validator *auth.Validator,
	log zerolog.Logger,
) *Provider {
	return &Provider{
		Auth:         NewAuthHandler(userService, validator, log),
		User:         NewUserHandler(userService, log),
		Conversation: NewConversationHandler(conversationService, log),
		Message:      NewMessageHandler(chatService, conversationService, log),
	}
}
