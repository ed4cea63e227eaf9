package routes

import (
	"github.com/gin-gonic/gin"

	"chat-server/internal/interfaces/httpserver/handlers"
)

// Provider coordinates all route registrations.
type Provider struct {
	handlers *handlers.Provider
}

// NewProvider constructs the route provider.
func NewProvider(handlerProvider *handlers.Provider) *Provider {
	return &Provider{handlers: handlerProvider}
}

// RegisterPublic attaches the routes that must stay reachable without a
// token: registration, login and shared conversation reads.
func (p *Provider) RegisterPublic(engine *gin.Engine) {
	engine.POST("/auth/register", p.handlers.Auth.Register)
	engine.POST("/auth/login", p.handlers.Auth.Login)
	engine.GET("/conversations/share/:shareId", p.handlers.Conversation.GetShared)
}

// Register attaches the authenticated API routes.
func (p *Provider) Register(engine *gin.Engine) {
	engine.GET("/auth/profile", p.handlers.Auth.Profile)

	users := engine.Group("/users")
	{
		users.GET("/:id", p.handlers.User.Get)
		users.PUT("/:id", p.handlers.User.Update)
		users.DELETE("/:id", p.handlers.User.Delete)
	}

	conversations := engine.Group("/conversations")
	{
		conversations.POST("", p.handlers.Conversation.Create)
		conversations.GET("", p.handlers.Conversation.List)
		conversations.GET("/search", p.handlers.Conversation.Search)
		conversations.GET("/:id", p.handlers.Conversation.Get)
		conversations.PUT("/:id", p.handlers.Conversation.Update)
		conversations.DELETE("/:id", p.handlers.Conversation.Delete)
		conversations.POST("/:id/share", p.handlers.Conversation.Share)
		conversations.DELETE("/:id/share", p.handlers.Conversation.Unshare)
	}

	messages := engine.Group("/messages")
	{
		messages.GET("/conversation/:conversationId", p.handlers.Message.List)
		messages.GET("/conversation/:conversationId/search", p.handlers.Message.Search)
		messages.POST("/conversation/:conversationId/user", p.handlers.Message.CreateUser)
		messages.POST("/conversation/:conversationId/assistant", p.handlers.Message.CreateAssistant)
		messages.PUT("/:id", p.handlers.Message.Update)
		messages.DELETE("/:id", p.handlers.Message.Delete)
	}
}
