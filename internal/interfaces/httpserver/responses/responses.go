package responses

import (
	"time"

	"chat-server/internal/domain/chat"
	"chat-server/internal/domain/conversation"
	"chat-server/internal/domain/user"
)

// UserResponse represents an account in API responses.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuthResponse carries a signed access token and the account it belongs to.
type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        UserResponse `json:"user"`
}

// ConversationResponse represents a conversation in API responses. Messages
// are included when the transcript was loaded.
type ConversationResponse struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	UserID    string            `json:"user_id"`
	ShareID   *string           `json:"share_id,omitempty"`
	Messages  []MessageResponse `json:"messages,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// ConversationListResponse wraps a conversation collection.
type ConversationListResponse struct {
	Data []ConversationResponse `json:"data"`
}

// MessageResponse represents a transcript message in API responses.
type MessageResponse struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MessageListResponse wraps a message collection.
type MessageListResponse struct {
	Data []MessageResponse `json:"data"`
}

// EditMessageResponse carries the edited message and its regenerated reply.
type EditMessageResponse struct {
	Message   MessageResponse  `json:"message"`
	Assistant *MessageResponse `json:"assistant,omitempty"`
}

// ShareResponse carries a freshly issued share token.
type ShareResponse struct {
	ShareID string `json:"share_id"`
}

// DeletedResponse reports a delete outcome.
type DeletedResponse struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
}

// FromUser maps the domain account to its DTO.
func FromUser(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.PublicID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// FromConversation maps a conversation, including any loaded messages.
func FromConversation(c *conversation.Conversation) ConversationResponse {
	resp := ConversationResponse{
		ID:        c.PublicID,
		Title:     c.Title,
		UserID:    c.UserID,
		ShareID:   c.ShareToken,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if len(c.Messages) > 0 {
		resp.Messages = make([]MessageResponse, 0, len(c.Messages))
		for i := range c.Messages {
			resp.Messages = append(resp.Messages, FromMessage(&c.Messages[i]))
		}
	}
	return resp
}

// FromConversations maps a conversation collection.
func FromConversations(items []*conversation.Conversation) ConversationListResponse {
	out := ConversationListResponse{Data: make([]ConversationResponse, 0, len(items))}
	for _, c := range items {
		out.Data = append(out.Data, FromConversation(c))
	}
	return out
}

// FromMessage maps a transcript message.
func FromMessage(m *conversation.Message) MessageResponse {
	return MessageResponse{
		ID:        m.PublicID,
		Role:      string(m.Role),
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromMessages maps a message collection.
func FromMessages(items []conversation.Message) MessageListResponse {
	out := MessageListResponse{Data: make([]MessageResponse, 0, len(items))}
	for i := range items {
		out.Data = append(out.Data, FromMessage(&items[i]))
	}
	return out
}

// FromEditResult maps an edit-and-regenerate outcome.
func FromEditResult(result *chat.EditResult) EditMessageResponse {
	resp := EditMessageResponse{Message: FromMessage(result.Message)}
	if result.Assistant != nil {
		assistant := FromMessage(result.Assistant)
		resp.Assistant = &assistant
	}
	return resp
}
