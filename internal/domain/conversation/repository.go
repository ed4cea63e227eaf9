package conversation

import "context"

// Repository exposes persistence operations for conversation metadata.
type Repository interface {
	Create(ctx context.Context, conversation *Conversation) error
	FindByID(ctx context.Context, id uint) (*Conversation, error)
	FindByPublicID(ctx context.Context, publicID string) (*Conversation, error)
	FindByShareToken(ctx context.Context, token string) (*Conversation, error)
	ListByUserID(ctx context.Context, userID string) ([]*Conversation, error)
	SearchByTitle(ctx context.Context, userID string, keyword string) ([]*Conversation, error)
	UpdateTitle(ctx context.Context, id uint, title string) error
	SetShareToken(ctx context.Context, id uint, token *string) error
	// DeleteCascade removes the conversation and all its messages as one
	// atomic unit. The bool reports whether a conversation existed.
	DeleteCascade(ctx context.Context, id uint) (bool, error)
}

// MessageRepository persists individual transcript messages.
type MessageRepository interface {
	// Create inserts the message. A zero Sequence means "append": the
	// repository assigns the next sequence number for the conversation.
	Create(ctx context.Context, message *Message) error
	FindByPublicID(ctx context.Context, publicID string) (*Message, error)
	// ListByConversationID returns the transcript in sequence order, oldest first.
	ListByConversationID(ctx context.Context, conversationID uint) ([]Message, error)
	SearchInConversation(ctx context.Context, conversationID uint, keyword string) ([]Message, error)
	UpdateContent(ctx context.Context, id uint, content string) (*Message, error)
	Delete(ctx context.Context, id uint) (bool, error)
}
