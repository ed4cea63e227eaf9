package entities

import (
	"time"

	"chat-server/internal/domain/conversation"
)

// Conversation represents the database schema for conversations
type Conversation struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID   string  `gorm:"type:varchar(50);uniqueIndex;not null"`
	Title      string  `gorm:"type:varchar(256);not null"`
	UserID     string  `gorm:"type:varchar(64);index:idx_conversation_user;not null"`
	ShareToken *string `gorm:"type:varchar(64);uniqueIndex"`

	Messages []Message `gorm:"foreignKey:ConversationID"`
}

// TableName specifies the table name for Conversation.
func (Conversation) TableName() string {
	return "conversations"
}

// EtoD converts database entity to domain model
func (c *Conversation) EtoD() *conversation.Conversation {
	messages := make([]conversation.Message, len(c.Messages))
	for i, m := range c.Messages {
		messages[i] = *m.EtoD()
	}

	return &conversation.Conversation{
		ID:         c.ID,
		PublicID:   c.PublicID,
		Title:      c.Title,
		UserID:     c.UserID,
		ShareToken: c.ShareToken,
		Messages:   messages,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

// NewSchemaConversation creates a database entity from domain model
func NewSchemaConversation(c *conversation.Conversation) *Conversation {
	return &Conversation{
		ID:         c.ID,
		PublicID:   c.PublicID,
		Title:      c.Title,
		UserID:     c.UserID,
		ShareToken: c.ShareToken,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}
