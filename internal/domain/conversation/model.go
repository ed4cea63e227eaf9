package conversation

import (
	"strings"
	"time"
)

// DefaultTitle is used when a conversation is created without one.
const DefaultTitle = "New conversation"

// Conversation represents a chat thread owned by a single user.
type Conversation struct {
	ID         uint      `json:"-"`
	PublicID   string    `json:"id"`
	Title      string    `json:"title"`
	UserID     string    `json:"user_id"`
	ShareToken *string   `json:"share_id,omitempty"`
	Messages   []Message `json:"messages,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Shared reports whether a share token is currently issued.
func (c *Conversation) Shared() bool {
	return c.ShareToken != nil && *c.ShareToken != ""
}

// Role indicates who authored a message. The canonical wire form is
// lowercase; every ingress point must go through ParseRole.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole normalizes and validates a role value.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleUser:
		return RoleUser, true
	case RoleAssistant:
		return RoleAssistant, true
	default:
		return "", false
	}
}

// Message is a single transcript entry. Sequence is strictly increasing
// within a conversation and is the authoritative ordering key; creation
// timestamps alone could tie.
type Message struct {
	ID             uint      `json:"-"`
	PublicID       string    `json:"id"`
	ConversationID uint      `json:"-"`
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	Sequence       int       `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
