package conversation

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"chat-server/internal/utils/platformerrors"
)

// Service defines the conversation lifecycle operations.
type Service interface {
	Create(ctx context.Context, userID string, title string) (*Conversation, error)
	GetByPublicID(ctx context.Context, publicID string) (*Conversation, error)
	ListByUser(ctx context.Context, userID string) ([]*Conversation, error)
	Search(ctx context.Context, userID string, keyword string) ([]*Conversation, error)
	Rename(ctx context.Context, publicID string, title string) (*Conversation, error)
	Delete(ctx context.Context, publicID string) (bool, error)
	GenerateShareToken(ctx context.Context, publicID string) (string, error)
	RevokeShareToken(ctx context.Context, publicID string) error
	FindByShareToken(ctx context.Context, token string) (*Conversation, error)
}

// ServiceImpl coordinates conversation and message persistence.
type ServiceImpl struct {
	conversations Repository
	log           zerolog.Logger
}

// NewService wires dependencies.
func NewService(conversations Repository, log zerolog.Logger) *ServiceImpl {
	return &ServiceImpl{
		conversations: conversations,
		log:           log.With().Str("component", "conversation-service").Logger(),
	}
}

// Create stores a new conversation, substituting the default title when the
// given one is blank.
func (s *ServiceImpl) Create(ctx context.Context, userID string, title string) (*Conversation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultTitle
	}

	conv := &Conversation{
		PublicID: newPublicID("conv"),
		Title:    title,
		UserID:   userID,
	}
	if err := s.conversations.Create(ctx, conv); err != nil {
		return nil, err
	}

	s.log.Debug().Str("conversation_id", conv.PublicID).Str("user_id", userID).Msg("conversation created")
	return conv, nil
}

// GetByPublicID fetches a conversation with its transcript.
func (s *ServiceImpl) GetByPublicID(ctx context.Context, publicID string) (*Conversation, error) {
	return s.conversations.FindByPublicID(ctx, publicID)
}

// ListByUser returns the user's conversations, most recently updated first.
func (s *ServiceImpl) ListByUser(ctx context.Context, userID string) ([]*Conversation, error) {
	return s.conversations.ListByUserID(ctx, userID)
}

// Search matches conversation titles case-insensitively. A blank keyword is
// equivalent to listing everything the user owns.
func (s *ServiceImpl) Search(ctx context.Context, userID string, keyword string) ([]*Conversation, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return s.conversations.ListByUserID(ctx, userID)
	}
	return s.conversations.SearchByTitle(ctx, userID, keyword)
}

// Rename updates the conversation title.
func (s *ServiceImpl) Rename(ctx context.Context, publicID string, title string) (*Conversation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			"conversation title must not be empty",
			nil,
			"conversation-rename-empty-title",
		)
	}

	conv, err := s.conversations.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	if err := s.conversations.UpdateTitle(ctx, conv.ID, title); err != nil {
		return nil, err
	}
	conv.Title = title
	return conv, nil
}

// Delete removes the conversation and its messages as one atomic unit.
// Deleting an unknown id is not an error; it reports existed=false.
func (s *ServiceImpl) Delete(ctx context.Context, publicID string) (bool, error) {
	conv, err := s.conversations.FindByPublicID(ctx, publicID)
	if err != nil {
		if platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
			return false, nil
		}
		return false, err
	}

	existed, err := s.conversations.DeleteCascade(ctx, conv.ID)
	if err != nil {
		return false, err
	}

	s.log.Info().Str("conversation_id", publicID).Bool("existed", existed).Msg("conversation deleted")
	return existed, nil
}

// GenerateShareToken issues a fresh opaque token for public read access,
// overwriting any previous one.
func (s *ServiceImpl) GenerateShareToken(ctx context.Context, publicID string) (string, error) {
	conv, err := s.conversations.FindByPublicID(ctx, publicID)
	if err != nil {
		return "", err
	}

	token, err := newShareToken()
	if err != nil {
		return "", platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal,
			"failed to generate share token",
			err,
			"conversation-share-token-entropy",
		)
	}

	if err := s.conversations.SetShareToken(ctx, conv.ID, &token); err != nil {
		return "", err
	}
	return token, nil
}

// RevokeShareToken clears the token. Revoking an unshared conversation is a
// no-op success.
func (s *ServiceImpl) RevokeShareToken(ctx context.Context, publicID string) error {
	conv, err := s.conversations.FindByPublicID(ctx, publicID)
	if err != nil {
		return err
	}
	return s.conversations.SetShareToken(ctx, conv.ID, nil)
}

// FindByShareToken resolves a public share link. An unknown token and a
// missing conversation are indistinguishable to the caller.
func (s *ServiceImpl) FindByShareToken(ctx context.Context, token string) (*Conversation, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeNotFound,
			"shared conversation not found",
			nil,
			"conversation-share-lookup-miss",
		)
	}
	return s.conversations.FindByShareToken(ctx, token)
}

// newShareToken returns 128 bits of entropy rendered as 32 hex characters.
func newShareToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func newPublicID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.NewString())
}
