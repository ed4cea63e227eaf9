package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"chat-server/internal/domain/conversation"
	"chat-server/internal/domain/llm"
	"chat-server/internal/infrastructure/metrics"
	"chat-server/internal/infrastructure/observability"
	"chat-server/internal/utils/platformerrors"
)

// EditResult carries the outcome of an edit-and-regenerate call: the updated
// user message and the freshly generated assistant reply.
type EditResult struct {
	Message   *conversation.Message `json:"message"`
	Assistant *conversation.Message `json:"assistant"`
}

// Service orchestrates transcript mutations and assistant reply generation.
type Service interface {
	ListByConversation(ctx context.Context, conversationPublicID string) ([]conversation.Message, error)
	SearchInConversation(ctx context.Context, conversationPublicID string, keyword string) ([]conversation.Message, error)
	CreateUserMessage(ctx context.Context, conversationPublicID string, content string) (*conversation.Message, error)
	GenerateAssistantMessage(ctx context.Context, conversationPublicID string) (*conversation.Message, error)
	EditAndRegenerate(ctx context.Context, messagePublicID string, newContent string) (*EditResult, error)
	DeleteMessage(ctx context.Context, messagePublicID string) (bool, error)
	GetConversationForMessage(ctx context.Context, messagePublicID string) (*conversation.Conversation, error)
}

// ServiceImpl implements the orchestrator. Mutating operations on the same
// conversation are serialized through per-conversation locks; distinct
// conversations never contend.
type ServiceImpl struct {
	conversations conversation.Repository
	messages      conversation.MessageRepository
	provider      llm.Provider
	locks         *conversationLocks
	log           zerolog.Logger
}

// NewService wires dependencies.
func NewService(
	conversations conversation.Repository,
	messages conversation.MessageRepository,
	provider llm.Provider,
	log zerolog.Logger,
) *ServiceImpl {
	return &ServiceImpl{
		conversations: conversations,
		messages:      messages,
		provider:      provider,
		locks:         newConversationLocks(),
		log:           log.With().Str("component", "chat-service").Logger(),
	}
}

// ListByConversation returns the ordered transcript.
func (s *ServiceImpl) ListByConversation(ctx context.Context, conversationPublicID string) ([]conversation.Message, error) {
	conv, err := s.conversations.FindByPublicID(ctx, conversationPublicID)
	if err != nil {
		return nil, err
	}
	return s.messages.ListByConversationID(ctx, conv.ID)
}

// SearchInConversation matches message content case-insensitively, keeping
// transcript order.
func (s *ServiceImpl) SearchInConversation(ctx context.Context, conversationPublicID string, keyword string) ([]conversation.Message, error) {
	conv, err := s.conversations.FindByPublicID(ctx, conversationPublicID)
	if err != nil {
		return nil, err
	}

	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return s.messages.ListByConversationID(ctx, conv.ID)
	}
	return s.messages.SearchInConversation(ctx, conv.ID, keyword)
}

// CreateUserMessage appends a validated user message to the transcript.
func (s *ServiceImpl) CreateUserMessage(ctx context.Context, conversationPublicID string, content string) (*conversation.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, emptyContentError(ctx)
	}

	conv, err := s.conversations.FindByPublicID(ctx, conversationPublicID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(conv.ID)
	defer unlock()

	msg := &conversation.Message{
		PublicID:       newPublicID("msg"),
		ConversationID: conv.ID,
		Role:           conversation.RoleUser,
		Content:        content,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// GenerateAssistantMessage asks the provider for a reply to the current
// transcript and appends it.
func (s *ServiceImpl) GenerateAssistantMessage(ctx context.Context, conversationPublicID string) (*conversation.Message, error) {
	conv, err := s.conversations.FindByPublicID(ctx, conversationPublicID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(conv.ID)
	defer unlock()

	transcript, err := s.messages.ListByConversationID(ctx, conv.ID)
	if err != nil {
		return nil, err
	}

	return s.generateReply(ctx, conv.ID, toChatMessages(transcript))
}

// EditAndRegenerate replaces a user message's content in place, discards the
// stale assistant reply that immediately follows it (when one exists), and
// appends exactly one regenerated reply. The content update stays committed
// even when generation fails; the caller may retry safely.
func (s *ServiceImpl) EditAndRegenerate(ctx context.Context, messagePublicID string, newContent string) (*EditResult, error) {
	content := strings.TrimSpace(newContent)
	if content == "" {
		return nil, emptyContentError(ctx)
	}

	target, err := s.messages.FindByPublicID(ctx, messagePublicID)
	if err != nil {
		return nil, err
	}
	if target.Role != conversation.RoleUser {
		return nil, platformerrors.NewErrorWithContext(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("user message not found: %s", messagePublicID),
			nil,
			"chat-edit-not-user-message",
			map[string]any{"message_id": messagePublicID},
		)
	}

	unlock := s.locks.Lock(target.ConversationID)
	defer unlock()

	ctx, span := observability.StartEditSpan(ctx, messagePublicID)
	defer span.End()

	conv, err := s.conversations.FindByID(ctx, target.ConversationID)
	if err != nil {
		return nil, err
	}

	transcript, err := s.messages.ListByConversationID(ctx, conv.ID)
	if err != nil {
		return nil, err
	}

	idx := indexOf(transcript, target.ID)
	if idx < 0 {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("message not found in conversation: %s", messagePublicID),
			nil,
			"chat-edit-message-vanished",
		)
	}

	// A user message can be trailed by at most one assistant reply. Two or
	// more consecutive replies mean the transcript has drifted; refuse to
	// guess which ones are stale.
	if idx+2 < len(transcript) &&
		transcript[idx+1].Role == conversation.RoleAssistant &&
		transcript[idx+2].Role == conversation.RoleAssistant {
		return nil, platformerrors.NewErrorWithContext(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeConflict,
			"conversation transcript is inconsistent: consecutive assistant replies",
			nil,
			"chat-edit-drifted-transcript",
			map[string]any{"conversation_id": conv.PublicID},
		)
	}

	updated, err := s.messages.UpdateContent(ctx, target.ID, content)
	if err != nil {
		return nil, err
	}

	var staleSequence int
	if idx+1 < len(transcript) && transcript[idx+1].Role == conversation.RoleAssistant {
		stale := transcript[idx+1]
		if _, err := s.messages.Delete(ctx, stale.ID); err != nil {
			return nil, err
		}
		staleSequence = stale.Sequence
		s.log.Debug().
			Str("conversation_id", conv.PublicID).
			Str("stale_message_id", stale.PublicID).
			Msg("stale assistant reply discarded")
	}

	prefix := make([]llm.ChatMessage, 0, idx+1)
	for _, m := range transcript[:idx+1] {
		prefix = append(prefix, llm.ChatMessage{Role: string(m.Role), Content: m.Content})
	}
	prefix[idx].Content = content

	assistant, err := s.regenerate(ctx, conv.ID, prefix, staleSequence)
	if err != nil {
		// The edit is already durable; only the reply is missing.
		metrics.RecordMessageEdit("generation_failed")
		return nil, err
	}

	metrics.RecordMessageEdit("ok")
	return &EditResult{Message: updated, Assistant: assistant}, nil
}

// DeleteMessage removes a single message. Missing ids report false rather
// than an error.
func (s *ServiceImpl) DeleteMessage(ctx context.Context, messagePublicID string) (bool, error) {
	msg, err := s.messages.FindByPublicID(ctx, messagePublicID)
	if err != nil {
		if platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
			return false, nil
		}
		return false, err
	}

	unlock := s.locks.Lock(msg.ConversationID)
	defer unlock()

	return s.messages.Delete(ctx, msg.ID)
}

// GetConversationForMessage resolves the conversation owning a message, for
// ownership checks at the HTTP boundary.
func (s *ServiceImpl) GetConversationForMessage(ctx context.Context, messagePublicID string) (*conversation.Conversation, error) {
	msg, err := s.messages.FindByPublicID(ctx, messagePublicID)
	if err != nil {
		return nil, err
	}
	return s.conversations.FindByID(ctx, msg.ConversationID)
}

// regenerate calls the provider and persists the reply. Once the edit is
// committed the work must not be abandoned on client disconnect, so both the
// provider call and the insert run detached from the request's cancellation.
func (s *ServiceImpl) regenerate(ctx context.Context, conversationID uint, prefix []llm.ChatMessage, sequence int) (*conversation.Message, error) {
	genCtx := context.WithoutCancel(ctx)

	genCtx, span := observability.StartCompletionSpan(genCtx, len(prefix))
	defer span.End()

	reply, err := s.provider.GenerateReply(genCtx, prefix)
	if err != nil {
		observability.RecordError(span, err)
		if platformerrors.GetPlatformError(err) != nil {
			return nil, err
		}
		return nil, platformerrors.NewError(
			genCtx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeGeneration,
			"assistant reply generation failed",
			err,
			"chat-generation-failed",
		)
	}

	assistant := &conversation.Message{
		PublicID:       newPublicID("msg"),
		ConversationID: conversationID,
		Role:           conversation.RoleAssistant,
		Content:        reply,
		Sequence:       sequence,
	}
	if err := s.messages.Create(genCtx, assistant); err != nil {
		return nil, err
	}
	return assistant, nil
}

func (s *ServiceImpl) generateReply(ctx context.Context, conversationID uint, transcript []llm.ChatMessage) (*conversation.Message, error) {
	return s.regenerate(ctx, conversationID, transcript, 0)
}

func toChatMessages(messages []conversation.Message) []llm.ChatMessage {
	out := make([]llm.ChatMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, llm.ChatMessage{Role: string(m.Role), Content: m.Content})
	}
	return out
}

func indexOf(messages []conversation.Message, id uint) int {
	for i, m := range messages {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func emptyContentError(ctx context.Context) *platformerrors.PlatformError {
	return platformerrors.NewError(
		ctx,
		platformerrors.LayerDomain,
		platformerrors.ErrorTypeValidation,
		"message content must not be empty",
		nil,
		"chat-empty-content",
	)
}

func newPublicID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.NewString())
}
