package conversation

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	domain "chat-server/internal/domain/conversation"
	"chat-server/internal/infrastructure/database/entities"
	"chat-server/internal/utils/platformerrors"
)

// MessageRepository persists the messages of a conversation.
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository builds a message repository.
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts a message. A zero Sequence appends the message after the
// current tail of the conversation; the next sequence number is computed
// inside the insert transaction.
func (r *MessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if msg.Sequence == 0 {
			var next int
			if err := tx.Model(&entities.Message{}).
				Where("conversation_id = ?", msg.ConversationID).
				Select("COALESCE(MAX(sequence), 0) + 1").
				Scan(&next).Error; err != nil {
				return err
			}
			msg.Sequence = next
		}

		entity := entities.NewSchemaMessage(msg)
		if err := tx.Create(entity).Error; err != nil {
			return err
		}

		msg.ID = entity.ID
		msg.CreatedAt = entity.CreatedAt
		msg.UpdatedAt = entity.UpdatedAt
		return nil
	})
	if err != nil {
		return platformerrors.NewErrorWithContext(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create message",
			err,
			"message-create-error",
			map[string]any{"conversation_id": msg.ConversationID},
		)
	}
	return nil
}

// FindByPublicID looks a message up by its public ID.
func (r *MessageRepository) FindByPublicID(ctx context.Context, publicID string) (*domain.Message, error) {
	var entity entities.Message
	if err := r.db.WithContext(ctx).
		Where("public_id = ?", publicID).
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, messageNotFound(ctx, fmt.Sprintf("message not found: %s", publicID))
		}
		return nil, messageFetchError(ctx, err)
	}
	return entity.EtoD(), nil
}

// ListByConversationID returns the transcript in sequence order.
func (r *MessageRepository) ListByConversationID(ctx context.Context, conversationID uint) ([]domain.Message, error) {
	var rows []entities.Message
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("sequence ASC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, messageFetchError(ctx, err)
	}

	result := make([]domain.Message, len(rows))
	for i := range rows {
		result[i] = *rows[i].EtoD()
	}
	return result, nil
}

// SearchInConversation matches message content case-insensitively inside one
// conversation, preserving transcript order.
func (r *MessageRepository) SearchInConversation(ctx context.Context, conversationID uint, keyword string) ([]domain.Message, error) {
	var rows []entities.Message
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Where("content ILIKE ?", "%"+keyword+"%").
		Order("sequence ASC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, messageFetchError(ctx, err)
	}

	result := make([]domain.Message, len(rows))
	for i := range rows {
		result[i] = *rows[i].EtoD()
	}
	return result, nil
}

// UpdateContent rewrites the content of a message and returns the updated row.
func (r *MessageRepository) UpdateContent(ctx context.Context, id uint, content string) (*domain.Message, error) {
	res := r.db.WithContext(ctx).
		Model(&entities.Message{}).
		Where("id = ?", id).
		Update("content", content)
	if res.Error != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update message content",
			res.Error,
			"message-update-error",
		)
	}
	if res.RowsAffected == 0 {
		return nil, messageNotFound(ctx, fmt.Sprintf("message not found: %d", id))
	}

	var entity entities.Message
	if err := r.db.WithContext(ctx).First(&entity, id).Error; err != nil {
		return nil, messageFetchError(ctx, err)
	}
	return entity.EtoD(), nil
}

// Delete removes a message. It reports whether the row existed.
func (r *MessageRepository) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&entities.Message{}, id)
	if res.Error != nil {
		return false, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete message",
			res.Error,
			"message-delete-error",
		)
	}
	return res.RowsAffected > 0, nil
}

func messageNotFound(ctx context.Context, message string) *platformerrors.PlatformError {
	return platformerrors.NewError(
		ctx,
		platformerrors.LayerRepository,
		platformerrors.ErrorTypeNotFound,
		message,
		nil,
		"message-not-found",
	)
}

func messageFetchError(ctx context.Context, err error) *platformerrors.PlatformError {
	return platformerrors.NewError(
		ctx,
		platformerrors.LayerRepository,
		platformerrors.ErrorTypeDatabaseError,
		"failed to fetch messages",
		err,
		"message-fetch-error",
	)
}
