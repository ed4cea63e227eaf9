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

// Repository persists conversation metadata.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a conversation repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the conversation record.
func (r *Repository) Create(ctx context.Context, conv *domain.Conversation) error {
	entity := entities.NewSchemaConversation(conv)

	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create conversation",
			err,
			"conversation-create-error",
		)
	}

	conv.ID = entity.ID
	conv.CreatedAt = entity.CreatedAt
	conv.UpdatedAt = entity.UpdatedAt
	return nil
}

// FindByID fetches a conversation with its transcript by internal ID.
func (r *Repository) FindByID(ctx context.Context, id uint) (*domain.Conversation, error) {
	var entity entities.Conversation
	if err := r.db.WithContext(ctx).
		Preload("Messages", orderBySequence).
		First(&entity, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(ctx, fmt.Sprintf("conversation not found: %d", id))
		}
		return nil, fetchError(ctx, err)
	}
	return entity.EtoD(), nil
}

// FindByPublicID fetches a conversation with its transcript by public ID.
func (r *Repository) FindByPublicID(ctx context.Context, publicID string) (*domain.Conversation, error) {
	var entity entities.Conversation
	if err := r.db.WithContext(ctx).
		Preload("Messages", orderBySequence).
		Where("public_id = ?", publicID).
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(ctx, fmt.Sprintf("conversation not found: %s", publicID))
		}
		return nil, fetchError(ctx, err)
	}
	return entity.EtoD(), nil
}

// FindByShareToken resolves a public share link. The error for a wrong token
// is the same as for a missing conversation.
func (r *Repository) FindByShareToken(ctx context.Context, token string) (*domain.Conversation, error) {
	var entity entities.Conversation
	if err := r.db.WithContext(ctx).
		Preload("Messages", orderBySequence).
		Where("share_token = ?", token).
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(ctx, "shared conversation not found")
		}
		return nil, fetchError(ctx, err)
	}
	return entity.EtoD(), nil
}

// ListByUserID returns the user's conversations, most recently updated first.
func (r *Repository) ListByUserID(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	var rows []entities.Conversation
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fetchError(ctx, err)
	}

	result := make([]*domain.Conversation, len(rows))
	for i := range rows {
		result[i] = rows[i].EtoD()
	}
	return result, nil
}

// SearchByTitle matches titles case-insensitively within one user's scope.
func (r *Repository) SearchByTitle(ctx context.Context, userID string, keyword string) ([]*domain.Conversation, error) {
	var rows []entities.Conversation
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("title ILIKE ?", "%"+keyword+"%").
		Order("updated_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fetchError(ctx, err)
	}

	result := make([]*domain.Conversation, len(rows))
	for i := range rows {
		result[i] = rows[i].EtoD()
	}
	return result, nil
}

// UpdateTitle renames the conversation.
func (r *Repository) UpdateTitle(ctx context.Context, id uint, title string) error {
	res := r.db.WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("id = ?", id).
		Update("title", title)
	if res.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update conversation title",
			res.Error,
			"conversation-update-title-error",
		)
	}
	if res.RowsAffected == 0 {
		return notFound(ctx, fmt.Sprintf("conversation not found: %d", id))
	}
	return nil
}

// SetShareToken stores or clears the share token. nil clears it.
func (r *Repository) SetShareToken(ctx context.Context, id uint, token *string) error {
	res := r.db.WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("id = ?", id).
		Update("share_token", token)
	if res.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update share token",
			res.Error,
			"conversation-set-share-token-error",
		)
	}
	if res.RowsAffected == 0 {
		return notFound(ctx, fmt.Sprintf("conversation not found: %d", id))
	}
	return nil
}

// DeleteCascade removes the conversation and its messages in one
// transaction. A failure on either statement rolls both back.
func (r *Repository) DeleteCascade(ctx context.Context, id uint) (bool, error) {
	var existed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", id).Delete(&entities.Message{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&entities.Conversation{}, id)
		if res.Error != nil {
			return res.Error
		}
		existed = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, platformerrors.NewErrorWithContext(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete conversation",
			err,
			"conversation-delete-cascade-error",
			map[string]any{"conversation_id": id},
		)
	}
	return existed, nil
}

func orderBySequence(db *gorm.DB) *gorm.DB {
	return db.Order("sequence ASC").Order("id ASC")
}

func notFound(ctx context.Context, message string) *platformerrors.PlatformError {
	return platformerrors.NewError(
		ctx,
		platformerrors.LayerRepository,
		platformerrors.ErrorTypeNotFound,
		message,
		nil,
		"conversation-not-found",
	)
}

func fetchError(ctx context.Context, err error) *platformerrors.PlatformError {
	return platformerrors.NewError(
		ctx,
		platformerrors.LayerRepository,
		platformerrors.ErrorTypeDatabaseError,
		"failed to fetch conversation",
		err,
		"conversation-fetch-error",
	)
}
