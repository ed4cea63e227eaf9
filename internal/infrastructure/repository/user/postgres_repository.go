package user

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	domain "chat-server/internal/domain/user"
	"chat-server/internal/infrastructure/database/entities"
	"chat-server/internal/utils/platformerrors"
)

// Repository persists user accounts.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a user repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the user record.
func (r *Repository) Create(ctx context.Context, u *domain.User) error {
	entity := entities.NewSchemaUser(u)

	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create user",
			err,
			"user-create-error",
		)
	}

	u.ID = entity.ID
	u.CreatedAt = entity.CreatedAt
	u.UpdatedAt = entity.UpdatedAt
	return nil
}

// FindByPublicID looks a user up by public ID.
func (r *Repository) FindByPublicID(ctx context.Context, publicID string) (*domain.User, error) {
	var entity entities.User
	if err := r.db.WithContext(ctx).
		Where("public_id = ?", publicID).
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, userNotFound(ctx, fmt.Sprintf("user not found: %s", publicID))
		}
		return nil, userFetchError(ctx, err)
	}
	return entity.EtoD(), nil
}

// FindByEmail looks a user up by email. Emails are stored lowercase.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var entity entities.User
	if err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, userNotFound(ctx, "user not found")
		}
		return nil, userFetchError(ctx, err)
	}
	return entity.EtoD(), nil
}

// FindByUsername looks a user up by username.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var entity entities.User
	if err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, userNotFound(ctx, "user not found")
		}
		return nil, userFetchError(ctx, err)
	}
	return entity.EtoD(), nil
}

// Update rewrites the mutable profile fields.
func (r *Repository) Update(ctx context.Context, u *domain.User) error {
	res := r.db.WithContext(ctx).
		Model(&entities.User{}).
		Where("id = ?", u.ID).
		Updates(map[string]any{
			"username":      u.Username,
			"email":         u.Email,
			"password_hash": u.PasswordHash,
		})
	if res.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update user",
			res.Error,
			"user-update-error",
		)
	}
	if res.RowsAffected == 0 {
		return userNotFound(ctx, fmt.Sprintf("user not found: %d", u.ID))
	}
	return nil
}

// Delete removes a user. It reports whether the row existed.
func (r *Repository) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&entities.User{}, id)
	if res.Error != nil {
		return false, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete user",
			res.Error,
			"user-delete-error",
		)
	}
	return res.RowsAffected > 0, nil
}

func userNotFound(ctx context.Context, message string) *platformerrors.PlatformError {
	return platformerrors.NewError(
		ctx,
		platformerrors.LayerRepository,
		platformerrors.ErrorTypeNotFound,
		message,
		nil,
		"user-not-found",
	)
}

func userFetchError(ctx context.Context, err error) *platformerrors.PlatformError {
	return platformerrors.NewError(
		ctx,
		platformerrors.LayerRepository,
		platformerrors.ErrorTypeDatabaseError,
		"failed to fetch user",
		err,
		"user-fetch-error",
	)
}
