package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"chat-server/internal/utils/platformerrors"
)

// Service defines account operations.
type Service interface {
	Register(ctx context.Context, params RegisterParams) (*User, error)
	Authenticate(ctx context.Context, email, password string) (*User, error)
	GetByPublicID(ctx context.Context, publicID string) (*User, error)
	Update(ctx context.Context, publicID string, params UpdateParams) (*User, error)
	Delete(ctx context.Context, publicID string) (bool, error)
}

// ServiceImpl implements account management on top of the repository.
type ServiceImpl struct {
	users Repository
	log   zerolog.Logger
}

// NewService wires dependencies.
func NewService(users Repository, log zerolog.Logger) *ServiceImpl {
	return &ServiceImpl{
		users: users,
		log:   log.With().Str("component", "user-service").Logger(),
	}
}

// Register creates an account after checking email and username uniqueness.
func (s *ServiceImpl) Register(ctx context.Context, params RegisterParams) (*User, error) {
	username := strings.TrimSpace(params.Username)
	email := strings.ToLower(strings.TrimSpace(params.Email))

	if username == "" || email == "" || params.Password == "" {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			"username, email and password are required",
			nil,
			"user-register-missing-fields",
		)
	}

	if existing, err := s.users.FindByEmail(ctx, email); err == nil && existing != nil {
		return nil, duplicateError(ctx, "email already registered")
	}
	if existing, err := s.users.FindByUsername(ctx, username); err == nil && existing != nil {
		return nil, duplicateError(ctx, "username already taken")
	}

	hash, err := hashPassword(params.Password)
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal,
			"failed to hash password",
			err,
			"user-register-hash",
		)
	}

	account := &User{
		PublicID:     fmt.Sprintf("user_%s", uuid.NewString()),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, account); err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", account.PublicID).Msg("user registered")
	return account, nil
}

// Authenticate verifies credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *ServiceImpl) Authenticate(ctx context.Context, email, password string) (*User, error) {
	account, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil || account == nil {
		return nil, invalidCredentialsError(ctx)
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, invalidCredentialsError(ctx)
	}
	return account, nil
}

// GetByPublicID fetches an account.
func (s *ServiceImpl) GetByPublicID(ctx context.Context, publicID string) (*User, error) {
	return s.users.FindByPublicID(ctx, publicID)
}

// Update applies profile changes, re-hashing when the password changes.
func (s *ServiceImpl) Update(ctx context.Context, publicID string, params UpdateParams) (*User, error) {
	account, err := s.users.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	if params.Username != nil && strings.TrimSpace(*params.Username) != "" {
		account.Username = strings.TrimSpace(*params.Username)
	}
	if params.Email != nil && strings.TrimSpace(*params.Email) != "" {
		account.Email = strings.ToLower(strings.TrimSpace(*params.Email))
	}
	if params.Password != nil && *params.Password != "" {
		hash, err := hashPassword(*params.Password)
		if err != nil {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerDomain,
				platformerrors.ErrorTypeInternal,
				"failed to hash password",
				err,
				"user-update-hash",
			)
		}
		account.PasswordHash = hash
	}

	if err := s.users.Update(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Delete removes an account; false means no such account existed.
func (s *ServiceImpl) Delete(ctx context.Context, publicID string) (bool, error) {
	account, err := s.users.FindByPublicID(ctx, publicID)
	if err != nil {
		if platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
			return false, nil
		}
		return false, err
	}
	return s.users.Delete(ctx, account.ID)
}

func hashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func duplicateError(ctx context.Context, message string) *platformerrors.PlatformError {
	return platformerrors.NewError(
		ctx,
		platformerrors.LayerDomain,
		platformerrors.ErrorTypeConflict,
		message,
		nil,
		"user-duplicate-identity",
	)
}

func invalidCredentialsError(ctx context.Context) *platformerrors.PlatformError {
	return platformerrors.NewError(
		ctx,
		platformerrors.LayerDomain,
		platformerrors.ErrorTypeUnauthorized,
		"invalid email or password",
		nil,
		"user-invalid-credentials",
	)
}
