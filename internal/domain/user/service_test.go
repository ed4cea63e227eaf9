package user_test

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"chat-server/internal/domain/user"
	"chat-server/internal/utils/platformerrors"
)

// MockRepository is a mock implementation of user.Repository.
type MockRepository struct {
	CreateFunc         func(ctx context.Context, u *user.User) error
	FindByPublicIDFunc func(ctx context.Context, publicID string) (*user.User, error)
	FindByEmailFunc    func(ctx context.Context, email string) (*user.User, error)
	FindByUsernameFunc func(ctx context.Context, username string) (*user.User, error)
	UpdateFunc         func(ctx context.Context, u *user.User) error
	DeleteFunc         func(ctx context.Context, id uint) (bool, error)
}

func (m *MockRepository) Create(ctx context.Context, u *user.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, u)
	}
	return nil
}

func (m *MockRepository) FindByPublicID(ctx context.Context, publicID string) (*user.User, error) {
	if m.FindByPublicIDFunc != nil {
		return m.FindByPublicIDFunc(ctx, publicID)
	}
	return nil, notFoundErr()
}

func (m *MockRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, notFoundErr()
}

func (m *MockRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	if m.FindByUsernameFunc != nil {
		return m.FindByUsernameFunc(ctx, username)
	}
	return nil, notFoundErr()
}

func (m *MockRepository) Update(ctx context.Context, u *user.User) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, u)
	}
	return nil
}

func (m *MockRepository) Delete(ctx context.Context, id uint) (bool, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return false, nil
}

func notFoundErr() error {
	return platformerrors.NewError(context.Background(), platformerrors.LayerRepository,
		platformerrors.ErrorTypeNotFound, "user not found", nil, "user-not-found")
}

func TestRegister_HashesPasswordAndNormalizesEmail(t *testing.T) {
	var created *user.User
	repo := &MockRepository{
		CreateFunc: func(ctx context.Context, u *user.User) error {
			created = u
			return nil
		},
	}
	svc := user.NewService(repo, zerolog.Nop())

	account, err := svc.Register(context.Background(), user.RegisterParams{
		Username: " alice ",
		Email:    " Alice@Example.COM ",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if account.Email != "alice@example.com" {
		t.Errorf("email = %q, want normalized lowercase", account.Email)
	}
	if account.Username != "alice" {
		t.Errorf("username = %q, want trimmed", account.Username)
	}
	if !strings.HasPrefix(account.PublicID, "user_") {
		t.Errorf("public id = %q, want user_ prefix", account.PublicID)
	}
	if created == nil {
		t.Fatal("account not persisted")
	}
	if created.PasswordHash == "correct horse battery" {
		t.Fatal("password stored in plaintext")
	}
	if bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("correct horse battery")) != nil {
		t.Error("stored hash does not verify the original password")
	}
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	repo := &MockRepository{
		FindByEmailFunc: func(ctx context.Context, email string) (*user.User, error) {
			return &user.User{PublicID: "user_existing", Email: email}, nil
		},
	}
	svc := user.NewService(repo, zerolog.Nop())

	_, err := svc.Register(context.Background(), user.RegisterParams{
		Username: "bob",
		Email:    "taken@example.com",
		Password: "some password",
	})
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeConflict) {
		t.Fatalf("err = %v, want conflict error", err)
	}
}

func TestRegister_MissingFieldsRejected(t *testing.T) {
	svc := user.NewService(&MockRepository{}, zerolog.Nop())

	_, err := svc.Register(context.Background(), user.RegisterParams{Username: "alice"})
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestAuthenticate_WrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("right password"), bcrypt.DefaultCost)
	repo := &MockRepository{
		FindByEmailFunc: func(ctx context.Context, email string) (*user.User, error) {
			if email == "known@example.com" {
				return &user.User{PublicID: "user_1", Email: email, PasswordHash: string(hash)}, nil
			}
			return nil, notFoundErr()
		},
	}
	svc := user.NewService(repo, zerolog.Nop())

	_, wrongPass := svc.Authenticate(context.Background(), "known@example.com", "wrong password")
	_, unknownEmail := svc.Authenticate(context.Background(), "nobody@example.com", "whatever")

	for name, err := range map[string]error{"wrong password": wrongPass, "unknown email": unknownEmail} {
		if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeUnauthorized) {
			t.Errorf("%s: err = %v, want unauthorized", name, err)
		}
	}
	if wrongPass.Error() != unknownEmail.Error() {
		t.Error("credential failures must be indistinguishable")
	}
}

func TestAuthenticate_Succeeds(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("right password"), bcrypt.DefaultCost)
	repo := &MockRepository{
		FindByEmailFunc: func(ctx context.Context, email string) (*user.User, error) {
			return &user.User{PublicID: "user_1", Email: email, PasswordHash: string(hash)}, nil
		},
	}
	svc := user.NewService(repo, zerolog.Nop())

	account, err := svc.Authenticate(context.Background(), "Known@Example.com", "right password")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if account.PublicID != "user_1" {
		t.Errorf("account id = %q", account.PublicID)
	}
}

func TestDelete_MissingAccountReportsFalse(t *testing.T) {
	svc := user.NewService(&MockRepository{}, zerolog.Nop())

	deleted, err := svc.Delete(context.Background(), "user_missing")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted {
		t.Error("deleted = true for unknown account")
	}
}
