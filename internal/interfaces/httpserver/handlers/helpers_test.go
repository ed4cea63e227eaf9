package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"chat-server/internal/domain/chat"
	"chat-server/internal/domain/conversation"
	"chat-server/internal/domain/user"
	"chat-server/internal/infrastructure/auth"
	"chat-server/internal/utils/platformerrors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newRouter builds a test engine that injects the given caller identity the
// way the auth middleware would. An empty caller leaves requests anonymous.
func newRouter(caller string) *gin.Engine {
	engine := gin.New()
	if caller != "" {
		engine.Use(func(c *gin.Context) {
			c.Set(auth.ContextUserIDKey, caller)
		})
	}
	return engine
}

func perform(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var payload *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		payload = bytes.NewBuffer(raw)
	} else {
		payload = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, payload)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)
	return recorder
}

func newAuthorizedRequest(t *testing.T, method, path, token string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func performRequest(engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("decode response %q: %v", recorder.Body.String(), err)
	}
}

func notFoundErr(code string) error {
	return platformerrors.NewError(
		context.Background(),
		platformerrors.LayerDomain,
		platformerrors.ErrorTypeNotFound,
		"not found",
		nil,
		code,
	)
}

// MockChatService implements chat.Service with overridable functions.
type MockChatService struct {
	ListByConversationFunc        func(ctx context.Context, conversationPublicID string) ([]conversation.Message, error)
	SearchInConversationFunc      func(ctx context.Context, conversationPublicID string, keyword string) ([]conversation.Message, error)
	CreateUserMessageFunc         func(ctx context.Context, conversationPublicID string, content string) (*conversation.Message, error)
	GenerateAssistantMessageFunc  func(ctx context.Context, conversationPublicID string) (*conversation.Message, error)
	EditAndRegenerateFunc         func(ctx context.Context, messagePublicID string, newContent string) (*chat.EditResult, error)
	DeleteMessageFunc             func(ctx context.Context, messagePublicID string) (bool, error)
	GetConversationForMessageFunc func(ctx context.Context, messagePublicID string) (*conversation.Conversation, error)
}

func (m *MockChatService) ListByConversation(ctx context.Context, id string) ([]conversation.Message, error) {
	if m.ListByConversationFunc != nil {
		return m.ListByConversationFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockChatService) SearchInConversation(ctx context.Context, id, keyword string) ([]conversation.Message, error) {
	if m.SearchInConversationFunc != nil {
		return m.SearchInConversationFunc(ctx, id, keyword)
	}
	return nil, nil
}

func (m *MockChatService) CreateUserMessage(ctx context.Context, id, content string) (*conversation.Message, error) {
	if m.CreateUserMessageFunc != nil {
		return m.CreateUserMessageFunc(ctx, id, content)
	}
	return nil, notFoundErr("conversation-not-found")
}

func (m *MockChatService) GenerateAssistantMessage(ctx context.Context, id string) (*conversation.Message, error) {
	if m.GenerateAssistantMessageFunc != nil {
		return m.GenerateAssistantMessageFunc(ctx, id)
	}
	return nil, notFoundErr("conversation-not-found")
}

func (m *MockChatService) EditAndRegenerate(ctx context.Context, id, content string) (*chat.EditResult, error) {
	if m.EditAndRegenerateFunc != nil {
		return m.EditAndRegenerateFunc(ctx, id, content)
	}
	return nil, notFoundErr("message-not-found")
}

func (m *MockChatService) DeleteMessage(ctx context.Context, id string) (bool, error) {
	if m.DeleteMessageFunc != nil {
		return m.DeleteMessageFunc(ctx, id)
	}
	return false, nil
}

func (m *MockChatService) GetConversationForMessage(ctx context.Context, id string) (*conversation.Conversation, error) {
	if m.GetConversationForMessageFunc != nil {
		return m.GetConversationForMessageFunc(ctx, id)
	}
	return nil, notFoundErr("message-not-found")
}

// MockConversationService implements conversation.Service with overridable
// functions.
type MockConversationService struct {
	CreateFunc             func(ctx context.Context, userID, title string) (*conversation.Conversation, error)
	GetByPublicIDFunc      func(ctx context.Context, publicID string) (*conversation.Conversation, error)
	ListByUserFunc         func(ctx context.Context, userID string) ([]*conversation.Conversation, error)
	SearchFunc             func(ctx context.Context, userID, keyword string) ([]*conversation.Conversation, error)
	RenameFunc             func(ctx context.Context, publicID, title string) (*conversation.Conversation, error)
	DeleteFunc             func(ctx context.Context, publicID string) (bool, error)
	GenerateShareTokenFunc func(ctx context.Context, publicID string) (string, error)
	RevokeShareTokenFunc   func(ctx context.Context, publicID string) error
	FindByShareTokenFunc   func(ctx context.Context, token string) (*conversation.Conversation, error)
}

func (m *MockConversationService) Create(ctx context.Context, userID, title string) (*conversation.Conversation, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userID, title)
	}
	return nil, notFoundErr("conversation-not-found")
}

func (m *MockConversationService) GetByPublicID(ctx context.Context, publicID string) (*conversation.Conversation, error) {
	if m.GetByPublicIDFunc != nil {
		return m.GetByPublicIDFunc(ctx, publicID)
	}
	return nil, notFoundErr("conversation-not-found")
}

func (m *MockConversationService) ListByUser(ctx context.Context, userID string) ([]*conversation.Conversation, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockConversationService) Search(ctx context.Context, userID, keyword string) ([]*conversation.Conversation, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, userID, keyword)
	}
	return nil, nil
}

func (m *MockConversationService) Rename(ctx context.Context, publicID, title string) (*conversation.Conversation, error) {
	if m.RenameFunc != nil {
		return m.RenameFunc(ctx, publicID, title)
	}
	return nil, notFoundErr("conversation-not-found")
}

func (m *MockConversationService) Delete(ctx context.Context, publicID string) (bool, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, publicID)
	}
	return false, nil
}

func (m *MockConversationService) GenerateShareToken(ctx context.Context, publicID string) (string, error) {
	if m.GenerateShareTokenFunc != nil {
		return m.GenerateShareTokenFunc(ctx, publicID)
	}
	return "", notFoundErr("conversation-not-found")
}

func (m *MockConversationService) RevokeShareToken(ctx context.Context, publicID string) error {
	if m.RevokeShareTokenFunc != nil {
		return m.RevokeShareTokenFunc(ctx, publicID)
	}
	return nil
}

func (m *MockConversationService) FindByShareToken(ctx context.Context, token string) (*conversation.Conversation, error) {
	if m.FindByShareTokenFunc != nil {
		return m.FindByShareTokenFunc(ctx, token)
	}
	return nil, notFoundErr("conversation-not-found")
}

// MockUserService implements user.Service with overridable functions.
type MockUserService struct {
	RegisterFunc      func(ctx context.Context, params user.RegisterParams) (*user.User, error)
	AuthenticateFunc  func(ctx context.Context, email, password string) (*user.User, error)
	GetByPublicIDFunc func(ctx context.Context, publicID string) (*user.User, error)
	UpdateFunc        func(ctx context.Context, publicID string, params user.UpdateParams) (*user.User, error)
	DeleteFunc        func(ctx context.Context, publicID string) (bool, error)
}

func (m *MockUserService) Register(ctx context.Context, params user.RegisterParams) (*user.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, params)
	}
	return nil, notFoundErr("user-not-found")
}

func (m *MockUserService) Authenticate(ctx context.Context, email, password string) (*user.User, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, email, password)
	}
	return nil, notFoundErr("user-not-found")
}

func (m *MockUserService) GetByPublicID(ctx context.Context, publicID string) (*user.User, error) {
	if m.GetByPublicIDFunc != nil {
		return m.GetByPublicIDFunc(ctx, publicID)
	}
	return nil, notFoundErr("user-not-found")
}

func (m *MockUserService) Update(ctx context.Context, publicID string, params user.UpdateParams) (*user.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, publicID, params)
	}
	return nil, notFoundErr("user-not-found")
}

func (m *MockUserService) Delete(ctx context.Context, publicID string) (bool, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, publicID)
	}
	return false, nil
}
