package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"chat-server/internal/domain/conversation"
	"chat-server/internal/interfaces/httpserver/handlers"
	"chat-server/internal/interfaces/httpserver/responses"
)

func conversationRouter(caller string, conversations *MockConversationService) *gin.Engine {
	handler := handlers.NewConversationHandler(conversations, zerolog.Nop())
	engine := newRouter(caller)
	engine.GET("/conversations/share/:shareId", handler.GetShared)
	group := engine.Group("/conversations")
	group.POST("", handler.Create)
	group.GET("", handler.List)
	group.GET("/search", handler.Search)
	group.GET("/:id", handler.Get)
	group.PUT("/:id", handler.Update)
	group.DELETE("/:id", handler.Delete)
	group.POST("/:id/share", handler.Share)
	group.DELETE("/:id/share", handler.Unshare)
	return engine
}

func TestConversationCreate_DefaultsTitle(t *testing.T) {
	conversations := &MockConversationService{
		CreateFunc: func(ctx context.Context, userID, title string) (*conversation.Conversation, error) {
			if userID != "user_1" {
				t.Errorf("userID = %q", userID)
			}
			if title != "" {
				t.Errorf("title = %q, want empty passthrough", title)
			}
			return &conversation.Conversation{PublicID: "conv_1", Title: conversation.DefaultTitle, UserID: userID}, nil
		},
	}
	engine := conversationRouter("user_1", conversations)

	recorder := perform(t, engine, http.MethodPost, "/conversations", nil)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
	}

	var body responses.ConversationResponse
	decodeBody(t, recorder, &body)
	if body.Title != conversation.DefaultTitle {
		t.Errorf("title = %q", body.Title)
	}
}

func TestConversationGet_OtherUsersReturns403(t *testing.T) {
	conversations := &MockConversationService{
		GetByPublicIDFunc: func(ctx context.Context, publicID string) (*conversation.Conversation, error) {
			return &conversation.Conversation{PublicID: publicID, UserID: "user_other"}, nil
		},
	}
	engine := conversationRouter("user_1", conversations)

	recorder := perform(t, engine, http.MethodGet, "/conversations/conv_1", nil)
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", recorder.Code)
	}
}

func TestConversationDelete_Returns200WithOutcome(t *testing.T) {
	deleted := false
	conversations := &MockConversationService{
		GetByPublicIDFunc: func(ctx context.Context, publicID string) (*conversation.Conversation, error) {
			return &conversation.Conversation{PublicID: publicID, UserID: "user_1"}, nil
		},
		DeleteFunc: func(ctx context.Context, publicID string) (bool, error) {
			deleted = true
			return true, nil
		},
	}
	engine := conversationRouter("user_1", conversations)

	recorder := perform(t, engine, http.MethodDelete, "/conversations/conv_1", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}
	if !deleted {
		t.Error("service delete was not called")
	}

	var body responses.DeletedResponse
	decodeBody(t, recorder, &body)
	if !body.Success || body.ID != "conv_1" {
		t.Errorf("body = %+v", body)
	}
}

func TestConversationDelete_MissingReportsFalse(t *testing.T) {
	engine := conversationRouter("user_1", &MockConversationService{})

	recorder := perform(t, engine, http.MethodDelete, "/conversations/conv_missing", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}

	var body responses.DeletedResponse
	decodeBody(t, recorder, &body)
	if body.Success {
		t.Error("expected success=false for a missing conversation")
	}
}

func TestConversationDelete_OtherUsersReturns403(t *testing.T) {
	conversations := &MockConversationService{
		GetByPublicIDFunc: func(ctx context.Context, publicID string) (*conversation.Conversation, error) {
			return &conversation.Conversation{PublicID: publicID, UserID: "user_other"}, nil
		},
		DeleteFunc: func(ctx context.Context, publicID string) (bool, error) {
			t.Error("delete must not run for another user's conversation")
			return false, nil
		},
	}
	engine := conversationRouter("user_1", conversations)

	recorder := perform(t, engine, http.MethodDelete, "/conversations/conv_1", nil)
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", recorder.Code)
	}
}

func TestConversationShare_ReturnsToken(t *testing.T) {
	conversations := &MockConversationService{
		GetByPublicIDFunc: func(ctx context.Context, publicID string) (*conversation.Conversation, error) {
			return &conversation.Conversation{PublicID: publicID, UserID: "user_1"}, nil
		},
		GenerateShareTokenFunc: func(ctx context.Context, publicID string) (string, error) {
			return "a1b2c3", nil
		},
	}
	engine := conversationRouter("user_1", conversations)

	recorder := perform(t, engine, http.MethodPost, "/conversations/conv_1/share", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}

	var body responses.ShareResponse
	decodeBody(t, recorder, &body)
	if body.ShareID != "a1b2c3" {
		t.Errorf("share_id = %q", body.ShareID)
	}
}

func TestConversationUnshare_Returns204(t *testing.T) {
	revoked := false
	conversations := &MockConversationService{
		GetByPublicIDFunc: func(ctx context.Context, publicID string) (*conversation.Conversation, error) {
			return &conversation.Conversation{PublicID: publicID, UserID: "user_1"}, nil
		},
		RevokeShareTokenFunc: func(ctx context.Context, publicID string) error {
			revoked = true
			return nil
		},
	}
	engine := conversationRouter("user_1", conversations)

	recorder := perform(t, engine, http.MethodDelete, "/conversations/conv_1/share", nil)
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", recorder.Code)
	}
	if !revoked {
		t.Error("revoke was not called")
	}
}

func TestConversationGetShared_PublicAccess(t *testing.T) {
	token := "a1b2c3"
	conversations := &MockConversationService{
		FindByShareTokenFunc: func(ctx context.Context, got string) (*conversation.Conversation, error) {
			if got != token {
				t.Errorf("token = %q", got)
			}
			return &conversation.Conversation{
				PublicID:   "conv_1",
				Title:      "Math",
				UserID:     "user_1",
				ShareToken: &token,
				Messages: []conversation.Message{
					{PublicID: "msg_1", Role: conversation.RoleUser, Content: "What is 2+2?", Sequence: 1},
				},
			}, nil
		},
	}
	// No caller identity: the share route is public.
	engine := conversationRouter("", conversations)

	recorder := perform(t, engine, http.MethodGet, "/conversations/share/"+token, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
	}

	var body responses.ConversationResponse
	decodeBody(t, recorder, &body)
	if len(body.Messages) != 1 {
		t.Errorf("messages = %d, want 1", len(body.Messages))
	}
}

func TestConversationGetShared_UnknownTokenReturns404(t *testing.T) {
	engine := conversationRouter("", &MockConversationService{})

	recorder := perform(t, engine, http.MethodGet, "/conversations/share/deadbeef", nil)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", recorder.Code)
	}
}

func TestConversationUpdate_BlankTitleRejected(t *testing.T) {
	conversations := &MockConversationService{
		GetByPublicIDFunc: func(ctx context.Context, publicID string) (*conversation.Conversation, error) {
			return &conversation.Conversation{PublicID: publicID, UserID: "user_1"}, nil
		},
		RenameFunc: func(ctx context.Context, publicID, title string) (*conversation.Conversation, error) {
			t.Error("rename must not run for a blank title")
			return nil, nil
		},
	}
	engine := conversationRouter("user_1", conversations)

	recorder := perform(t, engine, http.MethodPut, "/conversations/conv_1", gin.H{"title": ""})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}
}
