package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyonchat/halcyon/internal/api/handlers"
	"github.com/halcyonchat/halcyon/internal/models"
	"github.com/halcyonchat/halcyon/internal/utils"
)

func newConversationRouter(svc *mockConversationService, userID string) *gin.Engine {
	h := handlers.NewConversationHandler(svc)
	r := gin.New()
	g := r.Group("/api", asUser(userID))
	g.GET("/conversations", h.List)
	g.POST("/conversations", h.Create)
	g.GET("/conversations/:conversation_id", h.Get)
	g.PUT("/conversations/:conversation_id", h.Update)
	return r
}

func TestConversationListHandler(t *testing.T) {
	svc := &mockConversationService{
		ListFn: func(_ context.Context, userID string) ([]models.Conversation, error) {
			assert.Equal(t, "alice", userID)
			return []models.Conversation{
				{ID: "c2", UserID: userID, Title: "Newer"},
				{ID: "c1", UserID: userID, Title: "Older"},
			}, nil
		},
	}
	r := newConversationRouter(svc, "alice")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/conversations", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var rows []models.Conversation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "c2", rows[0].ID)
}

func TestConversationCreateHandler(t *testing.T) {
	t.Run("missing fields rejected", func(t *testing.T) {
		r := newConversationRouter(&mockConversationService{}, "alice")

		req := httptest.NewRequest(http.MethodPost, "/api/conversations", strings.NewReader(`{"id":"c1"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "ID and title are required")
	})

	t.Run("created", func(t *testing.T) {
		svc := &mockConversationService{
			CreateFn: func(_ context.Context, userID, id, title string) (*models.Conversation, error) {
				return &models.Conversation{ID: id, UserID: userID, Title: title}, nil
			},
		}
		r := newConversationRouter(svc, "alice")

		req := httptest.NewRequest(http.MethodPost, "/api/conversations",
			strings.NewReader(`{"id":"c1","title":"New Chat"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		var conv models.Conversation
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &conv))
		assert.Equal(t, "c1", conv.ID)
		assert.Equal(t, "New Chat", conv.Title)
	})
}

func TestConversationGetHandler(t *testing.T) {
	svc := &mockConversationService{
		GetFn: func(_ context.Context, userID, id string) (*models.Conversation, error) {
			if userID == "alice" && id == "c1" {
				return &models.Conversation{ID: "c1", UserID: "alice", Title: "Trip"}, nil
			}
			return nil, utils.E(utils.CodeNotFound, "ConversationService.Get", "conversation not found", nil)
		},
	}

	t.Run("owner sees the conversation", func(t *testing.T) {
		r := newConversationRouter(svc, "alice")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/conversations/c1", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("foreign reader gets 404", func(t *testing.T) {
		r := newConversationRouter(svc, "mallory")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/conversations/c1", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestConversationUpdateHandler(t *testing.T) {
	t.Run("rename", func(t *testing.T) {
		var gotTitle *string
		svc := &mockConversationService{
			UpdateFn: func(_ context.Context, userID, id string, title *string) error {
				assert.Equal(t, "alice", userID)
				assert.Equal(t, "c1", id)
				gotTitle = title
				return nil
			},
		}
		r := newConversationRouter(svc, "alice")

		req := httptest.NewRequest(http.MethodPut, "/api/conversations/c1",
			strings.NewReader(`{"title":"Road Trip"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, gotTitle)
		assert.Equal(t, "Road Trip", *gotTitle)
		assert.Contains(t, w.Body.String(), "Conversation updated successfully")
	})

	t.Run("empty body only touches", func(t *testing.T) {
		var gotTitle *string
		called := false
		svc := &mockConversationService{
			UpdateFn: func(_ context.Context, _, _ string, title *string) error {
				called = true
				gotTitle = title
				return nil
			},
		}
		r := newConversationRouter(svc, "alice")

		req := httptest.NewRequest(http.MethodPut, "/api/conversations/c1", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, called)
		assert.Nil(t, gotTitle)
	})

	t.Run("foreign update gets 403", func(t *testing.T) {
		svc := &mockConversationService{
			UpdateFn: func(_ context.Context, _, _ string, _ *string) error {
				return utils.E(utils.CodeForbidden, "ConversationService.Update", "unauthorized to update this conversation", nil)
			},
		}
		r := newConversationRouter(svc, "mallory")

		req := httptest.NewRequest(http.MethodPut, "/api/conversations/c1",
			strings.NewReader(`{"title":"hijacked"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestConversationHandlerWithoutSession(t *testing.T) {
	h := handlers.NewConversationHandler(&mockConversationService{})
	r := gin.New()
	r.GET("/api/conversations", h.List)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/conversations", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
