package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/halcyonchat/halcyon/internal/models"
)

// ConversationView is a conversation row plus client-only display state.
type ConversationView struct {
	models.Conversation
	TitleGenerating bool `json:"isTitleGenerating,omitempty"`
}

// MessageView is a message row plus client-only display state.
type MessageView struct {
	models.Message
	Generating bool `json:"isGenerating,omitempty"`
}

type Config struct {
	BaseURL string
	Token   string
	UserID  string

	HTTPClient *http.Client
	Logger     *logrus.Logger
	// ChatTimeout bounds a whole streaming chat turn. Defaults to 60s.
	ChatTimeout time.Duration
}

// Client is the data layer in front of the chat API: cached reads,
// optimistic writes, and the streaming chat turn.
type Client struct {
	baseURL     string
	token       string
	userID      string
	http        *http.Client
	log         *logrus.Logger
	cache       *QueryCache
	chatTimeout time.Duration
}

func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("client: BaseURL is required")
	}
	if cfg.UserID == "" {
		return nil, fmt.Errorf("client: UserID is required")
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.New()
	}
	timeout := cfg.ChatTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		token:       cfg.Token,
		userID:      cfg.UserID,
		http:        hc,
		log:         log,
		cache:       NewQueryCache(),
		chatTimeout: timeout,
	}, nil
}

// Close releases the cache handle. The client must not be used after.
func (c *Client) Close() { c.cache.Close() }

type apiErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var e apiErrorBody
		_ = json.NewDecoder(resp.Body).Decode(&e)
		msg := e.Message
		if msg == "" {
			msg = e.Error
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, msg)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// ListConversations is a cached read, revalidated only when the cache has
// no entry for the caller.
func (c *Client) ListConversations(ctx context.Context) ([]ConversationView, error) {
	key := conversationsKey(c.userID)
	if rows, ok := cacheGet[[]ConversationView](c.cache, key); ok {
		return rows, nil
	}

	var rows []models.Conversation
	if err := c.do(ctx, http.MethodGet, "/api/conversations", nil, &rows); err != nil {
		return nil, err
	}

	views := make([]ConversationView, 0, len(rows))
	for _, r := range rows {
		views = append(views, ConversationView{Conversation: r})
	}
	c.cache.Set(key, views)
	return views, nil
}

func (c *Client) GetConversation(ctx context.Context, id string) (*ConversationView, error) {
	key := conversationKey(id, c.userID)
	if v, ok := cacheGet[ConversationView](c.cache, key); ok {
		return &v, nil
	}

	var row models.Conversation
	if err := c.do(ctx, http.MethodGet, "/api/conversations/"+id, nil, &row); err != nil {
		return nil, err
	}

	view := ConversationView{Conversation: row}
	c.cache.Set(key, view)
	return &view, nil
}

func (c *Client) ListMessages(ctx context.Context, conversationID string) ([]MessageView, error) {
	key := messagesKey(conversationID, c.userID)
	if rows, ok := cacheGet[[]MessageView](c.cache, key); ok {
		return rows, nil
	}

	var rows []models.Message
	if err := c.do(ctx, http.MethodGet, "/api/conversations/"+conversationID+"/messages", nil, &rows); err != nil {
		return nil, err
	}

	views := make([]MessageView, 0, len(rows))
	for _, r := range rows {
		views = append(views, MessageView{Message: r})
	}
	c.cache.Set(key, views)
	return views, nil
}

// SaveMessage upserts the message into the local cache before the network
// call resolves; a failed call rolls the cache back.
func (c *Client) SaveMessage(ctx context.Context, msg MessageView) (*models.Message, error) {
	msg.UserID = c.userID
	key := messagesKey(msg.ConversationID, c.userID)

	var saved models.Message
	err := runOptimistic(c.cache,
		[]string{key},
		func() {
			c.cache.Update(key, func(old any) any {
				rows, _ := old.([]MessageView)
				for i := range rows {
					if rows[i].ID == msg.ID {
						out := make([]MessageView, len(rows))
						copy(out, rows)
						out[i] = msg
						return out
					}
				}
				return append(append([]MessageView(nil), rows...), msg)
			})
		},
		func() error {
			return c.do(ctx, http.MethodPost, "/api/messages", map[string]any{
				"conversationId": msg.ConversationID,
				"content":        msg.Content,
				"sender":         msg.Sender,
			}, &saved)
		},
	)
	if err != nil {
		return nil, err
	}

	// reconcile with server truth: the server assigns id and timestamp
	c.cache.Update(key, func(old any) any {
		rows, _ := old.([]MessageView)
		out := make([]MessageView, len(rows))
		copy(out, rows)
		for i := range out {
			if out[i].ID == msg.ID {
				out[i] = MessageView{Message: saved}
			}
		}
		return out
	})
	return &saved, nil
}

// TouchConversation bumps the conversation's updated_at and drops stale
// cached reads.
func (c *Client) TouchConversation(ctx context.Context, conversationID string) error {
	if err := c.do(ctx, http.MethodPut, "/api/conversations/"+conversationID, map[string]any{}, nil); err != nil {
		return err
	}
	c.cache.Invalidate(conversationsKey(c.userID), conversationKey(conversationID, c.userID))
	return nil
}
