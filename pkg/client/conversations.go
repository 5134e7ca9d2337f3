package client

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/halcyonchat/halcyon/internal/models"
)

// NewConversation runs the conversation-creation saga: optimistically
// insert the conversation at the head of the cached list, create the row,
// save the caller's first message, then generate a title in the background
// and patch it in. A failure in the create/save steps rolls the optimistic
// insert back; the title step fails independently and only clears the
// generating flag.
func (c *Client) NewConversation(ctx context.Context, firstMessage string) (*ConversationView, error) {
	now := time.Now().UTC()
	conv := ConversationView{
		Conversation: models.Conversation{
			ID:        uuid.NewString(),
			UserID:    c.userID,
			Title:     models.DefaultConversationTitle,
			CreatedAt: now,
			UpdatedAt: now,
		},
		TitleGenerating: true,
	}

	listKey := conversationsKey(c.userID)
	msgsKey := messagesKey(conv.ID, c.userID)

	userMsg := MessageView{Message: models.Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		UserID:         c.userID,
		Content:        firstMessage,
		Sender:         models.SenderUser,
		CreatedAt:      now,
	}}

	err := runOptimistic(c.cache,
		[]string{listKey, msgsKey},
		func() {
			c.cache.Update(listKey, func(old any) any {
				rows, _ := old.([]ConversationView)
				return append([]ConversationView{conv}, rows...)
			})
			c.cache.Set(msgsKey, []MessageView{userMsg})
		},
		func() error {
			var created models.Conversation
			if err := c.do(ctx, http.MethodPost, "/api/conversations", map[string]any{
				"id":    conv.ID,
				"title": conv.Title,
			}, &created); err != nil {
				return err
			}

			var savedMsg models.Message
			return c.do(ctx, http.MethodPost, "/api/messages", map[string]any{
				"conversationId": conv.ID,
				"content":        firstMessage,
				"sender":         models.SenderUser,
			}, &savedMsg)
		},
	)
	if err != nil {
		return nil, err
	}

	go c.generateTitle(conv.ID, firstMessage)

	return &conv, nil
}

// generateTitle is the saga's asynchronous third step; it patches the
// cache piecemeal as the title request and the rename resolve.
func (c *Client) generateTitle(conversationID, firstMessage string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	listKey := conversationsKey(c.userID)
	convKey := conversationKey(conversationID, c.userID)

	var resp struct {
		Title string `json:"title"`
	}
	err := c.do(ctx, http.MethodPost, "/api/generate-title", map[string]any{
		"firstUserMessage": firstMessage,
	}, &resp)
	if err == nil {
		err = c.do(ctx, http.MethodPut, "/api/conversations/"+conversationID, map[string]any{
			"title": resp.Title,
		}, nil)
	}
	if err != nil {
		c.log.WithError(err).Warn("failed to generate conversation title")
	}

	patch := func(v *ConversationView) {
		if err == nil {
			v.Title = resp.Title
		}
		v.TitleGenerating = false
	}

	c.cache.Update(listKey, func(old any) any {
		rows, _ := old.([]ConversationView)
		out := make([]ConversationView, len(rows))
		copy(out, rows)
		for i := range out {
			if out[i].ID == conversationID {
				patch(&out[i])
			}
		}
		return out
	})
	c.cache.Update(convKey, func(old any) any {
		v, ok := old.(ConversationView)
		if !ok {
			return old
		}
		patch(&v)
		return v
	})
}
