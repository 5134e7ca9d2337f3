package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/halcyonchat/halcyon/internal/models"
)

// TurnState tracks a streaming chat turn through its lifecycle.
type TurnState string

const (
	TurnIdle              TurnState = "idle"
	TurnAwaitingFirstByte TurnState = "awaiting_first_byte"
	TurnStreaming         TurnState = "streaming"
	TurnFinalizing        TurnState = "finalizing"
	TurnSettled           TurnState = "settled"
	TurnFailed            TurnState = "failed"
)

// ErrTurnTimeout reports that the client-side timeout aborted the turn —
// the only way a stream is ever cancelled.
var ErrTurnTimeout = errors.New("request timed out. Please try again")

// errorReplyContent replaces the pending message when a turn fails; the
// failure is persisted as the final value and surfaced to the user.
const errorReplyContent = "Sorry, I encountered an error. Please make sure your API key is set correctly in the environment variables."

// StreamChatTurn sends the history to the relay and folds the streamed
// reply into the pending message. onChunk, when non-nil, observes each raw
// chunk as it arrives. The returned state is always TurnSettled or
// TurnFailed.
func (c *Client) StreamChatTurn(ctx context.Context, conversationID string, history []MessageView, pendingMessageID string, onChunk func(chunk string)) (*models.Message, TurnState, error) {
	state := TurnIdle
	msgsKey := messagesKey(conversationID, c.userID)

	ctx, cancel := context.WithTimeout(ctx, c.chatTimeout)
	defer cancel()

	turns := make([]map[string]any, 0, len(history))
	for _, m := range history {
		turns = append(turns, map[string]any{
			"sender":  m.Sender,
			"content": m.Content,
		})
	}
	body, err := json.Marshal(map[string]any{"messages": turns})
	if err != nil {
		return nil, TurnFailed, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate-response", bytes.NewReader(body))
	if err != nil {
		return nil, TurnFailed, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	state = TurnAwaitingFirstByte

	var full bytes.Buffer
	err = func() error {
		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			var e apiErrorBody
			_ = json.NewDecoder(resp.Body).Decode(&e)
			msg := e.Message
			if msg == "" {
				msg = e.Error
			}
			if msg == "" {
				msg = fmt.Sprintf("request failed with status %d", resp.StatusCode)
			}
			return errors.New(msg)
		}

		state = TurnStreaming
		buf := make([]byte, 4096)
		for {
			n, err := resp.Body.Read(buf)
			if n > 0 {
				chunk := string(buf[:n])
				full.WriteString(chunk)
				if onChunk != nil {
					onChunk(chunk)
				}
				c.markPendingGenerating(msgsKey, pendingMessageID)
			}
			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					return ErrTurnTimeout
				}
				if errors.Is(err, io.EOF) {
					return nil
				}
				return err
			}
		}
	}()

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = ErrTurnTimeout
		}
		c.log.WithError(err).Error("chat turn failed")
		return c.failTurn(ctx, conversationID, pendingMessageID, err)
	}

	state = TurnFinalizing

	assistant := MessageView{Message: models.Message{
		ID:             pendingMessageID,
		ConversationID: conversationID,
		UserID:         c.userID,
		Content:        full.String(),
		Sender:         models.SenderAI,
		CreatedAt:      time.Now().UTC(),
	}}

	saved, err := c.SaveMessage(ctx, assistant)
	if err != nil {
		return c.failTurn(ctx, conversationID, pendingMessageID, err)
	}

	state = TurnSettled
	return saved, state, nil
}

// failTurn makes the failure terminal and visible: the fixed error string
// replaces the pending content and is persisted as the final value.
func (c *Client) failTurn(ctx context.Context, conversationID, pendingMessageID string, cause error) (*models.Message, TurnState, error) {
	msgsKey := messagesKey(conversationID, c.userID)
	c.cache.Update(msgsKey, func(old any) any {
		rows, _ := old.([]MessageView)
		out := make([]MessageView, len(rows))
		copy(out, rows)
		for i := range out {
			if out[i].ID == pendingMessageID {
				out[i].Content = errorReplyContent
				out[i].Generating = false
			}
		}
		return out
	})

	// persistence uses a fresh context: the turn's own may already be dead
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	errMsg := MessageView{Message: models.Message{
		ID:             pendingMessageID,
		ConversationID: conversationID,
		UserID:         c.userID,
		Content:        errorReplyContent,
		Sender:         models.SenderAI,
		CreatedAt:      time.Now().UTC(),
	}}
	if _, err := c.SaveMessage(persistCtx, errMsg); err != nil {
		c.log.WithError(err).Warn("failed to persist error reply")
	}

	return nil, TurnFailed, cause
}

// markPendingGenerating flags the pending message while chunks are still
// arriving; content is not persisted per-chunk.
func (c *Client) markPendingGenerating(msgsKey, pendingMessageID string) {
	c.cache.Update(msgsKey, func(old any) any {
		rows, _ := old.([]MessageView)
		out := make([]MessageView, len(rows))
		copy(out, rows)
		for i := range out {
			if out[i].ID == pendingMessageID {
				out[i].Generating = true
			}
		}
		return out
	})
}
