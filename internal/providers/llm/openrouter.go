package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouter streams chat completions from an OpenAI-compatible gateway
// over SSE.
type OpenRouter struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewOpenRouter(apiKey, baseURL string) *OpenRouter {
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}
	return &OpenRouter{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

func (p *OpenRouter) Close() error { return nil }

type chatCompletionRequest struct {
	Model       string                  `json:"model"`
	Messages    []chatCompletionMessage `json:"messages"`
	Temperature float32                 `json:"temperature"`
	MaxTokens   int32                   `json:"max_tokens"`
	Stream      bool                    `json:"stream"`
}

type chatCompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionDelta struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

func (p *OpenRouter) StreamChat(ctx context.Context, msgs []Message, opts Options) (<-chan string, <-chan error) {
	out := make(chan string, 32)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)

		req := chatCompletionRequest{
			Model:       opts.Model,
			Temperature: opts.Temperature,
			MaxTokens:   opts.MaxTokens,
			Stream:      true,
		}
		for _, m := range msgs {
			req.Messages = append(req.Messages, chatCompletionMessage{
				Role:    string(m.Role),
				Content: m.Content,
			})
		}

		body, err := json.Marshal(req)
		if err != nil {
			errs <- fmt.Errorf("marshal request: %w", err)
			return
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			errs <- fmt.Errorf("create request: %w", err)
			return
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Accept", "text/event-stream")
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

		resp, err := p.httpClient.Do(httpReq)
		if err != nil {
			errs <- fmt.Errorf("execute request: %w", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			errs <- fmt.Errorf("completion gateway error: %d %s", resp.StatusCode, string(b))
			return
		}

		reader := bufio.NewReader(resp.Body)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				if err == io.EOF {
					return
				}
				errs <- fmt.Errorf("read stream: %w", err)
				return
			}

			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, ":") {
				continue
			}
			if !strings.HasPrefix(line, "data: ") {
				continue
			}

			data := strings.TrimPrefix(line, "data: ")
			if data == "[DONE]" {
				return
			}

			var delta chatCompletionDelta
			if err := json.Unmarshal([]byte(data), &delta); err != nil {
				// skip malformed chunks
				continue
			}
			for _, c := range delta.Choices {
				if c.Delta.Content == "" {
					continue
				}
				// the consumer may be gone; never block on a dead stream
				select {
				case out <- c.Delta.Content:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, errs
}
