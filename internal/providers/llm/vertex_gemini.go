package llm

import (
	"context"

	vertexgenai "cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/iterator"
)

type VertexGemini struct {
	client *vertexgenai.Client
	model  string
}

func NewVertexGemini(ctx context.Context, projectID, location, modelName string) (*VertexGemini, error) {
	c, err := vertexgenai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &VertexGemini{client: c, model: modelName}, nil
}

func (v *VertexGemini) Close() error { return v.client.Close() }

func (v *VertexGemini) StreamChat(ctx context.Context, msgs []Message, opts Options) (<-chan string, <-chan error) {
	out := make(chan string, 32)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)

		if len(msgs) == 0 {
			return
		}

		m := v.client.GenerativeModel(v.model)
		if opts.Temperature > 0 {
			m.SetTemperature(opts.Temperature)
		}
		if opts.MaxTokens > 0 {
			m.SetMaxOutputTokens(opts.MaxTokens)
		}

		// Gemini takes history and the final turn separately.
		cs := m.StartChat()
		for _, msg := range msgs[:len(msgs)-1] {
			role := "user"
			if msg.Role == RoleAssistant {
				role = "model"
			}
			cs.History = append(cs.History, &vertexgenai.Content{
				Role:  role,
				Parts: []vertexgenai.Part{vertexgenai.Text(msg.Content)},
			})
		}

		it := cs.SendMessageStream(ctx, vertexgenai.Text(msgs[len(msgs)-1].Content))
		for {
			resp, err := it.Next()
			if err == iterator.Done {
				return
			}
			if err != nil {
				errs <- err
				return
			}

			for _, cand := range resp.Candidates {
				if cand.Content == nil {
					continue
				}
				for _, part := range cand.Content.Parts {
					t, ok := part.(vertexgenai.Text)
					if !ok || string(t) == "" {
						continue
					}
					// the consumer may be gone; never block on a dead stream
					select {
					case out <- string(t):
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return out, errs
}
