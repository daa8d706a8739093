// Package assistant produces assistant replies for a space's chat history.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	genai "google.golang.org/genai"

	"spacedesk/internal/space"
)

const DefaultModel = "gemini-2.0-flash"

const maxAttempts = 3

const systemPrompt = "You are the assistant of a widget workspace. Answer briefly and concretely."

var ErrEmptyReply = errors.New("assistant: empty reply from model")

// Responder answers the last user message of a chat history.
type Responder interface {
	Reply(ctx context.Context, history []space.ChatMessage) (string, error)
}

type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiResponder is a thin wrapper around the official genai client.
type GeminiResponder struct {
	models generator
	model  string
	logger *zap.Logger
	// backoff returns the wait before retry attempt n (0-based).
	backoff func(attempt int) time.Duration
}

func NewGeminiResponder(ctx context.Context, apiKey, model string, logger *zap.Logger) (*GeminiResponder, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}
	return newGeminiResponder(cli.Models, model, logger), nil
}

func newGeminiResponder(models generator, model string, logger *zap.Logger) *GeminiResponder {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeminiResponder{
		models: models,
		model:  model,
		logger: logger,
		backoff: func(attempt int) time.Duration {
			return time.Duration(300*(1<<attempt)) * time.Millisecond
		},
	}
}

func (g *GeminiResponder) Name() string { return "Gemini:" + g.model }

func (g *GeminiResponder) Reply(ctx context.Context, history []space.ChatMessage) (string, error) {
	contents := toContents(history)
	if len(contents) == 0 {
		return "", fmt.Errorf("chat history is required")
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err := g.models.GenerateContent(ctx, g.model, contents, cfg)
		if err == nil {
			if txt := firstText(resp); txt != "" {
				return txt, nil
			}
			err = ErrEmptyReply
		}
		lastErr = err
		g.logger.Warn("assistant request failed",
			zap.String("model", g.model),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
		if attempt == maxAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(g.backoff(attempt)):
		}
	}
	return "", lastErr
}

func toContents(history []space.ChatMessage) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		role := "user"
		if m.Role == space.RoleAssistant {
			role = "model"
		}
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	return out
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range c.Content.Parts {
		if p != nil {
			b.WriteString(p.Text)
		}
	}
	return strings.TrimSpace(b.String())
}
