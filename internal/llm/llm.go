// Package llm generates assistant replies from retrieved conversation
// context.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/rcliao/habit-agent/internal/model"
)

// Request carries everything needed to produce one reply.
type Request struct {
	System  string
	Context []model.Message // prior turns, oldest first
	Input   string          // the current user utterance
}

// Generator produces a reply for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// DefaultSystem is the assistant persona used when config does not
// override it.
const DefaultSystem = "You are a friendly habit-tracking assistant. " +
	"You help the user log workouts and meals, answer questions about " +
	"their recent activity using the conversation context provided, and " +
	"keep replies short and encouraging."

// Anthropic generates replies with the Claude Messages API.
type Anthropic struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropic creates a generator. The API key comes from the caller,
// typically read from ANTHROPIC_API_KEY.
func NewAnthropic(apiKey, modelName string, maxTokens int64) *Anthropic {
	if modelName == "" {
		modelName = "claude-3-5-haiku-latest"
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Anthropic{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     modelName,
		maxTokens: maxTokens,
	}
}

func (a *Anthropic) Generate(ctx context.Context, req Request) (string, error) {
	system := req.System
	if system == "" {
		system = DefaultSystem
	}

	msgs := make([]anthropic.MessageParam, 0, len(req.Context)+1)
	for _, m := range req.Context {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == model.RoleAssistant {
			msgs = append(msgs, anthropic.NewAssistantMessage(block))
		} else {
			msgs = append(msgs, anthropic.NewUserMessage(block))
		}
	}
	msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(req.Input)))

	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		Messages:  msgs,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude API error: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}
