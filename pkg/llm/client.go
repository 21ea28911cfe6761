// Package llm wraps the external chat-completions API used to turn raw
// assessment answers into a structured learner profile.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/umojalearning/umoja-backend/config"
)

var (
	ErrMissingAPIKey = errors.New("llm api key is not configured")
	ErrEmptyReply    = errors.New("llm returned no choices")
)

const defaultModel = "gpt-4o"

// Completer is the surface the analysis service depends on; tests substitute
// a fake that counts calls.
type Completer interface {
	// CompleteJSON sends a system + user prompt pair and asks the model for a
	// single JSON object reply, returning the raw message content.
	CompleteJSON(ctx context.Context, system, user string) (string, error)
}

// Client is the production Completer backed by the OpenAI API.
type Client struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewFromCentral creates a Client from central config.
// Returns ErrMissingAPIKey when no credential is configured; callers surface
// this as a configuration error, never as a silent default.
func NewFromCentral(cfg config.LLMConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		client:  openai.NewClient(cfg.APIKey),
		model:   model,
		timeout: timeout,
	}, nil
}

func (c *Client) CompleteJSON(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyReply
	}
	return resp.Choices[0].Message.Content, nil
}
