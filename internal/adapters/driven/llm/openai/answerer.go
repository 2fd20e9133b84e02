// Package openai provides an answer-generation adapter using the OpenAI API.
package openai

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"

	"github.com/oswaldlabs/sitechat/internal/core/domain"
	"github.com/oswaldlabs/sitechat/internal/core/ports/driven"
)

// Ensure Answerer implements the interface.
var _ driven.Answerer = (*Answerer)(nil)

// Default configuration values.
const (
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 30 * time.Second
	MaxAnswerChars = 2000
)

// systemPrompt frames the assistant as the site's own guide. The retrieved
// passages are the only ground truth it may answer from.
const systemPrompt = `You are the assistant for a personal website. Answer the visitor's
question using ONLY the site excerpts provided. If the excerpts do not contain the
answer, say you don't know and suggest where on the site to look. Keep answers short.`

// Config holds configuration for the OpenAI answerer.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL overrides the API base URL for compatible providers. Optional.
	BaseURL string

	// Model is the chat model to use (default: gpt-4o-mini).
	Model string

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration
}

// Answerer generates grounded answers from retrieved site content.
type Answerer struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewAnswerer creates a new OpenAI answerer.
func NewAnswerer(cfg Config) (*Answerer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Answerer{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}, nil
}

// Answer produces a short answer to the question grounded in the given sources.
func (a *Answerer) Answer(ctx context.Context, question string, sources []domain.SearchResult) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(question, sources)},
		},
		MaxTokens:   MaxAnswerChars / 4,
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrAnswererUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no response choices returned", domain.ErrAnswererUnavailable)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// buildPrompt assembles the user message: the question followed by the
// retrieved excerpts in rank order.
func buildPrompt(question string, sources []domain.SearchResult) string {
	var b strings.Builder
	b.WriteString("Question: ")
	b.WriteString(question)
	b.WriteString("\n\nSite excerpts:\n")
	if len(sources) == 0 {
		b.WriteString("(none found)\n")
	}
	for i, src := range sources {
		fmt.Fprintf(&b, "%d. [%s](%s)\n%s\n\n", i+1, src.Document.Title, src.Document.URL, excerpt(src.Document.Text))
	}
	return b.String()
}

// excerpt bounds how much of a document reaches the prompt. The cut backs
// up to a rune boundary so a multi-byte character is never split.
func excerpt(text string) string {
	const limit = 800
	if len(text) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "…"
}

// ModelName returns the name of the chat model being used.
func (a *Answerer) ModelName() string {
	return a.model
}
