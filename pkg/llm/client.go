package llm

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pkg/errors"
)

const (
	// ClaudeAPIBaseURL is the Anthropic API base URL.
	ClaudeAPIBaseURL = "https://api.anthropic.com/"
	// ClaudeModel is the model to use.
	ClaudeModel = "claude-sonnet-4-20250514"
	// SummaryMaxTokens caps the length of a generated summary.
	SummaryMaxTokens = 200
)

// ErrEmptyResponse is returned when the API answers without any text.
var ErrEmptyResponse = errors.New("no text content in Claude response")

// Client represents a Claude API client.
type Client struct {
	model      string
	httpClient *http.Client
	api        anthropic.Client
}

// NewClient creates a new Claude API client.
func NewClient(apiKey, model string) (client *Client) {
	client = NewClientWithBaseURL(apiKey, model, ClaudeAPIBaseURL)
	return client
}

// NewClientWithBaseURL creates a client that talks to baseURL instead of the public API.
func NewClientWithBaseURL(apiKey, model, baseURL string) (client *Client) {
	if model == "" {
		model = ClaudeModel // Default to Sonnet 4
	}

	httpClient := &http.Client{
		Timeout: 120 * time.Second,
	}

	client = &Client{
		model:      model,
		httpClient: httpClient,
		api: anthropic.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(baseURL),
			option.WithHTTPClient(httpClient),
			// One round trip per request; callers decide about retries.
			option.WithMaxRetries(0),
		),
	}
	return client
}

// Model returns the model the client sends requests to.
func (c *Client) Model() (model string) {
	model = c.model
	return model
}

// Complete sends a single-turn prompt and returns the concatenated text of the reply.
func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int64) (responseText string, err error) {
	// Build request
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	// Send request
	var message *anthropic.Message
	message, err = c.api.Messages.New(ctx, params)
	if err != nil {
		err = errors.Wrap(err, "Claude API request failed")
		return responseText, err
	}

	// Extract text content
	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	responseText = sb.String()
	if responseText == "" {
		err = ErrEmptyResponse
		return responseText, err
	}

	return responseText, err
}

// GenerateSummary drafts a CV summary from the name, title and skills.
// The returned text is trimmed of surrounding whitespace.
func (c *Client) GenerateSummary(ctx context.Context, req SummaryRequest) (summary string, err error) {
	prompt := BuildSummaryPrompt(req)

	var responseText string
	responseText, err = c.Complete(ctx, prompt, SummaryMaxTokens)
	if err != nil {
		err = errors.Wrap(err, "summary generation failed")
		return summary, err
	}

	summary = strings.TrimSpace(responseText)
	if summary == "" {
		err = ErrEmptyResponse
		return summary, err
	}

	return summary, err
}
