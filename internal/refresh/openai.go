package refresh

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"git.home.luguber.info/inful/guidebuilder/internal/config"
	ferrors "git.home.luguber.info/inful/guidebuilder/internal/foundation/errors"
)

// DefaultOpenAIBaseURL is the chat completions API root.
const DefaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAI calls the chat completions endpoint in JSON mode.
type OpenAI struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	model       string
	temperature float64
}

// NewOpenAI creates an OpenAI provider. client may be shared.
func NewOpenAI(cfg config.RefreshConfig, client *http.Client) *OpenAI {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultOpenAIBaseURL
	}
	return &OpenAI{
		client:      client,
		baseURL:     base,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}
}

func (o *OpenAI) Name() string  { return ProviderOpenAI }
func (o *OpenAI) Model() string { return o.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
	Temperature    float64           `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// FetchProfile asks the model for topicName's profile. Rate limits and server
// errors are returned as retryable.
func (o *OpenAI) FetchProfile(ctx context.Context, topicName string) (*Profile, error) {
	body, err := json.Marshal(chatRequest{
		Model:          o.model,
		Messages:       []chatMessage{{Role: "user", Content: Prompt(topicName)}},
		ResponseFormat: map[string]string{"type": "json_object"},
		Temperature:    o.temperature,
	})
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "failed to encode chat request").Build()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "failed to create chat request").Build()
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryNetwork, "chat request failed").
			Retryable().
			WithContext("provider", ProviderOpenAI).
			Build()
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryNetwork, "failed to read chat response").Retryable().Build()
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, data)
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, invalid("chat response is not JSON", err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return nil, invalid("chat response has no content", nil)
	}
	return ParseProfile(parsed.Choices[0].Message.Content)
}

func statusError(status int, body []byte) error {
	snippet := strings.TrimSpace(string(body))
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}
	b := ferrors.LLMError(fmt.Sprintf("provider returned HTTP %d", status)).
		WithContext("provider", ProviderOpenAI).
		WithContext("status", status).
		WithContext("body", snippet)
	switch {
	case status == http.StatusTooManyRequests:
		b = b.RateLimit()
	case status >= 500:
		b = b.Retryable()
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		b = b.UserAction()
	}
	return b.Build()
}
