package refresh

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/genai"

	"git.home.luguber.info/inful/guidebuilder/internal/config"
	ferrors "git.home.luguber.info/inful/guidebuilder/internal/foundation/errors"
)

// Gemini asks a Gemini model for a structured JSON profile.
type Gemini struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGemini creates a Gemini provider on the public Gemini API backend.
func NewGemini(ctx context.Context, cfg config.RefreshConfig) (*Gemini, error) {
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.TimeoutDuration()},
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to create Gemini client").
			UserAction().
			Build()
	}
	return &Gemini{client: client, model: cfg.Model, temperature: float32(cfg.Temperature)}, nil
}

func (g *Gemini) Name() string  { return ProviderGemini }
func (g *Gemini) Model() string { return g.model }

// ProfileSchema constrains the model's JSON output.
func ProfileSchema() *genai.Schema {
	list := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeArray, Description: desc, Items: &genai.Schema{Type: genai.TypeString}}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"verdict": {
				Type:        genai.TypeString,
				Enum:        []string{"safe", "caution", "unsafe"},
				Description: "Overall gluten risk",
			},
			"summary":         {Type: genai.TypeString, Description: "1-2 sentence explanation"},
			"risk":            list("Ingredients or prep methods that commonly contain gluten"),
			"safe":            list("Ingredients or prep methods that are typically gluten-free"),
			"alternatives":    list("Gluten-free dishes to order instead"),
			"known_gf_brands": list("Brands offering gluten-free versions"),
			"waiter":          {Type: genai.TypeString, Description: "Question to ask the kitchen"},
		},
		Required: []string{"verdict", "summary", "risk", "safe", "alternatives", "waiter"},
	}
}

// FetchProfile generates and validates topicName's profile.
func (g *Gemini) FetchProfile(ctx context.Context, topicName string) (*Profile, error) {
	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: Prompt(topicName)}},
		Role:  "user",
	}}
	temp := g.temperature
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
		ResponseSchema:   ProfileSchema(),
	})
	if err != nil {
		return nil, geminiError(err)
	}
	text := resp.Text()
	if text == "" {
		return nil, invalid("Gemini response has no text", nil)
	}
	return ParseProfile(text)
}

func geminiError(err error) error {
	b := ferrors.WrapError(err, ferrors.CategoryLLM, "Gemini request failed").
		WithContext("provider", ProviderGemini)
	code, ok := apiStatus(err)
	if !ok {
		return b.Retryable().Build()
	}
	b = b.WithContext("status", code)
	switch {
	case code == http.StatusTooManyRequests:
		b = b.RateLimit()
	case code >= 500:
		b = b.Retryable()
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		b = b.UserAction()
	}
	return b.Build()
}

func apiStatus(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	var apiPtr *genai.APIError
	if errors.As(err, &apiPtr) && apiPtr != nil {
		return apiPtr.Code, true
	}
	return 0, false
}
