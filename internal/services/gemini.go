package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/sonorous/internal/models"
	"github.com/desertthunder/sonorous/internal/shared"
	"google.golang.org/genai"
)

// DefaultGeminiModel is used when a request does not name a model.
const DefaultGeminiModel = "gemini-3-flash-preview"

// GeminiOpts configures [NewGeminiService].
type GeminiOpts struct {
	APIKey     string
	Model      string // fallback for requests without a model
	BaseURL    string // overrides the public endpoint, used by tests
	HTTPClient *http.Client
}

// GeminiService implements [CompletionService] on the Gemini API.
type GeminiService struct {
	client *genai.Client
	model  string
}

// NewGeminiService creates a Gemini API client. The API key is required.
func NewGeminiService(ctx context.Context, opts GeminiOpts) (*GeminiService, error) {
	if opts.APIKey == "" {
		return nil, shared.ErrMissingAPIKey
	}
	if opts.Model == "" {
		opts.Model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      opts.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  opts.HTTPClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: opts.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiService{client: client, model: opts.Model}, nil
}

func (g *GeminiService) Name() string {
	return "Gemini"
}

// Model returns the model used for requests that do not set one.
func (g *GeminiService) Model() string {
	return g.model
}

// Complete sends req.Prompt as a single user turn and returns the response text, which is
// empty when the model produced no candidates.
func (g *GeminiService) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = g.model
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
		TopP:        genai.Ptr(req.TopP),
		TopK:        genai.Ptr(req.TopK),
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini %s: %w", model, err)
	}

	return resp.Text(), nil
}
