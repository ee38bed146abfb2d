package brain

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/abelbrown/rickdex/internal/logging"
)

var _ Provider = (*GeminiProvider)(nil)

// GeminiProvider implements the Provider interface for Google's Gemini models
// on the genai SDK. The SDK client is created on first use.
type GeminiProvider struct {
	apiKey  string
	model   string
	baseURL string

	mu     sync.Mutex
	client *genai.Client
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(apiKey, model string) *GeminiProvider {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GeminiProvider{
		apiKey: apiKey,
		model:  model,
	}
}

// WithBaseURL points the provider at a different API root (proxies, tests).
func (g *GeminiProvider) WithBaseURL(u string) *GeminiProvider {
	g.baseURL = u
	return g
}

func (g *GeminiProvider) Name() string {
	return "gemini"
}

func (g *GeminiProvider) Available() bool {
	return g.apiKey != ""
}

func (g *GeminiProvider) getClient(ctx context.Context) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client != nil {
		return g.client, nil
	}

	cfg := &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if g.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: g.baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	g.client = client
	return client, nil
}

func (g *GeminiProvider) Generate(ctx context.Context, req Request) (Response, error) {
	if !g.Available() {
		return Response{}, fmt.Errorf("gemini: %w", ErrNotConfigured)
	}

	client, err := g.getClient(ctx)
	if err != nil {
		return Response{}, err
	}

	maxTokens := maxTokensOr(req.MaxTokens, 400)
	logging.Debug("describe: asking gemini", "model", g.model, "max_tokens", maxTokens)

	gcfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
	}
	if req.SystemPrompt != "" {
		gcfg.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, genai.Text(req.UserPrompt), gcfg)
	if err != nil {
		logging.Warn("describe: vendor call failed", "provider", "gemini", "model", g.model, "err", err)
		return Response{}, fmt.Errorf("generate content: %w", err)
	}

	content := strings.TrimSpace(resp.Text())
	model := resp.ModelVersion
	if model == "" {
		model = g.model
	}

	logging.Debug("describe: vendor replied", "provider", "gemini", "model", model, "chars", len(content))

	return Response{
		Content:  content,
		Model:    model,
		Provider: "gemini",
	}, nil
}
