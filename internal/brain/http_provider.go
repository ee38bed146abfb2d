package brain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/abelbrown/rickdex/internal/logging"
)

var _ Provider = (*HTTPProvider)(nil)

// maxReply caps how much of a vendor reply is read. A description is four
// lines; anything near this size is an error page.
const maxReply = 1 << 20

// ProviderConfig describes one JSON-over-HTTP text generation vendor.
type ProviderConfig struct {
	Name         string
	Endpoint     string
	APIKey       string
	Model        string
	AuthHeader   string            // "x-api-key" or "Authorization"
	AuthPrefix   string            // "" or "Bearer "
	ExtraHeaders map[string]string // e.g. anthropic-version

	// NoKey marks providers that run without credentials (local Ollama).
	NoKey bool

	BuildBody     func(cfg *ProviderConfig, req Request) map[string]any
	ParseResponse func(body []byte) (content, model string, err error)
}

// HTTPProvider generates descriptions through a vendor's HTTP API.
type HTTPProvider struct {
	config *ProviderConfig
	client *http.Client
}

// NewHTTPProvider wraps cfg. The caller's context usually ends sooner than
// the client timeout.
func NewHTTPProvider(cfg *ProviderConfig) *HTTPProvider {
	return &HTTPProvider{
		config: cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *HTTPProvider) Name() string  { return p.config.Name }
func (p *HTTPProvider) Model() string { return p.config.Model }

func (p *HTTPProvider) Available() bool {
	if p.config.NoKey {
		return p.config.Endpoint != "" && p.config.Model != ""
	}
	return p.config.APIKey != ""
}

func (p *HTTPProvider) Generate(ctx context.Context, req Request) (Response, error) {
	if !p.Available() {
		return Response{}, fmt.Errorf("%s: %w", p.config.Name, ErrNotConfigured)
	}

	start := time.Now()
	raw, err := p.post(ctx, p.config.BuildBody(p.config, req))
	if err != nil {
		logging.Warn("describe: vendor call failed", "provider", p.config.Name, "model", p.config.Model, "err", err)
		return Response{}, err
	}

	content, model, err := p.config.ParseResponse(raw)
	if err != nil {
		return Response{}, fmt.Errorf("decode reply: %w", err)
	}

	logging.Debug("describe: vendor replied",
		"provider", p.config.Name,
		"model", model,
		"chars", len(content),
		"took", time.Since(start).Round(time.Millisecond))

	return Response{
		Content:     content,
		Model:       model,
		Provider:    p.config.Name,
		RawResponse: string(raw),
	}, nil
}

// post sends body as JSON and returns the reply of a 200 response. Errors
// carry no provider name; Manager adds it.
func (p *HTTPProvider) post(ctx context.Context, body map[string]any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode prompt: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.config.AuthHeader != "" && p.config.APIKey != "" {
		httpReq.Header.Set(p.config.AuthHeader, p.config.AuthPrefix+p.config.APIKey)
	}
	for k, v := range p.config.ExtraHeaders {
		httpReq.Header.Set(k, v)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReply))
	if err != nil {
		return nil, fmt.Errorf("read reply: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, raw)
	}
	return raw, nil
}
