package brain

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/abelbrown/rickdex/internal/config"
)

// Provider configurations

func ClaudeConfig(s config.ModelSettings) *ProviderConfig {
	return &ProviderConfig{
		Name:       "claude",
		Endpoint:   endpointOr(s.Endpoint, "https://api.anthropic.com/v1/messages"),
		APIKey:     s.APIKey,
		Model:      modelOr(s.Model, "claude-sonnet-4-5-20250929"),
		AuthHeader: "x-api-key",
		ExtraHeaders: map[string]string{
			"anthropic-version": "2023-06-01",
		},
		BuildBody:     buildClaudeBody,
		ParseResponse: parseClaudeResponse,
	}
}

func OpenAIConfig(s config.ModelSettings) *ProviderConfig {
	return &ProviderConfig{
		Name:          "openai",
		Endpoint:      endpointOr(s.Endpoint, "https://api.openai.com/v1/chat/completions"),
		APIKey:        s.APIKey,
		Model:         modelOr(s.Model, "gpt-4o-mini"),
		AuthHeader:    "Authorization",
		AuthPrefix:    "Bearer ",
		BuildBody:     buildOpenAIBody,
		ParseResponse: parseOpenAIResponse,
	}
}

// OllamaConfig builds the local Ollama config. An empty model is resolved
// from the server's installed models; if that fails the provider stays unavailable.
func OllamaConfig(ctx context.Context, s config.ModelSettings) *ProviderConfig {
	endpoint := strings.TrimRight(endpointOr(s.Endpoint, "http://localhost:11434"), "/")

	model := s.Model
	if model == "" {
		model = detectOllamaModel(ctx, endpoint)
	}

	return &ProviderConfig{
		Name:          "ollama",
		Endpoint:      endpoint + "/api/generate",
		Model:         model,
		NoKey:         true,
		BuildBody:     buildOllamaBody,
		ParseResponse: parseOllamaResponse,
	}
}

// detectOllamaModel queries Ollama for available models and picks one
func detectOllamaModel(ctx context.Context, endpoint string) string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"/api/tags", nil)
	if err != nil {
		return ""
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "" // Will mark provider as unavailable
	}
	defer resp.Body.Close()

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return ""
	}

	if len(tags.Models) == 0 {
		return ""
	}

	// Prefer instruct models for short prose
	for _, m := range tags.Models {
		if strings.Contains(strings.ToLower(m.Name), "instruct") {
			return m.Name
		}
	}

	// Fall back to first available model
	return tags.Models[0].Name
}

// Body builders

func buildClaudeBody(cfg *ProviderConfig, req Request) map[string]any {
	body := map[string]any{
		"model":      cfg.Model,
		"max_tokens": maxTokensOr(req.MaxTokens, 400),
		"messages":   []map[string]string{{"role": "user", "content": req.UserPrompt}},
	}
	if req.SystemPrompt != "" {
		body["system"] = req.SystemPrompt
	}
	return body
}

func buildOpenAIBody(cfg *ProviderConfig, req Request) map[string]any {
	messages := []map[string]string{}
	if req.SystemPrompt != "" {
		messages = append(messages, map[string]string{"role": "system", "content": req.SystemPrompt})
	}
	messages = append(messages, map[string]string{"role": "user", "content": req.UserPrompt})

	return map[string]any{
		"model":                 cfg.Model,
		"max_completion_tokens": maxTokensOr(req.MaxTokens, 400),
		"messages":              messages,
	}
}

func buildOllamaBody(cfg *ProviderConfig, req Request) map[string]any {
	prompt := req.UserPrompt
	if req.SystemPrompt != "" {
		prompt = req.SystemPrompt + "\n\n" + req.UserPrompt
	}
	return map[string]any{
		"model":  cfg.Model,
		"prompt": prompt,
		"stream": false,
	}
}

// Response parsers

func parseClaudeResponse(body []byte) (string, string, error) {
	var resp struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		Model string `json:"model"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", "", err
	}
	var texts []string
	for _, c := range resp.Content {
		if c.Type == "text" {
			texts = append(texts, c.Text)
		}
	}
	return strings.Join(texts, "\n\n"), resp.Model, nil
}

func parseOpenAIResponse(body []byte) (string, string, error) {
	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Model string `json:"model"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", "", err
	}
	if len(resp.Choices) > 0 {
		return resp.Choices[0].Message.Content, resp.Model, nil
	}
	return "", resp.Model, nil
}

func parseOllamaResponse(body []byte) (string, string, error) {
	var resp struct {
		Response string `json:"response"`
		Model    string `json:"model"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", "", err
	}
	return resp.Response, resp.Model, nil
}

// Helpers

func endpointOr(v, defaultVal string) string {
	if v != "" {
		return v
	}
	return defaultVal
}

func modelOr(v, defaultVal string) string {
	if v != "" {
		return v
	}
	return defaultVal
}

func maxTokensOr(v, defaultVal int) int {
	if v > 0 {
		return v
	}
	return defaultVal
}

// FromConfig builds a Manager with every enabled provider in cfg, preferred
// provider first. Providers without credentials are still added but report
// unavailable, so the manager may be empty of usable providers.
func FromConfig(ctx context.Context, cfg *config.Config) *Manager {
	m := NewManager()
	m.SetPreferred(cfg.AI.Preferred)

	if s := cfg.Models.Gemini; s.Enabled {
		m.AddProvider(NewGeminiProvider(s.APIKey, s.Model))
	}
	if s := cfg.Models.OpenAI; s.Enabled {
		m.AddProvider(NewHTTPProvider(OpenAIConfig(s)))
	}
	if s := cfg.Models.Claude; s.Enabled {
		m.AddProvider(NewHTTPProvider(ClaudeConfig(s)))
	}
	if s := cfg.Models.Ollama; s.Enabled {
		m.AddProvider(NewHTTPProvider(OllamaConfig(ctx, s)))
	}
	return m
}
