// Package brain provides the text generators used for character descriptions.
package brain

import (
	"context"
	"errors"
	"fmt"

	"github.com/abelbrown/rickdex/internal/logging"
)

// ErrNotConfigured is returned when no provider has credentials.
// Running without a generator is a normal mode, not a failure.
var ErrNotConfigured = errors.New("no text generator configured")

// Provider is the interface for AI providers
type Provider interface {
	// Name returns the provider name (e.g., "gemini", "openai")
	Name() string

	// Available returns true if the provider is configured and ready
	Available() bool

	// Generate sends a prompt and returns the response
	Generate(ctx context.Context, req Request) (Response, error)
}

// Request is a prompt request to an AI provider
type Request struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
}

// Response is the AI provider's response
type Response struct {
	Content     string
	Model       string
	Provider    string
	RawResponse string // The raw API response body for logging/debugging
}

// Manager manages multiple AI providers with fallback
type Manager struct {
	providers []Provider
	preferred string // Preferred provider name
}

// NewManager creates a manager over the given providers, in order.
func NewManager(providers ...Provider) *Manager {
	m := &Manager{}
	for _, p := range providers {
		m.AddProvider(p)
	}
	return m
}

// AddProvider adds a provider to the manager. Nil providers are ignored.
func (m *Manager) AddProvider(p Provider) {
	if p == nil {
		return
	}
	m.providers = append(m.providers, p)
}

// SetPreferred sets the preferred provider by name
func (m *Manager) SetPreferred(name string) {
	m.preferred = name
}

// Available reports whether any provider is configured.
func (m *Manager) Available() bool {
	if m == nil {
		return false
	}
	for _, p := range m.providers {
		if p.Available() {
			return true
		}
	}
	return false
}

// Ordered returns the available providers, preferred first.
func (m *Manager) Ordered() []Provider {
	if m == nil {
		return nil
	}
	var first, rest []Provider
	for _, p := range m.providers {
		if !p.Available() {
			continue
		}
		if m.preferred != "" && p.Name() == m.preferred {
			first = append(first, p)
		} else {
			rest = append(rest, p)
		}
	}
	return append(first, rest...)
}

// GetByName returns a provider by name
func (m *Manager) GetByName(name string) Provider {
	for _, p := range m.providers {
		if p.Name() == name && p.Available() {
			return p
		}
	}
	return nil
}

// ListAvailable returns names of all available providers, preferred first.
func (m *Manager) ListAvailable() []string {
	var names []string
	for _, p := range m.Ordered() {
		names = append(names, p.Name())
	}
	return names
}

// Generate tries each available provider, preferred first, and returns the
// first non-empty response. When every provider fails the errors are joined.
func (m *Manager) Generate(ctx context.Context, req Request) (Response, error) {
	providers := m.Ordered()
	if len(providers) == 0 {
		return Response{}, ErrNotConfigured
	}

	var errs []error
	for _, p := range providers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		resp, err := p.Generate(ctx, req)
		if err == nil && resp.Content == "" {
			err = errors.New("empty response")
		}
		if err != nil {
			logging.Warn("describe: falling back", "provider", p.Name(), "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		if resp.Provider == "" {
			resp.Provider = p.Name()
		}
		return resp, nil
	}
	return Response{}, errors.Join(errs...)
}
