package provider

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// MockProvider is a deterministic provider for tests and offline runs.
// It is safe for concurrent use.
type MockProvider struct {
	Translations map[string]string // Map of source text to translation
	Err          error             // Returned by every call when set

	calls atomic.Int64
	mu    sync.Mutex
	last  *TranslateRequest
}

// NewMockProvider creates a new mock provider with default translations.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]string{
			"Hello":                "Hola",
			"World":                "Mundo",
			"Hello World":          "Hola Mundo",
			"Welcome to our site.": "Bienvenido a nuestro sitio.",
		},
	}
}

// Translate returns the configured translation, or the text in brackets
// tagged with the target language.
func (m *MockProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.last = &req
	m.mu.Unlock()

	if m.Err != nil {
		return "", m.Err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if translation, ok := m.Translations[req.Text]; ok {
		return translation, nil
	}
	return fmt.Sprintf("[%s] %s", req.TargetLang, req.Text), nil
}

// CallCount returns the number of Translate calls.
func (m *MockProvider) CallCount() int {
	return int(m.calls.Load())
}

// LastRequest returns the most recent request, or nil.
func (m *MockProvider) LastRequest() *TranslateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// Reset resets the call count and last request.
func (m *MockProvider) Reset() {
	m.calls.Store(0)
	m.mu.Lock()
	m.last = nil
	m.mu.Unlock()
}

// Verify MockProvider implements Provider
var _ Provider = (*MockProvider)(nil)
