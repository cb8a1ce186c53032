package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ZaguanLabs/autolocale"
	"github.com/google/uuid"
	"resty.dev/v3"
)

// TranslatePath is the translation endpoint relative to the API base URL.
const TranslatePath = "/api/translate"

// HTTPConfig holds configuration for the HTTP provider.
type HTTPConfig struct {
	BaseURL string        // API origin, e.g. "http://localhost:8000"
	Timeout time.Duration // Per-request timeout (default: 10s)
	Headers map[string]string
}

// HTTPProvider calls the backend's own translation endpoint:
// POST {BaseURL}/api/translate with {text, sourceLang, targetLang},
// answered by {translation}.
type HTTPProvider struct {
	client *resty.Client
}

type translateBody struct {
	Text       string `json:"text"`
	SourceLang string `json:"sourceLang"`
	TargetLang string `json:"targetLang"`
	Context    string `json:"context,omitempty"`
}

type translateResult struct {
	Translation string `json:"translation"`
}

// NewHTTPProvider creates a provider for the translation endpoint at cfg.BaseURL.
func NewHTTPProvider(cfg HTTPConfig) *HTTPProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", autolocale.UserAgent())
	for k, v := range cfg.Headers {
		client.SetHeader(k, v)
	}

	return &HTTPProvider{client: client}
}

// Translate implements Provider.
func (p *HTTPProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	var result translateResult
	res, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Request-ID", uuid.NewString()).
		SetBody(translateBody{
			Text:       req.Text,
			SourceLang: req.SourceLang,
			TargetLang: req.TargetLang,
			Context:    req.Context,
		}).
		SetResult(&result).
		Post(TranslatePath)

	if res != nil && res.StatusCode() != 0 && !res.IsSuccess() {
		status := res.StatusCode()
		return "", &autolocale.ProviderError{
			Message:    "translate endpoint returned " + http.StatusText(status),
			StatusCode: status,
			Retryable:  status == http.StatusTooManyRequests || status >= 500,
		}
	}

	if err != nil {
		if res != nil && res.IsSuccess() {
			return "", &autolocale.MalformedResponseError{Source: "translate", Cause: err}
		}
		return "", &autolocale.ProviderError{
			Message:   "translate request failed",
			Cause:     err,
			Retryable: !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded),
		}
	}

	if strings.TrimSpace(result.Translation) == "" {
		return "", &autolocale.MalformedResponseError{
			Source: "translate",
			Cause:  fmt.Errorf("missing translation in %q", truncate(res.String(), 120)),
		}
	}

	return result.Translation, nil
}

// Close releases idle connections.
func (p *HTTPProvider) Close() error {
	return p.client.Close()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Verify HTTPProvider implements Provider
var _ Provider = (*HTTPProvider)(nil)
