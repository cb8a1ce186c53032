package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ZaguanLabs/autolocale"
	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider translates through an OpenAI-compatible chat completion
// API, for deployments without a translate endpoint of their own.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float32
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string  // OpenAI API key
	Model       string  // Model to use (default: "gpt-4o-mini")
	Temperature float32 // Temperature for generation (default: 0.3)
	BaseURL     string  // Custom base URL (optional)
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
	}
}

// Translate implements Provider.
func (p *OpenAIProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	user, _ := json.Marshal(map[string]string{"text": req.Text})

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.buildSystemPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: string(user)},
		},
		Temperature: p.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", apiError(err)
	}

	if len(resp.Choices) == 0 {
		return "", &autolocale.ProviderError{
			Message:   "no response from OpenAI",
			Retryable: true,
		}
	}

	return parseTranslation(resp.Choices[0].Message.Content)
}

func (p *OpenAIProvider) buildSystemPrompt(req TranslateRequest) string {
	sourceLang := req.SourceLang
	if sourceLang == "" {
		sourceLang = autolocale.DefaultSourceLang
	}
	sourceName := autolocale.GetLanguageName(sourceLang)
	targetName := autolocale.GetLanguageName(req.TargetLang)

	contextText := "The text is a label or sentence from a booking website's user interface."
	if req.Context != "" {
		contextText = fmt.Sprintf("The text appears %s on a booking website.", req.Context)
	}

	return fmt.Sprintf(`# Role
You are an expert native translator localizing a user interface from %s to %s.

# Context
%s

# Style Guide
- Keep it short and natural; UI strings must fit where the original did.
- Do NOT translate URLs, email addresses, codes, placeholders ({name}, {{count}}, %%s) or currency amounts.
- Preserve leading/trailing whitespace and punctuation style.

# Format
Return a JSON object with a single key "translation" holding the translated string.
Example: { "translation": "..." }
- Do NOT wrap in Markdown code blocks.`, sourceName, targetName, contextText)
}

// parseTranslation reads {"translation": "..."} from the model output.
func parseTranslation(content string) (string, error) {
	var out struct {
		Translation *string `json:"translation"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &out); err != nil {
		return "", &autolocale.MalformedResponseError{Source: "openai", Cause: err}
	}
	if out.Translation == nil {
		return "", &autolocale.MalformedResponseError{
			Source: "openai",
			Cause:  errors.New(`missing "translation" key`),
		}
	}
	return *out.Translation, nil
}

// apiError maps go-openai errors to ProviderError, using the HTTP status
// when the API answered.
func apiError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &autolocale.ProviderError{
			Message:    "OpenAI API call failed",
			Cause:      err,
			StatusCode: apiErr.HTTPStatusCode,
			Retryable:  apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500,
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &autolocale.ProviderError{
			Message:    "OpenAI API call failed",
			Cause:      err,
			StatusCode: reqErr.HTTPStatusCode,
			Retryable:  reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500,
		}
	}
	return &autolocale.ProviderError{
		Message:   "OpenAI API call failed",
		Cause:     err,
		Retryable: !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded),
	}
}

// Verify OpenAIProvider implements Provider
var _ Provider = (*OpenAIProvider)(nil)
