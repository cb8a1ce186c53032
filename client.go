package autolocale

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ZaguanLabs/autolocale/cache"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracerName identifies spans emitted by this package.
const tracerName = "github.com/ZaguanLabs/autolocale"

// Provider is the interface for remote translation backends.
type Provider interface {
	Translate(ctx context.Context, req TranslateRequest) (string, error)
}

// TranslateRequest contains the parameters for a translation request.
type TranslateRequest struct {
	Text       string
	SourceLang string
	TargetLang string
	Context    string // Optional disambiguation hint
}

// TranslationCache is the interface for translation caching.
type TranslationCache interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
}

// Dictionary is a static phrase table consulted before the remote service.
type Dictionary interface {
	Lookup(text, lang string) (string, bool)
}

// Client resolves translations through an ordered chain: cache, static
// dictionary, remote provider, and finally the original text. It never
// returns an error: a failed lookup yields the input unchanged.
type Client struct {
	provider       Provider
	cache          TranslationCache
	dictionary     Dictionary
	inflight       *cache.InFlight
	sourceLang     string
	timeout        time.Duration
	maxConcurrency int
	logger         logrus.FieldLogger
	tracer         trace.Tracer
	processors     map[string]ContentProcessor
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*Client)

// WithSourceLang sets the language content is authored in. Lookups targeting
// it return immediately.
func WithSourceLang(lang string) ClientOption {
	return func(c *Client) {
		c.sourceLang = lang
	}
}

// WithCache sets the translation cache. Passing nil disables caching.
func WithCache(tc TranslationCache) ClientOption {
	return func(c *Client) {
		c.cache = tc
	}
}

// WithDictionary sets the static fallback dictionary.
func WithDictionary(d Dictionary) ClientOption {
	return func(c *Client) {
		c.dictionary = d
	}
}

// WithTimeout bounds each remote call.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithMaxConcurrency bounds how many distinct lookups one batch runs at once.
func WithMaxConcurrency(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxConcurrency = n
		}
	}
}

// WithLogger sets the logger used for warnings.
func WithLogger(logger logrus.FieldLogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTracerProvider sets where lookup spans are recorded. The global
// OpenTelemetry provider is used by default.
func WithTracerProvider(tp trace.TracerProvider) ClientOption {
	return func(c *Client) {
		c.tracer = tp.Tracer(tracerName)
	}
}

// WithProcessor registers a content processor for Process.
func WithProcessor(processor ContentProcessor) ClientOption {
	return func(c *Client) {
		c.processors[processor.ContentType()] = processor
	}
}

// NewClient creates a Client backed by provider. Without WithCache it uses an
// in-memory cache with DefaultCacheTTL.
func NewClient(provider Provider, opts ...ClientOption) *Client {
	c := &Client{
		provider:       provider,
		cache:          cache.NewInMemoryCache(DefaultCacheTTL),
		inflight:       cache.NewInFlight(),
		sourceLang:     DefaultSourceLang,
		timeout:        10 * time.Second,
		maxConcurrency: DefaultMaxConcurrency,
		logger:         logrus.StandardLogger(),
		tracer:         otel.Tracer(tracerName),
		processors:     make(map[string]ContentProcessor),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SourceLang returns the language content is authored in.
func (c *Client) SourceLang() string {
	return c.sourceLang
}

// Resolve returns text translated from sourceLang into targetLang, or text
// itself when no translation is needed or available. An empty sourceLang
// means the client's source language.
func (c *Client) Resolve(ctx context.Context, text, targetLang, sourceLang string) string {
	return c.Lookup(ctx, text, targetLang, sourceLang).Text
}

// Lookup is Resolve that also reports where the string came from.
func (c *Client) Lookup(ctx context.Context, text, targetLang, sourceLang string) Resolution {
	if sourceLang == "" {
		sourceLang = c.sourceLang
	}
	if text == "" || c.IsSourceLang(targetLang) || SameLanguage(targetLang, sourceLang) {
		return Resolution{Text: text, Origin: OriginPassthrough}
	}

	ctx, span := c.tracer.Start(ctx, "autolocale.Lookup", trace.WithAttributes(
		attribute.String("autolocale.source_lang", sourceLang),
		attribute.String("autolocale.target_lang", targetLang),
	))
	defer span.End()

	res := c.lookup(ctx, text, targetLang, sourceLang)
	span.SetAttributes(attribute.String("autolocale.origin", string(res.Origin)))
	return res
}

func (c *Client) lookup(ctx context.Context, text, targetLang, sourceLang string) Resolution {
	key := CacheKey{Text: text, SourceLang: sourceLang, TargetLang: targetLang}.String()

	if c.cache != nil {
		if cached, ok := c.cache.Get(key); ok {
			return Resolution{Text: cached, Origin: OriginCache}
		}
	}

	if c.dictionary != nil {
		if entry, ok := c.dictionary.Lookup(text, targetLang); ok {
			c.store(key, entry)
			return Resolution{Text: entry, Origin: OriginDictionary}
		}
	}

	if c.provider == nil {
		return Resolution{Text: text, Origin: OriginFallback}
	}

	translated, _, err := c.inflight.Do(ctx, key, func(ctx context.Context) (string, error) {
		return c.fetch(ctx, key, TranslateRequest{
			Text:       text,
			SourceLang: sourceLang,
			TargetLang: targetLang,
		})
	})
	if err != nil {
		span := trace.SpanFromContext(ctx)
		span.RecordError(err)
		span.SetStatus(codes.Error, "translation failed")
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			c.logger.WithField("target_lang", targetLang).Debug("translation abandoned by caller")
		}
		return Resolution{Text: text, Origin: OriginFallback}
	}

	return Resolution{Text: translated, Origin: OriginRemote}
}

// fetch performs one remote call on behalf of every caller waiting on key.
// Only a successful, non-empty answer is cached.
func (c *Client) fetch(ctx context.Context, key string, req TranslateRequest) (translated string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ProviderError{Message: fmt.Sprintf("provider panicked: %v", r)}
		}
		if err != nil {
			c.logger.WithFields(logrus.Fields{
				"source_lang": req.SourceLang,
				"target_lang": req.TargetLang,
				"error":       err,
			}).Warn("translation failed, keeping original text")
		}
	}()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	translated, err = c.provider.Translate(ctx, req)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(translated) == "" {
		return "", &MalformedResponseError{Source: "translate", Cause: errors.New("empty translation")}
	}

	c.store(key, translated)
	return translated, nil
}

func (c *Client) store(key, value string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(key, value); err != nil {
		c.logger.WithError(&CacheError{Message: "set failed", Cause: err}).Warn("translation not cached")
	}
}

// IsSourceLang reports whether lang is the client's source language, in
// which case nothing needs translating.
func (c *Client) IsSourceLang(lang string) bool {
	return SameLanguage(lang, c.sourceLang)
}
