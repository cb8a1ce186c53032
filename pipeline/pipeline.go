// Package pipeline wires the localization components into one service
// object owned by the application's composition root.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sync"

	"github.com/ZaguanLabs/autolocale"
	"github.com/ZaguanLabs/autolocale/cache"
	"github.com/ZaguanLabs/autolocale/interceptor"
	"github.com/ZaguanLabs/autolocale/processor"
	"github.com/ZaguanLabs/autolocale/provider"
	"github.com/sirupsen/logrus"
)

// ErrReadOnlyLocale is returned by SetLanguage when the pipeline follows an
// external locale that cannot be set from here.
var ErrReadOnlyLocale = errors.New("locale is managed externally")

// Pipeline owns one translation client and cache, the response transport,
// and the observers of every attached document. Language changes published
// by the locale restart every observer and toggle the transport.
type Pipeline struct {
	cfg       Config
	client    *autolocale.Client
	locale    autolocale.Locale
	transport *interceptor.Transport
	http      *http.Client
	logger    logrus.FieldLogger

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	attached    []*processor.Observer
	unsubscribe func()
	closers     []func() error
}

type options struct {
	provider   autolocale.Provider
	cache      autolocale.TranslationCache
	locale     autolocale.Locale
	httpClient *http.Client
	policy     *processor.FieldPolicy
	logger     logrus.FieldLogger
}

// Option configures a Pipeline.
type Option func(*options)

// WithProvider overrides the provider built from the configuration.
func WithProvider(p autolocale.Provider) Option {
	return func(o *options) { o.provider = p }
}

// WithCache overrides the cache built from the configuration.
func WithCache(c autolocale.TranslationCache) Option {
	return func(o *options) { o.cache = c }
}

// WithLocale follows an external locale context instead of an internal
// LanguageState.
func WithLocale(l autolocale.Locale) Option {
	return func(o *options) { o.locale = l }
}

// WithHTTPClient sets the client whose transport API calls go through.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithFieldPolicy sets the JSON field policy for API responses.
func WithFieldPolicy(p *processor.FieldPolicy) Option {
	return func(o *options) { o.policy = p }
}

// WithLogger sets the logger shared by every component.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.logger = l }
}

// New builds a pipeline from cfg. The transport starts enabled when the
// initial language differs from the source language.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	o := options{logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&o)
	}

	p := &Pipeline{cfg: cfg, logger: o.logger}
	p.ctx, p.cancel = context.WithCancel(context.Background())

	prov := o.provider
	if prov == nil {
		var err error
		if prov, err = p.buildProvider(); err != nil {
			p.cancel()
			return nil, err
		}
	}

	tc := o.cache
	if tc == nil {
		var err error
		if tc, err = p.buildCache(); err != nil {
			p.cancel()
			return nil, err
		}
	}

	clientOpts := []autolocale.ClientOption{
		autolocale.WithSourceLang(cfg.SourceLang),
		autolocale.WithCache(tc),
		autolocale.WithTimeout(cfg.RequestTimeout),
		autolocale.WithMaxConcurrency(cfg.MaxConcurrency),
		autolocale.WithLogger(o.logger),
		autolocale.WithProcessor(processor.NewHTMLProcessor()),
		autolocale.WithProcessor(processor.NewJSONProcessor(o.policy)),
	}
	if cfg.DictionaryPath != "" {
		dict, err := autolocale.LoadDictionary(cfg.DictionaryPath)
		if err != nil {
			p.Close()
			return nil, err
		}
		clientOpts = append(clientOpts, autolocale.WithDictionary(dict))
	}
	p.client = autolocale.NewClient(prov, clientOpts...)

	p.locale = o.locale
	if p.locale == nil {
		p.locale = autolocale.NewLanguageState(cfg.Language, cfg.SourceLang)
	}

	transportOpts := []interceptor.TransportOption{
		interceptor.WithLogger(o.logger),
		interceptor.WithFieldPolicy(o.policy),
		interceptor.WithAPIOrigin(cfg.APIBase),
	}
	if cfg.APIPrefix != "" {
		transportOpts = append(transportOpts, interceptor.WithAPIPrefix(cfg.APIPrefix))
	}
	p.http, p.transport = interceptor.Wrap(o.httpClient, p.client, p.locale, transportOpts...)

	p.unsubscribe = p.locale.Subscribe(p.languageChanged)
	p.toggleTransport(p.locale.Current())
	return p, nil
}

func (p *Pipeline) buildProvider() (autolocale.Provider, error) {
	var prov autolocale.Provider
	switch p.cfg.Provider {
	case "", "http":
		hp := provider.NewHTTPProvider(provider.HTTPConfig{
			BaseURL: p.cfg.APIBase,
			Timeout: p.cfg.RequestTimeout,
		})
		p.closers = append(p.closers, hp.Close)
		prov = hp
	case "openai":
		prov = provider.NewOpenAIProvider(provider.OpenAIConfig{
			APIKey:  p.cfg.OpenAIAPIKey,
			Model:   p.cfg.OpenAIModel,
			BaseURL: p.cfg.OpenAIBaseURL,
		})
	case "mock":
		prov = provider.NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown provider %q", p.cfg.Provider)
	}

	if p.cfg.Retries > 0 {
		retry := autolocale.DefaultRetryConfig()
		retry.MaxRetries = p.cfg.Retries
		prov = autolocale.NewRetryableProvider(prov, retry)
	}
	if p.cfg.RateLimitRPM > 0 {
		prov = autolocale.NewRateLimitedProvider(prov, autolocale.RateLimitConfig{
			RequestsPerMinute: p.cfg.RateLimitRPM,
		})
	}
	return prov, nil
}

func (p *Pipeline) buildCache() (autolocale.TranslationCache, error) {
	if p.cfg.RedisURL == "" {
		return cache.NewInMemoryCache(p.cfg.CacheTTL), nil
	}

	rc, err := cache.NewRedisCache(cache.RedisConfig{
		URL: p.cfg.RedisURL,
		TTL: p.cfg.CacheTTL,
	})
	if err != nil {
		return nil, err
	}
	rc.SetLogger(p.logger)
	p.closers = append(p.closers, rc.Close)
	return rc, nil
}

// Client returns the shared translation client.
func (p *Pipeline) Client() *autolocale.Client {
	return p.client
}

// Locale returns the locale the pipeline follows.
func (p *Pipeline) Locale() autolocale.Locale {
	return p.locale
}

// Transport returns the response interceptor.
func (p *Pipeline) Transport() *interceptor.Transport {
	return p.transport
}

// HTTPClient returns the client whose API responses are translated.
func (p *Pipeline) HTTPClient() *http.Client {
	return p.http
}

// Attach starts keeping doc translated into the current language and
// restarts it on every language change until Close.
func (p *Pipeline) Attach(doc *processor.Document) *processor.Observer {
	obs := processor.NewObserver(doc, p.client,
		processor.WithConcurrency(p.cfg.MaxConcurrency),
		processor.WithObserverLogger(p.logger),
	)

	p.mu.Lock()
	p.attached = append(p.attached, obs)
	p.mu.Unlock()

	obs.Start(p.ctx, p.locale.Current())
	return obs
}

// SetLanguage switches the active language. It fails with
// ErrReadOnlyLocale when the locale is external and read-only.
func (p *Pipeline) SetLanguage(lang string) error {
	setter, ok := p.locale.(interface {
		Set(string) (bool, error)
	})
	if !ok {
		return ErrReadOnlyLocale
	}
	_, err := setter.Set(lang)
	return err
}

// Translate resolves a single rendered string into the current language,
// applying the same eligibility rules as the observer.
func (p *Pipeline) Translate(ctx context.Context, text string) string {
	if autolocale.ShouldSkip(text) {
		return text
	}
	return p.client.Resolve(ctx, text, p.locale.Current(), "")
}

// FuncMap returns template helpers: "t" translates a fragment at render
// time, "lang" and "dir" describe the current language for the <html> tag.
func (p *Pipeline) FuncMap() template.FuncMap {
	return template.FuncMap{
		"t": func(text string) string {
			return p.Translate(p.ctx, text)
		},
		"lang": func() string {
			return autolocale.ToHTMLLang(p.locale.Current())
		},
		"dir": func() string {
			return autolocale.GetDirection(p.locale.Current())
		},
	}
}

// Wait blocks until every attached observer has settled.
func (p *Pipeline) Wait() {
	p.mu.Lock()
	observers := append([]*processor.Observer(nil), p.attached...)
	p.mu.Unlock()

	for _, obs := range observers {
		obs.Wait()
	}
}

// Close stops every observer and releases the cache and provider.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	unsubscribe := p.unsubscribe
	p.unsubscribe = nil
	observers := p.attached
	p.attached = nil
	closers := p.closers
	p.closers = nil
	p.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	for _, obs := range observers {
		obs.Stop()
	}
	p.cancel()
	if p.transport != nil {
		p.transport.Disable()
	}

	var errs []error
	for _, c := range closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Pipeline) languageChanged(lang string) {
	p.logger.WithField("lang", lang).Info("language changed")
	p.toggleTransport(lang)

	p.mu.Lock()
	observers := append([]*processor.Observer(nil), p.attached...)
	p.mu.Unlock()

	for _, obs := range observers {
		obs.Restart(p.ctx, lang)
	}
}

func (p *Pipeline) toggleTransport(lang string) {
	if p.client.IsSourceLang(lang) {
		p.transport.Disable()
	} else {
		p.transport.Enable()
	}
}
