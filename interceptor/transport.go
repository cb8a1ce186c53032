// Package interceptor translates JSON API responses on their way back to the
// caller.
package interceptor

import (
	"bytes"
	"context"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/ZaguanLabs/autolocale"
	"github.com/ZaguanLabs/autolocale/processor"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/ZaguanLabs/autolocale/interceptor"

// DefaultAPIPrefix is the path prefix of API routes whose responses are
// translated.
const DefaultAPIPrefix = "/api/"

// Transport is an http.RoundTripper that rewrites the string leaves of JSON
// API responses into the active language. It is disabled by default and
// stays inert while the language is the source language. Any failure returns
// the original response with its body intact.
type Transport struct {
	base      http.RoundTripper
	client    *autolocale.Client
	locale    autolocale.Locale
	json      *processor.JSONProcessor
	origin    *url.URL
	apiPrefix string
	skipPaths []string
	logger    logrus.FieldLogger
	tracer    trace.Tracer

	enabled atomic.Bool
}

// TransportOption configures a Transport.
type TransportOption func(*Transport)

// WithBase sets the underlying RoundTripper. http.DefaultTransport is used
// by default.
func WithBase(base http.RoundTripper) TransportOption {
	return func(t *Transport) {
		t.base = base
	}
}

// WithAPIOrigin restricts interception to responses from base's scheme and
// host. Without it, any host is accepted. An unparsable base matches nothing.
func WithAPIOrigin(base string) TransportOption {
	return func(t *Transport) {
		u, err := url.Parse(strings.TrimSpace(base))
		if err != nil || u.Host == "" {
			u = &url.URL{Scheme: "invalid", Host: "invalid"}
		}
		t.origin = u
	}
}

// WithAPIPrefix sets the URL path prefix that identifies API responses.
func WithAPIPrefix(prefix string) TransportOption {
	return func(t *Transport) {
		t.apiPrefix = prefix
	}
}

// WithSkipPaths adds path prefixes whose responses are never rewritten.
func WithSkipPaths(paths ...string) TransportOption {
	return func(t *Transport) {
		t.skipPaths = append(t.skipPaths, paths...)
	}
}

// WithFieldPolicy sets the field classification used for response bodies.
func WithFieldPolicy(policy *processor.FieldPolicy) TransportOption {
	return func(t *Transport) {
		t.json = processor.NewJSONProcessor(policy)
	}
}

// WithLogger sets the logger.
func WithLogger(logger logrus.FieldLogger) TransportOption {
	return func(t *Transport) {
		t.logger = logger
	}
}

// WithTracerProvider sets where interception spans are recorded.
func WithTracerProvider(tp trace.TracerProvider) TransportOption {
	return func(t *Transport) {
		t.tracer = tp.Tracer(tracerName)
	}
}

// NewTransport creates a disabled Transport translating into locale's
// current language with client.
func NewTransport(client *autolocale.Client, locale autolocale.Locale, opts ...TransportOption) *Transport {
	t := &Transport{
		base:      http.DefaultTransport,
		client:    client,
		locale:    locale,
		json:      processor.NewJSONProcessor(nil),
		apiPrefix: DefaultAPIPrefix,
		skipPaths: []string{"/api/translate"},
		logger:    logrus.StandardLogger(),
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Wrap installs t on a copy of hc, chaining to hc's existing transport.
func Wrap(hc *http.Client, client *autolocale.Client, locale autolocale.Locale, opts ...TransportOption) (*http.Client, *Transport) {
	if hc == nil {
		hc = http.DefaultClient
	}
	base := hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	t := NewTransport(client, locale, append([]TransportOption{WithBase(base)}, opts...)...)
	wrapped := *hc
	wrapped.Transport = t
	return &wrapped, t
}

// Enable turns interception on.
func (t *Transport) Enable() { t.enabled.Store(true) }

// Disable turns interception off; responses pass through untouched.
func (t *Transport) Disable() { t.enabled.Store(false) }

// Enabled reports whether interception is on.
func (t *Transport) Enabled() bool { return t.enabled.Load() }

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil || resp == nil {
		return resp, err
	}

	lang := t.locale.Current()
	if !t.enabled.Load() || t.client.IsSourceLang(lang) || !t.applies(req, resp) {
		return resp, nil
	}

	return t.translate(req.Context(), req, resp, lang), nil
}

// applies reports whether resp is a JSON response from an API route.
func (t *Transport) applies(req *http.Request, resp *http.Response) bool {
	if req.Method == http.MethodHead || resp.Body == nil || resp.Body == http.NoBody {
		return false
	}
	if t.origin != nil && !sameOrigin(t.origin, req.URL) {
		return false
	}

	path := req.URL.Path
	if !strings.HasPrefix(path, t.apiPrefix) {
		return false
	}
	for _, skip := range t.skipPaths {
		if strings.HasPrefix(path, skip) {
			return false
		}
	}

	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func sameOrigin(a, b *url.URL) bool {
	return strings.EqualFold(a.Scheme, b.Scheme) && hostPort(a) == hostPort(b)
}

// hostPort returns the lowercased host with the scheme's default port made
// explicit.
func hostPort(u *url.URL) string {
	port := u.Port()
	if port == "" {
		switch strings.ToLower(u.Scheme) {
		case "https":
			port = "443"
		default:
			port = "80"
		}
	}
	return net.JoinHostPort(strings.ToLower(u.Hostname()), port)
}

func (t *Transport) translate(ctx context.Context, req *http.Request, resp *http.Response, lang string) *http.Response {
	ctx, span := t.tracer.Start(ctx, "autolocale.InterceptResponse", trace.WithAttributes(
		attribute.String("http.url", req.URL.Redacted()),
		attribute.String("autolocale.target_lang", lang),
	))
	defer span.End()

	log := t.logger.WithFields(logrus.Fields{"url": req.URL.Redacted(), "target_lang": lang})

	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		log.WithError(err).Debug("reading response body failed, passing through")
		// Hand back what was read followed by the read error.
		resp.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), errReader{err}))
		return resp
	}

	proc := t.json.ForShape(t.shapeFor(req.URL.Path))
	result, err := t.client.ProcessWith(ctx, proc, string(body), lang)
	if err != nil || result.Content == string(body) {
		if err != nil {
			log.WithError(err).Debug("response not translated, passing through")
		}
		resp.Body = io.NopCloser(bytes.NewReader(body))
		return resp
	}

	span.SetAttributes(
		attribute.Int("autolocale.total_nodes", result.TotalNodes),
		attribute.Int("autolocale.translated", result.TranslatedCount),
	)
	return rebuild(resp, []byte(result.Content))
}

// shapeFor names the resource shape of an API path: the first segment after
// the prefix, so "/api/listings/42" selects "listings".
func (t *Transport) shapeFor(path string) string {
	rest := strings.TrimPrefix(path, t.apiPrefix)
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	return rest
}

// rebuild returns a new response carrying body with the original status and
// headers. Content-Length is set to the new size.
func rebuild(orig *http.Response, body []byte) *http.Response {
	resp := new(http.Response)
	*resp = *orig
	resp.Header = orig.Header.Clone()
	resp.Header.Del("Content-Encoding")
	resp.Header.Set("Content-Length", strconv.Itoa(len(body)))
	resp.ContentLength = int64(len(body))
	resp.Uncompressed = false
	resp.TransferEncoding = nil
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }
