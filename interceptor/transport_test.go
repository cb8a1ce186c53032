package interceptor

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ZaguanLabs/autolocale"
	"github.com/ZaguanLabs/autolocale/processor"
	"github.com/sirupsen/logrus/hooks/test"
)

type upperProvider struct{ calls atomic.Int32 }

func (p *upperProvider) Translate(ctx context.Context, req autolocale.TranslateRequest) (string, error) {
	p.calls.Add(1)
	return strings.ToUpper(req.Text), nil
}

type fixture struct {
	srv      *httptest.Server
	http     *http.Client
	tr       *Transport
	state    *autolocale.LanguageState
	provider *upperProvider
}

func newFixture(t *testing.T, handler http.HandlerFunc, opts ...TransportOption) *fixture {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger, _ := test.NewNullLogger()
	provider := &upperProvider{}
	client := autolocale.NewClient(provider, autolocale.WithLogger(logger))
	state := autolocale.NewLanguageState("fr", "en")

	opts = append([]TransportOption{WithLogger(logger), WithAPIOrigin(srv.URL)}, opts...)
	hc, tr := Wrap(srv.Client(), client, state, opts...)
	tr.Enable()
	return &fixture{srv: srv, http: hc, tr: tr, state: state, provider: provider}
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("X-Total-Count", "1")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func get(t *testing.T, f *fixture, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := f.http.Get(f.srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return resp, body
}

func TestTransport_TranslatesAPIResponse(t *testing.T) {
	f := newFixture(t, jsonHandler(http.StatusCreated,
		`{"id":"abc123","email":"a@b.com","title":"Luxury Apartment","rating":4.5}`))

	resp, body := get(t, f, "/api/listings/abc123")

	want := `{"id":"abc123","email":"a@b.com","title":"LUXURY APARTMENT","rating":4.5}`
	if string(body) != want {
		t.Errorf("body = %s, want %s", body, want)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Total-Count") != "1" {
		t.Error("original headers should be kept")
	}
	if resp.ContentLength != int64(len(want)) || resp.Header.Get("Content-Length") != strconv.Itoa(len(want)) {
		t.Errorf("content length = %d / %q", resp.ContentLength, resp.Header.Get("Content-Length"))
	}
}

func TestTransport_InvalidJSONPassesThrough(t *testing.T) {
	original := `{"title": "Luxury Apartment", broken`
	f := newFixture(t, jsonHandler(http.StatusOK, original))

	resp, body := get(t, f, "/api/listings")
	if !bytes.Equal(body, []byte(original)) {
		t.Errorf("body changed: %q", body)
	}
	if resp.StatusCode != http.StatusOK || resp.Header.Get("X-Total-Count") != "1" {
		t.Errorf("status or headers changed: %d %v", resp.StatusCode, resp.Header)
	}
	if f.provider.calls.Load() != 0 {
		t.Error("nothing should be translated")
	}
}

func TestTransport_Passthrough(t *testing.T) {
	body := `{"title":"Luxury Apartment"}`

	tests := []struct {
		name    string
		path    string
		handler http.HandlerFunc
		setup   func(f *fixture)
	}{
		{"non-api path", "/static/data.json", jsonHandler(http.StatusOK, body), nil},
		{"translate endpoint", "/api/translate", jsonHandler(http.StatusOK, body), nil},
		{"not json", "/api/listings", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte(body))
		}, nil},
		{"disabled", "/api/listings", jsonHandler(http.StatusOK, body), func(f *fixture) { f.tr.Disable() }},
		{"source language", "/api/listings", jsonHandler(http.StatusOK, body), func(f *fixture) {
			if _, err := f.state.Set("en_GB"); err != nil {
				t.Fatal(err)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.handler)
			if tt.setup != nil {
				tt.setup(f)
			}
			_, got := get(t, f, tt.path)
			if string(got) != body {
				t.Errorf("body = %s", got)
			}
			if f.provider.calls.Load() != 0 {
				t.Errorf("provider called %d times", f.provider.calls.Load())
			}
		})
	}
}

func TestTransport_OtherOriginPassesThrough(t *testing.T) {
	body := `{"title":"Luxury Apartment","address":"KG 7 Ave"}`
	f := newFixture(t, jsonHandler(http.StatusOK, `{"title":"Home"}`))
	geocoder := httptest.NewServer(jsonHandler(http.StatusOK, body))
	defer geocoder.Close()

	resp, err := f.http.Get(geocoder.URL + "/api/maps/geocode")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	got, _ := io.ReadAll(resp.Body)

	if !bytes.Equal(got, []byte(body)) {
		t.Errorf("body = %s, want %s", got, body)
	}
	if f.provider.calls.Load() != 0 {
		t.Errorf("provider called %d times", f.provider.calls.Load())
	}

	_, own := get(t, f, "/api/home")
	if string(own) != `{"title":"HOME"}` {
		t.Errorf("configured origin not translated: %s", own)
	}
}

func TestSameOrigin(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"http://api.example", "http://api.example:80/api/x", true},
		{"https://API.example", "https://api.example/api/x", true},
		{"http://api.example", "https://api.example/api/x", false},
		{"http://api.example:8000", "http://api.example/api/x", false},
		{"http://api.example", "http://maps.example/api/x", false},
	}
	for _, tt := range tests {
		a, _ := url.Parse(tt.a)
		b, _ := url.Parse(tt.b)
		if got := sameOrigin(a, b); got != tt.want {
			t.Errorf("sameOrigin(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestTransport_ShapeFromPath(t *testing.T) {
	policy := processor.DefaultFieldPolicy().WithShape("bookings", processor.Shape{"status": processor.Protect})
	f := newFixture(t, jsonHandler(http.StatusOK, `{"status":"Confirmed","note":"Late check-in"}`), WithFieldPolicy(policy))

	_, body := get(t, f, "/api/bookings/7")
	var got map[string]string
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("invalid body %s: %v", body, err)
	}
	if got["status"] != "Confirmed" || got["note"] != "LATE CHECK-IN" {
		t.Errorf("unexpected body: %v", got)
	}

	_, body = get(t, f, "/api/reviews")
	if !strings.Contains(string(body), `"status":"CONFIRMED"`) {
		t.Errorf("other routes use the default policy: %s", body)
	}
}

func TestTransport_TransportErrorPassesThrough(t *testing.T) {
	f := newFixture(t, jsonHandler(http.StatusOK, `{}`))
	f.srv.Close()

	if _, err := f.http.Get(f.srv.URL + "/api/listings"); err == nil {
		t.Error("expected transport error")
	}
}
