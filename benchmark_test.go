package autolocale_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ZaguanLabs/autolocale"
	"github.com/ZaguanLabs/autolocale/cache"
	"github.com/ZaguanLabs/autolocale/processor"
	"github.com/ZaguanLabs/autolocale/provider"
	"github.com/sirupsen/logrus/hooks/test"
)

func BenchmarkHashText(b *testing.B) {
	text := "Hello World, this is a sample text for hashing"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		autolocale.HashText(text)
	}
}

func BenchmarkCacheKey(b *testing.B) {
	key := autolocale.CacheKey{Text: "Book now", SourceLang: "en", TargetLang: "fr_RW"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = key.String()
	}
}

func BenchmarkClassify(b *testing.B) {
	texts := []string{"Book now", "RWF 10,000", "https://example.com", "+250 788 123 456", "ABOUT THE HOTEL"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		autolocale.Classify(texts[i%len(texts)])
	}
}

func BenchmarkInMemoryCache_Get(b *testing.B) {
	c := cache.NewInMemoryCache(time.Hour)
	_ = c.Set("test-key", "test-value")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get("test-key")
	}
}

func BenchmarkInMemoryCache_Set(b *testing.B) {
	c := cache.NewInMemoryCache(time.Hour)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Set("test-key", "test-value")
	}
}

func BenchmarkHTMLProcessor_Extract_Small(b *testing.B) {
	proc := processor.NewHTMLProcessor()
	page := `<div><p>Hello</p><p>World</p></div>`
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = proc.Extract(page)
	}
}

func BenchmarkHTMLProcessor_Extract_Medium(b *testing.B) {
	proc := processor.NewHTMLProcessor()
	var sb strings.Builder
	sb.WriteString("<html><body>")
	for i := 0; i < 50; i++ {
		sb.WriteString(`<section><h2>Room type</h2><p>Spacious room with a view of the lake.</p><span>RWF 85,000</span></section>`)
	}
	sb.WriteString("</body></html>")
	page := sb.String()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = proc.Extract(page)
	}
}

func BenchmarkJSONProcessor_Extract(b *testing.B) {
	proc := processor.NewJSONProcessor(nil)
	payload := `{"rooms":[{"id":"r1","name":"Deluxe room","description":"Lake view","price":85000,"currency":"RWF"},{"id":"r2","name":"Suite","description":"Two bedrooms","price":120000,"currency":"RWF"}]}`
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = proc.Extract(payload)
	}
}

func BenchmarkClient_Resolve_Cached(b *testing.B) {
	logger, _ := test.NewNullLogger()
	client := autolocale.NewClient(provider.NewMockProvider(), autolocale.WithLogger(logger))
	ctx := context.Background()
	client.Resolve(ctx, "Hello", "es_ES", "")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		client.Resolve(ctx, "Hello", "es_ES", "")
	}
}

func BenchmarkClient_Process_Cached(b *testing.B) {
	logger, _ := test.NewNullLogger()
	client := autolocale.NewClient(provider.NewMockProvider(),
		autolocale.WithLogger(logger),
		autolocale.WithProcessor(processor.NewHTMLProcessor()),
	)
	ctx := context.Background()
	page := `<html><body><h1>Hello</h1><p>Welcome to our site.</p></body></html>`
	_, _ = client.Process(ctx, page, "html", "es_ES")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = client.Process(ctx, page, "html", "es_ES")
	}
}

func BenchmarkGetDirection(b *testing.B) {
	for i := 0; i < b.N; i++ {
		autolocale.GetDirection("ar_SA")
	}
}

func BenchmarkGetLanguageName(b *testing.B) {
	for i := 0; i < b.N; i++ {
		autolocale.GetLanguageName("fr_RW")
	}
}
