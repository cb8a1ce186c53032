package autolocale

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"
)

// ContentProcessor extracts translatable units from a content type and
// writes translations back.
type ContentProcessor interface {
	Extract(content string) (interface{}, []TextNode, error)
	Apply(parsed interface{}, nodes []TextNode, translations map[string]string) (string, error)
	ContentType() string
}

// Process translates static content of the given type with the processor
// registered for it.
func (c *Client) Process(ctx context.Context, content, contentType, targetLang string) (*ProcessedContent, error) {
	processor, ok := c.processors[contentType]
	if !ok {
		return nil, &ProcessorError{
			Message:     "no processor registered for content type",
			ContentType: contentType,
		}
	}
	return c.ProcessWith(ctx, processor, content, targetLang)
}

// ProcessWith translates static content with an explicit processor.
// Translation failures leave units in the source language; only extraction
// and serialization errors are returned.
func (c *Client) ProcessWith(ctx context.Context, processor ContentProcessor, content, targetLang string) (*ProcessedContent, error) {
	if c.IsSourceLang(targetLang) {
		return &ProcessedContent{Content: content}, nil
	}

	parsed, nodes, err := processor.Extract(content)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return &ProcessedContent{Content: content}, nil
	}

	translations, cachedCount, translatedCount := c.ResolveNodes(ctx, nodes, targetLang)

	result, err := processor.Apply(parsed, nodes, translations)
	if err != nil {
		return nil, err
	}

	if processor.ContentType() == "html" {
		result = setHTMLAttributes(result, targetLang)
	}

	return &ProcessedContent{
		Content:         result,
		TranslatedCount: translatedCount,
		CachedCount:     cachedCount,
		TotalNodes:      len(nodes),
	}, nil
}

// ResolveNodes resolves every eligible node concurrently, at most
// maxConcurrency at a time, and returns translations keyed by node hash.
// Nodes sharing a hash are looked up once; ineligible and failed nodes are
// absent from the map.
func (c *Client) ResolveNodes(ctx context.Context, nodes []TextNode, targetLang string) (translations map[string]string, cachedCount, translatedCount int) {
	var unique []TextNode
	seen := make(map[string]bool)
	for _, node := range nodes {
		if seen[node.Hash] || ShouldSkip(node.Text) {
			continue
		}
		seen[node.Hash] = true
		unique = append(unique, node)
	}

	results := make([]Resolution, len(unique))
	var g errgroup.Group
	g.SetLimit(c.maxConcurrency)
	for i, node := range unique {
		g.Go(func() error {
			results[i] = c.Lookup(ctx, node.Text, targetLang, "")
			return nil
		})
	}
	_ = g.Wait()

	translations = make(map[string]string, len(unique))
	for i, res := range results {
		switch res.Origin {
		case OriginCache, OriginDictionary:
			cachedCount++
		case OriginRemote:
			translatedCount++
		default:
			continue
		}
		translations[unique[i].Hash] = res.Text
	}
	return translations, cachedCount, translatedCount
}

// setHTMLAttributes sets lang and dir attributes on the <html> tag.
func setHTMLAttributes(html, lang string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}

	htmlTag := doc.Find("html")
	if htmlTag.Length() == 0 {
		return html
	}
	htmlTag.SetAttr("lang", ToHTMLLang(lang))
	htmlTag.SetAttr("dir", GetDirection(lang))

	result, err := doc.Html()
	if err != nil {
		return html
	}
	return result
}
