package processor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ZaguanLabs/autolocale"
	"golang.org/x/net/html"
)

// HTMLProcessor extracts and applies translations to static HTML content.
type HTMLProcessor struct {
	ignoredTags map[string]bool
}

// NewHTMLProcessor creates a new HTML processor with default ignored tags.
func NewHTMLProcessor() *HTMLProcessor {
	return &HTMLProcessor{
		ignoredTags: autolocale.IgnoredTags,
	}
}

// NewHTMLProcessorWithIgnoredTags creates a new HTML processor with custom ignored tags.
func NewHTMLProcessorWithIgnoredTags(tags []string) *HTMLProcessor {
	return &HTMLProcessor{
		ignoredTags: ignoredSet(tags),
	}
}

// parsedHTML holds the parsed document and every text node that may be
// rewritten, including repeats of the same string.
type parsedHTML struct {
	doc   *goquery.Document
	texts []*html.Node
}

// Extract parses HTML and returns one TextNode per distinct eligible string.
func (p *HTMLProcessor) Extract(content string) (interface{}, []autolocale.TextNode, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, nil, &autolocale.ProcessorError{
			Message:     "failed to parse HTML",
			Cause:       err,
			ContentType: "html",
		}
	}

	var nodes []autolocale.TextNode
	var texts []*html.Node
	seenHashes := make(map[string]bool)

	for _, root := range doc.Nodes {
		for _, n := range textNodes(root, p.ignoredTags) {
			trimmed := strings.TrimSpace(n.Data)
			if autolocale.ShouldSkip(trimmed) {
				continue
			}
			texts = append(texts, n)

			hash := autolocale.HashText(trimmed)
			if seenHashes[hash] {
				continue
			}
			seenHashes[hash] = true

			node := autolocale.TextNode{
				ID:       fmt.Sprintf("node-%d", len(nodes)),
				Text:     trimmed,
				Hash:     hash,
				NodeType: "html_text",
				Context:  describeContext(n),
				Metadata: map[string]string{},
			}
			if n.Parent != nil {
				node.Metadata["parent_tag"] = n.Parent.Data
			}
			nodes = append(nodes, node)
		}
	}

	return &parsedHTML{doc: doc, texts: texts}, nodes, nil
}

// Apply writes translations back into the parsed document, keyed by the hash
// of each text node's trimmed content.
func (p *HTMLProcessor) Apply(parsed interface{}, nodes []autolocale.TextNode, translations map[string]string) (string, error) {
	ph, ok := parsed.(*parsedHTML)
	if !ok {
		return "", &autolocale.ProcessorError{
			Message:     "invalid parsed content type",
			ContentType: "html",
		}
	}

	for _, n := range ph.texts {
		if translated, ok := translations[autolocale.HashText(n.Data)]; ok {
			n.Data = preserveWhitespace(n.Data, translated)
		}
	}

	out, err := ph.doc.Html()
	if err != nil {
		return "", &autolocale.ProcessorError{
			Message:     "failed to serialize HTML",
			Cause:       err,
			ContentType: "html",
		}
	}
	return out, nil
}

// ContentType returns "html".
func (p *HTMLProcessor) ContentType() string {
	return "html"
}

// describeContext summarizes where a text node sits, e.g.
// `in <button class="cta"> | inside: main > section`.
func describeContext(n *html.Node) string {
	parent := n.Parent
	if parent == nil {
		return ""
	}

	var parts []string
	tag := "<" + parent.Data + ">"
	for _, attr := range parent.Attr {
		if attr.Key == "class" || attr.Key == "id" {
			tag = fmt.Sprintf("<%s %s=%q>", parent.Data, attr.Key, attr.Val)
			break
		}
	}
	parts = append(parts, "in "+tag)

	var ancestors []string
	for a := parent.Parent; a != nil && len(ancestors) < 3; a = a.Parent {
		if a.Type == html.ElementNode && a.Data != "html" && a.Data != "body" {
			ancestors = append([]string{a.Data}, ancestors...)
		}
	}
	if len(ancestors) > 0 {
		parts = append(parts, "inside: "+strings.Join(ancestors, " > "))
	}

	return strings.Join(parts, " | ")
}

// Verify HTMLProcessor implements ContentProcessor
var _ ContentProcessor = (*HTMLProcessor)(nil)
