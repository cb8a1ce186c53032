package processor

import (
	"strings"

	"github.com/ZaguanLabs/autolocale"
	"golang.org/x/net/html"
)

// textNodes returns the non-blank text nodes under root, skipping ignored
// tags and data-no-translate subtrees. Ancestors of root are checked as well
// so that a scoped walk inside a <pre> finds nothing.
func textNodes(root *html.Node, ignored map[string]bool) []*html.Node {
	for p := root.Parent; p != nil; p = p.Parent {
		if excluded(p, ignored) {
			return nil
		}
	}

	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			if excluded(n, ignored) {
				return
			}
		case html.TextNode:
			if strings.TrimSpace(n.Data) != "" {
				out = append(out, n)
			}
			return
		case html.CommentNode, html.DoctypeNode:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

func excluded(n *html.Node, ignored map[string]bool) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if ignored[strings.ToLower(n.Data)] {
		return true
	}
	for _, attr := range n.Attr {
		if attr.Key == autolocale.NoTranslateAttr {
			return true
		}
	}
	return false
}

func ignoredSet(tags []string) map[string]bool {
	ignored := make(map[string]bool, len(tags))
	for _, tag := range tags {
		ignored[strings.ToLower(tag)] = true
	}
	return ignored
}

// preserveWhitespace preserves the original leading/trailing whitespace.
func preserveWhitespace(original, translated string) string {
	trimmedLeft := strings.TrimLeft(original, " \t\n\r")
	leading := original[:len(original)-len(trimmedLeft)]
	trailing := trimmedLeft[len(strings.TrimRight(trimmedLeft, " \t\n\r")):]
	return leading + translated + trailing
}
