package processor

import (
	"io"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/ZaguanLabs/autolocale"
	"golang.org/x/net/html"
)

// markState is the lifecycle of a marked text node within one epoch.
type markState int

const (
	markCleared markState = iota
	markProcessing
	markApplied
)

// mark is the per-node translation marker. It lives on the document, never
// in the cache, and keeps the node's source text so that any language can be
// produced from it.
type mark struct {
	epoch    uint64
	state    markState
	original string // untrimmed source text
	applied  string // text last written by Apply
}

// Claim is a text node reserved for translation within one epoch.
type Claim struct {
	Text  string // trimmed source text
	Epoch uint64

	node *html.Node
}

// Document is a live HTML tree. Mutations made through its methods notify
// subscribers with the affected subtrees, which is how content rendered after
// the initial walk reaches the observer.
type Document struct {
	mu    sync.Mutex
	doc   *goquery.Document
	marks map[*html.Node]*mark

	subsMu  sync.Mutex
	subs    map[uint64]func([]*html.Node)
	order   []uint64
	nextSub uint64
}

// NewDocument parses r into a live document.
func NewDocument(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, &autolocale.ProcessorError{
			Message:     "failed to parse HTML",
			Cause:       err,
			ContentType: "html",
		}
	}
	return &Document{
		doc:   doc,
		marks: make(map[*html.Node]*mark),
		subs:  make(map[uint64]func([]*html.Node)),
	}, nil
}

// ParseDocument parses an HTML string into a live document.
func ParseDocument(content string) (*Document, error) {
	return NewDocument(strings.NewReader(content))
}

// Html renders the current tree.
func (d *Document) Html() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.Html()
}

// Text returns the combined text of the elements matching selector.
func (d *Document) Text(selector string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.Find(selector).Text()
}

// Attr returns an attribute of the first element matching selector.
func (d *Document) Attr(selector, name string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.Find(selector).First().Attr(name)
}

func (d *Document) roots() []*html.Node {
	return d.doc.Nodes
}

// Observe registers fn to receive the subtrees affected by each mutation.
// Notifications are delivered synchronously after the mutation, outside the
// document lock. The returned function unsubscribes and is idempotent.
func (d *Document) Observe(fn func(scope []*html.Node)) func() {
	d.subsMu.Lock()
	defer d.subsMu.Unlock()

	d.nextSub++
	id := d.nextSub
	d.subs[id] = fn
	d.order = append(d.order, id)

	return func() {
		d.subsMu.Lock()
		defer d.subsMu.Unlock()
		if _, ok := d.subs[id]; !ok {
			return
		}
		delete(d.subs, id)
		for i, v := range d.order {
			if v == id {
				d.order = append(d.order[:i], d.order[i+1:]...)
				break
			}
		}
	}
}

func (d *Document) notify(scope []*html.Node) {
	if len(scope) == 0 {
		return
	}

	d.subsMu.Lock()
	fns := make([]func([]*html.Node), 0, len(d.order))
	for _, id := range d.order {
		fns = append(fns, d.subs[id])
	}
	d.subsMu.Unlock()

	for _, fn := range fns {
		fn(scope)
	}
}

// AppendHTML parses fragment and appends it to every element matching
// selector. It returns the number of elements that received content.
func (d *Document) AppendHTML(selector, fragment string) (int, error) {
	d.mu.Lock()
	targets := d.doc.Find(selector).Nodes
	var added []*html.Node
	for _, target := range targets {
		nodes, err := html.ParseFragment(strings.NewReader(fragment), target)
		if err != nil {
			d.mu.Unlock()
			return 0, &autolocale.ProcessorError{
				Message:     "failed to parse fragment",
				Cause:       err,
				ContentType: "html",
			}
		}
		for _, n := range nodes {
			target.AppendChild(n)
			added = append(added, n)
		}
	}
	d.mu.Unlock()

	d.notify(added)
	return len(targets), nil
}

// SetText replaces the contents of every element matching selector with text.
func (d *Document) SetText(selector, text string) int {
	d.mu.Lock()
	sel := d.doc.Find(selector)
	for _, n := range sel.Nodes {
		d.forgetChildren(n)
	}
	sel.SetText(text)
	scope := append([]*html.Node(nil), sel.Nodes...)
	d.mu.Unlock()

	d.notify(scope)
	return len(scope)
}

// Remove detaches every element matching selector.
func (d *Document) Remove(selector string) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	sel := d.doc.Find(selector)
	for _, n := range sel.Nodes {
		d.forget(n)
	}
	sel.Remove()
	return len(sel.Nodes)
}

// forget drops the markers of n and its descendants. Must hold d.mu.
func (d *Document) forget(n *html.Node) {
	delete(d.marks, n)
	d.forgetChildren(n)
}

func (d *Document) forgetChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.forget(c)
	}
}

// SetLanguage sets lang and dir on the <html> element.
func (d *Document) SetLanguage(lang string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	htmlTag := d.doc.Find("html")
	htmlTag.SetAttr("lang", autolocale.ToHTMLLang(lang))
	htmlTag.SetAttr("dir", autolocale.GetDirection(lang))
}

// Claim reserves, for epoch, every eligible text node under scope that has
// not been claimed in that epoch yet. A nil scope means the whole document.
// Claimed nodes are marked as processing before Claim returns, so a second
// walk over the same region yields nothing. Nodes marked by a later epoch are
// never taken back by an earlier one.
func (d *Document) Claim(epoch uint64, scope []*html.Node, ignored map[string]bool) []Claim {
	d.mu.Lock()
	defer d.mu.Unlock()

	if scope == nil {
		scope = d.roots()
	}

	var claims []Claim
	for _, root := range scope {
		if !d.attached(root) {
			continue
		}
		for _, n := range textNodes(root, ignored) {
			m := d.marks[n]
			if m != nil && (m.epoch > epoch || m.epoch == epoch && m.state != markCleared) {
				continue
			}

			original := n.Data
			if m != nil && (n.Data == m.applied || n.Data == m.original) {
				original = m.original
			}
			text := strings.TrimSpace(original)
			if autolocale.ShouldSkip(text) {
				continue
			}

			d.marks[n] = &mark{
				epoch:    epoch,
				state:    markProcessing,
				original: original,
				applied:  n.Data,
			}
			claims = append(claims, Claim{Text: text, Epoch: epoch, node: n})
		}
	}
	return claims
}

// Apply writes translated into the claimed node if the claim is still
// current: the marker belongs to the same epoch and is still processing, and
// the node is still in the tree. It reports whether the write happened.
func (d *Document) Apply(c Claim, translated string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	m := d.marks[c.node]
	if m == nil || m.epoch != c.Epoch || m.state != markProcessing || !d.attached(c.node) {
		return false
	}

	c.node.Data = preserveWhitespace(m.original, translated)
	m.state = markApplied
	m.applied = c.node.Data
	return true
}

// Release returns an unapplied claim so that a later walk can pick it up.
func (d *Document) Release(c Claim) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if m := d.marks[c.node]; m != nil && m.epoch == c.Epoch && m.state == markProcessing {
		m.state = markCleared
	}
}

// ClearMarks invalidates every marker so all text becomes eligible again.
// Source text is retained.
func (d *Document) ClearMarks() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, m := range d.marks {
		m.epoch = 0
		m.state = markCleared
	}
}

// Restore puts the source text back into every node still showing a
// translation and drops all markers.
func (d *Document) Restore() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for n, m := range d.marks {
		if n.Data == m.applied {
			n.Data = m.original
		}
	}
	d.marks = make(map[*html.Node]*mark)
}

// attached reports whether n is reachable from the document root. Must hold d.mu.
func (d *Document) attached(n *html.Node) bool {
	for _, root := range d.roots() {
		for p := n; p != nil; p = p.Parent {
			if p == root {
				return true
			}
		}
	}
	return false
}
