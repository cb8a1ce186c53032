package processor

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/ZaguanLabs/autolocale"
	"github.com/tidwall/gjson"
)

// FieldRule decides whether a JSON field's value may be translated.
type FieldRule int

const (
	Translate FieldRule = iota + 1
	Protect
)

// Shape classifies the fields of one resource type. Fields it does not name
// fall back to the policy defaults.
type Shape map[string]FieldRule

// defaultProtected lists field names whose values are never translated:
// identifiers, contact details, links and media, credentials.
var defaultProtected = []string{
	"id", "_id", "uuid", "slug", "sku", "code", "key",
	"email", "phone", "phonenumber", "mobile", "tel",
	"url", "href", "link", "website", "src",
	"image", "images", "avatar", "photo", "photos", "thumbnail", "logo", "icon",
	"token", "accesstoken", "refreshtoken", "password", "secret", "apikey",
	"currency", "locale", "lang", "language",
	"createdat", "updatedat", "date",
}

var protectedSuffixes = []string{"Id", "_id", "ID", "Url", "_url", "URL"}

// FieldPolicy classifies JSON fields as translatable or protected. Per-shape
// rules take precedence over the default list.
type FieldPolicy struct {
	protected map[string]bool
	shapes    map[string]Shape
}

// DefaultFieldPolicy returns a policy protecting the common identifier,
// contact, media and credential fields.
func DefaultFieldPolicy() *FieldPolicy {
	return NewFieldPolicy(defaultProtected...)
}

// NewFieldPolicy returns a policy protecting exactly the named fields
// (case-insensitive) plus the id and url suffixes.
func NewFieldPolicy(protected ...string) *FieldPolicy {
	p := &FieldPolicy{
		protected: make(map[string]bool, len(protected)),
		shapes:    make(map[string]Shape),
	}
	for _, field := range protected {
		p.protected[strings.ToLower(field)] = true
	}
	return p
}

// WithShape returns a copy of p with shape registered under name. A nested
// object or array found under a field called name is classified by it, as is
// the whole body when a route selects it.
func (p *FieldPolicy) WithShape(name string, shape Shape) *FieldPolicy {
	cp := &FieldPolicy{
		protected: p.protected,
		shapes:    make(map[string]Shape, len(p.shapes)+1),
	}
	for k, v := range p.shapes {
		cp.shapes[k] = v
	}
	cp.shapes[name] = shape
	return cp
}

// Shape returns the shape registered under name.
func (p *FieldPolicy) Shape(name string) (Shape, bool) {
	s, ok := p.shapes[name]
	return s, ok
}

// Protected reports whether field must pass through unchanged within shape.
func (p *FieldPolicy) Protected(shape Shape, field string) bool {
	if rule, ok := shape[field]; ok {
		return rule == Protect
	}
	if p.protected[strings.ToLower(field)] {
		return true
	}
	for _, suffix := range protectedSuffixes {
		if len(field) > len(suffix) && strings.HasSuffix(field, suffix) {
			return true
		}
	}
	return false
}

// childShape picks the shape for the value under field: a registered shape of
// that name, otherwise the enclosing one.
func (p *FieldPolicy) childShape(shape Shape, field string) Shape {
	if s, ok := p.shapes[field]; ok {
		return s
	}
	return shape
}

// JSONProcessor translates the string leaves of a JSON document that its
// FieldPolicy allows, preserving key order and every other value verbatim.
type JSONProcessor struct {
	policy *FieldPolicy
	shape  Shape
}

// NewJSONProcessor creates a JSON processor. A nil policy means
// DefaultFieldPolicy.
func NewJSONProcessor(policy *FieldPolicy) *JSONProcessor {
	if policy == nil {
		policy = DefaultFieldPolicy()
	}
	return &JSONProcessor{policy: policy}
}

// ForShape returns a processor that classifies the document root with the
// named shape. Unknown names return p unchanged.
func (p *JSONProcessor) ForShape(name string) *JSONProcessor {
	shape, ok := p.policy.Shape(name)
	if !ok {
		return p
	}
	return &JSONProcessor{policy: p.policy, shape: shape}
}

// Policy returns the field policy.
func (p *JSONProcessor) Policy() *FieldPolicy {
	return p.policy
}

type parsedJSON struct {
	raw string
}

// Extract returns one TextNode per eligible string leaf, identified by its
// gjson path.
func (p *JSONProcessor) Extract(content string) (interface{}, []autolocale.TextNode, error) {
	if !gjson.Valid(content) {
		return nil, nil, &autolocale.ProcessorError{
			Message:     "invalid JSON",
			ContentType: "json",
		}
	}

	var nodes []autolocale.TextNode
	p.visit(gjson.Parse(content), "", "", p.shape, func(path, field string, v gjson.Result) {
		text := strings.TrimSpace(v.Str)
		if autolocale.ShouldSkip(text) {
			return
		}
		nodes = append(nodes, autolocale.TextNode{
			ID:       path,
			Text:     text,
			Hash:     autolocale.HashText(text),
			NodeType: "json_string",
			Context:  path,
			Metadata: map[string]string{"field": field},
		})
	})

	return &parsedJSON{raw: content}, nodes, nil
}

func (p *JSONProcessor) visit(v gjson.Result, path, field string, shape Shape, fn func(path, field string, v gjson.Result)) {
	switch {
	case v.IsObject():
		v.ForEach(func(key, val gjson.Result) bool {
			name := key.String()
			if !p.policy.Protected(shape, name) {
				p.visit(val, joinPath(path, name), name, p.policy.childShape(shape, name), fn)
			}
			return true
		})
	case v.IsArray():
		i := 0
		v.ForEach(func(_, val gjson.Result) bool {
			p.visit(val, joinPath(path, strconv.Itoa(i)), field, shape, fn)
			i++
			return true
		})
	case v.Type == gjson.String:
		fn(path, field, v)
	}
}

// Apply rebuilds the document with translated leaves. When no leaf changes,
// the original text is returned as is. Otherwise the result is compact:
// whitespace between tokens in the original is not kept.
func (p *JSONProcessor) Apply(parsed interface{}, nodes []autolocale.TextNode, translations map[string]string) (string, error) {
	pj, ok := parsed.(*parsedJSON)
	if !ok {
		return "", &autolocale.ProcessorError{
			Message:     "invalid parsed content type",
			ContentType: "json",
		}
	}

	var b strings.Builder
	b.Grow(len(pj.raw))
	if !p.rebuild(&b, gjson.Parse(pj.raw), p.shape, translations) {
		return pj.raw, nil
	}
	return b.String(), nil
}

func (p *JSONProcessor) rebuild(b *strings.Builder, v gjson.Result, shape Shape, translations map[string]string) bool {
	changed := false
	switch {
	case v.IsObject():
		b.WriteByte('{')
		first := true
		v.ForEach(func(key, val gjson.Result) bool {
			if !first {
				b.WriteByte(',')
			}
			first = false
			b.WriteString(key.Raw)
			b.WriteByte(':')

			name := key.String()
			if p.policy.Protected(shape, name) {
				b.WriteString(val.Raw)
			} else if p.rebuild(b, val, p.policy.childShape(shape, name), translations) {
				changed = true
			}
			return true
		})
		b.WriteByte('}')
	case v.IsArray():
		b.WriteByte('[')
		first := true
		v.ForEach(func(_, val gjson.Result) bool {
			if !first {
				b.WriteByte(',')
			}
			first = false
			if p.rebuild(b, val, shape, translations) {
				changed = true
			}
			return true
		})
		b.WriteByte(']')
	case v.Type == gjson.String:
		if translated, ok := translations[autolocale.HashText(v.Str)]; ok {
			encoded := quote(preserveWhitespace(v.Str, translated))
			b.WriteString(encoded)
			return encoded != v.Raw
		}
		b.WriteString(v.Raw)
	default:
		b.WriteString(v.Raw)
	}
	return changed
}

// ContentType returns "json".
func (p *JSONProcessor) ContentType() string {
	return "json"
}

func joinPath(path, elem string) string {
	elem = escapePath(elem)
	if path == "" {
		return elem
	}
	return path + "." + elem
}

// escapePath escapes gjson path metacharacters in a key.
func escapePath(key string) string {
	if !strings.ContainsAny(key, `.*?|#@\`) {
		return key
	}
	var b strings.Builder
	for _, r := range key {
		if strings.ContainsRune(`.*?|#@\`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func quote(s string) string {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(b.String(), "\n")
}

// Verify JSONProcessor implements ContentProcessor
var _ ContentProcessor = (*JSONProcessor)(nil)
