package autolocale

import "time"

const (
	// DefaultSourceLang is the language content is authored in.
	DefaultSourceLang = "en"

	// DefaultCacheTTL is how long a resolved translation stays valid.
	DefaultCacheTTL = 24 * time.Hour

	// DefaultMaxConcurrency bounds the number of lookups a single batch
	// issues at once.
	DefaultMaxConcurrency = 8
)

// TextNode represents a translatable unit of content.
type TextNode struct {
	ID       string            // Position-derived identifier within one document
	Text     string            // Original text content (trimmed)
	Hash     string            // SHA-256 hash of Text
	NodeType string            // Content type: "html_text", "json_string"
	Context  string            // Where the unit was found (parent tag, JSON path)
	Metadata map[string]string // Additional info (parent tag, field name, etc.)
}

// ProcessedContent is the result of a static translation pass.
type ProcessedContent struct {
	Content         string // Translated content
	TranslatedCount int    // Number of units resolved by the remote service
	CachedCount     int    // Number of cache or dictionary hits
	TotalNodes      int    // Total translatable nodes found
}

// Origin tells where a resolved string came from.
type Origin string

const (
	// OriginPassthrough means no translation was needed.
	OriginPassthrough Origin = "passthrough"
	// OriginCache means the translation was served from the cache.
	OriginCache Origin = "cache"
	// OriginDictionary means the static fallback dictionary had an entry.
	OriginDictionary Origin = "dictionary"
	// OriginRemote means the remote translation service answered.
	OriginRemote Origin = "remote"
	// OriginFallback means resolution failed and the original text was kept.
	OriginFallback Origin = "fallback"
)

// Resolution is a resolved string together with its origin.
type Resolution struct {
	Text   string
	Origin Origin
}

// RTLLanguages contains language codes that use right-to-left text direction.
var RTLLanguages = map[string]bool{
	"ar": true, // Arabic
	"he": true, // Hebrew
	"fa": true, // Persian/Farsi
	"ur": true, // Urdu
	"ps": true, // Pashto
	"sd": true, // Sindhi
	"ug": true, // Uyghur
}

// IgnoredTags contains HTML tags whose content should not be translated.
var IgnoredTags = map[string]bool{
	"script":   true,
	"style":    true,
	"code":     true,
	"pre":      true,
	"textarea": true,
	"noscript": true,
}

// NoTranslateAttr marks an element whose subtree must never be translated.
const NoTranslateAttr = "data-no-translate"
