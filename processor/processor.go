// Package processor walks translatable content: static HTML, live documents
// and JSON payloads.
package processor

import (
	"context"

	"github.com/ZaguanLabs/autolocale"
)

// ContentProcessor is an alias to the main package interface.
type ContentProcessor = autolocale.ContentProcessor

// TextNode is an alias to the main package type.
type TextNode = autolocale.TextNode

// Translator resolves single strings. *autolocale.Client implements it.
type Translator interface {
	Resolve(ctx context.Context, text, targetLang, sourceLang string) string
	SourceLang() string
}

var _ Translator = (*autolocale.Client)(nil)
