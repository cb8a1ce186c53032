// Package cache provides translation caching implementations.
package cache

import "time"

// DefaultTTL is how long a translation stays valid once stored.
const DefaultTTL = 24 * time.Hour

// TranslationCache is the interface for translation caching.
type TranslationCache interface {
	// Get retrieves a cached translation. Returns empty string and false if not found or expired.
	Get(key string) (string, bool)

	// Set stores a translation in the cache, replacing any previous entry.
	Set(key string, value string) error
}
