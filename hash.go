package autolocale

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashText computes the SHA-256 hash of the trimmed text.
func HashText(text string) string {
	trimmed := strings.TrimSpace(text)
	hash := sha256.Sum256([]byte(trimmed))
	return hex.EncodeToString(hash[:])
}

// CacheKey identifies one translation: the same text may be cached once per
// language pair.
type CacheKey struct {
	Text       string
	SourceLang string
	TargetLang string
}

// String returns the composite key used by cache backends. The text is
// hashed so keys stay short and safe for Redis.
func (k CacheKey) String() string {
	return HashText(k.Text) + ":" + normalizeBaseLang(k.SourceLang) + ":" + NormalizeLocale(k.TargetLang)
}
