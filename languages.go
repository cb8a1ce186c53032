package autolocale

import (
	"strings"

	"golang.org/x/text/language"
)

// LanguageNames maps locale codes to human-readable names for AI prompts.
var LanguageNames = map[string]string{
	"en_US": "English (United States)",
	"en_GB": "English (United Kingdom)",
	"fr_FR": "French (France)",
	"fr_RW": "French (Rwanda)",
	"rw_RW": "Kinyarwanda (Rwanda)",
	"sw_KE": "Swahili (Kenya)",
	"sw_TZ": "Swahili (Tanzania)",
	"de_DE": "German (Germany)",
	"es_ES": "Spanish (Spain)",
	"pt_BR": "Portuguese (Brazil)",
	"zh_CN": "Chinese (Simplified)",
	"ar_SA": "Arabic (Saudi Arabia)",
}

// ShortCodeToLocale maps short language codes to full locale codes.
var ShortCodeToLocale = map[string]string{
	"en": "en_US",
	"fr": "fr_FR",
	"rw": "rw_RW",
	"sw": "sw_KE",
	"de": "de_DE",
	"es": "es_ES",
	"pt": "pt_BR",
	"zh": "zh_CN",
	"ar": "ar_SA",
}

// GetLanguageName returns the human-readable name for a language code.
// Falls back to the code itself if not found.
func GetLanguageName(langCode string) string {
	code := NormalizeLocale(langCode)
	if name, ok := LanguageNames[code]; ok {
		return name
	}
	if locale, ok := ShortCodeToLocale[normalizeBaseLang(code)]; ok {
		if name, ok := LanguageNames[locale]; ok {
			return name
		}
	}
	return langCode
}

// GetDirection returns "rtl" for right-to-left languages, "ltr" otherwise.
func GetDirection(langCode string) string {
	if RTLLanguages[normalizeBaseLang(langCode)] {
		return "rtl"
	}
	return "ltr"
}

// IsRTL returns true if the language uses right-to-left text direction.
func IsRTL(langCode string) bool {
	return GetDirection(langCode) == "rtl"
}

// NormalizeLocale converts a language code to the standard format (e.g., "es-ES" → "es_ES").
func NormalizeLocale(langCode string) string {
	return strings.ReplaceAll(strings.TrimSpace(langCode), "-", "_")
}

// ToHTMLLang converts a locale code to HTML lang attribute format (e.g., "es_ES" → "es-ES").
func ToHTMLLang(langCode string) string {
	return strings.ReplaceAll(langCode, "_", "-")
}

// ParseLanguage validates a user-supplied code as a BCP 47 tag and returns it
// in locale format ("fr-rw" → "fr_RW").
func ParseLanguage(langCode string) (string, error) {
	tag, err := language.Parse(ToHTMLLang(strings.TrimSpace(langCode)))
	if err != nil {
		return "", err
	}
	return NormalizeLocale(tag.String()), nil
}

// SameLanguage reports whether two codes share a base language, so "en",
// "en_US" and "en-GB" all match. It only splits strings, which keeps the
// no-translation fast path cheap.
func SameLanguage(a, b string) bool {
	return normalizeBaseLang(a) == normalizeBaseLang(b)
}

// normalizeBaseLang extracts the base language code (e.g., "en" from "en_US").
func normalizeBaseLang(lang string) string {
	lang = strings.TrimSpace(lang)
	if i := strings.IndexAny(lang, "_-"); i >= 0 {
		lang = lang[:i]
	}
	return strings.ToLower(lang)
}
