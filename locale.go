package autolocale

import "sync"

// Locale is what the localization pipeline needs from the application's
// locale context: the active language and one notification per change.
type Locale interface {
	Current() string
	Subscribe(fn func(lang string)) (unsubscribe func())
}

// LanguageState holds the process-wide active language.
//
// Set notifies subscribers synchronously, in subscription order, exactly
// once per actual change. Setting the language that is already active is a
// no-op and notifies nobody.
type LanguageState struct {
	mu      sync.RWMutex
	current string
	subs    map[int]func(string)
	order   []int
	nextID  int

	// notify serializes broadcasts so that two concurrent changes reach
	// every subscriber in the same order.
	notify sync.Mutex
}

// NewLanguageState creates a LanguageState starting at initial, or at
// fallback when initial is empty or not a valid language code.
func NewLanguageState(initial, fallback string) *LanguageState {
	lang, err := ParseLanguage(initial)
	if initial == "" || err != nil {
		lang = NormalizeLocale(fallback)
	}
	return &LanguageState{
		current: lang,
		subs:    make(map[int]func(string)),
	}
}

// Current returns the active language code.
func (s *LanguageState) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Set switches the active language and reports whether it changed.
func (s *LanguageState) Set(lang string) (bool, error) {
	normalized, err := ParseLanguage(lang)
	if err != nil {
		return false, err
	}

	s.notify.Lock()
	defer s.notify.Unlock()

	s.mu.Lock()
	if s.current == normalized {
		s.mu.Unlock()
		return false, nil
	}
	s.current = normalized
	subs := make([]func(string), 0, len(s.order))
	for _, id := range s.order {
		subs = append(subs, s.subs[id])
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(normalized)
	}
	return true, nil
}

// Subscribe registers fn for language changes. The returned function removes
// the subscription; calling it more than once is harmless.
func (s *LanguageState) Subscribe(fn func(lang string)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.order = append(s.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			for i, v := range s.order {
				if v == id {
					s.order = append(s.order[:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Verify LanguageState implements Locale
var _ Locale = (*LanguageState)(nil)
