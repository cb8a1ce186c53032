package processor

import (
	"context"
	"sync"

	"github.com/ZaguanLabs/autolocale"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
	"golang.org/x/sync/semaphore"
)

// State is the observer lifecycle state.
type State string

const (
	StateStopped   State = "stopped"
	StateObserving State = "observing"
)

// Observer keeps a Document translated into the active language. It walks
// the tree once on Start, then walks only the subtrees reported by the
// document's change notifications. Each claimed text node is resolved in its
// own goroutine and applied only if the language epoch it was claimed under
// is still current.
type Observer struct {
	doc        *Document
	translator Translator
	ignored    map[string]bool
	sem        *semaphore.Weighted
	logger     logrus.FieldLogger

	mu          sync.RWMutex
	epoch       uint64
	state       State
	lang        string
	unsubscribe func()

	wg sync.WaitGroup
}

// ObserverOption configures an Observer.
type ObserverOption func(*Observer)

// WithConcurrency caps how many nodes are resolved at once. Zero or less
// leaves fan-out unbounded; lookups for the same string are still shared.
func WithConcurrency(n int) ObserverOption {
	return func(o *Observer) {
		if n > 0 {
			o.sem = semaphore.NewWeighted(int64(n))
		} else {
			o.sem = nil
		}
	}
}

// WithIgnoredTags replaces the set of tags whose content is never translated.
func WithIgnoredTags(tags []string) ObserverOption {
	return func(o *Observer) {
		o.ignored = ignoredSet(tags)
	}
}

// WithObserverLogger sets the logger.
func WithObserverLogger(logger logrus.FieldLogger) ObserverOption {
	return func(o *Observer) {
		o.logger = logger
	}
}

// NewObserver creates a stopped observer for doc.
func NewObserver(doc *Document, translator Translator, opts ...ObserverOption) *Observer {
	o := &Observer{
		doc:        doc,
		translator: translator,
		ignored:    autolocale.IgnoredTags,
		logger:     logrus.StandardLogger(),
		state:      StateStopped,
		lang:       translator.SourceLang(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Start begins keeping the document in lang. Starting in the source language
// stops observation and puts the source text back.
func (o *Observer) Start(ctx context.Context, lang string) {
	o.mu.Lock()
	o.detach()
	o.epoch++
	epoch := o.epoch
	o.lang = lang

	if autolocale.SameLanguage(lang, o.translator.SourceLang()) {
		o.state = StateStopped
		o.mu.Unlock()

		o.doc.Restore()
		o.doc.SetLanguage(lang)
		return
	}

	o.state = StateObserving
	o.unsubscribe = o.doc.Observe(func(scope []*html.Node) {
		o.submit(ctx, epoch, scope)
	})
	o.mu.Unlock()

	o.doc.SetLanguage(lang)
	o.submit(ctx, epoch, nil)
}

// Restart invalidates every marker and starts again in lang, so that text
// translated under the previous language is translated anew from its source.
func (o *Observer) Restart(ctx context.Context, lang string) {
	o.Stop()
	o.doc.ClearMarks()
	o.Start(ctx, lang)
}

// Stop disconnects from the document. Translations still in flight are
// discarded when they arrive.
func (o *Observer) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.detach()
	o.epoch++
	o.state = StateStopped
}

// detach must be called with o.mu held.
func (o *Observer) detach() {
	if o.unsubscribe != nil {
		o.unsubscribe()
		o.unsubscribe = nil
	}
}

// State returns the lifecycle state and the language last started.
func (o *Observer) State() (State, string) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state, o.lang
}

// Epoch returns the current language epoch.
func (o *Observer) Epoch() uint64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.epoch
}

// Wait blocks until every submitted node has been resolved or discarded.
func (o *Observer) Wait() {
	o.wg.Wait()
}

func (o *Observer) submit(ctx context.Context, epoch uint64, scope []*html.Node) {
	o.mu.RLock()
	if o.epoch != epoch {
		o.mu.RUnlock()
		return
	}
	lang := o.lang
	o.mu.RUnlock()

	for _, c := range o.doc.Claim(epoch, scope, o.ignored) {
		o.wg.Add(1)
		go o.resolve(ctx, lang, c)
	}
}

func (o *Observer) resolve(ctx context.Context, lang string, c Claim) {
	defer o.wg.Done()

	if o.sem != nil {
		if err := o.sem.Acquire(ctx, 1); err != nil {
			o.doc.Release(c)
			return
		}
		defer o.sem.Release(1)
	}

	if o.Epoch() != c.Epoch {
		o.doc.Release(c)
		return
	}

	translated := o.translator.Resolve(ctx, c.Text, lang, "")
	if ctx.Err() != nil {
		o.doc.Release(c)
		return
	}

	o.mu.RLock()
	applied := o.epoch == c.Epoch && o.doc.Apply(c, translated)
	o.mu.RUnlock()

	if !applied {
		o.logger.WithFields(logrus.Fields{
			"target_lang": lang,
			"epoch":       c.Epoch,
		}).Debug("discarding stale translation")
	}
}
