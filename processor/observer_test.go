package processor

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
)

// fakeTranslator prefixes text with the target language. Per-language gates
// hold calls until released.
type fakeTranslator struct {
	source string

	mu    sync.Mutex
	calls map[string]int
	gates map[string]chan struct{}

	inFlight, peak atomic.Int32
	delay          time.Duration
}

func newFakeTranslator() *fakeTranslator {
	return &fakeTranslator{
		source: "en",
		calls:  make(map[string]int),
		gates:  make(map[string]chan struct{}),
	}
}

func (f *fakeTranslator) gate(lang string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[lang] = ch
	return ch
}

func (f *fakeTranslator) Resolve(ctx context.Context, text, targetLang, sourceLang string) string {
	f.mu.Lock()
	f.calls[targetLang+":"+text]++
	gate := f.gates[targetLang]
	f.mu.Unlock()

	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return text
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return "[" + targetLang + "] " + text
}

func (f *fakeTranslator) SourceLang() string { return f.source }

func (f *fakeTranslator) count(lang, text string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[lang+":"+text]
}

func (f *fakeTranslator) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

const page = `<!DOCTYPE html><html lang="en"><head><title>Rooms</title></head><body>
<h1>  Hello  </h1>
<p class="lead">Book now</p>
<span class="price">RWF 10,000</span>
<span class="code">ID</span>
<pre>Keep as is</pre>
<div data-no-translate><p>Brand name</p></div>
<ul id="list"></ul>
</body></html>`

func newTestObserver(t *testing.T, opts ...ObserverOption) (*Document, *Observer, *fakeTranslator) {
	t.Helper()
	doc, err := ParseDocument(page)
	if err != nil {
		t.Fatalf("ParseDocument failed: %v", err)
	}
	logger, _ := test.NewNullLogger()
	tr := newFakeTranslator()
	opts = append([]ObserverOption{WithObserverLogger(logger)}, opts...)
	return doc, NewObserver(doc, tr, opts...), tr
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestObserver_TranslatesInitialTree(t *testing.T) {
	doc, o, tr := newTestObserver(t)

	o.Start(context.Background(), "fr_FR")
	o.Wait()

	if got := doc.Text("h1"); got != "  [fr_FR] Hello  " {
		t.Errorf("h1 = %q", got)
	}
	if got := doc.Text("p.lead"); got != "[fr_FR] Book now" {
		t.Errorf("p.lead = %q", got)
	}
	if got := doc.Text("title"); got != "[fr_FR] Rooms" {
		t.Errorf("title = %q", got)
	}
	for sel, want := range map[string]string{
		"span.price": "RWF 10,000",
		"span.code":  "ID",
		"pre":        "Keep as is",
		"div p":      "Brand name",
	} {
		if got := doc.Text(sel); got != want {
			t.Errorf("%s = %q, want untouched %q", sel, got, want)
		}
	}

	if lang, _ := doc.Attr("html", "lang"); lang != "fr-FR" {
		t.Errorf("html lang = %q", lang)
	}
	if state, lang := o.State(); state != StateObserving || lang != "fr_FR" {
		t.Errorf("state = %s %s", state, lang)
	}
	if tr.total() != 3 {
		t.Errorf("expected 3 lookups, got %d", tr.total())
	}
}

func TestObserver_AtMostOncePerEpoch(t *testing.T) {
	_, o, tr := newTestObserver(t)

	o.Start(context.Background(), "fr")
	o.Wait()

	// A redundant walk over the whole unmodified tree submits nothing.
	o.submit(context.Background(), o.Epoch(), nil)
	o.Wait()

	if tr.count("fr", "Hello") != 1 || tr.count("fr", "Book now") != 1 {
		t.Errorf("expected one lookup per unit, got %v", tr.calls)
	}
}

func TestObserver_TranslatesAddedContent(t *testing.T) {
	doc, o, tr := newTestObserver(t)

	o.Start(context.Background(), "fr")
	o.Wait()
	before := tr.total()

	n, err := doc.AppendHTML("#list", `<li>Free parking</li><li>42</li>`)
	if err != nil || n != 1 {
		t.Fatalf("AppendHTML = %d, %v", n, err)
	}
	o.Wait()

	if got := doc.Text("#list"); got != "[fr] Free parking42" {
		t.Errorf("list = %q", got)
	}
	if tr.total() != before+1 {
		t.Errorf("only the new unit should be looked up: %d -> %d", before, tr.total())
	}

	doc.SetText("h1", "Welcome back")
	o.Wait()
	if got := doc.Text("h1"); got != "[fr] Welcome back" {
		t.Errorf("h1 after SetText = %q", got)
	}
}

func TestObserver_StaleResultIsDiscarded(t *testing.T) {
	doc, o, tr := newTestObserver(t)
	gateA := tr.gate("fr")
	gateB := tr.gate("de")

	o.Start(context.Background(), "fr")
	waitFor(t, func() bool { return tr.count("fr", "Book now") == 1 })

	o.Restart(context.Background(), "de")
	waitFor(t, func() bool { return tr.count("de", "Book now") == 1 })

	close(gateB)
	waitFor(t, func() bool { return doc.Text("p.lead") == "[de] Book now" })

	close(gateA)
	o.Wait()

	if got := doc.Text("p.lead"); got != "[de] Book now" {
		t.Errorf("late result for the previous language was applied: %q", got)
	}
}

func TestObserver_LanguageSwitchTranslatesFromSource(t *testing.T) {
	doc, o, tr := newTestObserver(t)

	o.Start(context.Background(), "fr")
	o.Wait()
	o.Restart(context.Background(), "de")
	o.Wait()

	if got := doc.Text("p.lead"); got != "[de] Book now" {
		t.Errorf("p.lead = %q", got)
	}
	if tr.count("de", "[fr] Book now") != 0 {
		t.Error("translated text must not be fed back to the translator")
	}
}

func TestObserver_SourceLanguageRestoresOriginals(t *testing.T) {
	doc, o, tr := newTestObserver(t)

	o.Start(context.Background(), "ar")
	o.Wait()
	if dir, _ := doc.Attr("html", "dir"); dir != "rtl" {
		t.Errorf("dir = %q", dir)
	}

	before := tr.total()
	o.Restart(context.Background(), "en_US")
	o.Wait()

	if got := doc.Text("h1"); got != "  Hello  " {
		t.Errorf("h1 = %q", got)
	}
	if dir, _ := doc.Attr("html", "dir"); dir != "ltr" {
		t.Errorf("dir = %q", dir)
	}
	if state, _ := o.State(); state != StateStopped {
		t.Errorf("state = %s", state)
	}
	if tr.total() != before {
		t.Error("source language must not look anything up")
	}

	// Observation is off: new content stays as authored.
	if _, err := doc.AppendHTML("#list", "<li>Late arrival</li>"); err != nil {
		t.Fatal(err)
	}
	o.Wait()
	if tr.count("en_US", "Late arrival") != 0 {
		t.Error("stopped observer must not translate")
	}
}

func TestObserver_StopDiscardsInFlight(t *testing.T) {
	doc, o, tr := newTestObserver(t)
	gate := tr.gate("fr")

	o.Start(context.Background(), "fr")
	waitFor(t, func() bool { return tr.count("fr", "Hello") == 1 })
	o.Stop()
	close(gate)
	o.Wait()

	if got := doc.Text("p.lead"); got != "Book now" {
		t.Errorf("p.lead = %q", got)
	}
}

func TestObserver_QueuedLookupsSkippedAfterStop(t *testing.T) {
	doc, o, tr := newTestObserver(t, WithConcurrency(1))
	gate := tr.gate("fr")

	o.Start(context.Background(), "fr")
	waitFor(t, func() bool { return tr.total() == 1 })
	o.Stop()
	close(gate)
	o.Wait()

	if n := tr.total(); n != 1 {
		t.Errorf("queued nodes were looked up after Stop: %d lookups", n)
	}

	o.Start(context.Background(), "de")
	o.Wait()
	if got := doc.Text("p.lead"); got != "[de] Book now" {
		t.Errorf("p.lead = %q", got)
	}
	if tr.count("de", "Hello") != 1 || tr.count("de", "Rooms") != 1 {
		t.Errorf("released nodes were not picked up again: %v", tr.calls)
	}
}

func TestObserver_RemovedNodeIsSkipped(t *testing.T) {
	doc, o, tr := newTestObserver(t)
	gate := tr.gate("fr")

	o.Start(context.Background(), "fr")
	waitFor(t, func() bool { return tr.count("fr", "Book now") == 1 })
	if n := doc.Remove("p.lead"); n != 1 {
		t.Fatalf("Remove = %d", n)
	}
	close(gate)
	o.Wait()

	out, err := doc.Html()
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "Book now") {
		t.Errorf("removed node reappeared: %s", out)
	}
	if doc.Text("h1") != "  [fr] Hello  " {
		t.Errorf("h1 = %q", doc.Text("h1"))
	}
}

func TestObserver_ConcurrencyCap(t *testing.T) {
	doc, o, tr := newTestObserver(t, WithConcurrency(1))
	tr.delay = 5 * time.Millisecond

	o.Start(context.Background(), "fr")
	o.Wait()

	if tr.peak.Load() > 1 {
		t.Errorf("peak concurrency = %d", tr.peak.Load())
	}
	if doc.Text("p.lead") != "[fr] Book now" {
		t.Errorf("p.lead = %q", doc.Text("p.lead"))
	}
}

func TestObserver_CancelledContextReleasesClaims(t *testing.T) {
	doc, o, tr := newTestObserver(t, WithConcurrency(1))
	gate := tr.gate("fr")

	ctx, cancel := context.WithCancel(context.Background())
	o.Start(ctx, "fr")
	cancel()
	close(gate)
	o.Wait()

	// Released claims are picked up again by a later walk.
	o.submit(context.Background(), o.Epoch(), nil)
	o.Wait()
	if doc.Text("p.lead") != "[fr] Book now" {
		t.Errorf("p.lead = %q", doc.Text("p.lead"))
	}
}
