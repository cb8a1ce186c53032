package cache

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"
)

// ExportVersion is the snapshot format version written by Exporter.
const ExportVersion = "1"

// ExportFormat represents the JSON structure for cache export/import.
type ExportFormat struct {
	Version    string            `json:"version"`
	ExportedAt string            `json:"exported_at"`
	Entries    []ExportEntry     `json:"entries"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ExportEntry represents a single cache entry.
type ExportEntry struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// Snapshotter is implemented by caches that can list their fresh entries.
type Snapshotter interface {
	Snapshot() map[string]Entry
}

// Snapshot returns all non-expired entries.
func (c *InMemoryCache) Snapshot() map[string]Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	result := make(map[string]Entry, len(c.cache))
	for key, entry := range c.cache {
		if !c.expired(entry, now) {
			result[key] = entry
		}
	}
	return result
}

// Exporter writes cache snapshots, letting a warm cache survive restarts.
type Exporter struct {
	cache TranslationCache
}

// NewExporter creates a new cache exporter.
func NewExporter(cache TranslationCache) *Exporter {
	return &Exporter{cache: cache}
}

// Export writes the cache contents to a writer in JSON format, sorted by key.
func (e *Exporter) Export(w io.Writer, metadata map[string]string) error {
	snap, ok := e.cache.(Snapshotter)
	if !ok {
		return fmt.Errorf("cache type %T does not support export", e.cache)
	}

	data := snap.Snapshot()
	entries := make([]ExportEntry, 0, len(data))
	for key, entry := range data {
		entries = append(entries, ExportEntry{Key: key, Value: entry.Value, CreatedAt: entry.CreatedAt})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })

	export := ExportFormat{
		Version:    ExportVersion,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Entries:    entries,
		Metadata:   metadata,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(export); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// ExportToFile exports the cache to a file.
func (e *Exporter) ExportToFile(path string, metadata map[string]string) error {
	f, err := os.Create(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	if err := e.Export(f, metadata); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Importer loads cache snapshots.
type Importer struct {
	cache TranslationCache
}

// NewImporter creates a new cache importer.
func NewImporter(cache TranslationCache) *Importer {
	return &Importer{cache: cache}
}

// ImportResult contains statistics about the import operation.
type ImportResult struct {
	Version  string
	Metadata map[string]string
	Imported int
	Failed   int
}

// Import reads cache entries from a reader and loads them into the cache.
// Imported entries start a fresh TTL.
func (i *Importer) Import(r io.Reader) (*ImportResult, error) {
	var export ExportFormat
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}
	if export.Version != ExportVersion {
		return nil, fmt.Errorf("unsupported snapshot version %q", export.Version)
	}

	result := &ImportResult{
		Version:  export.Version,
		Metadata: export.Metadata,
	}

	for _, entry := range export.Entries {
		if err := i.cache.Set(entry.Key, entry.Value); err != nil {
			result.Failed++
			continue
		}
		result.Imported++
	}

	return result, nil
}

// ImportFromFile imports cache entries from a file.
func (i *Importer) ImportFromFile(path string) (*ImportResult, error) {
	f, err := os.Open(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return i.Import(f)
}
