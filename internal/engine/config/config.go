// Package config holds the construction-time options for a document:
// initial content, undo-stack sizing, encoding provenance, and the
// tunables §9's "implementers must expose" list calls out (the
// reconciliation threshold function, the add-buffer compaction ratio).
package config

import (
	"fmt"

	"golang.org/x/text/encoding/ianaindex"

	"github.com/dshills/scrivener/internal/engine/docmeta"
)

// Config is built via functional options (With...), never constructed
// as a bare struct literal outside this package, so defaults always
// apply.
type Config struct {
	Content            string
	HistoryLimit       int
	ChunkSize          int
	Encoding           string
	LineEnding         docmeta.LineEnding
	UndoGroupTimeoutMs int64
	CompactThreshold   float64
	ReconcileThreshold func(lineCount int64) int64
}

// Option configures a Config under construction.
type Option func(*Config)

// Default returns the configuration a bare document is built with:
// empty content, a 1000-entry undo stack, 64KiB read-stream chunks,
// UTF-8, LF line endings, no coalescing window, and a 25% add-buffer
// waste threshold.
func Default() Config {
	return Config{
		HistoryLimit:       1000,
		ChunkSize:          65536,
		Encoding:           "utf-8",
		LineEnding:         docmeta.LF,
		UndoGroupTimeoutMs: 0,
		CompactThreshold:   0.25,
	}
}

// New builds a Config from Default plus the given options.
func New(opts ...Option) (Config, error) {
	cfg := Default()
	for _, opt := range opts {
		opt(&cfg)
	}
	if _, err := ianaindex.IANA.Encoding(cfg.Encoding); err != nil {
		return Config{}, fmt.Errorf("config: unrecognized encoding %q: %w", cfg.Encoding, err)
	}
	return cfg, nil
}

// WithContent sets the document's initial text.
func WithContent(text string) Option {
	return func(c *Config) { c.Content = text }
}

// WithHistoryLimit sets the maximum number of undo entries retained.
func WithHistoryLimit(limit int) Option {
	return func(c *Config) { c.HistoryLimit = limit }
}

// WithChunkSize sets Config.ChunkSize. No package reads this field;
// query.GetValueStream takes its chunk size as an argument.
func WithChunkSize(size int) Option {
	return func(c *Config) { c.ChunkSize = size }
}

// WithEncoding names the IANA encoding the content was decoded from.
// The in-memory document is always UTF-8; this only records provenance
// for a future save pipeline.
func WithEncoding(name string) Option {
	return func(c *Config) { c.Encoding = name }
}

// WithLineEnding sets the line-ending style used when constructing a
// document with no content; when content is present, the style detected
// from it is used instead.
func WithLineEnding(e docmeta.LineEnding) Option {
	return func(c *Config) { c.LineEnding = e }
}

// WithUndoGroupTimeout sets the coalescing window, in milliseconds,
// within which adjacent single-change edits merge into one undo entry.
func WithUndoGroupTimeout(ms int64) Option {
	return func(c *Config) { c.UndoGroupTimeoutMs = ms }
}

// WithCompactThreshold sets Config.CompactThreshold, an add-buffer waste
// ratio. Nothing in the engine passes it to CompactAddBuffer, which takes
// its threshold as an argument.
func WithCompactThreshold(ratio float64) Option {
	return func(c *Config) { c.CompactThreshold = ratio }
}

// WithReconcileThreshold overrides the default incremental-vs-full-rebuild
// cutoff used by ReconcileFull.
func WithReconcileThreshold(fn func(lineCount int64) int64) Option {
	return func(c *Config) { c.ReconcileThreshold = fn }
}
