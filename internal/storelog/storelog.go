// Package storelog is the engine's one observability hook: a minimal
// structured-event callback a host application can attach to a store,
// without the engine layer itself performing any I/O or taking a
// logging library dependency. Mirrors the teacher's internal/engine
// packages, which return errors and stay silent, leaving logging to the
// outer application.
package storelog

// Logger receives one structured event. fields are plain values (never
// the document's text), safe to forward to any logging backend a host
// chooses.
type Logger func(event string, fields map[string]any)
