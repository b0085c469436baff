// Package store is the façade external callers dispatch actions
// through: a versioned current snapshot, a subscriber list, transaction
// bracketing, and viewport-driven reconciliation scheduling. Only the
// store may mutate the current snapshot; everything else in the engine
// is pure or immutable.
package store

import (
	"fmt"
	"time"

	"github.com/dshills/scrivener/internal/engine/config"
	"github.com/dshills/scrivener/internal/engine/document"
	"github.com/dshills/scrivener/internal/engine/postype"
	"github.com/dshills/scrivener/internal/engine/reducer"
	"github.com/dshills/scrivener/internal/engine/txn"
	"github.com/dshills/scrivener/internal/storelog"
)

// InvariantError describes an internal consistency check the engine
// expected to hold but didn't — an aggregate mismatch, a broken
// red-black property, or similar. Surfacing one puts the store into
// safe mode.
type InvariantError struct {
	Invariant string
	Err       error
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("store: invariant violation (%s): %v", e.Invariant, e.Err)
}

func (e *InvariantError) Unwrap() error { return e.Err }

// IdleScheduler defers task to whatever the host platform's idle
// callback mechanism is. The default falls back to a zero-delay timer,
// exactly as the design calls for when no real idle callback exists.
type IdleScheduler func(task func())

// Store holds the current document snapshot and notifies subscribers
// when it changes. All methods are safe for single goroutine,
// cooperative use per the engine's concurrency model; it is not meant
// to be hammered from multiple goroutines concurrently (writes must be
// serialized by the caller, same as the spec's scheduling model).
type Store struct {
	snapshot    document.Snapshot
	subscribers map[int]func(document.Snapshot)
	nextSubID   int

	txn *txn.Manager[document.Snapshot, reducer.Action]

	reconcileThreshold func(lineCount int64) int64
	idle               IdleScheduler
	scheduled          bool

	safeMode  bool
	lastError *InvariantError

	logger storelog.Logger
}

// New constructs a store whose initial snapshot comes from cfg.
func New(cfg config.Config) *Store {
	return &Store{
		snapshot:           document.NewFromConfig(cfg),
		subscribers:        make(map[int]func(document.Snapshot)),
		txn:                txn.New[document.Snapshot, reducer.Action](),
		reconcileThreshold: cfg.ReconcileThreshold,
		idle:               func(task func()) { time.AfterFunc(0, task) },
	}
}

// SetLogger attaches the structured-event hook. Pass nil to detach it.
func (st *Store) SetLogger(l storelog.Logger) { st.logger = l }

// SetIdleScheduler overrides how schedule_reconciliation defers its
// task; tests and hosts with a real idle-callback API can supply one
// that runs synchronously or hooks into their own event loop.
func (st *Store) SetIdleScheduler(s IdleScheduler) { st.idle = s }

func (st *Store) log(event string, fields map[string]any) {
	if st.logger != nil {
		st.logger(event, fields)
	}
}

// GetSnapshot returns the current snapshot.
func (st *Store) GetSnapshot() document.Snapshot { return st.snapshot }

// InSafeMode reports whether an invariant violation has put the store
// into safe mode, where every Dispatch is a no-op.
func (st *Store) InSafeMode() bool { return st.safeMode }

// LastError returns the invariant error that triggered safe mode, or
// nil if the store has never entered it (or has since been recovered
// via EmergencyReset).
func (st *Store) LastError() *InvariantError { return st.lastError }

var editKinds = map[reducer.Kind]bool{
	reducer.Insert:      true,
	reducer.Delete:      true,
	reducer.Replace:     true,
	reducer.ApplyRemote: true,
	reducer.Undo:        true,
	reducer.Redo:        true,
}

// Dispatch applies one action. Transaction bracket actions
// (TRANSACTION_START/COMMIT/ROLLBACK) are handled here rather than by
// the reducer, per the transaction manager's ownership of the snapshot
// stack. Every other action is recorded in the pending-action log when
// a transaction is active (if it is a text edit), applied via the
// reducer, and notifies subscribers unless a transaction is still open.
func (st *Store) Dispatch(action reducer.Action) document.Snapshot {
	if st.safeMode {
		return st.snapshot
	}

	switch action.Kind {
	case reducer.TransactionStart:
		st.txn.Begin(st.snapshot)
		return st.snapshot

	case reducer.TransactionCommit:
		res := st.txn.Commit()
		if res.IsOutermost {
			st.notify()
		}
		return st.snapshot

	case reducer.TransactionRollback:
		res := st.txn.Rollback()
		st.snapshot = res.Snapshot
		if res.IsOutermost {
			st.notify()
		}
		return st.snapshot
	}

	if editKinds[action.Kind] && st.txn.Active() {
		st.txn.TrackAction(action)
	}

	next, invErr := st.applyReducer(action)
	if invErr != nil {
		st.safeMode = true
		st.lastError = invErr
		st.log("invariant_violation", map[string]any{"error": invErr.Error()})
		return st.snapshot
	}

	changed := next.Version != st.snapshot.Version
	st.snapshot = next
	if changed {
		st.log("dispatch", map[string]any{"kind": action.Kind, "version": next.Version})
		if st.snapshot.LineIndex.RebuildPending() {
			st.scheduleReconciliation()
		}
		if !st.txn.Active() {
			st.notify()
		}
	}
	return st.snapshot
}

// applyReducer runs the reducer, converting any panic (an engine bug,
// never an expected validation failure — those are reducer no-ops) into
// an InvariantError rather than letting it escape and take the whole
// host process down with it.
func (st *Store) applyReducer(action reducer.Action) (next document.Snapshot, invErr *InvariantError) {
	defer func() {
		if r := recover(); r != nil {
			invErr = &InvariantError{Invariant: "reducer_panic", Err: fmt.Errorf("%v", r)}
		}
	}()
	next = reducer.Apply(st.snapshot, action)
	return next, nil
}

// Batch begins a synthetic transaction, dispatches every action in
// order, and commits, so subscribers see exactly one notification for
// the whole sequence.
func (st *Store) Batch(actions []reducer.Action) document.Snapshot {
	st.Dispatch(reducer.Action{Kind: reducer.TransactionStart})
	for _, a := range actions {
		st.Dispatch(a)
	}
	st.Dispatch(reducer.Action{Kind: reducer.TransactionCommit})
	return st.snapshot
}

// EmergencyReset is the only recovery path out of safe mode: it
// restores the earliest snapshot on the transaction stack (if any
// transaction was open) and clears every bit of store and transaction
// state, including safe mode.
func (st *Store) EmergencyReset() document.Snapshot {
	if snap, ok := st.txn.EmergencyReset(); ok {
		st.snapshot = snap
	}
	st.safeMode = false
	st.lastError = nil
	st.notify()
	return st.snapshot
}

// Subscribe registers fn to be called after every notifying change.
// The returned func removes the subscription.
func (st *Store) Subscribe(fn func(document.Snapshot)) (unsubscribe func()) {
	id := st.nextSubID
	st.nextSubID++
	if st.subscribers == nil {
		st.subscribers = make(map[int]func(document.Snapshot))
	}
	st.subscribers[id] = fn
	return func() { delete(st.subscribers, id) }
}

// notify calls every subscriber with the current snapshot. A panicking
// subscriber is isolated (recovered and logged) so it cannot prevent
// the rest from being notified.
func (st *Store) notify() {
	snap := st.snapshot
	for _, fn := range st.subscribers {
		func(fn func(document.Snapshot)) {
			defer func() {
				if r := recover(); r != nil {
					st.log("subscriber_panic", map[string]any{"recovered": fmt.Sprintf("%v", r)})
				}
			}()
			fn(snap)
		}(fn)
	}
}

// ScheduleReconciliation defers a reconcile_full call if the current
// snapshot's line index has dirty ranges pending a rebuild. Repeated
// calls coalesce to at most one pending task.
func (st *Store) ScheduleReconciliation() {
	if !st.snapshot.LineIndex.RebuildPending() {
		return
	}
	st.scheduleReconciliation()
}

func (st *Store) scheduleReconciliation() {
	if st.scheduled {
		return
	}
	st.scheduled = true
	idle := st.idle
	if idle == nil {
		idle = func(task func()) { time.AfterFunc(0, task) }
	}
	idle(func() {
		st.scheduled = false
		if st.snapshot.LineIndex.RebuildPending() {
			st.reconcileFull()
		}
	})
}

// ReconcileNow synchronously runs reconcile_full on the current
// snapshot, regardless of whether a rebuild is actually pending.
func (st *Store) ReconcileNow() { st.reconcileFull() }

func (st *Store) reconcileFull() {
	st.snapshot.LineIndex = st.snapshot.LineIndex.ReconcileFull(st.snapshot.Version, st.reconcileThreshold)
	st.log("reconcile_full", map[string]any{"version": st.snapshot.Version})
}

// SetViewport reconciles [startLine, endLine] if any dirty range
// intersects it. If dirty ranges remain, it schedules an idle task that
// runs full reconciliation only when a rebuild is pending.
func (st *Store) SetViewport(startLine, endLine postype.LineNumber) {
	st.snapshot.LineIndex = st.snapshot.LineIndex.ReconcileViewport(startLine, endLine, st.snapshot.Version)
	if st.snapshot.LineIndex.HasDirty() {
		st.scheduleReconciliation()
	}
}
