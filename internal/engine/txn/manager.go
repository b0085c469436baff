package txn

import "sync"

// Manager tracks nested transaction scopes. S is the snapshot type pushed
// on Begin; A is the action type recorded by TrackAction. Zero value is
// ready to use.
type Manager[S any, A any] struct {
	mu      sync.Mutex
	stack   []S
	pending []A
	depth   int
}

// New returns an empty transaction manager.
func New[S any, A any]() *Manager[S, A] {
	return &Manager[S, A]{}
}

// Begin opens a transaction scope, pushing snapshot as the point a
// matching Rollback would restore. The pending-action log is cleared
// only when this is the outermost Begin (depth was 0); nested Begins
// leave it untouched so a rollback of an inner scope still has access
// to actions recorded before it opened.
func (m *Manager[S, A]) Begin(snapshot S) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.depth == 0 {
		m.pending = nil
	}
	m.stack = append(m.stack, snapshot)
	m.depth++
}

// Active reports whether a transaction is currently open.
func (m *Manager[S, A]) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.depth > 0
}

// Depth returns the current nesting depth (0 when no transaction is open).
func (m *Manager[S, A]) Depth() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.depth
}

// TrackAction appends a to the pending-action log. It is a no-op outside
// a transaction.
func (m *Manager[S, A]) TrackAction(a A) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.depth > 0 {
		m.pending = append(m.pending, a)
	}
}

// CommitResult reports what Commit closed.
type CommitResult[A any] struct {
	// IsOutermost is true when this Commit closed the last open scope.
	IsOutermost bool
	// PendingActions holds every action tracked since the outermost
	// Begin, populated only when IsOutermost is true.
	PendingActions []A
}

// Commit closes the innermost open transaction scope. It is a no-op
// (zero CommitResult) when no transaction is open. When the commit
// closes the outermost scope, the accumulated pending-action log is
// drained and returned so the caller can emit one notification for the
// whole transaction instead of one per nested scope.
func (m *Manager[S, A]) Commit() CommitResult[A] {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.depth == 0 {
		return CommitResult[A]{}
	}
	if len(m.stack) > 0 {
		m.stack = m.stack[:len(m.stack)-1]
	}
	m.depth--
	if m.depth == 0 {
		pending := m.pending
		m.pending = nil
		return CommitResult[A]{IsOutermost: true, PendingActions: pending}
	}
	return CommitResult[A]{}
}

// RollbackResult reports what Rollback restored.
type RollbackResult[S any, A any] struct {
	// IsOutermost is true when this Rollback closed the last open scope.
	IsOutermost bool
	// Snapshot is the state to restore to: the one pushed by the Begin
	// that opened the scope just closed.
	Snapshot S
	// PendingActions holds actions tracked since the outermost Begin,
	// returned only when IsOutermost is true; a rollback of a nested
	// scope discards only that scope's restore point, not the whole log.
	PendingActions []A
}

// Rollback closes the innermost open transaction scope and returns the
// snapshot to restore to. It is a no-op (zero RollbackResult) when no
// transaction is open.
func (m *Manager[S, A]) Rollback() RollbackResult[S, A] {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.depth == 0 {
		return RollbackResult[S, A]{}
	}
	var snapshot S
	if len(m.stack) > 0 {
		snapshot = m.stack[len(m.stack)-1]
		m.stack = m.stack[:len(m.stack)-1]
	}
	m.depth--
	result := RollbackResult[S, A]{IsOutermost: m.depth == 0, Snapshot: snapshot}
	if result.IsOutermost {
		result.PendingActions = m.pending
		m.pending = nil
	}
	return result
}

// EmergencyReset discards all open scopes and returns the bottommost
// snapshot on the stack — the state to restore to in order to undo every
// open transaction at once. ok is false when no transaction was open.
func (m *Manager[S, A]) EmergencyReset() (snapshot S, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.stack) == 0 {
		m.reset()
		return snapshot, false
	}
	snapshot = m.stack[0]
	m.reset()
	return snapshot, true
}

func (m *Manager[S, A]) reset() {
	m.stack = nil
	m.pending = nil
	m.depth = 0
}
