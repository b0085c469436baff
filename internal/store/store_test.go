package store

import (
	"strings"
	"testing"

	"github.com/dshills/scrivener/internal/engine/config"
	"github.com/dshills/scrivener/internal/engine/document"
	"github.com/dshills/scrivener/internal/engine/postype"
	"github.com/dshills/scrivener/internal/engine/reducer"
)

func newTestStore(t *testing.T, content string) *Store {
	t.Helper()
	cfg, err := config.New(config.WithContent(content))
	if err != nil {
		t.Fatalf("config.New() error = %v", err)
	}
	st := New(cfg)
	st.SetIdleScheduler(func(task func()) { task() }) // run synchronously for deterministic tests
	return st
}

func text(st *Store) string {
	snap := st.GetSnapshot()
	return snap.PieceTable.GetText(0, postype.ByteOffset(snap.TotalLength()))
}

func TestDispatchInsertBasic(t *testing.T) {
	st := newTestStore(t, "")
	notifications := 0
	st.Subscribe(func(_ document.Snapshot) { notifications++ })
	st.Dispatch(reducer.Action{Kind: reducer.Insert, Start: 0, Text: "hi"})
	if got := text(st); got != "hi" {
		t.Fatalf("text = %q, want hi", got)
	}
	if notifications != 1 {
		t.Fatalf("notifications = %d, want 1", notifications)
	}
}

func TestDispatchInvalidActionNoOp(t *testing.T) {
	st := newTestStore(t, "abc")
	before := st.GetSnapshot().Version
	notifications := 0
	st.Subscribe(func(_ document.Snapshot) { notifications++ })
	st.Dispatch(reducer.Action{Kind: reducer.Insert, Start: 0, Text: ""})
	if st.GetSnapshot().Version != before {
		t.Fatalf("version changed on no-op dispatch")
	}
	if notifications != 0 {
		t.Fatalf("notifications = %d, want 0 on no-op", notifications)
	}
}

func TestTransactionDefersNotificationUntilOutermostCommit(t *testing.T) {
	st := newTestStore(t, "")
	notifications := 0
	st.Subscribe(func(_ document.Snapshot) { notifications++ })

	st.Dispatch(reducer.Action{Kind: reducer.TransactionStart})
	st.Dispatch(reducer.Action{Kind: reducer.Insert, Start: 0, Text: "a"})
	st.Dispatch(reducer.Action{Kind: reducer.Insert, Start: 1, Text: "b"})
	if notifications != 0 {
		t.Fatalf("notifications = %d during open transaction, want 0", notifications)
	}
	st.Dispatch(reducer.Action{Kind: reducer.TransactionCommit})
	if notifications != 1 {
		t.Fatalf("notifications = %d after commit, want 1", notifications)
	}
	if got := text(st); got != "ab" {
		t.Fatalf("text = %q, want ab", got)
	}
}

func TestTransactionRollbackRestoresSnapshot(t *testing.T) {
	st := newTestStore(t, "abc")
	notifications := 0
	st.Subscribe(func(_ document.Snapshot) { notifications++ })

	st.Dispatch(reducer.Action{Kind: reducer.TransactionStart})
	st.Dispatch(reducer.Action{Kind: reducer.Insert, Start: 0, Text: "XXX"})
	if got := text(st); got != "XXXabc" {
		t.Fatalf("mid-transaction text = %q, want XXXabc", got)
	}
	st.Dispatch(reducer.Action{Kind: reducer.TransactionRollback})

	if got := text(st); got != "abc" {
		t.Fatalf("after rollback, text = %q, want abc", got)
	}
	if notifications != 1 {
		t.Fatalf("notifications = %d, want 1 (rollback of outermost scope notifies once)", notifications)
	}
}

func TestNestedTransactionInnerCommitDoesNotNotify(t *testing.T) {
	st := newTestStore(t, "")
	notifications := 0
	st.Subscribe(func(_ document.Snapshot) { notifications++ })

	st.Dispatch(reducer.Action{Kind: reducer.TransactionStart})
	st.Dispatch(reducer.Action{Kind: reducer.TransactionStart})
	st.Dispatch(reducer.Action{Kind: reducer.Insert, Start: 0, Text: "a"})
	st.Dispatch(reducer.Action{Kind: reducer.TransactionCommit}) // inner
	if notifications != 0 {
		t.Fatalf("inner commit notified, want 0")
	}
	st.Dispatch(reducer.Action{Kind: reducer.TransactionCommit}) // outer
	if notifications != 1 {
		t.Fatalf("notifications = %d after outer commit, want 1", notifications)
	}
}

func TestBatchNotifiesOnce(t *testing.T) {
	st := newTestStore(t, "")
	notifications := 0
	st.Subscribe(func(_ document.Snapshot) { notifications++ })

	st.Batch([]reducer.Action{
		{Kind: reducer.Insert, Start: 0, Text: "a"},
		{Kind: reducer.Insert, Start: 1, Text: "b"},
		{Kind: reducer.Insert, Start: 2, Text: "c"},
	})
	if notifications != 1 {
		t.Fatalf("notifications = %d, want 1", notifications)
	}
	if got := text(st); got != "abc" {
		t.Fatalf("text = %q, want abc", got)
	}
}

func TestSubscriberPanicIsolated(t *testing.T) {
	st := newTestStore(t, "")
	goodCalled := false
	st.Subscribe(func(_ document.Snapshot) { panic("boom") })
	st.Subscribe(func(_ document.Snapshot) { goodCalled = true })

	st.Dispatch(reducer.Action{Kind: reducer.Insert, Start: 0, Text: "a"})
	if !goodCalled {
		t.Fatalf("second subscriber should still run after first panics")
	}
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	st := newTestStore(t, "")
	notifications := 0
	unsub := st.Subscribe(func(_ document.Snapshot) { notifications++ })
	st.Dispatch(reducer.Action{Kind: reducer.Insert, Start: 0, Text: "a"})
	unsub()
	st.Dispatch(reducer.Action{Kind: reducer.Insert, Start: 1, Text: "b"})
	if notifications != 1 {
		t.Fatalf("notifications = %d, want 1", notifications)
	}
}

func TestDecodeActionInsert(t *testing.T) {
	a, err := DecodeAction(`{"type":"INSERT","start":3,"text":"x"}`)
	if err != nil {
		t.Fatalf("DecodeAction error = %v", err)
	}
	if a.Kind != reducer.Insert || a.Start != 3 || a.Text != "x" {
		t.Fatalf("action = %+v", a)
	}
}

func TestDecodeActionRejectsNegativePosition(t *testing.T) {
	_, err := DecodeAction(`{"type":"INSERT","start":-1,"text":"x"}`)
	if err == nil {
		t.Fatalf("expected error for negative start")
	}
}

func TestDecodeActionSetSelection(t *testing.T) {
	a, err := DecodeAction(`{"type":"SET_SELECTION","ranges":[{"anchor":0,"head":3}],"primary":0}`)
	if err != nil {
		t.Fatalf("DecodeAction error = %v", err)
	}
	if len(a.Selection.Ranges) != 1 || a.Selection.Ranges[0].Head != 3 {
		t.Fatalf("action = %+v", a)
	}
}

func TestDecodeActionUnknownType(t *testing.T) {
	_, err := DecodeAction(`{"type":"NONSENSE"}`)
	if err == nil {
		t.Fatalf("expected error for unknown action type")
	}
}

func TestDispatchJSONRoundTrip(t *testing.T) {
	st := newTestStore(t, "")
	snap, err := st.DispatchJSON(`{"type":"INSERT","start":0,"text":"hi"}`)
	if err != nil {
		t.Fatalf("DispatchJSON error = %v", err)
	}
	if got := snap.PieceTable.GetText(0, 2); got != "hi" {
		t.Fatalf("text = %q, want hi", got)
	}
}

func TestDispatchJSONDecodeErrorIsNoOp(t *testing.T) {
	st := newTestStore(t, "abc")
	_, err := st.DispatchJSON(`not json`)
	if err == nil {
		t.Fatalf("expected decode error")
	}
	if got := text(st); got != "abc" {
		t.Fatalf("text = %q, want abc (unchanged)", got)
	}
}

func TestExportStateIsPrettyJSON(t *testing.T) {
	st := newTestStore(t, "abc")
	out := st.ExportState()
	if !strings.Contains(out, "\"version\"") || !strings.Contains(out, "\n") {
		t.Fatalf("ExportState output not pretty JSON: %s", out)
	}
}

func TestScheduleReconciliationNoOpWithoutDirtyRanges(t *testing.T) {
	st := newTestStore(t, "abc\ndef\n")
	// No edits dispatched, so nothing should be scheduled or reconciled.
	st.ScheduleReconciliation()
	if st.GetSnapshot().LineIndex.RebuildPending() {
		t.Fatalf("fresh document should never have a pending rebuild")
	}
}

func TestReconcileNowClearsRebuildPending(t *testing.T) {
	st := newTestStore(t, strings.Repeat("abcdefg\n", 50))
	st.Dispatch(reducer.Action{Kind: reducer.Insert, Start: 0, Text: "X"})
	st.ReconcileNow()
	if st.GetSnapshot().LineIndex.RebuildPending() {
		t.Fatalf("expected ReconcileNow to clear any pending rebuild")
	}
}

func TestSetViewportReconcilesRequestedRange(t *testing.T) {
	st := newTestStore(t, strings.Repeat("abcdefg\n", 50))
	st.Dispatch(reducer.Action{Kind: reducer.Insert, Start: 0, Text: "X"})
	st.SetViewport(0, 10)
	// Reconciling the viewport should not panic and should leave the
	// document content untouched.
	if got := text(st); !strings.HasPrefix(got, "Xabcdefg") {
		t.Fatalf("text = %q, want prefix Xabcdefg", got)
	}
}

func TestEmergencyResetClearsSafeMode(t *testing.T) {
	st := newTestStore(t, "")
	st.safeMode = true
	st.lastError = &InvariantError{Invariant: "test", Err: nil}
	st.EmergencyReset()
	if st.InSafeMode() {
		t.Fatalf("expected safe mode cleared")
	}
	if st.LastError() != nil {
		t.Fatalf("expected LastError cleared")
	}
}

func TestDispatchNoOpInSafeMode(t *testing.T) {
	st := newTestStore(t, "abc")
	st.safeMode = true
	snap := st.Dispatch(reducer.Action{Kind: reducer.Insert, Start: 0, Text: "X"})
	if got := snap.PieceTable.GetText(0, postype.ByteOffset(snap.TotalLength())); got != "abc" {
		t.Fatalf("text = %q, want abc (dispatch must no-op in safe mode)", got)
	}
}
