package refresh

import (
	"testing"
	"time"

	"github.com/Unvanquished/unvanquished-tray-browser/pkg/master"
)

func snapshot(records ...master.ServerRecord) *master.Snapshot {
	return &master.Snapshot{Servers: records, Taken: time.Now()}
}

func record(addr string, playing int) master.ServerRecord {
	return master.ServerRecord{Address: addr, Name: addr, NumPlaying: playing}
}

func TestReconcileFirstRun(t *testing.T) {
	delta := Reconcile(nil, snapshot(record("a:1", 3)))
	if !delta.BadgeChanged || !delta.MenuChanged {
		t.Errorf("First run delta = %+v, want both flags set", delta)
	}

	delta = Reconcile(nil, snapshot())
	if !delta.BadgeChanged || !delta.MenuChanged {
		t.Errorf("First run with an empty snapshot = %+v, want both flags set", delta)
	}
}

func TestReconcileUnchanged(t *testing.T) {
	prev := snapshot(record("a:1", 10), record("b:2", 5))
	next := snapshot(record("a:1", 10), record("b:2", 5))

	delta := Reconcile(prev, next)
	if delta.BadgeChanged || delta.MenuChanged {
		t.Errorf("Identical snapshots yielded %+v, want no changes", delta)
	}
}

func TestReconcileNonTopCountChange(t *testing.T) {
	// The top count stays at 10, so only the menu changes.
	prev := snapshot(record("a:1", 10), record("b:2", 5))
	next := snapshot(record("a:1", 10), record("b:2", 7))

	delta := Reconcile(prev, next)
	if delta.BadgeChanged {
		t.Error("BadgeChanged set although the top count is unchanged")
	}
	if !delta.MenuChanged {
		t.Error("MenuChanged not set although a count changed")
	}
}

func TestReconcileTopCountChange(t *testing.T) {
	prev := snapshot(record("a:1", 10))
	next := snapshot(record("a:1", 12))

	delta := Reconcile(prev, next)
	if !delta.BadgeChanged || !delta.MenuChanged {
		t.Errorf("Top count change yielded %+v, want both flags set", delta)
	}
}

func TestReconcileListBecomesEmpty(t *testing.T) {
	// 10 -> 0: the empty list compares as badge value 0.
	delta := Reconcile(snapshot(record("a:1", 10)), snapshot())
	if !delta.BadgeChanged {
		t.Error("BadgeChanged not set when the list emptied")
	}
	if !delta.MenuChanged {
		t.Error("MenuChanged not set when the list emptied")
	}
}

func TestReconcileEmptyToEmpty(t *testing.T) {
	delta := Reconcile(snapshot(), snapshot())
	if delta.BadgeChanged || delta.MenuChanged {
		t.Errorf("Two empty snapshots yielded %+v, want no changes", delta)
	}
}

func TestReconcileDisplayFieldChange(t *testing.T) {
	prev := snapshot(master.ServerRecord{Address: "a:1", Name: "Old Name", NumPlaying: 4})
	next := snapshot(master.ServerRecord{Address: "a:1", Name: "New Name", NumPlaying: 4})

	delta := Reconcile(prev, next)
	if delta.BadgeChanged {
		t.Error("BadgeChanged set for a pure rename")
	}
	if !delta.MenuChanged {
		t.Error("MenuChanged not set for a rename")
	}
}

func TestReconcileIgnoresPing(t *testing.T) {
	prev := snapshot(master.ServerRecord{Address: "a:1", NumPlaying: 4, Ping: 20 * time.Millisecond})
	next := snapshot(master.ServerRecord{Address: "a:1", NumPlaying: 4, Ping: 80 * time.Millisecond})

	delta := Reconcile(prev, next)
	if delta.BadgeChanged || delta.MenuChanged {
		t.Errorf("Ping jitter yielded %+v, want no changes", delta)
	}
}

func TestReconcileReorder(t *testing.T) {
	prev := snapshot(record("a:1", 10), record("b:2", 5))
	next := snapshot(record("b:2", 10), record("a:1", 5))

	delta := Reconcile(prev, next)
	if delta.BadgeChanged {
		t.Error("BadgeChanged set although the top count is still 10")
	}
	if !delta.MenuChanged {
		t.Error("MenuChanged not set for a reordered list")
	}
}
