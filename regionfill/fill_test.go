package regionfill

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxelsplace/landbuilder/lattice"
)

func newStore(max ...int) *lattice.Store {
	t := make(lattice.Table, len(max))
	for i, m := range max {
		t[i] = lattice.Category{Kind: "k", MaxCount: m}
	}
	return lattice.NewStore(lattice.DefaultBounds(), t)
}

func TestFill_EarlyStopAtQuota(t *testing.T) {
	s := newStore(1)
	rep := Fill(s, lattice.Pos{}, Extents{2, 1, 1}, 0, "")
	if rep.Placed != 1 || !rep.Stopped {
		t.Fatalf("report = %+v", rep)
	}
	if !s.Occupied(lattice.Pos{X: 0, Y: 0, Z: 0}) {
		t.Fatalf("(0,0,0) should be filled")
	}
	if s.Occupied(lattice.Pos{X: 2, Y: 0, Z: 0}) {
		t.Fatalf("(2,0,0) should be absent")
	}
}

func TestFill_PlacesExactlyRemainingInOrder(t *testing.T) {
	s := newStore(5)
	rep := Fill(s, lattice.Pos{}, Extents{2, 2, 2}, 0, "")
	if rep.Placed != 5 || !rep.Stopped {
		t.Fatalf("report = %+v", rep)
	}
	// y outer, z, x inner: the first five cells of the order
	want := []lattice.Pos{{X: 0, Y: 0, Z: 0}, {X: 2, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 2}, {X: 2, Y: 0, Z: 2}, {X: 0, Y: 2, Z: 0}}
	for _, p := range want {
		if !s.Occupied(p) {
			t.Fatalf("%v missing", p)
		}
	}
	for _, p := range []lattice.Pos{{X: 2, Y: 2, Z: 0}, {X: 0, Y: 2, Z: 2}, {X: 2, Y: 2, Z: 2}} {
		if s.Occupied(p) {
			t.Fatalf("%v filled past the quota", p)
		}
	}
	if rep.Diff[0] != 5 {
		t.Fatalf("diff = %v", rep.Diff)
	}
}

func TestFill_StopsEvenWhenRemainingCellsWouldReplace(t *testing.T) {
	s := newStore(2)
	_, _ = s.Place(lattice.Pos{X: 2, Y: 0, Z: 0}, 0, "")
	rep := Fill(s, lattice.Pos{}, Extents{3, 1, 1}, 0, "")
	// (0,0,0) takes the last unit of quota, then the fill halts before
	// re-placing (2,0,0) or reaching (4,0,0).
	if rep.Placed != 1 || !rep.Stopped || s.Occupied(lattice.Pos{X: 4, Y: 0, Z: 0}) {
		t.Fatalf("report = %+v", rep)
	}
}

func TestFill_SkipsOutOfBoundsCells(t *testing.T) {
	s := newStore(100)
	rep := Fill(s, lattice.Pos{X: 28, Y: 0, Z: 0}, Extents{4, 1, 1}, 0, "")
	if rep.Placed != 2 || rep.Skipped != 2 || rep.Stopped {
		t.Fatalf("report = %+v", rep)
	}
	if s.Len() != 2 {
		t.Fatalf("len = %d", s.Len())
	}
}

func TestFill_ReplaceOtherCategory(t *testing.T) {
	s := newStore(10, 10)
	Fill(s, lattice.Pos{}, Extents{2, 1, 1}, 0, "")
	rep := Fill(s, lattice.Pos{}, Extents{3, 1, 1}, 1, "")
	if rep.Placed != 3 || rep.Replaced != 2 {
		t.Fatalf("report = %+v", rep)
	}
	if s.Count(0) != 0 || s.Count(1) != 3 || s.Len() != 3 {
		t.Fatalf("counts = %v len = %d", s.Counts(), s.Len())
	}
}

func TestPreview_CountsAgainstQuota(t *testing.T) {
	s := newStore(3)
	_, _ = s.Place(lattice.Pos{X: 10, Y: 0, Z: 10}, 0, "")
	cells := Preview(s, lattice.Pos{}, Extents{2, 2, 1}, 0)
	if len(cells) != 2 {
		t.Fatalf("preview = %v", cells)
	}
	if s.Len() != 1 {
		t.Fatalf("preview mutated the store")
	}
	if got := Preview(s, lattice.Pos{}, Extents{0, 1, 1}, 0); len(got) != 0 {
		t.Fatalf("zero extent preview = %v", got)
	}
}

func TestSession_GestureLifecycle(t *testing.T) {
	s := newStore(100)
	g := NewSession(2)
	if g.Extents() != DefaultExtents {
		t.Fatalf("idle extents = %+v", g.Extents())
	}
	g.Begin(lattice.Pos{X: 0, Y: 0, Z: 0})
	if got := g.Extents(); got != (Extents{1, 1, 1}) {
		t.Fatalf("fresh gesture extents = %+v", got)
	}
	if len(g.Handles()) != 3 {
		t.Fatalf("expected three handles")
	}

	// handle x into the third cell, y into the second, z back into the anchor cell
	g.Drag(0, mgl32.Vec3{5.3, 9, 9})
	g.Drag(1, mgl32.Vec3{0, 3.9, 0})
	g.Drag(2, mgl32.Vec3{0, 0, 1.2})
	if got := g.Extents(); got != (Extents{2, 1, 0}) {
		t.Fatalf("dragged extents = %+v", got)
	}
	if got := len(g.Preview(s, 0)); got != 0 {
		t.Fatalf("zero-depth preview should be empty, got %d", got)
	}
	pos := g.HandlePositions()
	if pos[0] != (mgl32.Vec3{5.3, 1, 1}) {
		t.Fatalf("x handle left its axis: %v", pos[0])
	}

	g.Drag(2, mgl32.Vec3{0, 0, 4.5})
	rep := g.Commit(s, 0, "")
	if rep.Placed != 4 || s.Len() != 4 {
		t.Fatalf("commit report = %+v len = %d", rep, s.Len())
	}
	if g.State() != Idle || g.Handles() != nil {
		t.Fatalf("session not reset after commit")
	}
}

func TestSession_CommitClampsZeroExtents(t *testing.T) {
	s := newStore(100)
	g := NewSession(2)
	g.Begin(lattice.Pos{X: 2, Y: 0, Z: 2})
	g.Drag(0, mgl32.Vec3{-10, 0, 0})
	rep := g.Commit(s, 0, "")
	if rep.Placed != 1 || !s.Occupied(lattice.Pos{X: 2, Y: 0, Z: 2}) {
		t.Fatalf("report = %+v", rep)
	}
}

func TestSession_CancelLeavesStoreUntouched(t *testing.T) {
	s := newStore(100)
	g := NewSession(2)
	g.Begin(lattice.Pos{})
	g.Drag(0, mgl32.Vec3{9, 0, 0})
	g.Cancel()
	if s.Len() != 0 || g.State() != Idle || g.Extents() != DefaultExtents {
		t.Fatalf("cancel: len=%d state=%v extents=%+v", s.Len(), g.State(), g.Extents())
	}
	g.Drag(0, mgl32.Vec3{9, 0, 0})
	if g.Extents() != DefaultExtents {
		t.Fatalf("drag outside a gesture changed extents")
	}
}
