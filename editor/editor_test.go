package editor

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxelsplace/landbuilder/config"
	"github.com/voxelsplace/landbuilder/decal"
	"github.com/voxelsplace/landbuilder/hittest"
	"github.com/voxelsplace/landbuilder/lattice"
	"github.com/voxelsplace/landbuilder/regionfill"
)

func testConfig() config.Config {
	c := config.Default()
	c.Categories = []config.Category{
		{Kind: "stone", MaxCount: 2},
		{Kind: "dirt", MaxCount: 2},
		{Kind: lattice.KindColor, MaxCount: 10},
	}
	return c
}

func down(x, z float32) hittest.Ray {
	return hittest.Ray{Origin: mgl32.Vec3{x, 20, z}, Direction: mgl32.Vec3{0, -1, 0}}
}

var eastward = hittest.Ray{Origin: mgl32.Vec3{-10, 1, 1}, Direction: mgl32.Vec3{1, 0, 0}}

func TestQuotaReplaceAndEarlyStop(t *testing.T) {
	s := New(testConfig())
	for _, x := range []int{0, 2, 4} {
		s.PlaceAt(lattice.Pos{X: x})
	}
	if s.Store().Len() != 2 || s.Store().Count(0) != 2 {
		t.Fatalf("quota: len=%d count=%d", s.Store().Len(), s.Store().Count(0))
	}

	s.ClearAll()
	s.PlaceAt(lattice.Pos{})
	_ = s.SetCategory(1)
	s.PlaceAt(lattice.Pos{})
	r, ok := s.Store().Get(lattice.Pos{})
	if !ok || r.Category != 1 || s.Store().Count(0) != 0 || s.Store().Count(1) != 1 || s.Store().Len() != 1 {
		t.Fatalf("replace: %+v counts=%v", r, s.Store().Counts())
	}

	s.ClearAll()
	_ = s.SetCategory(0)
	s.PlaceAt(lattice.Pos{X: 10})
	s.SetExtents(regionfill.Extents{X: 2, Y: 1, Z: 1})
	rep := s.PlaceAt(lattice.Pos{})
	if !rep.Stopped || !s.Store().Occupied(lattice.Pos{}) || s.Store().Occupied(lattice.Pos{X: 2}) {
		t.Fatalf("early stop: %+v", rep)
	}
}

func TestPointerDown_ClickFillAndStack(t *testing.T) {
	s := New(testConfig())
	out := s.PointerDown(down(1, 1))
	if out.Action != ActionFilled || out.Cell != (lattice.Pos{}) {
		t.Fatalf("first click: %+v", out)
	}
	out = s.PointerDown(down(1, 1))
	if out.Action != ActionFilled || out.Cell != (lattice.Pos{Y: 2}) {
		t.Fatalf("second click should stack: %+v", out)
	}
	if c, ok := s.Hover(down(1, 1)); !ok || c != (lattice.Pos{Y: 4}) {
		t.Fatalf("hover = %v %v", c, ok)
	}
	if out := s.PointerDown(down(40, 0)); out.Action != ActionNone {
		t.Fatalf("click off the grid: %+v", out)
	}
}

func TestPointerDown_DeleteMode(t *testing.T) {
	s := New(testConfig())
	s.PlaceAt(lattice.Pos{})
	s.SetDeleteMode(true)
	out := s.PointerDown(down(1, 1))
	if out.Action != ActionRemovedVoxel || s.Store().Len() != 0 {
		t.Fatalf("delete: %+v", out)
	}
	if out := s.PointerDown(down(1, 1)); out.Action != ActionNone {
		t.Fatalf("deleting the ground: %+v", out)
	}
}

func TestPointerDown_DragGesture(t *testing.T) {
	s := New(testConfig())
	_ = s.SetCategory(2)
	s.SetInputType(TypeDrag)
	out := s.PointerDown(down(1, 1))
	if out.Action != ActionGestureBegun || s.GestureState() != regionfill.Dragging {
		t.Fatalf("begin: %+v", out)
	}
	// the y handle sits above the anchor and swallows a press through it
	if out := s.PointerDown(down(1, 1)); out.Action != ActionNone || s.GestureState() != regionfill.Dragging {
		t.Fatalf("press on handle: %+v", out)
	}
	axis, ok := s.PickHandle(hittest.Ray{Origin: mgl32.Vec3{2.5, 1, 10}, Direction: mgl32.Vec3{0, 0, -1}})
	if !ok || axis != 0 {
		t.Fatalf("pick handle = %d %v", axis, ok)
	}
	s.DragHandle(0, mgl32.Vec3{5.3, 0, 0})
	if len(s.Preview()) != 2 {
		t.Fatalf("preview = %v", s.Preview())
	}
	out = s.PointerDown(down(11, 11))
	if out.Action != ActionGestureCommitted || out.Fill.Placed != 2 {
		t.Fatalf("commit: %+v", out)
	}
	if !s.Store().Occupied(lattice.Pos{X: 2}) || s.Store().Occupied(lattice.Pos{X: 10, Z: 10}) {
		t.Fatalf("commit filled the wrong cells")
	}
	if s.GestureState() != regionfill.Idle || s.Handles() != nil {
		t.Fatalf("gesture not reset")
	}
}

func TestDragHandleRay(t *testing.T) {
	s := New(testConfig())
	straightDown := hittest.Ray{Origin: mgl32.Vec3{5.3, 10, 1}, Direction: mgl32.Vec3{0, -1, 0}}
	if s.DragHandleRay(0, straightDown) {
		t.Fatalf("dragged without a gesture")
	}
	s.BeginRegionFill(lattice.Pos{})
	if !s.DragHandleRay(0, straightDown) {
		t.Fatalf("drag failed")
	}
	if got := s.GestureExtents(); got != (regionfill.Extents{X: 2, Y: 1, Z: 1}) {
		t.Fatalf("extents = %+v", got)
	}
	// a ray along the x axis cannot position the x handle
	if s.DragHandleRay(0, hittest.Ray{Origin: mgl32.Vec3{-5, 1, 1}, Direction: mgl32.Vec3{1, 0, 0}}) {
		t.Fatalf("parallel ray moved the handle")
	}
	if s.DragHandleRay(3, straightDown) {
		t.Fatalf("unknown axis accepted")
	}
}

func TestParseInputModeAndType(t *testing.T) {
	for _, m := range []InputMode{ModeCube, ModeImage} {
		if got, err := ParseInputMode(m.String()); err != nil || got != m {
			t.Fatalf("ParseInputMode(%s) = %v, %v", m, got, err)
		}
	}
	for _, it := range []InputType{TypeClick, TypeDrag} {
		if got, err := ParseInputType(it.String()); err != nil || got != it {
			t.Fatalf("ParseInputType(%s) = %v, %v", it, got, err)
		}
	}
	if _, err := ParseInputMode("voxel"); err == nil {
		t.Fatalf("unknown mode accepted")
	}
	if _, err := ParseInputType("hold"); err == nil {
		t.Fatalf("unknown type accepted")
	}
}

func TestModeSwitchCancelsGesture(t *testing.T) {
	s := New(testConfig())
	s.SetInputType(TypeDrag)
	s.BeginRegionFill(lattice.Pos{})
	s.DragHandle(0, mgl32.Vec3{9, 0, 0})
	s.SetInputMode(ModeImage)
	if s.GestureState() != regionfill.Idle || s.GestureExtents() != regionfill.DefaultExtents {
		t.Fatalf("gesture survived a mode switch")
	}
	if s.Store().Len() != 0 {
		t.Fatalf("cancel touched the store")
	}
	if rep := s.CommitRegionFill(); rep.Placed != 0 {
		t.Fatalf("commit without gesture placed %d", rep.Placed)
	}
}

func TestDeleteModeResetsExtents(t *testing.T) {
	s := New(testConfig())
	s.SetExtents(regionfill.Extents{X: 3, Y: 2, Z: 2})
	s.SetDeleteMode(true)
	if s.Extents() != regionfill.DefaultExtents {
		t.Fatalf("extents kept on entering delete mode: %+v", s.Extents())
	}
	s.SetExtents(regionfill.Extents{X: 4, Y: 1, Z: 1})
	if s.Extents() != regionfill.DefaultExtents {
		t.Fatalf("extents changed while deleting: %+v", s.Extents())
	}
	s.SetDeleteMode(false)
	s.SetExtents(regionfill.Extents{X: 2, Y: 1, Z: 1})
	s.SetDeleteMode(false)
	if s.Extents() != (regionfill.Extents{X: 2, Y: 1, Z: 1}) {
		t.Fatalf("repeating the same mode reset extents: %+v", s.Extents())
	}
	s.SetDeleteMode(true)
	s.SetDeleteMode(false)
	if s.Extents() != regionfill.DefaultExtents {
		t.Fatalf("extents kept on leaving delete mode: %+v", s.Extents())
	}
}

func TestPointerDown_Decals(t *testing.T) {
	var buf bytes.Buffer
	s := New(testConfig(), WithLogger(log.New(&buf, "[editor] ", 0)))
	s.PlaceAt(lattice.Pos{})
	s.SetInputMode(ModeImage)

	if out := s.PointerDown(eastward); out.Err == nil {
		t.Fatalf("placing without a source should fail")
	}
	s.SetDecalSource("ipfs://cid", "https://example.org")
	out := s.PointerDown(eastward)
	if out.Action != ActionPlacedDecal || s.DecalsRemaining() != 2 {
		t.Fatalf("place decal: %+v", out)
	}
	if got := s.ImageURI(0); got != config.DefaultIPFSGateway+"cid" {
		t.Fatalf("image uri = %q", got)
	}

	if out := s.PointerDown(down(1, 1)); !errors.Is(out.Err, decal.ErrVerticalNormal) {
		t.Fatalf("top face: %+v", out)
	}
	if !strings.Contains(buf.String(), "decal rejected") {
		t.Fatalf("rejection not logged: %q", buf.String())
	}

	s.SetDeleteMode(true)
	out = s.PointerDown(eastward)
	if out.Action != ActionRemovedDecal || len(s.Decals()) != 0 || s.Store().Len() != 1 {
		t.Fatalf("delete decal: %+v", out)
	}
}

func TestObserverSeesEveryMutation(t *testing.T) {
	var changes []Change
	s := New(testConfig(), WithObserver(func(c Change) { changes = append(changes, c) }))
	s.PlaceAt(lattice.Pos{})
	s.RemoveAt(lattice.Pos{})
	s.RemoveAt(lattice.Pos{})
	if len(changes) != 2 || changes[0].Counts[0] != 1 || changes[1].Counts[0] != 0 {
		t.Fatalf("changes = %+v", changes)
	}
	if changes[0].DecalsRemaining != 3 {
		t.Fatalf("decals remaining = %d", changes[0].DecalsRemaining)
	}
}

func TestSetters(t *testing.T) {
	s := New(testConfig())
	if err := s.SetCategory(7); !errors.Is(err, lattice.ErrUnknownCategory) {
		t.Fatalf("SetCategory(7) = %v", err)
	}
	if err := s.SetColor("red"); !errors.Is(err, ErrInvalidColor) {
		t.Fatalf("SetColor(red) = %v", err)
	}
	s.SetExtents(regionfill.Extents{X: 0, Y: -2, Z: 3})
	if s.Extents() != (regionfill.Extents{X: 1, Y: 1, Z: 3}) {
		t.Fatalf("extents = %+v", s.Extents())
	}
	_ = s.SetColor("#123456")
	s.PlaceAt(lattice.Pos{})
	if r, _ := s.Store().Get(lattice.Pos{}); r.Color != lattice.DefaultColor {
		t.Fatalf("textured voxel took the colour: %q", r.Color)
	}
	_ = s.SetCategory(2)
	s.PlaceAt(lattice.Pos{X: 4})
	if r, _ := s.Store().Get(lattice.Pos{X: 4}); r.Color != "#123456" {
		t.Fatalf("colour voxel = %q", r.Color)
	}
}

func TestExportLoadRoundTrip(t *testing.T) {
	s := New(testConfig())
	_ = s.SetCategory(2)
	_ = s.SetColor("#00ff00")
	s.SetExtents(regionfill.Extents{X: 2, Y: 2, Z: 1})
	s.PlaceAt(lattice.Pos{X: -6, Z: 4})
	if _, err := s.PlaceDecalAt(hittest.Hit{Point: mgl32.Vec3{-6, 1, 3}, Normal: mgl32.Vec3{0, 0, -1}}, "img", "url"); err != nil {
		t.Fatalf("decal: %v", err)
	}

	rec := s.ExportAll()
	s2 := New(testConfig())
	rep := s2.LoadFrom(rec)
	if rep.Dropped() != 0 || s.Store().Digest() != s2.Store().Digest() || len(s2.Decals()) != 1 {
		t.Fatalf("round trip: %+v", rep)
	}

	// loading again replaces rather than merges
	s2.PlaceAt(lattice.Pos{X: 20})
	s2.LoadFrom(rec)
	if s.Store().Digest() != s2.Store().Digest() || len(s2.Decals()) != 1 {
		t.Fatalf("second load merged with existing content")
	}
}
