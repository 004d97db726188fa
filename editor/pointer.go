package editor

import (
	"errors"

	"github.com/voxelsplace/landbuilder/decal"
	"github.com/voxelsplace/landbuilder/hittest"
	"github.com/voxelsplace/landbuilder/lattice"
	"github.com/voxelsplace/landbuilder/regionfill"
)

// Action is what a pointer press ended up doing.
type Action int

const (
	ActionNone Action = iota
	ActionRemovedVoxel
	ActionRemovedDecal
	ActionPlacedDecal
	ActionFilled
	ActionGestureBegun
	ActionGestureCommitted
)

func (a Action) String() string {
	switch a {
	case ActionRemovedVoxel:
		return "removed-voxel"
	case ActionRemovedDecal:
		return "removed-decal"
	case ActionPlacedDecal:
		return "placed-decal"
	case ActionFilled:
		return "filled"
	case ActionGestureBegun:
		return "gesture-begun"
	case ActionGestureCommitted:
		return "gesture-committed"
	}
	return "none"
}

// Outcome describes one PointerDown.
type Outcome struct {
	Action Action
	Hit    hittest.Hit
	Cell   lattice.Pos
	Fill   regionfill.Report
	Decal  decal.Decal
	Err    error
}

var errNoSource = errors.New("editor: no decal source selected")

func (s *Session) resolver() *hittest.Resolver {
	return &hittest.Resolver{Store: s.store, Decals: s.decals.Rects(), Handles: s.gesture.Handles()}
}

// pick resolves ray against the scene. A gesture handle in front of the
// nearest surface swallows the event.
func (s *Session) pick(ray hittest.Ray) (hittest.Hit, bool) {
	r := s.resolver()
	hit, ok := r.Resolve(ray, hittest.FilterPlacement)
	if hd, hok := r.Resolve(ray, hittest.FilterHandles); hok && (!ok || hd.T <= hit.T) {
		return hittest.Hit{}, false
	}
	return hit, ok
}

// PointerDown dispatches a press: delete mode removes the voxel or decal
// under the pointer, image mode places the pending decal, cube mode fills
// at the adjacent cell (click) or begins, then commits, a drag gesture.
func (s *Session) PointerDown(ray hittest.Ray) Outcome {
	hit, ok := s.pick(ray)
	if !ok {
		return Outcome{}
	}
	out := Outcome{Hit: hit}

	if s.deleting {
		switch hit.Target.Kind {
		case hittest.KindVoxel:
			if s.RemoveAt(hit.Target.Cell) {
				out.Action, out.Cell = ActionRemovedVoxel, hit.Target.Cell
			}
		case hittest.KindDecal:
			if s.RemoveDecal(hit.Target.Decal) {
				out.Action = ActionRemovedDecal
			}
		}
		return out
	}

	if s.mode == ModeImage {
		if s.image == "" || s.url == "" {
			out.Err = errNoSource
			return out
		}
		d, err := s.PlaceDecalAt(hit, s.image, s.url)
		if err != nil {
			out.Err = err
			return out
		}
		out.Action, out.Decal = ActionPlacedDecal, d
		return out
	}

	cell := hit.Cell(s.store.Bounds().CubeSize)
	if !s.store.IsValid(cell) {
		return out
	}
	out.Cell = cell
	if s.itype == TypeDrag {
		if !s.gesture.Active() {
			s.BeginRegionFill(cell)
			out.Action = ActionGestureBegun
			return out
		}
		out.Cell = s.gesture.Anchor()
		out.Fill = s.CommitRegionFill()
		out.Action = ActionGestureCommitted
		return out
	}
	out.Fill = s.PlaceAt(cell)
	out.Action = ActionFilled
	return out
}

// Hover returns the roll-over cell under ray.
func (s *Session) Hover(ray hittest.Ray) (lattice.Pos, bool) {
	hit, ok := s.pick(ray)
	if !ok {
		return lattice.Pos{}, false
	}
	return hit.Cell(s.store.Bounds().CubeSize), true
}
