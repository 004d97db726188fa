package regionfill

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxelsplace/landbuilder/hittest"
	"github.com/voxelsplace/landbuilder/lattice"
)

type State int

const (
	Idle State = iota
	Dragging
	Committing
)

func (s State) String() string {
	switch s {
	case Dragging:
		return "dragging"
	case Committing:
		return "committing"
	}
	return "idle"
}

// handleOffset is how far, in cubes, a fresh handle sits beyond the anchor
// cell centre. It lands inside the next cell, so a new gesture starts at
// extents {1,1,1}.
const handleOffset = 0.75

// Session is the three-handle drag gesture. Each handle slides along one
// axis through the anchor centre; the cell it rests in fixes the extent on
// that axis. The session knows nothing about how handles are drawn.
type Session struct {
	cubeSize int
	state    State
	anchor   lattice.Pos
	handles  [3]float32 // handle coordinate along its own axis
}

func NewSession(cubeSize int) *Session {
	return &Session{cubeSize: cubeSize}
}

func (s *Session) State() State        { return s.state }
func (s *Session) Active() bool        { return s.state == Dragging }
func (s *Session) Anchor() lattice.Pos { return s.anchor }

// Begin starts a gesture at anchor and places the handles.
func (s *Session) Begin(anchor lattice.Pos) {
	s.state = Dragging
	s.anchor = anchor
	c := hittest.CellCenter(anchor, s.cubeSize)
	off := float32(handleOffset * float64(s.cubeSize))
	for a := 0; a < 3; a++ {
		s.handles[a] = c[a] + off
	}
}

// Drag moves the handle for axis to p, keeping only p's coordinate along
// that axis. It is ignored outside a gesture.
func (s *Session) Drag(axis int, p mgl32.Vec3) {
	if s.state != Dragging || axis < 0 || axis > 2 {
		return
	}
	s.handles[axis] = p[axis]
}

// Extents derives the live extents from the handle positions. An axis whose
// handle sits in or behind the anchor cell reports zero.
func (s *Session) Extents() Extents {
	if s.state == Idle {
		return DefaultExtents
	}
	anchor := [3]int{s.anchor.X, s.anchor.Y, s.anchor.Z}
	var out [3]int
	size := float64(s.cubeSize)
	for a := 0; a < 3; a++ {
		cell := int(math.Floor(float64(s.handles[a])/size)) * s.cubeSize
		n := (cell - anchor[a]) / s.cubeSize
		if n < 0 {
			n = 0
		}
		out[a] = n
	}
	return Extents{X: out[0], Y: out[1], Z: out[2]}
}

// HandlePositions returns the world positions of the x, y and z handles.
func (s *Session) HandlePositions() [3]mgl32.Vec3 {
	c := hittest.CellCenter(s.anchor, s.cubeSize)
	var out [3]mgl32.Vec3
	for a := 0; a < 3; a++ {
		out[a] = c
		out[a][a] = s.handles[a]
	}
	return out
}

// Handles exposes the markers for hit-testing; empty when idle.
func (s *Session) Handles() []hittest.Handle {
	if s.state != Dragging {
		return nil
	}
	half := float32(s.cubeSize) / 8
	pos := s.HandlePositions()
	out := make([]hittest.Handle, 3)
	for a := 0; a < 3; a++ {
		out[a] = hittest.Handle{Axis: a, Center: pos[a], Half: half}
	}
	return out
}

// Preview returns the cells the current gesture would fill.
func (s *Session) Preview(st *lattice.Store, c int) []lattice.Pos {
	if s.state != Dragging {
		return nil
	}
	return Preview(st, s.anchor, s.Extents(), c)
}

// Commit fills the gesture's cuboid and returns the session to idle.
func (s *Session) Commit(st *lattice.Store, c int, color string) Report {
	if s.state != Dragging {
		return Report{Diff: lattice.Diff{}}
	}
	s.state = Committing
	rep := Fill(st, s.anchor, s.Extents().Normalize(), c, color)
	s.reset()
	return rep
}

// Cancel abandons the gesture without touching the store.
func (s *Session) Cancel() { s.reset() }

func (s *Session) reset() {
	s.state = Idle
	s.anchor = lattice.Pos{}
	s.handles = [3]float32{}
}
