// Package editor is the land-building session behind the pointer glue: it
// owns the lattice, the decal list and the drag gesture, and turns resolved
// pointer events into edits.
package editor

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxelsplace/landbuilder/codec"
	"github.com/voxelsplace/landbuilder/config"
	"github.com/voxelsplace/landbuilder/decal"
	"github.com/voxelsplace/landbuilder/hittest"
	"github.com/voxelsplace/landbuilder/lattice"
	"github.com/voxelsplace/landbuilder/mesh"
	"github.com/voxelsplace/landbuilder/regionfill"
)

type InputMode int

const (
	ModeCube InputMode = iota
	ModeImage
)

func (m InputMode) String() string {
	if m == ModeImage {
		return "image"
	}
	return "cube"
}

// ParseInputMode maps "cube" or "image" onto an InputMode.
func ParseInputMode(s string) (InputMode, error) {
	switch s {
	case "cube":
		return ModeCube, nil
	case "image":
		return ModeImage, nil
	}
	return 0, fmt.Errorf("editor: unknown input mode %q", s)
}

type InputType int

const (
	TypeClick InputType = iota
	TypeDrag
)

func (t InputType) String() string {
	if t == TypeDrag {
		return "drag"
	}
	return "click"
}

// ParseInputType maps "click" or "drag" onto an InputType.
func ParseInputType(s string) (InputType, error) {
	switch s {
	case "click":
		return TypeClick, nil
	case "drag":
		return TypeDrag, nil
	}
	return 0, fmt.Errorf("editor: unknown input type %q", s)
}

// Change is sent to the observer after every mutation. Counts holds only
// the categories whose counter moved.
type Change struct {
	Counts          lattice.Diff
	DecalsRemaining int
}

type Observer func(Change)

type Option func(*Session)

func WithLogger(l *log.Logger) Option { return func(s *Session) { s.log = l } }

func WithObserver(o Observer) Option { return func(s *Session) { s.observer = o } }

// Session is one editing session. Calls run to completion and are not safe
// for concurrent use.
type Session struct {
	store   *lattice.Store
	decals  *decal.Engine
	gesture *regionfill.Session
	gateway string

	category int
	color    string
	extents  regionfill.Extents
	mode     InputMode
	itype    InputType
	deleting bool
	image    string
	url      string

	log      *log.Logger
	observer Observer
}

func New(cfg config.Config, opts ...Option) *Session {
	b := cfg.Bounds()
	s := &Session{
		store:   lattice.NewStore(b, cfg.Table()),
		decals:  decal.NewEngine(b, cfg.ImageMaxCount),
		gesture: regionfill.NewSession(b.CubeSize),
		gateway: cfg.IPFSGateway,
		color:   lattice.DefaultColor,
		extents: regionfill.DefaultExtents,
		log:     log.New(io.Discard, "", 0),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Session) Store() *lattice.Store              { return s.store }
func (s *Session) Decals() []decal.Decal              { return s.decals.All() }
func (s *Session) DecalsRemaining() int               { return s.decals.Remaining() }
func (s *Session) Remaining(c int) int                { return s.store.Remaining(c) }
func (s *Session) Category() int                      { return s.category }
func (s *Session) Color() string                      { return s.color }
func (s *Session) Extents() regionfill.Extents        { return s.extents }
func (s *Session) InputMode() InputMode               { return s.mode }
func (s *Session) InputType() InputType               { return s.itype }
func (s *Session) DeleteMode() bool                   { return s.deleting }
func (s *Session) GestureState() regionfill.State     { return s.gesture.State() }
func (s *Session) Handles() []hittest.Handle          { return s.gesture.Handles() }
func (s *Session) GestureExtents() regionfill.Extents { return s.gesture.Extents() }

// LoadFrom replaces the session content with rec.
func (s *Session) LoadFrom(rec codec.Record) codec.ImportReport {
	s.gesture.Cancel()
	diff := s.store.Clear()
	s.decals.Clear()
	rep := codec.Import(rec, s.store, s.decals)
	diff.Merge(rep.Diff)
	if n := rep.Dropped(); n > 0 {
		s.log.Printf("import dropped %d entries (truncated=%d malformed=%d out_of_bounds=%d unknown=%d quota=%d decals_malformed=%d decals_out_of_bounds=%d decals_over_limit=%d)",
			n, rep.Truncated, rep.Malformed, rep.OutOfBounds, rep.UnknownCategory, rep.QuotaExceeded,
			rep.DecalsMalformed, rep.DecalsOutOfBounds, rep.DecalsOverLimit)
	}
	if rep.ForeignCubeSize {
		s.log.Printf("record cube size %d differs from %d", rec.CubeSize, s.store.Bounds().CubeSize)
	}
	s.notify(diff)
	return rep
}

func (s *Session) ExportAll() codec.Record {
	return codec.Export(s.store, s.decals.All(), s.decals.Max())
}

// PlaceAt fills the current extents at anchor with the active category.
func (s *Session) PlaceAt(anchor lattice.Pos) regionfill.Report {
	rep := regionfill.Fill(s.store, anchor, s.extents, s.category, s.voxelColor())
	s.afterFill(rep)
	return rep
}

func (s *Session) RemoveAt(p lattice.Pos) bool {
	_, diff, ok := s.store.Remove(p)
	if ok {
		s.notify(diff)
	}
	return ok
}

func (s *Session) RemoveDecal(i int) bool {
	if _, ok := s.decals.Remove(i); !ok {
		return false
	}
	s.notify(nil)
	return true
}

// BeginRegionFill starts a drag gesture anchored at anchor. A gesture
// already in progress is abandoned.
func (s *Session) BeginRegionFill(anchor lattice.Pos) {
	s.gesture.Cancel()
	s.gesture.Begin(anchor)
}

func (s *Session) DragHandle(axis int, p mgl32.Vec3) { s.gesture.Drag(axis, p) }

// DragHandleRay moves the handle for axis to the point of its axis line
// nearest to ray. It reports false outside a gesture or when the ray runs
// parallel to the axis.
func (s *Session) DragHandleRay(axis int, ray hittest.Ray) bool {
	handles := s.gesture.Handles()
	if axis < 0 || axis >= len(handles) {
		return false
	}
	var dir mgl32.Vec3
	dir[axis] = 1
	p, ok := hittest.ClosestOnLine(ray, handles[axis].Center, dir)
	if !ok {
		return false
	}
	s.gesture.Drag(axis, p)
	return true
}

// PickHandle reports which gesture handle, if any, ray grabs.
func (s *Session) PickHandle(ray hittest.Ray) (int, bool) {
	r := hittest.Resolver{Store: s.store, Handles: s.gesture.Handles()}
	h, ok := r.Resolve(ray, hittest.FilterHandles)
	if !ok {
		return -1, false
	}
	return h.Target.Axis, true
}

// Preview lists the cells the active gesture would fill.
func (s *Session) Preview() []lattice.Pos { return s.gesture.Preview(s.store, s.category) }

func (s *Session) CommitRegionFill() regionfill.Report {
	if !s.gesture.Active() {
		return regionfill.Report{Diff: lattice.Diff{}}
	}
	rep := s.gesture.Commit(s.store, s.category, s.voxelColor())
	s.afterFill(rep)
	return rep
}

func (s *Session) CancelRegionFill() { s.gesture.Cancel() }

// PlaceDecalAt anchors the pending image on the face under hit, sized by
// the current extents.
func (s *Session) PlaceDecalAt(hit hittest.Hit, image, url string) (decal.Decal, error) {
	d, err := s.decals.Place(hit.Point, hit.Normal, s.extents, image, url)
	if err != nil {
		s.log.Printf("decal rejected at %v: %v", hit.Point, err)
		return d, err
	}
	s.notify(nil)
	return d, nil
}

// ClearAll removes every voxel and decal.
func (s *Session) ClearAll() {
	s.gesture.Cancel()
	diff := s.store.Clear()
	s.decals.Clear()
	s.notify(diff)
}

var ErrInvalidColor = errors.New("editor: invalid colour")

func (s *Session) SetCategory(c int) error {
	if !s.store.Table().Has(c) {
		return fmt.Errorf("%w: %d", lattice.ErrUnknownCategory, c)
	}
	s.category = c
	return nil
}

func (s *Session) SetColor(hex string) error {
	if _, err := mesh.ParseHexColor(hex); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidColor, err)
	}
	s.color = hex
	return nil
}

// SetExtents sets the click-fill and decal size; every axis is at least 1.
// Extents are locked at one cell while delete mode is on.
func (s *Session) SetExtents(e regionfill.Extents) {
	if s.deleting {
		return
	}
	s.extents = e.Normalize()
}

func (s *Session) SetInputMode(m InputMode) {
	if m != s.mode {
		s.gesture.Cancel()
	}
	s.mode = m
}

func (s *Session) SetInputType(t InputType) {
	if t != s.itype {
		s.gesture.Cancel()
	}
	s.itype = t
}

// SetDeleteMode toggles deletion. Every toggle resets the extents to one
// cell.
func (s *Session) SetDeleteMode(on bool) {
	if on {
		s.gesture.Cancel()
	}
	if on != s.deleting {
		s.extents = regionfill.DefaultExtents
	}
	s.deleting = on
}

// SetDecalSource sets the image and link used by pointer placement in
// image mode.
func (s *Session) SetDecalSource(image, url string) {
	s.image, s.url = image, url
}

// ImageURI returns the loadable address of the i-th decal's image.
func (s *Session) ImageURI(i int) string {
	all := s.decals.All()
	if i < 0 || i >= len(all) {
		return ""
	}
	return codec.ResolveImageURI(all[i].Image, s.gateway)
}

// voxelColor is the override recorded for new voxels; only colour-kind
// categories carry the picked colour.
func (s *Session) voxelColor() string {
	if s.store.Table().Kind(s.category) == lattice.KindColor {
		return s.color
	}
	return lattice.DefaultColor
}

func (s *Session) afterFill(rep regionfill.Report) {
	if rep.Stopped {
		s.log.Printf("%s quota reached after %d voxels", s.store.Table().Kind(s.category), rep.Placed)
	}
	if len(rep.Diff) > 0 || rep.Stopped {
		s.notify(rep.Diff)
	}
}

func (s *Session) notify(d lattice.Diff) {
	if s.observer == nil {
		return
	}
	if d == nil {
		d = lattice.Diff{}
	}
	s.observer(Change{Counts: d, DecalsRemaining: s.decals.Remaining()})
}
