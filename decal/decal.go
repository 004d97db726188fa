package decal

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxelsplace/landbuilder/hittest"
	"github.com/voxelsplace/landbuilder/lattice"
	"github.com/voxelsplace/landbuilder/regionfill"
)

// DefaultMax is the decal allowance of a land.
const DefaultMax = 3

// faceGap is the fraction of half a cube the decal is pulled back from the
// adjacent cell centre towards the face, leaving it just off the surface.
const faceGap = 0.99

var (
	ErrVerticalNormal = errors.New("decal: only vertical faces accept decals")
	ErrListFull       = errors.New("decal: decal limit reached")
	ErrMissingSource  = errors.New("decal: image and url are required")
	ErrOutOfBounds    = errors.New("decal: footprint leaves the buildable volume")
	ErrMalformed      = errors.New("decal: malformed transform")
)

type Size struct {
	Width, Height float32
}

// Decal is an image rectangle anchored to a lattice face. Orientation maps
// the rectangle's +Z normal onto the face normal.
type Decal struct {
	Position    mgl32.Vec3
	Orientation mgl32.Quat
	Size        Size
	Image       string
	URL         string
}

// HalfDiagonal is the vector from the centre to one corner in world space.
func (d Decal) HalfDiagonal() mgl32.Vec3 {
	v := d.Orientation.Rotate(mgl32.Vec3{d.Size.Width / 2, d.Size.Height / 2, 0})
	for a := 0; a < 3; a++ {
		v[a] = float32(math.Round(float64(v[a])*1e4) / 1e4)
	}
	return v
}

func (d Decal) Rect() hittest.Rect {
	return hittest.Rect{Center: d.Position, Orientation: d.Orientation, Width: d.Size.Width, Height: d.Size.Height}
}

// Engine places decals and owns the bounded decal list.
type Engine struct {
	bounds lattice.Bounds
	max    int
	list   []Decal
}

func NewEngine(b lattice.Bounds, max int) *Engine {
	return &Engine{bounds: b, max: max}
}

func (e *Engine) Len() int { return len(e.list) }
func (e *Engine) Max() int { return e.max }

func (e *Engine) Remaining() int {
	if r := e.max - len(e.list); r > 0 {
		return r
	}
	return 0
}

// All returns a copy of the decal list in placement order.
func (e *Engine) All() []Decal {
	out := make([]Decal, len(e.list))
	copy(out, e.list)
	return out
}

func (e *Engine) Rects() []hittest.Rect {
	out := make([]hittest.Rect, len(e.list))
	for i, d := range e.list {
		out[i] = d.Rect()
	}
	return out
}

// Fits reports whether both footprint corners of d lie in the volume.
func (e *Engine) Fits(d Decal) bool {
	hd := d.HalfDiagonal()
	lo := d.Position.Sub(hd)
	hi := d.Position.Add(hd)
	return e.bounds.IsValidPoint(lo[0], lo[1], lo[2]) && e.bounds.IsValidPoint(hi[0], hi[1], hi[2])
}

// Place anchors a decal on the face hit at point with the given normal.
// Its size is taken from the two extents tangential to the face.
func (e *Engine) Place(point, normal mgl32.Vec3, ext regionfill.Extents, image, url string) (Decal, error) {
	axis, ok := hittest.AxisNormal(normal)
	if !ok || axis == 1 {
		return Decal{}, ErrVerticalNormal
	}
	if len(e.list) >= e.max {
		return Decal{}, ErrListFull
	}
	if image == "" || url == "" {
		return Decal{}, ErrMissingSource
	}

	ext = ext.Normalize()
	size := float32(e.bounds.CubeSize)
	n := mgl32.Vec3{}
	n[axis] = float32(math.Copysign(1, float64(normal[axis])))

	// tangential axis across the face: z for x-facing faces, x for z-facing
	across, wid := 2, ext.Z
	if axis == 2 {
		across, wid = 0, ext.X
	}
	hei := ext.Y

	center := hittest.CellCenter(hittest.Snap(point, n, e.bounds.CubeSize), e.bounds.CubeSize)
	center = center.Sub(n.Mul(faceGap * size / 2))
	center[across] += float32(wid-1) * size / 2
	center[1] += float32(hei-1) * size / 2

	d := Decal{
		Position:    center,
		Orientation: facing(n),
		Size:        Size{Width: size * float32(wid), Height: size * float32(hei)},
		Image:       image,
		URL:         url,
	}
	if !e.Fits(d) {
		return Decal{}, ErrOutOfBounds
	}
	e.list = append(e.list, d)
	return d, nil
}

// Hydrate adds a persisted decal after running it through the same checks
// as an interactive placement. A zero size defaults to one cube face.
func (e *Engine) Hydrate(d Decal) error {
	if len(e.list) >= e.max {
		return ErrListFull
	}
	if d.Image == "" || d.URL == "" {
		return ErrMissingSource
	}
	if !finite(d.Position[:]...) || !finite(d.Orientation.W, d.Orientation.V[0], d.Orientation.V[1], d.Orientation.V[2]) {
		return ErrMalformed
	}
	if d.Orientation.Len() < 1e-6 {
		return ErrMalformed
	}
	d.Orientation = d.Orientation.Normalize()
	if d.Size.Width == 0 && d.Size.Height == 0 {
		s := float32(e.bounds.CubeSize)
		d.Size = Size{Width: s, Height: s}
	}
	if !finite(d.Size.Width, d.Size.Height) || d.Size.Width < 0 || d.Size.Height < 0 {
		return ErrMalformed
	}
	if !e.Fits(d) {
		return ErrOutOfBounds
	}
	e.list = append(e.list, d)
	return nil
}

// Remove deletes the i-th decal, keeping the order of the rest.
func (e *Engine) Remove(i int) (Decal, bool) {
	if i < 0 || i >= len(e.list) {
		return Decal{}, false
	}
	d := e.list[i]
	e.list = append(e.list[:i], e.list[i+1:]...)
	return d, true
}

func (e *Engine) Clear() { e.list = e.list[:0] }

// facing returns the yaw rotation taking +Z onto the horizontal normal n.
func facing(n mgl32.Vec3) mgl32.Quat {
	angle := float32(math.Atan2(float64(n.X()), float64(n.Z())))
	return mgl32.QuatRotate(angle, mgl32.Vec3{0, 1, 0})
}

func finite(vs ...float32) bool {
	for _, v := range vs {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
