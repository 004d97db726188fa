package hittest

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxelsplace/landbuilder/lattice"
)

// Kind identifies what a pick ray landed on.
type Kind int

const (
	KindNone Kind = iota
	KindGround
	KindVoxel
	KindDecal
	KindHandle
)

func (k Kind) String() string {
	switch k {
	case KindGround:
		return "ground"
	case KindVoxel:
		return "voxel"
	case KindDecal:
		return "decal"
	case KindHandle:
		return "handle"
	}
	return "none"
}

// Filter selects which surfaces take part in a query.
type Filter int

const (
	// FilterPlacement covers ground, voxels and decals. Gesture handles are
	// not interactive for placement or deletion.
	FilterPlacement Filter = iota
	// FilterHandles considers gesture handles only.
	FilterHandles
)

type Target struct {
	Kind  Kind
	Cell  lattice.Pos // KindVoxel
	Decal int         // KindDecal: index into the decal list
	Axis  int         // KindHandle: 0=x 1=y 2=z
}

type Hit struct {
	T      float32
	Point  mgl32.Vec3
	Normal mgl32.Vec3
	Target Target
}

// Rect is a decal surface as seen by the resolver.
type Rect struct {
	Center      mgl32.Vec3
	Orientation mgl32.Quat
	Width       float32
	Height      float32
}

// Handle is a gesture-handle marker: a small cube around Center.
type Handle struct {
	Axis   int
	Center mgl32.Vec3
	Half   float32
}

// Resolver intersects pick rays with the editable scene. Voxels are found
// by walking the ray through the lattice and querying the store, so no
// separate scene graph is kept.
type Resolver struct {
	Store   *lattice.Store
	Decals  []Rect
	Handles []Handle
}

// Resolve returns the nearest surface hit by ray among those allowed by f.
func (r *Resolver) Resolve(ray Ray, f Filter) (Hit, bool) {
	best := Hit{T: float32(math.Inf(1))}
	found := false
	take := func(h Hit, ok bool) {
		if ok && h.T < best.T {
			best = h
			found = true
		}
	}

	if f == FilterHandles {
		for _, hd := range r.Handles {
			take(r.hitHandle(ray, hd))
		}
		return best, found
	}

	take(r.hitGround(ray))
	take(r.hitVoxels(ray))
	for i, rc := range r.Decals {
		h, ok := hitRect(ray, rc)
		h.Target = Target{Kind: KindDecal, Decal: i}
		take(h, ok)
	}
	return best, found
}

func (r *Resolver) bounds() lattice.Bounds {
	if r.Store == nil {
		return lattice.DefaultBounds()
	}
	return r.Store.Bounds()
}

// hitGround intersects the y=0 plane, limited to the grid square and only
// from above.
func (r *Resolver) hitGround(ray Ray) (Hit, bool) {
	d := ray.Direction.Y()
	if d >= 0 || ray.Origin.Y() <= 0 {
		return Hit{}, false
	}
	t := -ray.Origin.Y() / d
	p := ray.At(t)
	p[1] = 0
	h := float32(r.bounds().HalfExtent)
	if p.X() < -h || p.X() > h || p.Z() < -h || p.Z() > h {
		return Hit{}, false
	}
	return Hit{T: t, Point: p, Normal: mgl32.Vec3{0, 1, 0}, Target: Target{Kind: KindGround}}, true
}

// hitVoxels walks the lattice cells pierced by the ray (Amanatides & Woo)
// inside the buildable box and stops at the first occupied cell.
func (r *Resolver) hitVoxels(ray Ray) (Hit, bool) {
	if r.Store == nil || r.Store.Len() == 0 {
		return Hit{}, false
	}
	b := r.bounds()
	s := float64(b.CubeSize)
	if s <= 0 {
		return Hit{}, false
	}
	h := float64(b.HalfExtent)
	minB := [3]float64{-h, 0, -h}
	maxB := [3]float64{h, h + s, h}

	var o, d [3]float64
	for a := 0; a < 3; a++ {
		o[a] = float64(ray.Origin[a])
		d[a] = float64(ray.Direction[a])
	}

	// clip to the box
	tEnter, tExit := 0.0, math.Inf(1)
	enterAxis := -1
	for a := 0; a < 3; a++ {
		if d[a] == 0 {
			if o[a] < minB[a] || o[a] > maxB[a] {
				return Hit{}, false
			}
			continue
		}
		t1 := (minB[a] - o[a]) / d[a]
		t2 := (maxB[a] - o[a]) / d[a]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tEnter {
			tEnter = t1
			enterAxis = a
		}
		if t2 < tExit {
			tExit = t2
		}
	}
	if tEnter > tExit {
		return Hit{}, false
	}

	var idx, step [3]int
	var tMax, tDelta [3]float64
	for a := 0; a < 3; a++ {
		p := o[a] + d[a]*tEnter
		// nudge inside along the ray so boundary points resolve to the entered cell
		p += d[a] * 1e-9
		idx[a] = int(math.Floor(p / s))
		switch {
		case d[a] > 0:
			step[a] = 1
			tMax[a] = tEnter + (float64(idx[a]+1)*s-p)/d[a]
			tDelta[a] = s / d[a]
		case d[a] < 0:
			step[a] = -1
			tMax[a] = tEnter + (float64(idx[a])*s-p)/d[a]
			tDelta[a] = -s / d[a]
		default:
			tMax[a] = math.Inf(1)
			tDelta[a] = math.Inf(1)
		}
	}

	t := tEnter
	axis := enterAxis
	limit := 3*(b.Cells()+int(h/s)+2) + 3
	for i := 0; i < limit && t <= tExit; i++ {
		cell := lattice.Pos{X: idx[0] * b.CubeSize, Y: idx[1] * b.CubeSize, Z: idx[2] * b.CubeSize}
		if axis >= 0 && r.Store.Occupied(cell) {
			var n mgl32.Vec3
			n[axis] = float32(-step[axis])
			return Hit{
				T:      float32(t),
				Point:  ray.At(float32(t)),
				Normal: n,
				Target: Target{Kind: KindVoxel, Cell: cell},
			}, true
		}
		a := 0
		if tMax[1] < tMax[a] {
			a = 1
		}
		if tMax[2] < tMax[a] {
			a = 2
		}
		t = tMax[a]
		idx[a] += step[a]
		tMax[a] += tDelta[a]
		axis = a
	}
	return Hit{}, false
}

func (r *Resolver) hitHandle(ray Ray, hd Handle) (Hit, bool) {
	half := mgl32.Vec3{hd.Half, hd.Half, hd.Half}
	t, n, ok := intersectBox(ray, hd.Center.Sub(half), hd.Center.Add(half))
	if !ok {
		return Hit{}, false
	}
	return Hit{T: t, Point: ray.At(t), Normal: n, Target: Target{Kind: KindHandle, Axis: hd.Axis}}, true
}

func hitRect(ray Ray, rc Rect) (Hit, bool) {
	n := rc.Orientation.Rotate(mgl32.Vec3{0, 0, 1})
	denom := ray.Direction.Dot(n)
	if float32(math.Abs(float64(denom))) < 1e-6 {
		return Hit{}, false
	}
	t := rc.Center.Sub(ray.Origin).Dot(n) / denom
	if t < 0 {
		return Hit{}, false
	}
	p := ray.At(t)
	local := p.Sub(rc.Center)
	u := local.Dot(rc.Orientation.Rotate(mgl32.Vec3{1, 0, 0}))
	v := local.Dot(rc.Orientation.Rotate(mgl32.Vec3{0, 1, 0}))
	if float32(math.Abs(float64(u))) > rc.Width/2 || float32(math.Abs(float64(v))) > rc.Height/2 {
		return Hit{}, false
	}
	if denom > 0 {
		n = n.Mul(-1)
	}
	return Hit{T: t, Point: p, Normal: n}, true
}
