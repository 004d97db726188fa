package hittest

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

func (r Ray) At(t float32) mgl32.Vec3 { return r.Origin.Add(r.Direction.Mul(t)) }

// Camera is the perspective camera state the pointer glue hands in with
// every event. FovY is in degrees.
type Camera struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3
	FovY     float32
	Aspect   float32
}

// NDC converts a pixel coordinate inside a w×h viewport to normalized
// device coordinates (x right, y up, both in [-1, 1]).
func NDC(px, py float64, w, h int) (float32, float32) {
	nx := (2.0*float32(px))/float32(w) - 1.0
	ny := 1.0 - (2.0*float32(py))/float32(h)
	return nx, ny
}

// Ray builds the pick ray through the given NDC point.
func (c Camera) Ray(nx, ny float32) Ray {
	forward := c.Target.Sub(c.Position).Normalize()
	up := c.Up
	if up.Len() == 0 {
		up = mgl32.Vec3{0, 1, 0}
	}
	right := forward.Cross(up).Normalize()
	up = right.Cross(forward)

	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	fov := c.FovY
	if fov <= 0 {
		fov = 45
	}
	tanHalfFov := float32(math.Tan(float64(mgl32.DegToRad(fov) / 2.0)))

	dir := forward.Add(right.Mul(nx * aspect * tanHalfFov)).Add(up.Mul(ny * tanHalfFov))
	return Ray{Origin: c.Position, Direction: dir.Normalize()}
}

// ClosestOnLine returns the point of the line through p0 along dir that is
// nearest to ray. It fails when the two are parallel.
func ClosestOnLine(ray Ray, p0, dir mgl32.Vec3) (mgl32.Vec3, bool) {
	w0 := p0.Sub(ray.Origin)
	a := dir.Dot(dir)
	b := dir.Dot(ray.Direction)
	c := ray.Direction.Dot(ray.Direction)
	d := dir.Dot(w0)
	e := ray.Direction.Dot(w0)
	denom := a*c - b*b
	if denom < 1e-6*a*c {
		return mgl32.Vec3{}, false
	}
	return p0.Add(dir.Mul((b*e - c*d) / denom)), true
}

// intersectBox is the slab test. It returns the entry parameter and the
// outward normal of the entered face; a ray starting inside the box misses.
func intersectBox(ray Ray, minB, maxB mgl32.Vec3) (float32, mgl32.Vec3, bool) {
	tNear := float32(math.Inf(-1))
	tFar := float32(math.Inf(1))
	var normal mgl32.Vec3
	for a := 0; a < 3; a++ {
		o, d := ray.Origin[a], ray.Direction[a]
		if d == 0 {
			if o < minB[a] || o > maxB[a] {
				return 0, normal, false
			}
			continue
		}
		t1 := (minB[a] - o) / d
		t2 := (maxB[a] - o) / d
		sign := float32(-1)
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1
		}
		if t1 > tNear {
			tNear = t1
			normal = mgl32.Vec3{}
			normal[a] = sign
		}
		if t2 < tFar {
			tFar = t2
		}
		if tNear > tFar {
			return 0, normal, false
		}
	}
	if tNear < 0 || math.IsInf(float64(tNear), 0) {
		return 0, normal, false
	}
	return tNear, normal, true
}
