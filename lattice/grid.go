package lattice

import "fmt"

const (
	DefaultCubeSize   = 2
	DefaultHalfExtent = 32
)

// Pos is a lattice cell key: the minimum corner of a cube, in world units.
type Pos struct {
	X, Y, Z int
}

func (p Pos) Add(o Pos) Pos { return Pos{p.X + o.X, p.Y + o.Y, p.Z + o.Z} }

func (p Pos) String() string { return fmt.Sprintf("(%d,%d,%d)", p.X, p.Y, p.Z) }

// Align maps p onto the key of the cell containing it.
func Align(p Pos, cubeSize int) Pos {
	if cubeSize <= 0 {
		return p
	}
	return Pos{floorTo(p.X, cubeSize), floorTo(p.Y, cubeSize), floorTo(p.Z, cubeSize)}
}

func floorTo(v, s int) int {
	q := v / s
	if v%s != 0 && v < 0 {
		q--
	}
	return q * s
}

// Bounds describes the buildable volume: a square footprint of radius
// HalfExtent around the origin and a vertical band [0, HalfExtent].
type Bounds struct {
	CubeSize   int
	HalfExtent int
}

func DefaultBounds() Bounds {
	return Bounds{CubeSize: DefaultCubeSize, HalfExtent: DefaultHalfExtent}
}

// IsValid reports whether p lies inside the buildable volume. x and z are
// exclusive on both ends, y is inclusive.
func (b Bounds) IsValid(p Pos) bool {
	return b.IsValidPoint(float32(p.X), float32(p.Y), float32(p.Z))
}

// IsValidPoint is IsValid for free-floating points such as decal corners.
func (b Bounds) IsValidPoint(x, y, z float32) bool {
	h := float32(b.HalfExtent)
	if x <= -h || x >= h {
		return false
	}
	if z <= -h || z >= h {
		return false
	}
	return y >= 0 && y <= h
}

// Cells is the number of cube positions along one horizontal axis.
func (b Bounds) Cells() int {
	if b.CubeSize <= 0 {
		return 0
	}
	return 2 * b.HalfExtent / b.CubeSize
}
