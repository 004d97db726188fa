package hittest

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxelsplace/landbuilder/lattice"
)

// Snap returns the lattice cell adjacent to a surface point: the point is
// pushed half a cube along the normal and floored onto the grid. Clicking a
// cube face therefore yields the empty neighbour, not the clicked cube.
func Snap(p, n mgl32.Vec3, cubeSize int) lattice.Pos {
	s := float64(cubeSize)
	half := s / 2
	axis := func(a int) int {
		return int(math.Floor((float64(p[a])+float64(n[a])*half)/s)) * cubeSize
	}
	return lattice.Pos{X: axis(0), Y: axis(1), Z: axis(2)}
}

// Cell is the placement cell for this hit.
func (h Hit) Cell(cubeSize int) lattice.Pos { return Snap(h.Point, h.Normal, cubeSize) }

// CellCenter returns the world-space centre of a cell.
func CellCenter(p lattice.Pos, cubeSize int) mgl32.Vec3 {
	half := float32(cubeSize) / 2
	return mgl32.Vec3{float32(p.X) + half, float32(p.Y) + half, float32(p.Z) + half}
}

// AxisNormal reports whether n is (within tolerance) one of the six axis
// directions and returns that axis.
func AxisNormal(n mgl32.Vec3) (int, bool) {
	for a := 0; a < 3; a++ {
		if mgl32.Abs(mgl32.Abs(n[a])-1) < 1e-4 && mgl32.Abs(n[(a+1)%3]) < 1e-4 && mgl32.Abs(n[(a+2)%3]) < 1e-4 {
			return a, true
		}
	}
	return -1, false
}
