package mesh

import (
	"github.com/voxelsplace/landbuilder/lattice"
)

type Vertex struct {
	Position [3]float32
	Color    uint16 // index into Mesh.Palette
}

// Mesh is an indexed triangle list in world units.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Palette  []string
}

type dirSpec struct {
	normal [3]float32
	u, v   int
	du, dv [3]int
}

var directions = []dirSpec{
	{[3]float32{1, 0, 0}, 1, 2, [3]int{0, 1, 0}, [3]int{0, 0, 1}},
	{[3]float32{-1, 0, 0}, 1, 2, [3]int{0, 1, 0}, [3]int{0, 0, 1}},
	{[3]float32{0, 1, 0}, 0, 2, [3]int{1, 0, 0}, [3]int{0, 0, 1}},
	{[3]float32{0, -1, 0}, 0, 2, [3]int{1, 0, 0}, [3]int{0, 0, 1}},
	{[3]float32{0, 0, 1}, 0, 1, [3]int{1, 0, 0}, [3]int{0, 1, 0}},
	{[3]float32{0, 0, -1}, 0, 1, [3]int{1, 0, 0}, [3]int{0, 1, 0}},
}

// grid is a dense box of palette slots covering the occupied cells; 0 is
// empty.
type grid struct {
	min   [3]int // cell coordinate of slot (0,0,0)
	dims  [3]int
	cells []uint16
}

func (g *grid) at(p [3]int) uint16 {
	for a := 0; a < 3; a++ {
		if p[a] < 0 || p[a] >= g.dims[a] {
			return 0
		}
	}
	return g.cells[(p[1]*g.dims[0]+p[0])*g.dims[2]+p[2]]
}

func (g *grid) set(p [3]int, v uint16) {
	g.cells[(p[1]*g.dims[0]+p[0])*g.dims[2]+p[2]] = v
}

// SwatchOf returns the colour a record is drawn with: its own colour for
// colour-kind voxels, the category swatch otherwise.
func SwatchOf(r lattice.Record, t lattice.Table) string {
	if r.Kind == lattice.KindColor && r.Color != "" {
		return r.Color
	}
	if t.Has(r.Category) && t[r.Category].Color != "" {
		return t[r.Category].Color
	}
	return lattice.DefaultColor
}

// FromStore meshes every voxel in s, merging coplanar faces of the same
// colour. Keys that are not multiples of the cube size are drawn in the
// cell containing them.
func FromStore(s *lattice.Store) *Mesh {
	m := &Mesh{}
	recs := s.Records()
	if len(recs) == 0 {
		return m
	}
	size := s.Bounds().CubeSize
	table := s.Table()

	cellOf := func(p lattice.Pos) [3]int {
		k := lattice.Align(p, size)
		return [3]int{k.X / size, k.Y / size, k.Z / size}
	}
	lo, hi := cellOf(recs[0].Pos), cellOf(recs[0].Pos)
	for _, r := range recs[1:] {
		c := cellOf(r.Pos)
		for a := 0; a < 3; a++ {
			lo[a] = min(lo[a], c[a])
			hi[a] = max(hi[a], c[a])
		}
	}
	g := &grid{min: lo}
	for a := 0; a < 3; a++ {
		g.dims[a] = hi[a] - lo[a] + 1
	}
	g.cells = make([]uint16, g.dims[0]*g.dims[1]*g.dims[2])

	slots := map[string]uint16{}
	for _, r := range recs {
		sw := SwatchOf(r, table)
		slot, ok := slots[sw]
		if !ok {
			m.Palette = append(m.Palette, sw)
			slot = uint16(len(m.Palette))
			slots[sw] = slot
		}
		c := cellOf(r.Pos)
		g.set([3]int{c[0] - lo[0], c[1] - lo[1], c[2] - lo[2]}, slot)
	}

	for _, dir := range directions {
		greedyPlanes(m, g, dir, float32(size))
	}
	return m
}

func greedyPlanes(m *Mesh, g *grid, dir dirSpec, scale float32) {
	perp := 3 - dir.u - dir.v
	nu, nv := g.dims[dir.u], g.dims[dir.v]
	mask := make([]uint16, nu*nv)
	visited := make([]bool, nu*nv)

	for p := 0; p < g.dims[perp]; p++ {
		clear(mask)
		clear(visited)
		for u := 0; u < nu; u++ {
			for v := 0; v < nv; v++ {
				var pos [3]int
				pos[dir.u], pos[dir.v], pos[perp] = u, v, p
				slot := g.at(pos)
				if slot == 0 {
					continue
				}
				adj := pos
				if dir.normal[perp] < 0 {
					adj[perp]--
				} else {
					adj[perp]++
				}
				if g.at(adj) == 0 {
					mask[u*nv+v] = slot
				}
			}
		}

		for u := 0; u < nu; u++ {
			for v := 0; v < nv; {
				slot := mask[u*nv+v]
				if slot == 0 || visited[u*nv+v] {
					v++
					continue
				}
				width := 1
				for v+width < nv && mask[u*nv+v+width] == slot && !visited[u*nv+v+width] {
					width++
				}
				height := 1
			grow:
				for u+height < nu {
					for w := v; w < v+width; w++ {
						i := (u+height)*nv + w
						if mask[i] != slot || visited[i] {
							break grow
						}
					}
					height++
				}
				for hu := u; hu < u+height; hu++ {
					for hv := v; hv < v+width; hv++ {
						visited[hu*nv+hv] = true
					}
				}
				addQuad(m, g, dir, perp, [3]int{p, u, v}, width, height, slot, scale)
				v += width
			}
		}
	}
}

func addQuad(m *Mesh, g *grid, dir dirSpec, perp int, start [3]int, w, h int, slot uint16, scale float32) {
	var base [3]float32
	base[perp] = float32(start[0])
	if dir.normal[perp] > 0 {
		base[perp]++
	}
	base[dir.u] = float32(start[1])
	base[dir.v] = float32(start[2])

	corner := func(du, dv int) Vertex {
		var p [3]float32
		for a := 0; a < 3; a++ {
			p[a] = (base[a] + float32(dir.du[a]*du+dir.dv[a]*dv) + float32(g.min[a])) * scale
		}
		return Vertex{Position: p, Color: slot - 1}
	}
	verts := [4]Vertex{corner(0, 0), corner(h, 0), corner(h, w), corner(0, w)}
	if (dir.normal[perp] < 0) != (perp == 1) {
		verts[1], verts[3] = verts[3], verts[1]
	}

	first := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, verts[:]...)
	m.Indices = append(m.Indices, first, first+1, first+2, first, first+2, first+3)
}
