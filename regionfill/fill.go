package regionfill

import "github.com/voxelsplace/landbuilder/lattice"

// Extents are the cuboid dimensions of a fill, in cells.
type Extents struct {
	X, Y, Z int
}

var DefaultExtents = Extents{1, 1, 1}

// Normalize clamps every axis to at least one cell.
func (e Extents) Normalize() Extents {
	if e.X < 1 {
		e.X = 1
	}
	if e.Y < 1 {
		e.Y = 1
	}
	if e.Z < 1 {
		e.Z = 1
	}
	return e
}

// Report summarizes one fill.
type Report struct {
	Placed   int
	Replaced int
	Skipped  int  // cells outside the buildable volume
	Stopped  bool // quota ran out before the cuboid was complete
	Diff     lattice.Diff
}

// Fill places category c over the cuboid anchored at anchor. Cells are
// visited y outermost, then z, then x. The fill halts entirely the first
// time the category's quota is found exhausted; cells after that point are
// left untouched even if they would only replace same-category voxels.
func Fill(s *lattice.Store, anchor lattice.Pos, ext Extents, c int, color string) Report {
	rep := Report{Diff: lattice.Diff{}}
	size := s.Bounds().CubeSize
	for y := 0; y < ext.Y; y++ {
		for z := 0; z < ext.Z; z++ {
			for x := 0; x < ext.X; x++ {
				if s.Exhausted(c) {
					rep.Stopped = true
					rep.Diff[c] = s.Count(c)
					return rep
				}
				p := anchor.Add(lattice.Pos{X: x * size, Y: y * size, Z: z * size})
				if !s.IsValid(p) {
					rep.Skipped++
					continue
				}
				res, err := s.Place(p, c, color)
				if err != nil {
					continue
				}
				rep.Placed++
				if res.Replaced != nil {
					rep.Replaced++
				}
				rep.Diff.Merge(res.Diff)
			}
		}
	}
	return rep
}

// Preview lists the cells a fill would place. Unlike Fill it only skips
// cells once the projected count reaches the quota, so the translucent
// preview can be drawn for any extents, including empty ones.
func Preview(s *lattice.Store, anchor lattice.Pos, ext Extents, c int) []lattice.Pos {
	var out []lattice.Pos
	table := s.Table()
	if !table.Has(c) {
		return nil
	}
	size := s.Bounds().CubeSize
	for y := 0; y < ext.Y; y++ {
		for z := 0; z < ext.Z; z++ {
			for x := 0; x < ext.X; x++ {
				if s.Count(c)+len(out) >= table[c].MaxCount {
					continue
				}
				p := anchor.Add(lattice.Pos{X: x * size, Y: y * size, Z: z * size})
				if !s.IsValid(p) {
					continue
				}
				out = append(out, p)
			}
		}
	}
	return out
}
