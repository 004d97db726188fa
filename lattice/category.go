package lattice

// KindColor marks the category whose voxels carry a user-picked colour.
const KindColor = "color"

// DefaultColor is recorded for voxels without a colour override.
const DefaultColor = "#ffffff"

// Category is one entry of the fixed material table.
type Category struct {
	Kind     string
	MaxCount int
	// Color is the swatch used when the lattice is exported as a mesh.
	Color string
}

// Table is the ordered category list; a voxel's category is its index here.
type Table []Category

func (t Table) Has(c int) bool { return c >= 0 && c < len(t) }

func (t Table) Kind(c int) string {
	if !t.Has(c) {
		return ""
	}
	return t[c].Kind
}

// IndexOfKind returns the first category with the given kind, or -1.
func (t Table) IndexOfKind(kind string) int {
	for i, c := range t {
		if c.Kind == kind {
			return i
		}
	}
	return -1
}
