package mesh

import (
	"bytes"
	"testing"

	"github.com/qmuntal/gltf"

	"github.com/voxelsplace/landbuilder/lattice"
)

func newStore(t *testing.T) *lattice.Store {
	t.Helper()
	return lattice.NewStore(lattice.DefaultBounds(), lattice.Table{
		{Kind: "stone", MaxCount: 100, Color: "#808080"},
		{Kind: lattice.KindColor, MaxCount: 100},
	})
}

func TestFromStore_QuadCounts(t *testing.T) {
	cases := []struct {
		name  string
		place func(s *lattice.Store)
		quads int
	}{
		{"single", func(s *lattice.Store) { s.Place(lattice.Pos{}, 0, "") }, 6},
		{"merged pair", func(s *lattice.Store) {
			s.Place(lattice.Pos{X: 0, Y: 0, Z: 0}, 0, "")
			s.Place(lattice.Pos{X: 2, Y: 0, Z: 0}, 0, "")
		}, 6},
		{"two colours", func(s *lattice.Store) {
			s.Place(lattice.Pos{X: 0, Y: 0, Z: 0}, 0, "")
			s.Place(lattice.Pos{X: 2, Y: 0, Z: 0}, 1, "#ff0000")
		}, 10},
		{"apart", func(s *lattice.Store) {
			s.Place(lattice.Pos{X: -10, Y: 0, Z: 0}, 0, "")
			s.Place(lattice.Pos{X: 10, Y: 4, Z: 0}, 0, "")
		}, 12},
	}
	for _, c := range cases {
		s := newStore(t)
		c.place(s)
		m := FromStore(s)
		if len(m.Vertices) != 4*c.quads || len(m.Indices) != 6*c.quads {
			t.Fatalf("%s: %d vertices, %d indices", c.name, len(m.Vertices), len(m.Indices))
		}
	}
}

func TestFromStore_WorldUnits(t *testing.T) {
	s := newStore(t)
	s.Place(lattice.Pos{X: -4, Y: 2, Z: 6}, 0, "")
	m := FromStore(s)
	lo := [3]float32{1e9, 1e9, 1e9}
	hi := [3]float32{-1e9, -1e9, -1e9}
	for _, v := range m.Vertices {
		for a := 0; a < 3; a++ {
			lo[a] = min(lo[a], v.Position[a])
			hi[a] = max(hi[a], v.Position[a])
		}
	}
	if lo != [3]float32{-4, 2, 6} || hi != [3]float32{-2, 4, 8} {
		t.Fatalf("bounds %v..%v", lo, hi)
	}
	if len(m.Palette) != 1 || m.Palette[0] != "#808080" {
		t.Fatalf("palette = %v", m.Palette)
	}
}

func TestToGLB_ParsesBack(t *testing.T) {
	s := newStore(t)
	s.Place(lattice.Pos{X: 0, Y: 0, Z: 0}, 0, "")
	s.Place(lattice.Pos{X: 0, Y: 2, Z: 0}, 1, "#00ff0080")
	b, err := ToGLB(FromStore(s))
	if err != nil {
		t.Fatalf("ToGLB: %v", err)
	}
	var doc gltf.Document
	if err := gltf.NewDecoder(bytes.NewReader(b)).Decode(&doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(doc.Meshes) != 1 || len(doc.Meshes[0].Primitives) != 1 || len(doc.Scenes[0].Nodes) != 1 {
		t.Fatalf("meshes = %d", len(doc.Meshes))
	}
	if doc.Materials[0].AlphaMode != gltf.AlphaBlend {
		t.Fatalf("translucent swatch should blend")
	}
	if doc.Asset.Generator != generator {
		t.Fatalf("generator = %q", doc.Asset.Generator)
	}
}

func TestToGLB_Empty(t *testing.T) {
	b, err := ToGLB(FromStore(newStore(t)))
	if err != nil || len(b) == 0 {
		t.Fatalf("empty land: %d bytes, %v", len(b), err)
	}
}

func TestWriteMesh_OneNodePerLand(t *testing.T) {
	doc := NewDocument()
	for i := 0; i < 3; i++ {
		s := newStore(t)
		s.Place(lattice.Pos{X: 2 * i}, 0, "")
		if err := WriteMesh(doc, FromStore(s), "land", [3]float64{float64(64 * i), 0, 0}); err != nil {
			t.Fatal(err)
		}
	}
	if len(doc.Nodes) != 3 || doc.Nodes[2].Translation != [3]float64{128, 0, 0} || doc.Materials[0].AlphaMode != gltf.AlphaOpaque {
		t.Fatalf("nodes = %d", len(doc.Nodes))
	}
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#ff000080")
	if err != nil || c[0] != 1 || c[1] != 0 || c[3] != float32(0x80)/255 {
		t.Fatalf("got %v, %v", c, err)
	}
	for _, bad := range []string{"", "ff0000", "#ff00", "#gg0000"} {
		if _, err := ParseHexColor(bad); err == nil {
			t.Fatalf("%q accepted", bad)
		}
	}
}
