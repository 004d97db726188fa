package mesh

import (
	"bytes"
	"fmt"
	"math"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

const generator = "landbuilder -> GLB"

// NewDocument returns an empty glTF document sharing one vertex-coloured
// material (index 0) between all meshes written into it.
func NewDocument() *gltf.Document {
	doc := gltf.NewDocument()
	doc.Asset.Generator = generator
	doc.Materials = []*gltf.Material{{
		Name: "land",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float64{1, 1, 1, 1},
			MetallicFactor:  gltf.Float(0),
			RoughnessFactor: gltf.Float(1),
		},
		AlphaMode: gltf.AlphaOpaque,
	}}
	return doc
}

// WriteMesh appends m as a mesh plus a node at translation to the default
// scene of doc. Empty meshes are skipped.
func WriteMesh(doc *gltf.Document, m *Mesh, name string, translation [3]float64) error {
	if len(m.Vertices) == 0 {
		return nil
	}
	rgba := make([][4]float32, len(m.Palette))
	for i, hex := range m.Palette {
		c, err := ParseHexColor(hex)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		rgba[i] = c
	}

	positions := make([][3]float32, len(m.Vertices))
	colors := make([][4]float32, len(m.Vertices))
	for i, v := range m.Vertices {
		positions[i] = v.Position
		colors[i] = rgba[v.Color]
		if colors[i][3] < 1 {
			doc.Materials[0].AlphaMode = gltf.AlphaBlend
		}
	}
	indices := append([]uint32(nil), m.Indices...)
	normals := flatNormals(positions, indices)

	prim := &gltf.Primitive{
		Attributes: gltf.PrimitiveAttributes{
			gltf.POSITION: modeler.WritePosition(doc, positions),
			gltf.NORMAL:   modeler.WriteNormal(doc, normals),
			gltf.COLOR_0:  modeler.WriteColor(doc, colors),
		},
		Indices:  gltf.Index(modeler.WriteIndices(doc, indices)),
		Material: gltf.Index(0),
	}
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{Name: name, Primitives: []*gltf.Primitive{prim}})
	doc.Nodes = append(doc.Nodes, &gltf.Node{
		Name:        name,
		Mesh:        gltf.Index(len(doc.Meshes) - 1),
		Translation: translation,
	})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)
	return nil
}

// ToGLB encodes m alone as binary glTF with positions, flat normals and
// vertex colours.
func ToGLB(m *Mesh) ([]byte, error) {
	doc := NewDocument()
	if err := WriteMesh(doc, m, "LandMesh", [3]float64{}); err != nil {
		return nil, err
	}
	return EncodeGLB(doc)
}

func EncodeGLB(doc *gltf.Document) ([]byte, error) {
	var out bytes.Buffer
	enc := gltf.NewEncoder(&out)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode glb: %w", err)
	}
	return out.Bytes(), nil
}

// flatNormals gives every vertex the normal of the last triangle using it.
// Quads never share vertices, so each face stays flat.
func flatNormals(positions [][3]float32, indices []uint32) [][3]float32 {
	normals := make([][3]float32, len(positions))
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		p0, p1, p2 := positions[i0], positions[i1], positions[i2]
		a := [3]float32{p1[0] - p0[0], p1[1] - p0[1], p1[2] - p0[2]}
		b := [3]float32{p2[0] - p0[0], p2[1] - p0[1], p2[2] - p0[2]}
		n := [3]float32{
			a[1]*b[2] - a[2]*b[1],
			a[2]*b[0] - a[0]*b[2],
			a[0]*b[1] - a[1]*b[0],
		}
		if l := float32(math.Sqrt(float64(n[0]*n[0] + n[1]*n[1] + n[2]*n[2]))); l > 0 {
			n[0], n[1], n[2] = n[0]/l, n[1]/l, n[2]/l
		}
		normals[i0], normals[i1], normals[i2] = n, n, n
	}
	return normals
}
