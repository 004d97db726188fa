package utils

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"

	"github.com/voxelsplace/landbuilder/api"
	"github.com/voxelsplace/landbuilder/codec"
	"github.com/voxelsplace/landbuilder/config"
	"github.com/voxelsplace/landbuilder/mesh"
)

// RunLandpack2GLB converts every land of a .landpack into one .glb, one
// node per entry, laid out side by side on a square grid.
func RunLandpack2GLB(cfg config.Config, inPackPath, outGlbPath string) error {
	data, err := os.ReadFile(inPackPath)
	if err != nil {
		return err
	}
	a, _, err := codec.UnmarshalArchive(data)
	if err != nil {
		return err
	}
	if len(a.Entries) == 0 {
		return fmt.Errorf("%s: no entries", inPackPath)
	}

	doc := mesh.NewDocument()
	cols := int(math.Ceil(math.Sqrt(float64(len(a.Entries)))))
	step := float64(2 * cfg.GridRadius)
	for i, e := range a.Entries {
		s, _, _, err := api.Load(cfg, e.Data)
		if err != nil {
			return fmt.Errorf("entry %d (%s): %w", i, e.Name, err)
		}
		at := [3]float64{float64(i%cols) * step, 0, float64(i/cols) * step}
		if err := mesh.WriteMesh(doc, mesh.FromStore(s), filepath.Base(e.Name), at); err != nil {
			return fmt.Errorf("entry %d (%s): %w", i, e.Name, err)
		}
	}
	return gltf.SaveBinary(doc, outGlbPath)
}
