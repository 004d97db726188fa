package utils

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/voxelsplace/landbuilder/codec"
	"github.com/voxelsplace/landbuilder/config"
	"github.com/voxelsplace/landbuilder/lattice"
)

// NoiseSpec describes a batch of random lands. Each land fills a share of
// every category's quota drawn uniformly from [MinFill, MaxFill] percent.
type NoiseSpec struct {
	MinFill, MaxFill float64
	Amount           int
	Seed             int64
}

// cellKeys lists every valid cell key of b.
func cellKeys(b lattice.Bounds) []lattice.Pos {
	var out []lattice.Pos
	s, h := b.CubeSize, b.HalfExtent
	lo := lattice.Align(lattice.Pos{X: -h, Z: -h}, s)
	for y := 0; y <= h; y += s {
		for z := lo.Z; z < h; z += s {
			for x := lo.X; x < h; x += s {
				if p := (lattice.Pos{X: x, Y: y, Z: z}); b.IsValid(p) {
					out = append(out, p)
				}
			}
		}
	}
	return out
}

// noiseLand scatters voxels over random cells until each category holds
// fill percent of its quota. Colour voxels get a random #rrggbb.
func noiseLand(cfg config.Config, cells []lattice.Pos, fill float64, r *rand.Rand) *lattice.Store {
	s := lattice.NewStore(cfg.Bounds(), cfg.Table())
	r.Shuffle(len(cells), func(i, j int) { cells[i], cells[j] = cells[j], cells[i] })
	next := 0
	for c, cat := range cfg.Categories {
		want := int(float64(cat.MaxCount)*fill/100 + 0.5)
		for ; want > 0 && next < len(cells); want-- {
			color := lattice.DefaultColor
			if cat.Kind == lattice.KindColor {
				color = fmt.Sprintf("#%06x", r.Intn(1<<24))
			}
			if _, err := s.Place(cells[next], c, color); err != nil {
				break
			}
			next++
		}
	}
	return s
}

// RunGenerateNoise writes spec.Amount random land records named
// 0.json..(n-1).json into outDir. The same seed yields the same lands.
func RunGenerateNoise(cfg config.Config, spec NoiseSpec, outDir string) error {
	if spec.MinFill < 0 || spec.MaxFill > 100 || spec.MinFill > spec.MaxFill {
		return fmt.Errorf("fill range [%g, %g] outside [0, 100]", spec.MinFill, spec.MaxFill)
	}
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	r := rand.New(rand.NewSource(spec.Seed))
	cells := cellKeys(cfg.Bounds())
	for i := 0; i < spec.Amount; i++ {
		fill := spec.MinFill + r.Float64()*(spec.MaxFill-spec.MinFill)
		s := noiseLand(cfg, cells, fill, r)
		data, err := codec.Encode(codec.Export(s, nil, cfg.ImageMaxCount))
		if err != nil {
			return err
		}
		path := filepath.Join(outDir, fmt.Sprintf("%d.json", i))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("save %s: %w", path, err)
		}
	}
	return nil
}
