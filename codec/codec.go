package codec

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/voxelsplace/landbuilder/decal"
	"github.com/voxelsplace/landbuilder/lattice"
)

// ErrMalformedRecord is returned when a document is not a land record at all.
// Bad individual entries never produce it; they are counted in ImportReport.
var ErrMalformedRecord = errors.New("codec: malformed record")

//go:embed record.schema.json
var recordSchemaSrc string

var recordSchema = jsonschema.MustCompileString("record.schema.json", recordSchemaSrc)

const ipfsScheme = "ipfs://"

// Decode parses a record after checking its envelope against the embedded
// schema.
func Decode(data []byte) (Record, error) {
	var rec Record
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return rec, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if err := recordSchema.Validate(doc); err != nil {
		return rec, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return rec, nil
}

func Encode(rec Record) ([]byte, error) {
	return json.Marshal(rec)
}

// ResolveImageURI rewrites content-addressed image references through the
// gateway prefix. Other references are returned unchanged.
func ResolveImageURI(image, gateway string) string {
	if gateway == "" || !strings.HasPrefix(image, ipfsScheme) {
		return image
	}
	return gateway + strings.TrimPrefix(image, ipfsScheme)
}

// Export snapshots the store and decal list. Cubes are grouped by category
// in table order and sorted by cell key inside each group. At most
// maxDecals decals are considered; those without an image or url are
// skipped.
func Export(s *lattice.Store, decals []decal.Decal, maxDecals int) Record {
	table := s.Table()
	rec := Record{
		Cubes:    make([][]Cube, len(table)),
		Images:   []Image{},
		Version:  FormatVersion,
		CubeSize: s.Bounds().CubeSize,
	}
	for i := range rec.Cubes {
		rec.Cubes[i] = []Cube{}
	}
	for _, r := range s.Records() {
		idx := r.Category
		rec.Cubes[idx] = append(rec.Cubes[idx], Cube{
			Position: Position{X: r.Pos.X, Y: r.Pos.Y, Z: r.Pos.Z},
			Index:    &idx,
			Type:     r.Kind,
			Color:    r.Color,
		})
	}
	for i, d := range decals {
		if i >= maxDecals {
			break
		}
		if d.Image == "" || d.URL == "" {
			continue
		}
		q := d.Orientation
		rec.Images = append(rec.Images, Image{
			Image:      d.Image,
			URL:        d.URL,
			Position:   &Vec3{X: float64(d.Position[0]), Y: float64(d.Position[1]), Z: float64(d.Position[2])},
			Quaternion: &Quat{X: float64(q.V[0]), Y: float64(q.V[1]), Z: float64(q.V[2]), W: float64(q.W)},
			Size:       &Size{Width: float64(d.Size.Width), Height: float64(d.Size.Height)},
		})
	}
	return rec
}

// ImportReport counts what an import applied and why entries were dropped.
type ImportReport struct {
	Voxels    int
	Replaced  int
	Realigned int // off-grid positions moved onto their containing cell
	Decals    int

	Truncated       int // beyond the sequence's category quota
	Malformed       int // missing or non-integral position
	OutOfBounds     int
	UnknownCategory int
	QuotaExceeded   int // explicit index pointing at a full category

	DecalsMalformed   int
	DecalsOutOfBounds int
	DecalsOverLimit   int

	// ForeignCubeSize is set when the record was written for another pitch.
	ForeignCubeSize bool
	Diff            lattice.Diff
}

func (r ImportReport) Dropped() int {
	return r.Truncated + r.Malformed + r.OutOfBounds + r.UnknownCategory + r.QuotaExceeded +
		r.DecalsMalformed + r.DecalsOutOfBounds + r.DecalsOverLimit
}

// Import applies rec to s and e. Every entry is validated on its own; a bad
// entry is counted and skipped, and the import as a whole never fails.
// Integer positions off the cube grid, such as the cell centres written by
// older builders, are moved onto the cell containing them.
func Import(rec Record, s *lattice.Store, e *decal.Engine) ImportReport {
	rep := ImportReport{Diff: lattice.Diff{}}
	rep.ForeignCubeSize = rec.CubeSize != 0 && rec.CubeSize != s.Bounds().CubeSize
	table := s.Table()
	size := s.Bounds().CubeSize

	for j, seq := range rec.Cubes {
		quota := 0
		if table.Has(j) {
			quota = table[j].MaxCount
		}
		if len(seq) > quota {
			rep.Truncated += len(seq) - quota
			seq = seq[:quota]
		}
		for _, c := range seq {
			if c.malformed {
				rep.Malformed++
				continue
			}
			cat := j
			if c.Index != nil {
				cat = *c.Index
			}
			raw := lattice.Pos{X: c.Position.X, Y: c.Position.Y, Z: c.Position.Z}
			pos := lattice.Align(raw, size)
			res, err := s.Place(pos, cat, c.Color)
			switch {
			case err == nil:
				rep.Voxels++
				if pos != raw {
					rep.Realigned++
				}
				if res.Replaced != nil {
					rep.Replaced++
				}
				rep.Diff.Merge(res.Diff)
			case errors.Is(err, lattice.ErrOutOfBounds):
				rep.OutOfBounds++
			case errors.Is(err, lattice.ErrUnknownCategory):
				rep.UnknownCategory++
			default:
				rep.QuotaExceeded++
			}
		}
	}

	for i, im := range rec.Images {
		if i >= e.Max() {
			rep.DecalsOverLimit += len(rec.Images) - i
			break
		}
		if im.malformed || im.Position == nil || im.Quaternion == nil {
			rep.DecalsMalformed++
			continue
		}
		d := decal.Decal{
			Position: mgl32.Vec3{float32(im.Position.X), float32(im.Position.Y), float32(im.Position.Z)},
			Orientation: mgl32.Quat{
				W: float32(im.Quaternion.W),
				V: mgl32.Vec3{float32(im.Quaternion.X), float32(im.Quaternion.Y), float32(im.Quaternion.Z)},
			},
			Image: im.Image,
			URL:   im.URL,
		}
		if im.Size != nil {
			d.Size = decal.Size{Width: float32(im.Size.Width), Height: float32(im.Size.Height)}
		}
		switch err := e.Hydrate(d); {
		case err == nil:
			rep.Decals++
		case errors.Is(err, decal.ErrOutOfBounds):
			rep.DecalsOutOfBounds++
		case errors.Is(err, decal.ErrListFull):
			rep.DecalsOverLimit++
		default:
			rep.DecalsMalformed++
		}
	}
	return rep
}
