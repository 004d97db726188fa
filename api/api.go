package api

import (
	"fmt"
	"sort"

	"github.com/voxelsplace/landbuilder/codec"
	"github.com/voxelsplace/landbuilder/config"
	"github.com/voxelsplace/landbuilder/decal"
	"github.com/voxelsplace/landbuilder/lattice"
	"github.com/voxelsplace/landbuilder/mesh"
)

// Load decodes a record JSON document and imports it into a fresh store
// and decal list built from cfg.
func Load(cfg config.Config, data []byte) (*lattice.Store, *decal.Engine, codec.ImportReport, error) {
	rec, err := codec.Decode(data)
	if err != nil {
		return nil, nil, codec.ImportReport{}, err
	}
	b := cfg.Bounds()
	s := lattice.NewStore(b, cfg.Table())
	e := decal.NewEngine(b, cfg.ImageMaxCount)
	rep := codec.Import(rec, s, e)
	return s, e, rep, nil
}

// NormalizeRecord re-exports a record after validation: dropped entries are
// gone, positions are aligned and cubes are sorted.
func NormalizeRecord(cfg config.Config, data []byte) ([]byte, codec.ImportReport, error) {
	s, e, rep, err := Load(cfg, data)
	if err != nil {
		return nil, rep, err
	}
	out, err := codec.Encode(codec.Export(s, e.All(), e.Max()))
	if err != nil {
		return nil, rep, fmt.Errorf("encode record: %w", err)
	}
	return out, rep, nil
}

// RecordToGLB meshes a record JSON document into binary glTF.
func RecordToGLB(cfg config.Config, data []byte) ([]byte, error) {
	s, _, _, err := Load(cfg, data)
	if err != nil {
		return nil, err
	}
	return mesh.ToGLB(mesh.FromStore(s))
}

// RecordDigest returns the occupancy digest of a record after import.
func RecordDigest(cfg config.Config, data []byte) (string, error) {
	s, _, _, err := Load(cfg, data)
	if err != nil {
		return "", err
	}
	return s.DigestHex(), nil
}

// PackRecords builds a .landpack from named record documents. Every
// document must decode; entries are stored in name order.
func PackRecords(files map[string][]byte, comp codec.Compression) ([]byte, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files")
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	a := &codec.Archive{}
	for _, name := range names {
		if _, err := codec.Decode(files[name]); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		a.Entries = append(a.Entries, codec.Entry{Name: name, Data: files[name]})
	}
	layout := codec.LayoutRaw
	if len(a.Entries) > 1 {
		layout = codec.LayoutChunked
	}
	return a.Marshal(layout, comp)
}

// UnpackToMemory returns name -> record document from a .landpack blob.
func UnpackToMemory(pack []byte) (map[string][]byte, error) {
	a, _, err := codec.UnmarshalArchive(pack)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(a.Entries))
	for _, e := range a.Entries {
		out[e.Name] = e.Data
	}
	return out, nil
}
