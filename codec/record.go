package codec

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// FormatVersion is written to the version field of every exported record.
const FormatVersion = 0

// Record is the persisted form of a land: one cube sequence per category
// index plus the decal list.
type Record struct {
	Cubes    [][]Cube `json:"cubes"`
	Images   []Image  `json:"images"`
	Version  int      `json:"version"`
	CubeSize int      `json:"cubeSize"`
}

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Cube is one voxel entry. Index, when set, overrides the sequence the
// entry was found in.
type Cube struct {
	Position Position `json:"position"`
	Index    *int     `json:"index,omitempty"`
	Type     string   `json:"type"`
	Color    string   `json:"color"`

	malformed bool
}

type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type Quat struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Image is one decal entry. A nil Size means one cube face.
type Image struct {
	Image      string `json:"image"`
	URL        string `json:"url"`
	Position   *Vec3  `json:"position"`
	Quaternion *Quat  `json:"quaternion"`
	Size       *Size  `json:"size,omitempty"`

	malformed bool
}

// Malformed reports whether the entry could not be read as a voxel.
func (c Cube) Malformed() bool { return c.malformed }

func (im Image) Malformed() bool { return im.malformed }

// UnmarshalJSON never fails on well-formed JSON: entries whose position is
// missing or not integral are flagged and dropped at import.
func (c *Cube) UnmarshalJSON(b []byte) error {
	var raw struct {
		Position map[string]any `json:"position"`
		Index    any            `json:"index"`
		Type     any            `json:"type"`
		Color    any            `json:"color"`
	}
	*c = Cube{}
	if err := json.Unmarshal(b, &raw); err != nil || raw.Position == nil {
		c.malformed = true
		return nil
	}
	x, okx := integral(raw.Position["x"])
	y, oky := integral(raw.Position["y"])
	z, okz := integral(raw.Position["z"])
	if !okx || !oky || !okz {
		c.malformed = true
		return nil
	}
	c.Position = Position{X: x, Y: y, Z: z}
	if idx, ok := parseIndex(raw.Index); ok {
		c.Index = &idx
	}
	c.Type, _ = raw.Type.(string)
	c.Color, _ = raw.Color.(string)
	return nil
}

func (im *Image) UnmarshalJSON(b []byte) error {
	var raw struct {
		Image      any            `json:"image"`
		URL        any            `json:"url"`
		Position   map[string]any `json:"position"`
		Quaternion map[string]any `json:"quaternion"`
		Size       map[string]any `json:"size"`
	}
	*im = Image{}
	if err := json.Unmarshal(b, &raw); err != nil {
		im.malformed = true
		return nil
	}
	im.Image, _ = raw.Image.(string)
	im.URL, _ = raw.URL.(string)
	if raw.Position != nil {
		v, ok := floats(raw.Position, "x", "y", "z")
		if !ok {
			im.malformed = true
			return nil
		}
		im.Position = &Vec3{X: v[0], Y: v[1], Z: v[2]}
	}
	if raw.Quaternion != nil {
		v, ok := floats(raw.Quaternion, "x", "y", "z", "w")
		if !ok {
			im.malformed = true
			return nil
		}
		im.Quaternion = &Quat{X: v[0], Y: v[1], Z: v[2], W: v[3]}
	}
	if raw.Size != nil {
		v, ok := floats(raw.Size, "width", "height")
		if !ok {
			im.malformed = true
			return nil
		}
		im.Size = &Size{Width: v[0], Height: v[1]}
	}
	return nil
}

func integral(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) || math.Abs(f) > 1<<40 {
		return 0, false
	}
	return int(f), true
}

// parseIndex accepts an integral number or a string holding one.
func parseIndex(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		return integral(t)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	}
	return 0, false
}

func floats(m map[string]any, keys ...string) ([]float64, bool) {
	out := make([]float64, len(keys))
	for i, k := range keys {
		f, ok := m[k].(float64)
		if !ok {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}
