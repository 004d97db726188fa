package mesh

import (
	"fmt"
	"strconv"
)

// ParseHexColor reads "#rrggbb" or "#rrggbbaa" into linear 0..1 RGBA.
func ParseHexColor(hex string) ([4]float32, error) {
	if len(hex) == 0 || hex[0] != '#' {
		return [4]float32{}, fmt.Errorf("invalid hex colour %q", hex)
	}
	h := hex[1:]
	if len(h) != 6 && len(h) != 8 {
		return [4]float32{}, fmt.Errorf("invalid hex colour length %q", hex)
	}
	out := [4]float32{0, 0, 0, 1}
	for i := 0; i < len(h)/2; i++ {
		v, err := strconv.ParseUint(h[2*i:2*i+2], 16, 8)
		if err != nil {
			return [4]float32{}, fmt.Errorf("invalid hex colour %q: %w", hex, err)
		}
		out[i] = float32(v) / 255
	}
	return out, nil
}
