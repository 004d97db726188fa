package lattice

// Keys interleave the three axes into one uint64 (21 bits each). Signed
// coordinates are biased into the unsigned range first so that negative
// cells still sort next to their neighbours.
const (
	keyBits = 21
	keyBias = 1 << (keyBits - 1)
	keyMask = 1<<keyBits - 1
)

// MaxHalfExtent is the largest grid radius whose cells all get distinct keys.
const MaxHalfExtent = keyBias - 1

// PackKey folds a cell position into its Morton key. Positions outside
// ±MaxHalfExtent alias other cells; callers check bounds first.
func PackKey(p Pos) uint64 {
	return interleave3(uint32(p.X+keyBias)&keyMask, uint32(p.Y+keyBias)&keyMask, uint32(p.Z+keyBias)&keyMask)
}

func interleave3(x, y, z uint32) uint64 {
	return part1By2(uint64(x)) |
		(part1By2(uint64(y)) << 1) |
		(part1By2(uint64(z)) << 2)
}

func part1By2(x uint64) uint64 {
	x &= 0x1fffff
	x = (x | (x << 32)) & 0x1f00000000ffff
	x = (x | (x << 16)) & 0x1f0000ff0000ff
	x = (x | (x << 8)) & 0x100f00f00f00f00f
	x = (x | (x << 4)) & 0x10c30c30c30c30c3
	x = (x | (x << 2)) & 0x1249249249249249
	return x
}
