package geometry

// splitMix64 is a small, explicitly specified seeded generator. Grid fill
// needs byte-identical output for a given seed across builds and Go versions,
// so we avoid math/rand's unexported source.
type splitMix64 struct {
	state uint64
}

func newSplitMix64(seed int64) *splitMix64 {
	return &splitMix64{state: uint64(seed)}
}

func (r *splitMix64) next() uint64 {
	r.state += 0x9e3779b97f4a7c15
	z := r.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// float64 returns a uniform value in [0, 1).
func (r *splitMix64) float64() float64 {
	return float64(r.next()>>11) / (1 << 53)
}

// uniform returns a uniform value in [min, max).
func (r *splitMix64) uniform(min, max float64) float64 {
	return min + (max-min)*r.float64()
}
