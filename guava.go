package guavahash

const (
	// lcgMultiplier is the multiplier of Guava's LinearCongruentialGenerator.
	lcgMultiplier int64 = 2862933555777941757

	// lcgScale maps the top 31 bits of the generator state into (0, 1].
	lcgScale = float64(int64(1) << 31)
)

// Guava returns the bucket in [0, buckets) that state is assigned to.
// It returns 0 when buckets <= 0.
//
// The result matches Guava's Hashing.consistentHash(long, int) for every
// input, including the generator's int32 overflow when the shifted state is
// 2^31-1.
func Guava(state int64, buckets int32) int32 {
	var candidate int32

	for {
		// Signed overflow wraps in Go.
		state = state*lcgMultiplier + 1

		next := float64(candidate+1) / nextDouble(state)
		if next < 0 || next >= float64(buckets) {
			return candidate
		}
		candidate = int32(next)
	}
}

// nextDouble returns the generator's next value in (0, 1], or -1 when the
// int32 addition wraps. A negative value ends the jump sequence.
func nextDouble(state int64) float64 {
	top := int32(uint64(state) >> 33)
	return float64(top+1) / lcgScale
}
