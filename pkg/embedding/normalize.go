package embedding

import "math"

// normEpsilon guards the near-zero norm case. Dividing by a norm this small
// would blow the vector up into garbage, so callers return the raw vector instead.
const normEpsilon = 1e-10

// Normalize scales vec to unit length (magnitude = 1).
// Cosine similarity over normalized vectors is a plain dot product, which is
// what every index backend in this system assumes.
// If the norm is below normEpsilon the input is returned unchanged; the second
// return value reports whether normalization was applied.
func Normalize(vec []float32) ([]float32, bool) {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	if magnitude < normEpsilon {
		return vec, false
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized, true
}

// IsFinite reports whether every component of vec is a finite number.
// Model servers occasionally emit NaN/Inf on malformed inputs; such vectors
// must never reach an index.
func IsFinite(vec []float32) bool {
	for _, v := range vec {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// Dot returns the inner product of two equal-length vectors.
func Dot(a, b []float32) float32 {
	var sum float32
	for i := 0; i < len(a); i++ {
		sum += a[i] * b[i]
	}
	return sum
}
