package scoring

import "math"

// Cosine is the cosine similarity dot(a,b) / (‖a‖·‖b‖). Vectors of different
// lengths fail with a DimensionMismatchError; a zero-norm vector has
// similarity 0 to everything.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, &DimensionMismatchError{Got: len(a), Want: len(b)}
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
