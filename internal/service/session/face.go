package session

import (
	"fmt"
	"math"
)

// FaceMatchThreshold is the largest descriptor distance that still counts
// as a match, exclusive.
const FaceMatchThreshold = 0.6

func euclideanDistance(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("descriptor length %d does not match stored length %d", len(a), len(b))
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum), nil
}
